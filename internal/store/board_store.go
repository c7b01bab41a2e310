// Package store holds the client's optimistic view of the board: every
// reservation the engine currently believes in, confirmed or not.
package store

import (
	"sort"
	"sync"

	"go-reservation-board/internal/domain/entity"
)

// BoardStore is an in-memory reservation set keyed by id. Only one event
// callback runs at a time, but the mutex keeps timer-driven paths safe.
type BoardStore struct {
	mu           sync.RWMutex
	reservations map[string]*entity.Reservation
}

func NewBoardStore() *BoardStore {
	return &BoardStore{
		reservations: make(map[string]*entity.Reservation),
	}
}

// Upsert stores a copy of r, replacing any entry with the same id.
func (s *BoardStore) Upsert(r *entity.Reservation) {
	if r == nil || r.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *r
	s.reservations[r.ID] = &clone
}

// Get returns a copy of the reservation, or false when absent.
func (s *BoardStore) Get(id string) (*entity.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, false
	}
	clone := *r
	return &clone, true
}

// Update mutates the stored reservation in place via fn. Returns false
// when the id is unknown.
func (s *BoardStore) Update(id string, fn func(*entity.Reservation)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return false
	}
	fn(r)
	return true
}

// Remove deletes the reservation if present.
func (s *BoardStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reservations, id)
}

// SnapshotByDate returns copies of all reservations on a date, ordered by
// id for deterministic iteration.
func (s *BoardStore) SnapshotByDate(date string) []*entity.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.Reservation
	for _, r := range s.reservations {
		if r.Date == date {
			clone := *r
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of stored reservations.
func (s *BoardStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reservations)
}
