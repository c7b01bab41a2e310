// Package console provides headless implementations of the board's UI
// capability interfaces. They keep rendered state in memory and log
// mutations, so the engine can run without a real widget attached.
package console

import (
	"sync"

	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/domain/gateway"
	"go-reservation-board/pkg/timeformat"

	"github.com/sirupsen/logrus"
)

// Board records rendered events in memory. It implements both
// gateway.CalendarAPI and gateway.BoardHooks.
type Board struct {
	log    *logrus.Logger
	mu     sync.Mutex
	events map[string]*boardEvent
}

func NewBoard(log *logrus.Logger) *Board {
	return &Board{
		log:    log,
		events: make(map[string]*boardEvent),
	}
}

func (b *Board) EventByID(id string) (gateway.EventHandle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ev, ok := b.events[id]
	return ev, ok
}

func (b *Board) AddEvent(r *entity.Reservation) (gateway.EventHandle, bool) {
	if r == nil || r.ID == "" {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	ev := &boardEvent{
		id:       r.ID,
		date:     r.Date,
		start:    r.Start,
		end:      r.End,
		props:    map[string]any{"title": r.Title},
		extended: map[string]any{"type": int(r.Type), "cancelled": r.Cancelled},
	}
	b.events[r.ID] = ev
	b.log.Debugf("Board rendered event %s (%s %s)", r.ID, r.Date, r.Start)
	return ev, true
}

func (b *Board) RemoveEvent(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.events, id)
}

// ReservationReconciled implements gateway.BoardHooks.
func (b *Board) ReservationReconciled(r *entity.Reservation) {
	b.log.Infof("Reconciled reservation %s: %s %s-%s", r.ID, r.Date, r.Start, r.End)
}

// RevertDrag implements gateway.BoardHooks. With no live widget there is
// nothing to snap back; the store already holds the pre-gesture state.
func (b *Board) RevertDrag(eventID string) {
	b.log.Infof("Drag reverted for %s", eventID)
}

type boardEvent struct {
	mu       sync.Mutex
	id       string
	date     string
	start    string
	end      string
	props    map[string]any
	extended map[string]any
}

func (e *boardEvent) ID() string { return e.id }

func (e *boardEvent) SetProp(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.props[name] = value
}

func (e *boardEvent) SetExtendedProp(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.extended[name] = value
}

func (e *boardEvent) SetDates(date, start, end string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.date, e.start, e.end = date, start, end
}

func (e *boardEvent) MoveStart(deltaMinutes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mins := timeformat.MinutesOfDay(e.start)
	if mins < 0 {
		return
	}
	e.start = timeformat.ClockFromMinutes(mins + deltaMinutes)
}
