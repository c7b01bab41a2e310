package service

import (
	"sort"

	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/store"
	"go-reservation-board/pkg/timeformat"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultSlotWindowMinutes is the width of a layout bucket.
	DefaultSlotWindowMinutes = 120

	// Per-item durations: short once a bucket gets dense, long otherwise,
	// so a fixed-width slot stays readable as density grows.
	denseBucketThreshold = 6
	shortDurationMinutes = 15
	longDurationMinutes  = 20

	// Gap between consecutive items in a bucket
	itemGapMinutes = 1
)

// =============================================================================
// Types
// =============================================================================

// Placement is a computed [start, end) interval for one reservation.
type Placement struct {
	ID    string
	Start string
	End   string
}

// PlacementApplier pushes computed times onto the rendering surface.
type PlacementApplier interface {
	ApplyPlacement(id, date, start, end, slotBase string)
}

// SlotLayoutEngine deterministically bin-packs the reservations sharing a
// (date, slot base) bucket. Ordering is derived from the data itself, so
// independently reflowing clients converge without coordination, and the
// whole computation is idempotent on an unchanged input set.
type SlotLayoutEngine struct {
	log           *logrus.Logger
	store         *store.BoardStore
	grid          entity.SlotGrid
	applier       PlacementApplier
	windowMinutes int
}

// =============================================================================
// Constructor
// =============================================================================

func NewSlotLayoutEngine(
	log *logrus.Logger,
	boardStore *store.BoardStore,
	grid entity.SlotGrid,
	applier PlacementApplier,
	windowMinutes int,
) *SlotLayoutEngine {
	if windowMinutes <= 0 {
		windowMinutes = DefaultSlotWindowMinutes
	}
	return &SlotLayoutEngine{
		log:           log,
		store:         boardStore,
		grid:          grid,
		applier:       applier,
		windowMinutes: windowMinutes,
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Reflow lays out every eligible reservation in the bucket, persists the
// computed times and bucket stamp on each item, and pushes them to the
// rendering surface. Returns the placements in their final order.
func (e *SlotLayoutEngine) Reflow(date, slotBase string) []Placement {
	return e.reflow(date, slotBase, false, "")
}

// ReflowStrict is Reflow restricted to items already stamped with the
// bucket; unstamped same-window items are left alone.
func (e *SlotLayoutEngine) ReflowStrict(date, slotBase string) []Placement {
	return e.reflow(date, slotBase, true, "")
}

// ReflowMoved recomputes the bucket but persists and applies only the
// moved item's placement, leaving neighbors untouched. Returns false when
// the moved item is not yet among the bucket's candidates; in that case
// its offset is simply skipped and nothing changes.
func (e *SlotLayoutEngine) ReflowMoved(date, slotBase, movedID string) (Placement, bool) {
	placements := e.reflow(date, slotBase, false, movedID)
	for _, p := range placements {
		if p.ID == movedID {
			return p, true
		}
	}
	return Placement{}, false
}

// =============================================================================
// Private Methods
// =============================================================================

// reflow computes placements for the bucket. When onlyID is non-empty the
// computation is identical but only that item is persisted and applied.
func (e *SlotLayoutEngine) reflow(date, slotBase string, strictOnly bool, onlyID string) []Placement {
	base := timeformat.MinutesOfDay(slotBase)
	if base < 0 {
		e.log.Debugf("Reflow skipped: bad slot base %q", slotBase)
		return nil
	}

	candidates := e.candidates(date, slotBase, base, strictOnly)
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Type != candidates[j].Type {
			return candidates[i].Type < candidates[j].Type
		}
		if candidates[i].Title != candidates[j].Title {
			return candidates[i].Title < candidates[j].Title
		}
		return candidates[i].ID < candidates[j].ID
	})

	duration := longDurationMinutes
	if len(candidates) >= denseBucketThreshold {
		duration = shortDurationMinutes
	}

	placements := make([]Placement, 0, len(candidates))
	offset := 0
	for _, r := range candidates {
		startMins := base + offset
		placement := Placement{
			ID:    r.ID,
			Start: timeformat.ClockFromMinutes(startMins),
			End:   timeformat.ClockFromMinutes(startMins + duration),
		}
		placements = append(placements, placement)
		offset += duration + itemGapMinutes

		if onlyID != "" && r.ID != onlyID {
			continue
		}
		e.apply(r.ID, date, placement, slotBase)
	}

	return placements
}

// candidates selects the bucket's eligible reservations: stamped matches
// first, with an unstamped same-window fallback covering items that have
// not been through a reflow yet.
func (e *SlotLayoutEngine) candidates(date, slotBase string, base int, strictOnly bool) []*entity.Reservation {
	var out []*entity.Reservation
	for _, r := range e.store.SnapshotByDate(date) {
		if !r.IsLayoutEligible() {
			continue
		}
		if r.TimeSlotBase == slotBase {
			out = append(out, r)
			continue
		}
		if strictOnly || r.TimeSlotBase != "" {
			continue
		}
		startMins := timeformat.MinutesOfDay(r.Start)
		if startMins >= base && startMins < base+e.windowMinutes {
			out = append(out, r)
		}
	}
	return out
}

func (e *SlotLayoutEngine) apply(id, date string, p Placement, slotBase string) {
	e.store.Update(id, func(r *entity.Reservation) {
		r.Start = p.Start
		r.End = p.End
		r.TimeSlotBase = slotBase
	})
	if e.applier != nil {
		e.applier.ApplyPlacement(id, date, p.Start, p.End, slotBase)
	}
}
