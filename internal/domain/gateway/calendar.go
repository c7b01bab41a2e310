package gateway

import "go-reservation-board/internal/domain/entity"

// EventHandle is an opaque handle on a rendered calendar event. All
// mutations are advisory: an unmounted or reset view may ignore them.
type EventHandle interface {
	ID() string
	SetProp(name string, value any)
	SetExtendedProp(name string, value any)
	SetDates(date, start, end string)
	MoveStart(deltaMinutes int)
}

// CalendarAPI is the narrow capability interface the engine consumes.
// The core never depends on a concrete rendering widget.
type CalendarAPI interface {
	EventByID(id string) (EventHandle, bool)
	AddEvent(r *entity.Reservation) (EventHandle, bool)
	RemoveEvent(id string)
}

// BoardHooks receives engine decisions the owning view must react to.
type BoardHooks interface {
	// ReservationReconciled tells the view its store entry for r has been
	// confirmed and reflowed.
	ReservationReconciled(r *entity.Reservation)
	// RevertDrag snaps a dragged event back to its pre-gesture position.
	RevertDrag(eventID string)
}
