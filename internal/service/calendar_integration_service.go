package service

import (
	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/domain/gateway"

	"github.com/sirupsen/logrus"
)

// CalendarIntegrationService translates engine decisions into calls on the
// opaque calendar capability interface. Every mutation runs inside the
// suppression scope so the view's own change handler no-ops instead of
// re-entering the pipeline, and every failure (unmounted view, unknown
// event) is advisory.
type CalendarIntegrationService struct {
	log      *logrus.Logger
	echo     *LocalEchoManager
	calendar gateway.CalendarAPI
}

func NewCalendarIntegrationService(
	log *logrus.Logger,
	echo *LocalEchoManager,
	calendar gateway.CalendarAPI,
) *CalendarIntegrationService {
	return &CalendarIntegrationService{
		log:      log,
		echo:     echo,
		calendar: calendar,
	}
}

// ApplyPlacement pushes a computed layout interval onto the rendered
// event and stamps its bucket metadata.
func (s *CalendarIntegrationService) ApplyPlacement(id, date, start, end, slotBase string) {
	handle, ok := s.calendar.EventByID(id)
	if !ok {
		s.log.Debugf("Placement for %s dropped: event not rendered", id)
		return
	}
	s.echo.WithSuppressedEventChange(func() {
		handle.SetDates(date, start, end)
		handle.SetExtendedProp("timeSlotBase", slotBase)
	})
}

// ApplyOptimisticModify mirrors a pending modification onto the rendered
// event before the backend confirms it.
func (s *CalendarIntegrationService) ApplyOptimisticModify(r *entity.Reservation) {
	handle, ok := s.calendar.EventByID(r.ID)
	if !ok {
		s.log.Debugf("Optimistic modify for %s dropped: event not rendered", r.ID)
		return
	}
	s.echo.WithSuppressedEventChange(func() {
		handle.SetProp("title", r.Title)
		handle.SetExtendedProp("type", int(r.Type))
		handle.SetExtendedProp("cancelled", r.Cancelled)
		handle.SetDates(r.Date, r.Start, r.End)
	})
}

// AddReservation renders a newly materialized reservation.
func (s *CalendarIntegrationService) AddReservation(r *entity.Reservation) {
	s.echo.WithSuppressedEventChange(func() {
		if _, ok := s.calendar.AddEvent(r); !ok {
			s.log.Debugf("Add for %s dropped by calendar", r.ID)
		}
	})
}

// RemoveReservation removes the rendered event if present.
func (s *CalendarIntegrationService) RemoveReservation(id string) {
	s.echo.WithSuppressedEventChange(func() {
		s.calendar.RemoveEvent(id)
	})
}

// MarkCancelled flags the rendered event cancelled without removing it.
func (s *CalendarIntegrationService) MarkCancelled(id string) {
	handle, ok := s.calendar.EventByID(id)
	if !ok {
		s.log.Debugf("Cancel flag for %s dropped: event not rendered", id)
		return
	}
	s.echo.WithSuppressedEventChange(func() {
		handle.SetExtendedProp("cancelled", true)
	})
}
