package usecase

import (
	"context"
	"errors"
	"time"

	"go-reservation-board/internal/delivery/dto"
	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/domain/gateway"
	"go-reservation-board/internal/service"
	"go-reservation-board/internal/store"
	"go-reservation-board/pkg/timeformat"

	"github.com/sirupsen/logrus"
)

var (
	ErrDragInFlight   = errors.New("reservation already has a modification in flight")
	ErrDragSuppressed = errors.New("board is suppressing gestures")
	ErrVacationDay    = errors.New("drop date is a vacation day")
)

// gestureSettleWindow keeps new gestures out while the placements from a
// completed drop are still being re-applied to the view.
const gestureSettleWindow = 250 * time.Millisecond

type CalendarDnDUsecase interface {
	HandleDrop(ctx context.Context, req *dto.DragDropRequest) error
}

type calendarDnDUsecase struct {
	log       *logrus.Logger
	grid      entity.SlotGrid
	echo      *service.LocalEchoManager
	guard     *service.InFlightGuard
	store     *store.BoardStore
	layout    *service.SlotLayoutEngine
	modify    ReservationModifyUsecase
	hooks     gateway.BoardHooks
	vacations map[string]struct{}
}

func NewCalendarDnDUsecase(
	log *logrus.Logger,
	grid entity.SlotGrid,
	echo *service.LocalEchoManager,
	guard *service.InFlightGuard,
	boardStore *store.BoardStore,
	layout *service.SlotLayoutEngine,
	modify ReservationModifyUsecase,
	hooks gateway.BoardHooks,
	vacationDates []string,
) CalendarDnDUsecase {
	vacations := make(map[string]struct{}, len(vacationDates))
	for _, d := range vacationDates {
		vacations[d] = struct{}{}
	}
	return &calendarDnDUsecase{
		log:       log,
		grid:      grid,
		echo:      echo,
		guard:     guard,
		store:     boardStore,
		layout:    layout,
		modify:    modify,
		hooks:     hooks,
		vacations: vacations,
	}
}

// HandleDrop composes the modify protocol for a drag gesture: guard
// checks, suppression held for the gesture, dual-slot reflow, and an
// exact intra-slot offset for the moved item instead of the raw drop
// coordinates.
func (u *calendarDnDUsecase) HandleDrop(ctx context.Context, req *dto.DragDropRequest) error {
	if u.guard.InFlight(req.EventID) {
		u.log.Debugf("Drop for %s aborted: modify in flight", req.EventID)
		u.hooks.RevertDrag(req.EventID)
		return ErrDragInFlight
	}
	if u.echo.SuppressionDeadlineActive() {
		u.log.Debugf("Drop for %s aborted: suppression deadline active", req.EventID)
		u.hooks.RevertDrag(req.EventID)
		return ErrDragSuppressed
	}

	toDate := timeformat.DateOnly(req.ToDate)
	if _, vacation := u.vacations[toDate]; vacation {
		u.log.Debugf("Drop for %s aborted: %s is a vacation day", req.EventID, toDate)
		u.hooks.RevertDrag(req.EventID)
		return ErrVacationDay
	}

	var err error
	u.echo.WithSuppressedEventChange(func() {
		err = u.performDrop(ctx, req, toDate)
	})
	return err
}

func (u *calendarDnDUsecase) performDrop(ctx context.Context, req *dto.DragDropRequest, toDate string) error {
	toTime := timeformat.To24h(req.ToTime)
	slotBase := u.grid.NormalizeToSlotBase(toDate, toTime)

	err := u.modify.Modify(ctx, &dto.ModifyReservationRequest{
		EventID:    req.EventID,
		CustomerID: req.CustomerID,
		Date:       toDate,
		Time:       toTime,
		Title:      req.Title,
		Type:       req.Type,
	})
	if err != nil {
		u.hooks.RevertDrag(req.EventID)
		return err
	}

	// Modify reflowed both buckets; the moved item still sits wherever the
	// drop left it, so fix its exact offset inside the destination slot.
	if _, placed := u.layout.ReflowMoved(toDate, slotBase, req.EventID); !placed {
		u.log.Debugf("Moved item %s not yet in bucket (%s %s); offset skipped", req.EventID, toDate, slotBase)
	}

	u.echo.SuppressUntil(time.Now().Add(gestureSettleWindow))

	return nil
}
