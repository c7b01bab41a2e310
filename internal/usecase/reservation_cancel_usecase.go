package usecase

import (
	"context"
	"errors"
	"time"

	"go-reservation-board/internal/delivery/dto"
	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/domain/gateway"
	"go-reservation-board/internal/infrastructure/transport"
	"go-reservation-board/internal/service"
	"go-reservation-board/internal/store"
	"go-reservation-board/pkg/timeformat"
	"go-reservation-board/pkg/validator"

	"github.com/sirupsen/logrus"
)

var ErrCancelRejected = errors.New("cancellation rejected by backend")

type ReservationCancelUsecase interface {
	Cancel(ctx context.Context, req *dto.CancelReservationRequest) error
}

type reservationCancelUsecase struct {
	log           *logrus.Logger
	validate      *validator.CustomValidator
	echo          *service.LocalEchoManager
	store         *store.BoardStore
	integration   *service.CalendarIntegrationService
	layout        *service.SlotLayoutEngine
	socket        *transport.WebSocketService
	notifier      gateway.Notifier
	hooks         gateway.BoardHooks
	strictEchoTTL time.Duration
}

func NewReservationCancelUsecase(
	log *logrus.Logger,
	validate *validator.CustomValidator,
	echo *service.LocalEchoManager,
	boardStore *store.BoardStore,
	integration *service.CalendarIntegrationService,
	layout *service.SlotLayoutEngine,
	socket *transport.WebSocketService,
	notifier gateway.Notifier,
	hooks gateway.BoardHooks,
	strictEchoTTL time.Duration,
) ReservationCancelUsecase {
	return &reservationCancelUsecase{
		log:           log,
		validate:      validate,
		echo:          echo,
		store:         boardStore,
		integration:   integration,
		layout:        layout,
		socket:        socket,
		notifier:      notifier,
		hooks:         hooks,
		strictEchoTTL: strictEchoTTL,
	}
}

// Cancel flags the reservation cancelled optimistically, sends the
// cancellation, and removes the entry once the send is confirmed. Like
// modify, a rejected cancel leaves the optimistic flag in place.
func (u *reservationCancelUsecase) Cancel(ctx context.Context, req *dto.CancelReservationRequest) error {
	if err := u.validate.Validate(req); err != nil {
		fields := u.validate.MissingFields(err)
		u.notifier.Error("Cancellation failed",
			"Missing required fields: "+validator.JoinFields(fields), errorToastDuration)
		return ErrMissingFields
	}

	date := timeformat.DateOnly(req.Date)
	if date == "" {
		u.notifier.Error("Cancellation failed", "Invalid date", errorToastDuration)
		return ErrInvalidDate
	}

	prev, known := u.store.Get(req.EventID)
	customerID := entity.NormalizeCustomerID(req.CustomerID)
	if customerID == "" && known {
		customerID = prev.CustomerID
	}

	// Cancel correlates on fewer fields than modify, so its echo keys get
	// the shorter TTL.
	u.echo.MarkAll(service.CancelEchoKeys(req.EventID, customerID, date), u.strictEchoTTL)

	u.store.Update(req.EventID, func(r *entity.Reservation) { r.Cancel() })
	u.integration.MarkCancelled(req.EventID)

	result := u.socket.CancelReservation(ctx, customerID, gateway.CancelParams{
		ID:        req.EventID,
		Date:      date,
		Localized: req.Localized,
	})

	if !result.Success {
		reason := result.Reason("Could not cancel the reservation")
		u.log.Warnf("Cancel %s rejected: %s", req.EventID, reason)
		u.notifier.Error("Cancellation failed", reason, errorToastDuration)
		return ErrCancelRejected
	}

	u.store.Remove(req.EventID)
	u.integration.RemoveReservation(req.EventID)

	title := ""
	if known {
		title = prev.Title
		if prev.TimeSlotBase != "" {
			u.layout.Reflow(prev.Date, prev.TimeSlotBase)
		}
		u.echo.StoreModificationContext(req.EventID, entity.ModificationContext{
			CustomerID: customerID,
			Name:       prev.Title,
			PrevDate:   prev.Date,
			PrevTime:   prev.Start,
			PrevType:   prev.Type,
		})
		cancelled := *prev
		cancelled.Cancel()
		u.hooks.ReservationReconciled(&cancelled)
	}
	u.notifier.CancelSucceeded(title, date)

	return nil
}
