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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingFields  = errors.New("missing required fields")
	ErrInvalidDate    = errors.New("invalid date format, use YYYY-MM-DD")
	ErrModifyInFlight = errors.New("a modification for this reservation is already in flight")
	ErrModifyRejected = errors.New("modification rejected by backend")
)

const errorToastDuration = 5 * time.Second

type ReservationModifyUsecase interface {
	Modify(ctx context.Context, req *dto.ModifyReservationRequest) error
}

type reservationModifyUsecase struct {
	log         *logrus.Logger
	validate    *validator.CustomValidator
	grid        entity.SlotGrid
	echo        *service.LocalEchoManager
	guard       *service.InFlightGuard
	store       *store.BoardStore
	integration *service.CalendarIntegrationService
	layout      *service.SlotLayoutEngine
	socket      *transport.WebSocketService
	notifier    gateway.Notifier
	hooks       gateway.BoardHooks
	echoTTL     time.Duration
}

func NewReservationModifyUsecase(
	log *logrus.Logger,
	validate *validator.CustomValidator,
	grid entity.SlotGrid,
	echo *service.LocalEchoManager,
	guard *service.InFlightGuard,
	boardStore *store.BoardStore,
	integration *service.CalendarIntegrationService,
	layout *service.SlotLayoutEngine,
	socket *transport.WebSocketService,
	notifier gateway.Notifier,
	hooks gateway.BoardHooks,
	echoTTL time.Duration,
) ReservationModifyUsecase {
	return &reservationModifyUsecase{
		log:         log,
		validate:    validate,
		grid:        grid,
		echo:        echo,
		guard:       guard,
		store:       boardStore,
		integration: integration,
		layout:      layout,
		socket:      socket,
		notifier:    notifier,
		hooks:       hooks,
		echoTTL:     echoTTL,
	}
}

// Modify runs the shared protocol for an existing reservation: validate,
// pre-mark echo keys, apply the optimistic mutation, send, reconcile.
// On backend rejection the optimistic state is left in place; a later
// broadcast corrects it. This is documented current behavior, not a
// rollback waiting to be written.
func (u *reservationModifyUsecase) Modify(ctx context.Context, req *dto.ModifyReservationRequest) error {
	if err := u.validate.Validate(req); err != nil {
		fields := u.validate.MissingFields(err)
		u.notifier.Error("Reservation update failed",
			"Missing required fields: "+validator.JoinFields(fields), errorToastDuration)
		return ErrMissingFields
	}

	customerID := entity.NormalizeCustomerID(req.CustomerID)
	date := timeformat.DateOnly(req.Date)
	if date == "" {
		u.notifier.Error("Reservation update failed", "Invalid date", errorToastDuration)
		return ErrInvalidDate
	}
	hhmm := timeformat.To24h(req.Time)
	slotBase := u.grid.NormalizeToSlotBase(date, hhmm)
	typeCode := entity.ParseType(req.Type)

	if !u.guard.Begin(req.EventID) {
		u.log.Debugf("Modify for %s blocked: already in flight", req.EventID)
		return ErrModifyInFlight
	}
	defer u.guard.End(req.EventID)

	prev, known := u.store.Get(req.EventID)

	// Pre-mark before the send: the broadcast can outrun our own response.
	keys := append(
		service.ModifyEchoKeys(req.EventID, customerID, date, hhmm),
		service.ModifyEchoKeys(req.EventID, customerID, date, slotBase)...,
	)
	u.echo.MarkAll(keys, u.echoTTL)

	updated := &entity.Reservation{
		ID:           req.EventID,
		CustomerID:   customerID,
		Date:         date,
		Start:        hhmm,
		TimeSlotBase: slotBase,
		Type:         typeCode,
		Title:        req.Title,
		Cancelled:    false,
	}
	if known && updated.Title == "" {
		updated.Title = prev.Title
	}
	u.store.Upsert(updated)
	u.integration.ApplyOptimisticModify(updated)

	result := u.socket.ModifyReservation(ctx, gateway.ModifyParams{
		ID:         req.EventID,
		CustomerID: customerID,
		Date:       date,
		Time:       hhmm,
		Title:      updated.Title,
		Type:       typeCode,
		ClientRef:  uuid.NewString(),
	})

	if !result.Success {
		reason := result.Reason("Could not update the reservation")
		u.log.Warnf("Modify %s rejected: %s", req.EventID, reason)
		u.notifier.Error("Reservation update failed", reason, errorToastDuration)
		return ErrModifyRejected
	}

	mctx := entity.ModificationContext{
		CustomerID: customerID,
		Name:       updated.Title,
		NewDate:    date,
		NewTime:    hhmm,
		NewType:    typeCode,
	}
	if known {
		mctx.PrevDate = prev.Date
		mctx.PrevTime = prev.Start
		mctx.PrevType = prev.Type
	}
	u.echo.StoreModificationContext(req.EventID, mctx)

	if known && prev.TimeSlotBase != "" && (prev.Date != date || prev.TimeSlotBase != slotBase) {
		u.layout.Reflow(prev.Date, prev.TimeSlotBase)
	}
	u.layout.Reflow(date, slotBase)

	if confirmed, ok := u.store.Get(req.EventID); ok {
		u.hooks.ReservationReconciled(confirmed)
	}
	u.notifier.ModifySucceeded(mctx)

	return nil
}
