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
	"go-reservation-board/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrCreateRejected = errors.New("reservation rejected by backend")

type ReservationCreateUsecase interface {
	Create(ctx context.Context, req *dto.CreateReservationRequest) error
}

type reservationCreateUsecase struct {
	log         *logrus.Logger
	validate    *validator.CustomValidator
	grid        entity.SlotGrid
	echo        *service.LocalEchoManager
	store       *store.BoardStore
	integration *service.CalendarIntegrationService
	layout      *service.SlotLayoutEngine
	backend     gateway.BackendAPI
	notifier    gateway.Notifier
	hooks       gateway.BoardHooks
	echoTTL     time.Duration
}

func NewReservationCreateUsecase(
	log *logrus.Logger,
	validate *validator.CustomValidator,
	grid entity.SlotGrid,
	echo *service.LocalEchoManager,
	boardStore *store.BoardStore,
	integration *service.CalendarIntegrationService,
	layout *service.SlotLayoutEngine,
	backend gateway.BackendAPI,
	notifier gateway.Notifier,
	hooks gateway.BoardHooks,
	echoTTL time.Duration,
) ReservationCreateUsecase {
	return &reservationCreateUsecase{
		log:         log,
		validate:    validate,
		grid:        grid,
		echo:        echo,
		store:       boardStore,
		integration: integration,
		layout:      layout,
		backend:     backend,
		notifier:    notifier,
		hooks:       hooks,
		echoTTL:     echoTTL,
	}
}

// Create reserves a time slot. There is no optimistic mutation here: the
// reservation is materialized only once the backend confirms it, so a
// failure needs no rollback.
func (u *reservationCreateUsecase) Create(ctx context.Context, req *dto.CreateReservationRequest) error {
	if err := u.validate.Validate(req); err != nil {
		fields := u.validate.MissingFields(err)
		u.notifier.Error("Reservation failed",
			"Missing required fields: "+validator.JoinFields(fields), errorToastDuration)
		return ErrMissingFields
	}

	customerID := entity.NormalizeCustomerID(req.CustomerID)
	date := timeformat.DateOnly(req.Date)
	if date == "" {
		u.notifier.Error("Reservation failed", "Invalid date", errorToastDuration)
		return ErrInvalidDate
	}
	hhmm := timeformat.To24h(req.Time)
	slotBase := u.grid.NormalizeToSlotBase(date, hhmm)
	typeCode := entity.ParseType(req.Type)

	keys := append(
		service.CreateEchoKeys(customerID, date, hhmm),
		service.CreateEchoKeys(customerID, date, slotBase)...,
	)
	u.echo.MarkAll(keys, u.echoTTL)

	result := u.backend.ReserveTimeSlot(ctx, gateway.ReserveParams{
		CustomerID: customerID,
		Date:       date,
		Time:       hhmm,
		Name:       req.Name,
		Type:       typeCode,
		ClientRef:  uuid.NewString(),
	})

	if !result.Success {
		reason := result.Reason("Could not reserve the time slot")
		u.log.Warnf("Create for %s on %s rejected: %s", customerID, date, reason)
		u.notifier.Error("Reservation failed", reason, errorToastDuration)
		return ErrCreateRejected
	}

	id := result.ID
	if id == "" {
		id = uuid.NewString()
	}
	created := &entity.Reservation{
		ID:           id,
		CustomerID:   customerID,
		Date:         date,
		Start:        hhmm,
		TimeSlotBase: slotBase,
		Type:         typeCode,
		Title:        req.Name,
	}
	u.store.Upsert(created)
	u.integration.AddReservation(created)
	u.layout.Reflow(date, slotBase)

	u.echo.StoreModificationContext(id, entity.ModificationContext{
		CustomerID: customerID,
		Name:       req.Name,
		NewDate:    date,
		NewTime:    hhmm,
		NewType:    typeCode,
	})

	if confirmed, ok := u.store.Get(id); ok {
		u.hooks.ReservationReconciled(confirmed)
	}
	u.notifier.CreateSucceeded(req.Name, date, hhmm)

	return nil
}
