package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/domain/gateway"
	"go-reservation-board/internal/infrastructure/transport"
	"go-reservation-board/internal/service"
	"go-reservation-board/internal/store"
	"go-reservation-board/pkg/outcome"
	"go-reservation-board/pkg/validator"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeNotifier struct {
	mu           sync.Mutex
	errorBodies  []string
	modifyCalls  []entity.ModificationContext
	createCalls  int
	cancelCalls  int
	cancelTitles []string
}

func (n *fakeNotifier) Error(title, body string, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errorBodies = append(n.errorBodies, body)
}

func (n *fakeNotifier) CreateSucceeded(name, date, hhmm string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.createCalls++
}

func (n *fakeNotifier) ModifySucceeded(ctx entity.ModificationContext) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.modifyCalls = append(n.modifyCalls, ctx)
}

func (n *fakeNotifier) CancelSucceeded(name, date string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelCalls++
	n.cancelTitles = append(n.cancelTitles, name)
}

type fakeHooks struct {
	reconciled []*entity.Reservation
	reverted   []string
}

func (h *fakeHooks) ReservationReconciled(r *entity.Reservation) {
	h.reconciled = append(h.reconciled, r)
}

func (h *fakeHooks) RevertDrag(eventID string) {
	h.reverted = append(h.reverted, eventID)
}

type fakeBackend struct {
	result        outcome.Outcome
	modifyParams  []gateway.ModifyParams
	cancelParams  []gateway.CancelParams
	reserveParams []gateway.ReserveParams
}

func (b *fakeBackend) ModifyReservation(ctx context.Context, params gateway.ModifyParams) outcome.Outcome {
	b.modifyParams = append(b.modifyParams, params)
	return b.result
}

func (b *fakeBackend) CancelReservation(ctx context.Context, params gateway.CancelParams) outcome.Outcome {
	b.cancelParams = append(b.cancelParams, params)
	return b.result
}

func (b *fakeBackend) ReserveTimeSlot(ctx context.Context, params gateway.ReserveParams) outcome.Outcome {
	b.reserveParams = append(b.reserveParams, params)
	return b.result
}

// fakeCalendar renders nothing; every lookup misses. Integration calls are
// advisory, so the pipeline must behave identically either way.
type fakeCalendar struct{}

func (fakeCalendar) EventByID(id string) (gateway.EventHandle, bool)            { return nil, false }
func (fakeCalendar) AddEvent(r *entity.Reservation) (gateway.EventHandle, bool) { return nil, false }
func (fakeCalendar) RemoveEvent(id string)                                      {}

// =============================================================================
// Harness
// =============================================================================

type harness struct {
	backend  *fakeBackend
	notifier *fakeNotifier
	hooks    *fakeHooks
	echo     *service.LocalEchoManager
	guard    *service.InFlightGuard
	store    *store.BoardStore
	layout   *service.SlotLayoutEngine
	grid     entity.SlotGrid

	create ReservationCreateUsecase
	modify ReservationModifyUsecase
	cancel ReservationCancelUsecase
	dnd    CalendarDnDUsecase
}

func newHarness(t *testing.T, vacationDates ...string) *harness {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	h := &harness{
		backend:  &fakeBackend{result: outcome.OK("")},
		notifier: &fakeNotifier{},
		hooks:    &fakeHooks{},
		guard:    service.NewInFlightGuard(),
		store:    store.NewBoardStore(),
		grid:     entity.SlotGrid{SlotMinutes: 120, DayStart: "09:00", DayEnd: "21:00"},
	}
	h.echo = service.NewLocalEchoManager(log)
	t.Cleanup(h.echo.Stop)

	validate := validator.NewValidator()
	integration := service.NewCalendarIntegrationService(log, h.echo, fakeCalendar{})
	h.layout = service.NewSlotLayoutEngine(log, h.store, h.grid, integration, 120)

	// No conn is ever attached, so socket-first operations land on the fake
	// backend through the fallback path.
	socket := transport.NewWebSocketService(log, h.backend, 50*time.Millisecond)
	t.Cleanup(socket.Stop)

	h.create = NewReservationCreateUsecase(log, validate, h.grid, h.echo, h.store, integration, h.layout, h.backend, h.notifier, h.hooks, 15*time.Second)
	h.modify = NewReservationModifyUsecase(log, validate, h.grid, h.echo, h.guard, h.store, integration, h.layout, socket, h.notifier, h.hooks, 15*time.Second)
	h.cancel = NewReservationCancelUsecase(log, validate, h.echo, h.store, integration, h.layout, socket, h.notifier, h.hooks, 8*time.Second)
	h.dnd = NewCalendarDnDUsecase(log, h.grid, h.echo, h.guard, h.store, h.layout, h.modify, h.hooks, vacationDates)

	return h
}

func (h *harness) seed(id, customerID, date, start, slotBase, title string) {
	h.store.Upsert(&entity.Reservation{
		ID:           id,
		CustomerID:   customerID,
		Date:         date,
		Start:        start,
		TimeSlotBase: slotBase,
		Type:         entity.TypeCheckup,
		Title:        title,
	})
}
