package service

import (
	"sync"
	"testing"
	"time"

	"go-reservation-board/internal/delivery/dto"
	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/domain/gateway"
	"go-reservation-board/internal/store"

	"github.com/sirupsen/logrus"
)

type countingNotifier struct {
	mu          sync.Mutex
	errors      int
	creates     int
	modifies    []entity.ModificationContext
	cancels     int
	cancelNames []string
}

func (n *countingNotifier) Error(title, body string, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors++
}

func (n *countingNotifier) CreateSucceeded(name, date, hhmm string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.creates++
}

func (n *countingNotifier) ModifySucceeded(ctx entity.ModificationContext) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.modifies = append(n.modifies, ctx)
}

func (n *countingNotifier) CancelSucceeded(name, date string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancels++
	n.cancelNames = append(n.cancelNames, name)
}

type nullCalendar struct{}

func (nullCalendar) EventByID(id string) (gateway.EventHandle, bool)            { return nil, false }
func (nullCalendar) AddEvent(r *entity.Reservation) (gateway.EventHandle, bool) { return nil, false }
func (nullCalendar) RemoveEvent(id string)                                      {}

func newTestDispatcher(t *testing.T) (*RealtimeDispatcher, *store.BoardStore, *LocalEchoManager, *countingNotifier) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	boardStore := store.NewBoardStore()
	echo := NewLocalEchoManager(log)
	t.Cleanup(echo.Stop)
	notifier := &countingNotifier{}
	grid := entity.SlotGrid{SlotMinutes: 120, DayStart: "09:00", DayEnd: "21:00"}
	integration := NewCalendarIntegrationService(log, echo, nullCalendar{})
	layout := NewSlotLayoutEngine(log, boardStore, grid, integration, 120)

	return NewRealtimeDispatcher(log, echo, boardStore, integration, layout, notifier, grid), boardStore, echo, notifier
}

func TestDispatcherSkipsLocalEcho(t *testing.T) {
	dispatcher, boardStore, echo, notifier := newTestDispatcher(t)
	echo.MarkAll(ModifyEchoKeys("ev-1", "966501234567", "2025-03-10", "11:00"), time.Minute)

	dispatcher.Handle(dto.RealtimeMessage{
		Type: dto.EventReservationUpdated,
		Data: dto.ReservationEventData{
			ID:         "ev-1",
			CustomerID: "966501234567",
			Date:       "2025-03-10",
			Time:       "11:00",
		},
	})

	if boardStore.Len() != 0 {
		t.Error("echoed broadcast mutated the store")
	}
	if len(notifier.modifies) != 0 {
		t.Error("echoed broadcast produced a toast")
	}
}

func TestDispatcherAppliesRemoteCreate(t *testing.T) {
	dispatcher, boardStore, _, notifier := newTestDispatcher(t)

	dispatcher.Handle(dto.RealtimeMessage{
		Type: dto.EventReservationCreated,
		Data: dto.ReservationEventData{
			ID:         "ev-9",
			CustomerID: "966509999999",
			Date:       "2025-03-10",
			Time:       "12:45",
			Name:       "Huda",
		},
	})

	got, ok := boardStore.Get("ev-9")
	if !ok {
		t.Fatal("remote create not stored")
	}
	if got.TimeSlotBase != "11:00" {
		t.Errorf("TimeSlotBase = %q, want stamped to 11:00", got.TimeSlotBase)
	}
	if got.Start != "11:00" {
		t.Errorf("Start = %q, want laid out at the bucket base", got.Start)
	}
	if got.Title != "Huda" {
		t.Errorf("Title = %q, want the broadcast name", got.Title)
	}
	if notifier.creates != 1 {
		t.Errorf("create toasts = %d, want 1", notifier.creates)
	}
}

func TestDispatcherRemoteUpdateMovesBuckets(t *testing.T) {
	dispatcher, boardStore, _, notifier := newTestDispatcher(t)
	boardStore.Upsert(&entity.Reservation{
		ID: "ev-1", CustomerID: "966501234567", Date: "2025-03-10",
		Start: "09:00", TimeSlotBase: "09:00", Title: "Mona",
	})
	boardStore.Upsert(&entity.Reservation{
		ID: "ev-2", CustomerID: "966502222222", Date: "2025-03-10",
		Start: "09:21", TimeSlotBase: "09:00", Title: "Amal",
	})

	dispatcher.Handle(dto.RealtimeMessage{
		Type: dto.EventReservationUpdated,
		Data: dto.ReservationEventData{
			ID:   "ev-1",
			Date: "2025-03-10",
			Time: "13:10",
		},
	})

	moved, _ := boardStore.Get("ev-1")
	if moved.TimeSlotBase != "13:00" {
		t.Errorf("moved base = %q, want 13:00", moved.TimeSlotBase)
	}
	// Sparse payload kept the known title.
	if moved.Title != "Mona" {
		t.Errorf("Title = %q, want preserved through the merge", moved.Title)
	}
	// Origin bucket re-packed.
	stayed, _ := boardStore.Get("ev-2")
	if stayed.Start != "09:00" {
		t.Errorf("origin remaining start = %s, want 09:00", stayed.Start)
	}
	if len(notifier.modifies) != 1 {
		t.Errorf("modify toasts = %d, want 1", len(notifier.modifies))
	}
}

func TestDispatcherSparseUpdateKeepsType(t *testing.T) {
	dispatcher, boardStore, _, _ := newTestDispatcher(t)
	boardStore.Upsert(&entity.Reservation{
		ID: "ev-1", Date: "2025-03-10", Start: "11:00",
		TimeSlotBase: "11:00", Type: entity.TypeFollowup, Title: "Mona",
	})

	// No type field at all; decoding yields the zero code either way.
	dispatcher.Handle(dto.RealtimeMessage{
		Type: dto.EventReservationUpdated,
		Data: dto.ReservationEventData{ID: "ev-1", Date: "2025-03-10", Time: "11:05"},
	})

	got, _ := boardStore.Get("ev-1")
	if got.Type != entity.TypeFollowup {
		t.Errorf("Type = %v after sparse update, want followup preserved", got.Type)
	}

	// A payload that does carry a type still applies it.
	dispatcher.Handle(dto.RealtimeMessage{
		Type: dto.EventReservationUpdated,
		Data: dto.ReservationEventData{ID: "ev-1", Date: "2025-03-10", Time: "11:05", Type: dto.LooseValue("2")},
	})

	got, _ = boardStore.Get("ev-1")
	if got.Type != entity.TypeOther {
		t.Errorf("Type = %v after explicit update, want other", got.Type)
	}
}

func TestDispatcherReinstateClearsCancelledFlag(t *testing.T) {
	dispatcher, boardStore, _, _ := newTestDispatcher(t)
	boardStore.Upsert(&entity.Reservation{
		ID: "ev-1", Date: "2025-03-10", Start: "11:00",
		TimeSlotBase: "11:00", Title: "Mona", Cancelled: true,
	})

	dispatcher.Handle(dto.RealtimeMessage{
		Type: dto.EventReservationReinstated,
		Data: dto.ReservationEventData{ID: "ev-1", Date: "2025-03-10", Time: "11:00"},
	})

	got, _ := boardStore.Get("ev-1")
	if got.IsCancelled() {
		t.Error("reinstated reservation still flagged cancelled")
	}
}

func TestDispatcherRemoteCancelRemovesAndReflows(t *testing.T) {
	dispatcher, boardStore, _, notifier := newTestDispatcher(t)
	boardStore.Upsert(&entity.Reservation{
		ID: "ev-1", Date: "2025-03-10", Start: "11:00",
		TimeSlotBase: "11:00", Title: "Mona",
	})
	boardStore.Upsert(&entity.Reservation{
		ID: "ev-2", Date: "2025-03-10", Start: "11:21",
		TimeSlotBase: "11:00", Title: "Amal",
	})

	dispatcher.Handle(dto.RealtimeMessage{
		Type: dto.EventReservationCancelled,
		Data: dto.ReservationEventData{ID: "ev-1"},
	})

	if _, ok := boardStore.Get("ev-1"); ok {
		t.Error("cancelled reservation still in store")
	}
	stayed, _ := boardStore.Get("ev-2")
	if stayed.Start != "11:00" {
		t.Errorf("remaining start = %s, want re-packed to 11:00", stayed.Start)
	}
	if notifier.cancels != 1 || notifier.cancelNames[0] != "Mona" {
		t.Errorf("cancel toast = %d %v, want one naming Mona", notifier.cancels, notifier.cancelNames)
	}
}

func TestDispatcherDropsAcksAndUnknownTypes(t *testing.T) {
	dispatcher, boardStore, _, notifier := newTestDispatcher(t)

	dispatcher.Handle(dto.RealtimeMessage{Type: dto.EventModifyAck, Data: dto.ReservationEventData{ID: "ev-1"}})
	dispatcher.Handle(dto.RealtimeMessage{Type: "presence_ping"})
	dispatcher.Handle(dto.RealtimeMessage{Type: dto.EventReservationCreated}) // no id

	if boardStore.Len() != 0 {
		t.Error("control frames mutated the store")
	}
	if notifier.creates != 0 || len(notifier.modifies) != 0 || notifier.cancels != 0 {
		t.Error("control frames produced toasts")
	}
}
