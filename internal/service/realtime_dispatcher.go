package service

import (
	"go-reservation-board/internal/converter"
	"go-reservation-board/internal/delivery/dto"
	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/domain/gateway"
	"go-reservation-board/internal/store"

	"github.com/sirupsen/logrus"
)

// RealtimeDispatcher applies inbound broadcasts to the board. Broadcasts
// reflecting this client's own writes are recognized through the echo
// registry and skipped; everything else mutates the store and calendar,
// reflows the affected buckets and produces a notification.
type RealtimeDispatcher struct {
	log         *logrus.Logger
	echo        *LocalEchoManager
	store       *store.BoardStore
	integration *CalendarIntegrationService
	layout      *SlotLayoutEngine
	notifier    gateway.Notifier
	grid        entity.SlotGrid
}

func NewRealtimeDispatcher(
	log *logrus.Logger,
	echo *LocalEchoManager,
	boardStore *store.BoardStore,
	integration *CalendarIntegrationService,
	layout *SlotLayoutEngine,
	notifier gateway.Notifier,
	grid entity.SlotGrid,
) *RealtimeDispatcher {
	return &RealtimeDispatcher{
		log:         log,
		echo:        echo,
		store:       boardStore,
		integration: integration,
		layout:      layout,
		notifier:    notifier,
		grid:        grid,
	}
}

// Handle processes one inbound realtime message. Never panics; malformed
// or unrecognized frames are logged and dropped.
func (d *RealtimeDispatcher) Handle(msg dto.RealtimeMessage) {
	switch msg.Type {
	case dto.EventModifyAck, dto.EventModifyNack:
		// Consumed by confirmation waiters on the transport.
		return
	case dto.EventReservationCreated,
		dto.EventReservationUpdated,
		dto.EventReservationReinstated,
		dto.EventReservationCancelled:
	default:
		d.log.Debugf("Unrecognized realtime event %q dropped", msg.Type)
		return
	}

	if d.echo.AnyLocalEcho(EchoKeysForEvent(msg.Type, msg.Data)) {
		d.log.Debugf("Suppressed local echo for %s (id=%s)", msg.Type, msg.Data.ID)
		return
	}

	incoming := converter.EventDataToReservation(msg.Data)
	if incoming.ID == "" {
		d.log.Debugf("Broadcast %s without id dropped", msg.Type)
		return
	}

	switch msg.Type {
	case dto.EventReservationCreated:
		d.handleCreated(incoming)
	case dto.EventReservationUpdated, dto.EventReservationReinstated:
		d.handleUpdated(incoming, msg.Data.Type.String() != "")
	case dto.EventReservationCancelled:
		d.handleCancelled(incoming)
	}
}

func (d *RealtimeDispatcher) handleCreated(incoming *entity.Reservation) {
	if incoming.TimeSlotBase == "" {
		incoming.TimeSlotBase = d.grid.NormalizeToSlotBase(incoming.Date, incoming.Start)
	}

	d.store.Upsert(incoming)
	d.integration.AddReservation(incoming)
	d.layout.Reflow(incoming.Date, incoming.TimeSlotBase)
	d.notifier.CreateSucceeded(incoming.Title, incoming.Date, incoming.Start)
}

func (d *RealtimeDispatcher) handleUpdated(incoming *entity.Reservation, hasType bool) {
	prev, known := d.store.Get(incoming.ID)

	merged := incoming
	if known {
		merged = mergeReservation(prev, incoming, hasType)
	}
	newBase := d.grid.NormalizeToSlotBase(merged.Date, merged.Start)
	merged.TimeSlotBase = newBase
	merged.Reinstate()

	d.store.Upsert(merged)
	d.integration.ApplyOptimisticModify(merged)

	if known && prev.TimeSlotBase != "" && (prev.Date != merged.Date || prev.TimeSlotBase != newBase) {
		d.layout.Reflow(prev.Date, prev.TimeSlotBase)
	}
	d.layout.Reflow(merged.Date, newBase)

	d.notifier.ModifySucceeded(d.contextFor(merged, prev, known))
}

func (d *RealtimeDispatcher) handleCancelled(incoming *entity.Reservation) {
	prev, known := d.store.Get(incoming.ID)

	d.store.Update(incoming.ID, func(r *entity.Reservation) { r.Cancel() })
	d.integration.MarkCancelled(incoming.ID)
	d.store.Remove(incoming.ID)
	d.integration.RemoveReservation(incoming.ID)

	date, base, title := incoming.Date, incoming.TimeSlotBase, incoming.Title
	if known {
		date, base, title = prev.Date, prev.TimeSlotBase, prev.Title
	}
	if base != "" {
		d.layout.Reflow(date, base)
	}
	d.notifier.CancelSucceeded(title, date)
}

// contextFor prefers the retained modification context; a broadcast that
// identifies the reservation only partially still yields readable values
// that way.
func (d *RealtimeDispatcher) contextFor(merged, prev *entity.Reservation, known bool) entity.ModificationContext {
	if stored, ok := d.echo.ModificationContextFor(merged.ID); ok {
		return stored
	}
	ctx := entity.ModificationContext{
		CustomerID: merged.CustomerID,
		Name:       merged.Title,
		NewDate:    merged.Date,
		NewTime:    merged.Start,
		NewType:    merged.Type,
	}
	if known {
		ctx.PrevDate = prev.Date
		ctx.PrevTime = prev.Start
		ctx.PrevType = prev.Type
	}
	return ctx
}

// mergeReservation overlays the broadcast's non-empty fields on the known
// state so sparse payloads do not wipe good data. hasType distinguishes a
// payload that really carried type 0 from one that omitted the field, as
// both decode to the zero code.
func mergeReservation(prev, incoming *entity.Reservation, hasType bool) *entity.Reservation {
	merged := *prev
	if incoming.CustomerID != "" {
		merged.CustomerID = incoming.CustomerID
	}
	if incoming.Date != "" {
		merged.Date = incoming.Date
	}
	if incoming.Start != "" {
		merged.Start = incoming.Start
	}
	if incoming.End != "" {
		merged.End = incoming.End
	}
	if incoming.Title != "" {
		merged.Title = incoming.Title
	}
	if incoming.TimeSlotBase != "" {
		merged.TimeSlotBase = incoming.TimeSlotBase
	}
	if hasType {
		merged.Type = incoming.Type
	}
	return &merged
}
