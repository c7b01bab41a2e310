package transport

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go-reservation-board/internal/converter"
	"go-reservation-board/internal/delivery/dto"
	"go-reservation-board/internal/domain/gateway"
	"go-reservation-board/pkg/outcome"
	"go-reservation-board/pkg/timeformat"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultConfirmTimeout bounds the wait for an ack, nack or matching
	// broadcast after a successful send.
	DefaultConfirmTimeout = 10 * time.Second

	// Per-subscriber buffer on the inbound fan-out
	subscriberBuffer = 16
)

// =============================================================================
// Types
// =============================================================================

// Conn is the subset of *websocket.Conn the service depends on; tests
// inject fakes.
type Conn interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// ConfirmationRequest identifies which inbound events settle a pending
// modify. A broadcast matches on reservation id, or on the (customer,
// date) pair for backend paths that broadcast without a narrow ack.
type ConfirmationRequest struct {
	ReservationID string
	CustomerID    string
	Date          string
	Time          string
	Timeout       time.Duration
}

// WebSocketService is the socket-first transport: operations go over the
// live socket when one is attached and fall back to HTTP otherwise. The
// inbound side decodes realtime frames and fans them out to subscribers
// (confirmation waiters and the board dispatcher).
type WebSocketService struct {
	log            *logrus.Logger
	fallback       gateway.BackendAPI
	confirmTimeout time.Duration

	connMu  sync.Mutex
	conn    Conn
	writeMu sync.Mutex

	subMu   sync.Mutex
	nextSub int
	subs    map[int]chan dto.RealtimeMessage

	wg      sync.WaitGroup
	stopped atomic.Bool
}

// =============================================================================
// Constructor
// =============================================================================

func NewWebSocketService(log *logrus.Logger, fallback gateway.BackendAPI, confirmTimeout time.Duration) *WebSocketService {
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	return &WebSocketService{
		log:            log,
		fallback:       fallback,
		confirmTimeout: confirmTimeout,
		subs:           make(map[int]chan dto.RealtimeMessage),
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

// Attach adopts an externally-managed open socket and starts its read
// loop. A previously attached conn is closed so its read loop unblocks
// and winds down instead of waiting in ReadMessage forever.
func (s *WebSocketService) Attach(conn Conn) {
	s.connMu.Lock()
	prev := s.conn
	s.conn = conn
	s.connMu.Unlock()

	if prev != nil && prev != conn {
		prev.Close()
	}

	s.wg.Add(1)
	go s.readLoop(conn)
}

// Stop closes the current conn and waits for read loops to finish.
func (s *WebSocketService) Stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()
	s.wg.Wait()
}

// =============================================================================
// Outbound
// =============================================================================

// SendMessage writes one frame. True iff a live conn is attached and the
// write succeeds; false on every other condition, including a panicking
// conn. It never returns an error upward.
func (s *WebSocketService) SendMessage(msg dto.SocketMessage) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warnf("Socket send panicked: %+v", r)
			sent = false
		}
	}()

	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()
	if conn == nil {
		return false
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Debugf("Socket send failed: %+v", err)
		return false
	}
	return true
}

// ModifyReservation sends modify_reservation over the socket and awaits
// confirmation; when the send itself fails it goes straight to the HTTP
// fallback and returns its response. The confirmation subscription is
// registered before the write: an ack or broadcast can arrive while the
// send is still in flight, and a subscriber registered afterwards would
// miss it.
func (s *WebSocketService) ModifyReservation(ctx context.Context, params gateway.ModifyParams) outcome.Outcome {
	msg := dto.SocketMessage{
		Type: dto.MessageModifyReservation,
		Data: converter.ModifyParamsToPayload(params),
	}

	id, ch := s.subscribe()
	defer s.unsubscribe(id)

	if !s.SendMessage(msg) {
		s.log.Debugf("Socket unavailable for modify %s, using HTTP fallback", params.ID)
		return s.fallback.ModifyReservation(ctx, params)
	}

	return s.awaitConfirmation(ch, ConfirmationRequest{
		ReservationID: params.ID,
		CustomerID:    params.CustomerID,
		Date:          params.Date,
		Time:          params.Time,
	})
}

// CancelReservation sends cancel_reservation socket-first with HTTP
// fallback. Unlike modify, a successful send alone counts as
// confirmation; there is no cancel ack to wait for.
func (s *WebSocketService) CancelReservation(ctx context.Context, customerID string, params gateway.CancelParams) outcome.Outcome {
	msg := dto.SocketMessage{
		Type: dto.MessageCancelReservation,
		Data: converter.CancelParamsToPayload(customerID, params),
	}
	if s.SendMessage(msg) {
		return outcome.OK(params.ID)
	}
	s.log.Debugf("Socket unavailable for cancel %s, using HTTP fallback", params.ID)
	return s.fallback.CancelReservation(ctx, params)
}

// CustomerSearch sends a customer_search query. Fire-and-forget; results
// come back on the realtime stream. An empty query is not sent.
func (s *WebSocketService) CustomerSearch(req dto.CustomerSearchRequest) bool {
	if req.Query == "" {
		return false
	}
	return s.SendMessage(dto.SocketMessage{
		Type: dto.MessageCustomerSearch,
		Data: map[string]any{"query": req.Query},
	})
}

// =============================================================================
// Confirmation wait
// =============================================================================

// WaitForConfirmation blocks on the inbound stream until an ack, a nack,
// a matching broadcast, or the timeout. The subscription is registered on
// entry and removed on every resolution path; ModifyReservation opens its
// subscription earlier so frames racing the send are covered too.
func (s *WebSocketService) WaitForConfirmation(req ConfirmationRequest) outcome.Outcome {
	id, ch := s.subscribe()
	defer s.unsubscribe(id)
	return s.awaitConfirmation(ch, req)
}

// awaitConfirmation drains ch until a settling frame or the timeout. The
// caller owns the subscription.
func (s *WebSocketService) awaitConfirmation(ch <-chan dto.RealtimeMessage, req ConfirmationRequest) outcome.Outcome {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.confirmTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case msg := <-ch:
			switch msg.Type {
			case dto.EventModifyAck:
				return outcome.OK(msg.Data.ID)
			case dto.EventModifyNack:
				return outcome.Fail(nackReason(msg))
			case dto.EventReservationUpdated, dto.EventReservationReinstated:
				if confirmationMatches(req, msg.Data) {
					return outcome.OK(msg.Data.ID)
				}
			}
		case <-timer.C:
			return outcome.Fail("Request timeout")
		}
	}
}

// Subscribe returns the inbound realtime stream and a cancel func. Used
// by the board dispatcher; confirmation waiters subscribe internally.
func (s *WebSocketService) Subscribe() (<-chan dto.RealtimeMessage, func()) {
	id, ch := s.subscribe()
	return ch, func() { s.unsubscribe(id) }
}

// =============================================================================
// Private helpers
// =============================================================================

func (s *WebSocketService) readLoop(conn Conn) {
	defer s.wg.Done()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.connMu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.connMu.Unlock()
			if !s.stopped.Load() {
				s.log.Warnf("Socket read loop ended: %+v", err)
			}
			return
		}

		var msg dto.RealtimeMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.log.Debugf("Undecodable realtime frame dropped: %+v", err)
			continue
		}
		s.fanout(msg)
	}
}

func (s *WebSocketService) fanout(msg dto.RealtimeMessage) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- msg:
		default:
			s.log.Debugf("Subscriber %d lagging, frame dropped", id)
		}
	}
}

func (s *WebSocketService) subscribe() (int, chan dto.RealtimeMessage) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	ch := make(chan dto.RealtimeMessage, subscriberBuffer)
	s.subs[id] = ch
	return id, ch
}

func (s *WebSocketService) unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	delete(s.subs, id)
}

func confirmationMatches(req ConfirmationRequest, data dto.ReservationEventData) bool {
	if req.ReservationID != "" && data.ID == req.ReservationID {
		return true
	}
	if req.CustomerID == "" {
		return false
	}
	return data.CustomerID == req.CustomerID && timeformat.DateOnly(data.Date) == req.Date
}

func nackReason(msg dto.RealtimeMessage) string {
	if msg.Data.Message != "" {
		return msg.Data.Message
	}
	if msg.Error != "" {
		return msg.Error
	}
	return "Request rejected"
}
