package dto

import "encoding/json"

// Outbound socket message types.
const (
	MessageModifyReservation = "modify_reservation"
	MessageCancelReservation = "cancel_reservation"
	MessageCustomerSearch    = "customer_search"
)

// Inbound realtime event types.
const (
	EventModifyAck             = "modify_reservation_ack"
	EventModifyNack            = "modify_reservation_nack"
	EventReservationUpdated    = "reservation_updated"
	EventReservationReinstated = "reservation_reinstated"
	EventReservationCancelled  = "reservation_cancelled"
	EventReservationCreated    = "reservation_created"
)

// SocketMessage is the outbound frame shape.
type SocketMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// RealtimeMessage is the generic inbound frame carried on the realtime
// stream.
type RealtimeMessage struct {
	Type  string               `json:"type"`
	Data  ReservationEventData `json:"data"`
	Error string               `json:"error,omitempty"`
}

// ReservationEventData is the superset of fields observed across the
// recognized broadcast types. Broadcasts are partially identifying:
// any subset of these may be present.
type ReservationEventData struct {
	ID           string     `json:"id"`
	CustomerID   string     `json:"customer_id"`
	Date         string     `json:"date"`
	Time         string     `json:"time"`
	EndTime      string     `json:"end_time"`
	TimeSlotBase string     `json:"time_slot_base"`
	Name         string     `json:"name"`
	Title        string     `json:"title"`
	Type         LooseValue `json:"type"`
	Cancelled    bool       `json:"cancelled"`
	Message      string     `json:"message"`
}

// LooseValue tolerates backends that send a field as either a JSON string
// or a number. Unrecognized shapes decode to empty rather than failing
// the whole frame.
type LooseValue string

func (v *LooseValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = LooseValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*v = LooseValue(n.String())
		return nil
	}
	*v = ""
	return nil
}

func (v LooseValue) String() string {
	return string(v)
}
