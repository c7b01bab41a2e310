package entity

import (
	"strconv"
	"strings"
)

// ReservationType is the integer type code carried on the wire.
type ReservationType int

const (
	TypeCheckup  ReservationType = 0
	TypeFollowup ReservationType = 1
	TypeOther    ReservationType = 2

	// TypeConversation marks placeholder/conversation entries that live on
	// the board but are not reservations; the layout engine skips them.
	TypeConversation ReservationType = 9
)

// Reservation is the client's view of a single appointment.
// TimeSlotBase is the floor of the requested time to the slot grid for
// that date; it is the bucket key for layout and broadcast correlation.
type Reservation struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	Date         string          `json:"date"`
	Start        string          `json:"start"`
	End          string          `json:"end"`
	TimeSlotBase string          `json:"time_slot_base"`
	Type         ReservationType `json:"type"`
	Title        string          `json:"title"`
	Cancelled    bool            `json:"cancelled"`
}

// IsCancelled reports whether the reservation is flagged cancelled.
func (r *Reservation) IsCancelled() bool {
	return r.Cancelled
}

// IsLayoutEligible reports whether the reservation participates in slot
// layout: cancelled entries and conversation placeholders do not.
func (r *Reservation) IsLayoutEligible() bool {
	return !r.Cancelled && r.Type != TypeConversation
}

// Cancel flags the reservation cancelled.
func (r *Reservation) Cancel() {
	r.Cancelled = true
}

// Reinstate clears the cancelled flag.
func (r *Reservation) Reinstate() {
	r.Cancelled = false
}

// ParseType maps free-form or localized type values to a type code.
// Unrecognized input defaults to checkup (0).
func ParseType(value string) ReservationType {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return TypeCheckup
	}

	if n, err := strconv.Atoi(v); err == nil {
		switch ReservationType(n) {
		case TypeCheckup, TypeFollowup, TypeOther, TypeConversation:
			return ReservationType(n)
		}
		return TypeCheckup
	}

	switch v {
	case "checkup", "check-up", "check up", "كشف":
		return TypeCheckup
	case "followup", "follow-up", "follow up", "مراجعة":
		return TypeFollowup
	case "other", "أخرى", "اخرى":
		return TypeOther
	case "conversation", "محادثة":
		return TypeConversation
	}

	return TypeCheckup
}

// NormalizeCustomerID strips the leading '+' so phone-shaped ids are
// canonical before they reach the wire.
func NormalizeCustomerID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "+")
}
