package service

import "go-reservation-board/internal/delivery/dto"

// Echo keys are derived from (operation kind, id-or-customer, date, time)
// so an inbound broadcast can be matched whichever subset of identifying
// fields it carries.

// ModifyEchoKeys returns every key variant a modify operation pre-marks.
func ModifyEchoKeys(id, customerID, date, hhmm string) []string {
	return []string{
		"modify:" + id,
		"modify:" + customerID + ":" + date + ":" + hhmm,
		"modify:" + customerID + ":" + date,
	}
}

// CancelEchoKeys returns every key variant a cancel operation pre-marks.
func CancelEchoKeys(id, customerID, date string) []string {
	return []string{
		"cancel:" + id,
		"cancel:" + customerID + ":" + date,
	}
}

// CreateEchoKeys returns every key variant a create operation pre-marks.
func CreateEchoKeys(customerID, date, hhmm string) []string {
	return []string{
		"create:" + customerID + ":" + date + ":" + hhmm,
		"create:" + customerID + ":" + date,
	}
}

// EchoKeysForEvent maps an inbound broadcast to the key variants its
// originating operation would have pre-marked.
func EchoKeysForEvent(eventType string, data dto.ReservationEventData) []string {
	switch eventType {
	case dto.EventReservationUpdated, dto.EventReservationReinstated:
		return ModifyEchoKeys(data.ID, data.CustomerID, data.Date, data.Time)
	case dto.EventReservationCancelled:
		return CancelEchoKeys(data.ID, data.CustomerID, data.Date)
	case dto.EventReservationCreated:
		return CreateEchoKeys(data.CustomerID, data.Date, data.Time)
	}
	return nil
}
