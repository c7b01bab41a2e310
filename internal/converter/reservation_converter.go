package converter

import (
	"go-reservation-board/internal/delivery/dto"
	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/domain/gateway"
	"go-reservation-board/pkg/timeformat"
)

// EventDataToReservation builds a Reservation from a broadcast payload.
// Broadcasts may be partially identifying; absent fields stay zero.
func EventDataToReservation(data dto.ReservationEventData) *entity.Reservation {
	title := data.Title
	if title == "" {
		title = data.Name
	}

	return &entity.Reservation{
		ID:           data.ID,
		CustomerID:   entity.NormalizeCustomerID(data.CustomerID),
		Date:         timeformat.DateOnly(data.Date),
		Start:        timeformat.To24h(data.Time),
		End:          timeformat.To24h(data.EndTime),
		TimeSlotBase: data.TimeSlotBase,
		Type:         entity.ParseType(data.Type.String()),
		Title:        title,
		Cancelled:    data.Cancelled,
	}
}

// ModifyParamsToPayload builds the outbound modify_reservation data.
func ModifyParamsToPayload(p gateway.ModifyParams) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"customer_id": p.CustomerID,
		"date":        p.Date,
		"time":        p.Time,
		"title":       p.Title,
		"type":        int(p.Type),
		"client_ref":  p.ClientRef,
	}
}

// CancelParamsToPayload builds the outbound cancel_reservation data.
func CancelParamsToPayload(customerID string, p gateway.CancelParams) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"customer_id":  customerID,
		"date":         p.Date,
		"is_localized": p.Localized,
	}
}
