package gateway

import (
	"context"

	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/pkg/outcome"
)

// ModifyParams carries a reservation modification to the backend.
type ModifyParams struct {
	ID         string
	CustomerID string
	Date       string
	Time       string
	Title      string
	Type       entity.ReservationType
	ClientRef  string
}

// CancelParams identifies a reservation to cancel.
type CancelParams struct {
	ID        string
	Date      string
	Localized bool
}

// ReserveParams carries a new time-slot reservation to the backend.
type ReserveParams struct {
	CustomerID string
	Date       string
	Time       string
	Name       string
	Type       entity.ReservationType
	ClientRef  string
}

// BackendAPI is the HTTP fallback used when the socket cannot deliver.
// Implementations never panic; transport failures come back as a failed
// Outcome.
type BackendAPI interface {
	ModifyReservation(ctx context.Context, params ModifyParams) outcome.Outcome
	CancelReservation(ctx context.Context, params CancelParams) outcome.Outcome
	ReserveTimeSlot(ctx context.Context, params ReserveParams) outcome.Outcome
}
