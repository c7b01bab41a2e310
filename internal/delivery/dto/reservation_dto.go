package dto

// Request DTOs

type CreateReservationRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Time       string `json:"time" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Type       string `json:"type"`
}

type ModifyReservationRequest struct {
	EventID    string `json:"event_id" validate:"required"`
	CustomerID string `json:"customer_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Time       string `json:"time" validate:"required"`
	Title      string `json:"title"`
	Type       string `json:"type"`
}

type CancelReservationRequest struct {
	EventID    string `json:"event_id" validate:"required"`
	CustomerID string `json:"customer_id"`
	Date       string `json:"date" validate:"required"`
	Localized  bool   `json:"is_localized"`
}

// DragDropRequest describes a completed drag gesture on the board.
type DragDropRequest struct {
	EventID    string `json:"event_id" validate:"required"`
	CustomerID string `json:"customer_id" validate:"required"`
	FromDate   string `json:"from_date"`
	FromTime   string `json:"from_time"`
	ToDate     string `json:"to_date" validate:"required"`
	ToTime     string `json:"to_time" validate:"required"`
	Title      string `json:"title"`
	Type       string `json:"type"`
}

type CustomerSearchRequest struct {
	Query string `json:"query" validate:"required"`
}
