package gateway

import (
	"time"

	"go-reservation-board/internal/domain/entity"
)

// Notifier is the toast surface. Calls are fire-and-forget; failures are
// never propagated back to the engine.
type Notifier interface {
	Error(title, body string, duration time.Duration)
	CreateSucceeded(name, date, hhmm string)
	ModifySucceeded(ctx entity.ModificationContext)
	CancelSucceeded(name, date string)
}
