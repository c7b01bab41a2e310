// Package outcome defines the result envelope crossing the transport and
// usecase boundaries. Helpers on this side of the boundary report failure
// through a failed Outcome instead of panicking or returning raw errors;
// call sites choose to log-and-continue.
package outcome

// Outcome mirrors the backend's {success, id?, message?, error?} envelope.
type Outcome struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a successful outcome.
func OK(id string) Outcome {
	return Outcome{Success: true, ID: id}
}

// Fail builds a failed outcome with a user-presentable message.
func Fail(message string) Outcome {
	return Outcome{Success: false, Message: message}
}

// Reason returns the most specific failure text available, or fallback.
func (o Outcome) Reason(fallback string) string {
	if o.Message != "" {
		return o.Message
	}
	if o.Error != "" {
		return o.Error
	}
	return fallback
}
