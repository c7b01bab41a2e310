package entity

// ModificationContext retains the last-known before/after values of a
// modified reservation, so a later broadcast that identifies it only
// partially can still be turned into a readable notification.
type ModificationContext struct {
	CustomerID string
	PrevDate   string
	PrevTime   string
	PrevType   ReservationType
	Name       string
	NewDate    string
	NewTime    string
	NewType    ReservationType
}
