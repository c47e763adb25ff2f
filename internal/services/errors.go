package services

import "errors"

// ErrNotFound is returned when a referenced entity does not exist. Handlers
// translate it to a 404.
var ErrNotFound = errors.New("not found")

// ConflictError reports a state conflict: a toggle-add on an existing pair,
// a toggle-remove on a missing pair, a self-subscription, an empty cart.
// Handlers translate it to a 400 {"errors": reason} body.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}
