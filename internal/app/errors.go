package app

import "errors"

// Error taxonomy. Handlers translate these to HTTP statuses; nothing below
// the handler boundary knows about status codes.
var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("actor is not the assigned doctor")
	ErrInvalidTransition = errors.New("invalid status transition")
)
