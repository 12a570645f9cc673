package models

import "errors"

// Domain error taxonomy. Repositories and usecases return these sentinels
// (possibly wrapped); the HTTP layer maps them to status codes.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrValidation           = errors.New("invalid input")
	ErrInsufficientMargin   = errors.New("insufficient margin")
	ErrInsufficientPosition = errors.New("insufficient position to sell")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrOrderNotPending      = errors.New("order is not pending")
	ErrQuoteUnavailable     = errors.New("quote unavailable")
)
