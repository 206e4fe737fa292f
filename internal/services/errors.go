package services

import "errors"

// Boundary errors. Handlers map these onto HTTP responses; the specific
// policy rule behind an ErrNotAuthorized is logged internally and never
// exposed to the caller. Validation errors are safe to surface verbatim.
var (
	ErrNotFound           = errors.New("not found")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvariantViolation = errors.New("publicity documents must have general confidentiality")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrAccountBlocked     = errors.New("account blocked")
)
