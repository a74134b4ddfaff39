package domain

import "errors"

// Engine error taxonomy. All are recoverable per-request conditions; the
// API layer maps them onto HTTP status codes.
var (
	ErrInvalidWindow             = errors.New("invalid rental window: end date before start date")
	ErrWindowTooLong             = errors.New("rental window exceeds the allowed cap")
	ErrInvalidQuantity           = errors.New("invalid quantity")
	ErrDuplicateCartEntry        = errors.New("cart already holds a line for this asset and date")
	ErrInsufficientStock         = errors.New("insufficient stock")
	ErrInvalidTransition         = errors.New("illegal state transition")
	ErrCancellationWindowExpired = errors.New("cancellation window expired")
	ErrAlreadyRated              = errors.New("item already rated")
	ErrInvalidRating             = errors.New("rating must be between 1 and 5")
	ErrNotFound                  = errors.New("not found")
	ErrUnauthorized              = errors.New("unauthorized")
)
