package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrInvalidTransition    = errors.New("illegal prescription status transition")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
)
