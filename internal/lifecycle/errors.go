package lifecycle

import "errors"

var (
	ErrWindowUpcoming    = errors.New("registration has not opened yet")
	ErrWindowEnded       = errors.New("camp has already started")
	ErrWindowClosed      = errors.New("registration is closed")
	ErrFull              = errors.New("camp is full")
	ErrAlreadyRegistered = errors.New("already registered for this camp")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidPayment    = errors.New("payment status transition not allowed")
	ErrUnknownStatus     = errors.New("unknown status")
)
