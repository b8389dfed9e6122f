package registrar

import (
	"errors"
	"fmt"

	"github.com/SICout9010/K-Camp/internal/store"
)

var (
	ErrNotFound                 = errors.New("not found")
	ErrPermissionDenied         = errors.New("permission denied")
	ErrLoginRequired            = errors.New("login required to register for this camp")
	ErrHasAcceptedRegistrations = errors.New("camp has accepted registrations")
	ErrConflict                 = errors.New("registration was changed by someone else")
)

// UpstreamError wraps a failed call to the record store. Its text is for
// logs only.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// TransitionError reports a status or payment change the workflow forbids.
// It unwraps to lifecycle.ErrInvalidTransition or lifecycle.ErrInvalidPayment.
type TransitionError struct {
	From string
	To   string
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: %s to %s", e.Err, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// lookup maps a missing record to ErrNotFound, a lost conditional update to
// ErrConflict and anything else to an UpstreamError.
func lookup(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrStale):
		return ErrConflict
	}
	return upstream(op, err)
}
