package lifecycle

import (
	"time"

	"github.com/SICout9010/K-Camp/internal/models"
)

type WindowState string

const (
	WindowUpcoming WindowState = "upcoming"
	WindowOpen     WindowState = "open"
	WindowClosed   WindowState = "closed"
	WindowFull     WindowState = "full"
	WindowEnded    WindowState = "ended"
)

// Snapshot is the subset of a camp the window classification depends on.
type Snapshot struct {
	RegistrationStart   time.Time
	RegistrationEnd     time.Time
	StartDate           time.Time
	Status              models.CampStatus
	CurrentParticipants int
	MaxParticipants     int
}

func SnapshotOf(camp models.Camp) Snapshot {
	return Snapshot{
		RegistrationStart:   camp.RegistrationStart,
		RegistrationEnd:     camp.RegistrationEnd,
		StartDate:           camp.StartDate,
		Status:              camp.Status,
		CurrentParticipants: camp.CurrentParticipants,
		MaxParticipants:     camp.MaxParticipants,
	}
}

// Classify maps a camp snapshot to exactly one window state. Rules are applied
// in order: upcoming, then open/full inside a published window, then ended
// once the camp has started, otherwise closed. An inverted window
// (end before start) is not special-cased.
func Classify(now time.Time, s Snapshot) WindowState {
	if now.Before(s.RegistrationStart) {
		return WindowUpcoming
	}
	if !now.After(s.RegistrationEnd) && s.Status == models.CampStatusPublished {
		if s.CurrentParticipants >= s.MaxParticipants {
			return WindowFull
		}
		return WindowOpen
	}
	if now.After(s.StartDate) {
		return WindowEnded
	}
	return WindowClosed
}

// WindowError returns the refusal for a non-open window, or nil when open.
func WindowError(state WindowState) error {
	switch state {
	case WindowOpen:
		return nil
	case WindowUpcoming:
		return ErrWindowUpcoming
	case WindowFull:
		return ErrFull
	case WindowEnded:
		return ErrWindowEnded
	default:
		return ErrWindowClosed
	}
}
