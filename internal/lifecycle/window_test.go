package lifecycle

import (
	"math/rand"
	"testing"
	"time"

	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func openSnapshot() Snapshot {
	return Snapshot{
		RegistrationStart:   base,
		RegistrationEnd:     base.Add(10 * 24 * time.Hour),
		StartDate:           base.Add(20 * 24 * time.Hour),
		Status:              models.CampStatusPublished,
		CurrentParticipants: 3,
		MaxParticipants:     10,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		modify func(*Snapshot)
		want   WindowState
	}{
		{"before window", base.Add(-time.Hour), nil, WindowUpcoming},
		{"at window start", base, nil, WindowOpen},
		{"at window end", base.Add(10 * 24 * time.Hour), nil, WindowOpen},
		{"inside window full", base.Add(time.Hour), func(s *Snapshot) { s.CurrentParticipants = 10 }, WindowFull},
		{"inside window over capacity", base.Add(time.Hour), func(s *Snapshot) { s.CurrentParticipants = 11 }, WindowFull},
		{"inside window draft", base.Add(time.Hour), func(s *Snapshot) { s.Status = models.CampStatusDraft }, WindowClosed},
		{"after window before camp", base.Add(15 * 24 * time.Hour), nil, WindowClosed},
		{"after camp started", base.Add(21 * 24 * time.Hour), nil, WindowEnded},
		{"cancelled camp after start", base.Add(21 * 24 * time.Hour), func(s *Snapshot) { s.Status = models.CampStatusCancelled }, WindowEnded},
		{"inverted window", base.Add(2 * time.Hour), func(s *Snapshot) { s.RegistrationEnd = base.Add(time.Hour) }, WindowClosed},
		{"upcoming beats full", base.Add(-time.Minute), func(s *Snapshot) { s.CurrentParticipants = 10 }, WindowUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openSnapshot()
			if tt.modify != nil {
				tt.modify(&s)
			}
			assert.Equal(t, tt.want, Classify(tt.now, s))
		})
	}
}

func TestClassify_PrecedenceProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := []models.CampStatus{models.CampStatusDraft, models.CampStatusPublished, models.CampStatusCancelled, models.CampStatusArchived}
	valid := map[WindowState]bool{WindowUpcoming: true, WindowOpen: true, WindowClosed: true, WindowFull: true, WindowEnded: true}

	for i := 0; i < 2000; i++ {
		offset := func() time.Time { return base.Add(time.Duration(rng.Intn(480)-240) * time.Hour) }
		s := Snapshot{
			RegistrationStart:   offset(),
			RegistrationEnd:     offset(),
			StartDate:           offset(),
			Status:              statuses[rng.Intn(len(statuses))],
			CurrentParticipants: rng.Intn(12),
			MaxParticipants:     1 + rng.Intn(10),
		}
		now := offset()

		got := Classify(now, s)
		assert.True(t, valid[got], "unexpected state %q", got)
		assert.Equal(t, got, Classify(now, s), "classification must be repeatable")

		if now.Before(s.RegistrationStart) {
			assert.Equal(t, WindowUpcoming, got)
		}
		if got == WindowOpen {
			assert.Less(t, s.CurrentParticipants, s.MaxParticipants)
			assert.Equal(t, models.CampStatusPublished, s.Status)
		}
	}
}

func TestWindowError(t *testing.T) {
	assert.NoError(t, WindowError(WindowOpen))
	assert.ErrorIs(t, WindowError(WindowUpcoming), ErrWindowUpcoming)
	assert.ErrorIs(t, WindowError(WindowFull), ErrFull)
	assert.ErrorIs(t, WindowError(WindowEnded), ErrWindowEnded)
	assert.ErrorIs(t, WindowError(WindowClosed), ErrWindowClosed)
}
