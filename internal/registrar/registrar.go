// Package registrar applies lifecycle decisions to the record store:
// admitting registrations, moving them through the review and payment
// workflows and keeping each camp's participant counter in step.
//
// Permission and existence checks run before any write. Once a write
// sequence has started, later failures (counter adjustment, history,
// notifications) are logged and never undo the earlier write.
package registrar

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/SICout9010/K-Camp/internal/lifecycle"
	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/SICout9010/K-Camp/internal/notifier"
	"github.com/SICout9010/K-Camp/internal/store"
)

// Store is the part of the record store the registrar writes through.
type Store interface {
	GetCamp(ctx context.Context, id uint) (*models.Camp, error)
	DeleteCampCascade(ctx context.Context, campID uint) error
	IncrementParticipants(ctx context.Context, campID uint, capped bool) (bool, error)
	DecrementParticipants(ctx context.Context, campID uint) (bool, error)
	SetParticipants(ctx context.Context, campID uint, n int) error

	GetRegistration(ctx context.Context, id uint) (*models.Registration, error)
	FirstRegistration(ctx context.Context, f store.RegistrationFilter) (*models.Registration, error)
	CountRegistrations(ctx context.Context, f store.RegistrationFilter) (int64, error)
	CreateRegistration(ctx context.Context, r *models.Registration) error
	UpdateRegistrationFrom(ctx context.Context, id uint, column string, from interface{}, updates map[string]interface{}) error
	AddHistory(ctx context.Context, h *models.RegistrationHistory) error
}

type Manager struct {
	store    Store
	counted  lifecycle.CountedSet
	notifier notifier.Notifier
	now      func() time.Time
}

type Option func(*Manager)

func WithNotifier(n notifier.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func New(s Store, counted lifecycle.CountedSet, opts ...Option) *Manager {
	if counted == nil {
		counted = lifecycle.DefaultCountedSet()
	}
	m := &Manager{store: s, counted: counted, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Counted() lifecycle.CountedSet {
	return m.counted
}

// CanManage reports whether actor may review registrations and edit the camp.
func CanManage(actor models.User, camp models.Camp) bool {
	return actor.IsAdmin() || (actor.ID != 0 && camp.OrganizerID == actor.ID)
}

func (m *Manager) manageable(ctx context.Context, actor models.User, campID uint) (*models.Camp, error) {
	camp, err := m.store.GetCamp(ctx, campID)
	if err != nil {
		return nil, lookup("get camp", err)
	}
	if !CanManage(actor, *camp) {
		return nil, ErrPermissionDenied
	}
	return camp, nil
}

// Precheck runs the admission checks that come before any seat is taken:
// the window, an earlier registration by user and the login requirement.
// The caller's live registration is returned even when a check fails.
func (m *Manager) Precheck(ctx context.Context, camp models.Camp, user *models.User) (*models.Registration, error) {
	var existing *models.Registration
	if user != nil {
		r, err := m.store.FirstRegistration(ctx, store.RegistrationFilter{
			CampID:           camp.ID,
			UserID:           user.ID,
			ExcludeCancelled: true,
		})
		switch {
		case err == nil:
			existing = r
		case !errors.Is(err, store.ErrNotFound):
			return nil, upstream("find registration", err)
		}
	}
	if err := lifecycle.CheckAdmission(m.now(), camp, existing); err != nil {
		return existing, err
	}
	if user == nil && !camp.AllowAnonymous {
		return nil, ErrLoginRequired
	}
	return existing, nil
}

// Admit registers user (nil for an anonymous submission) for a camp.
func (m *Manager) Admit(ctx context.Context, campID uint, user *models.User, fields []lifecycle.Field) (*models.Registration, error) {
	camp, err := m.store.GetCamp(ctx, campID)
	if err != nil {
		return nil, lookup("get camp", err)
	}
	if _, err := m.Precheck(ctx, *camp, user); err != nil {
		return nil, err
	}

	var userID *uint
	if user != nil {
		id := user.ID
		userID = &id
	}
	now := m.now()

	// When a pending registration holds a seat, the conditional increment is
	// the capacity re-check.
	reserved := m.counted.Counts(models.StatusPending)
	if reserved {
		ok, err := m.store.IncrementParticipants(ctx, camp.ID, true)
		if err != nil {
			return nil, upstream("reserve seat", err)
		}
		if !ok {
			return nil, lifecycle.ErrFull
		}
	} else {
		fresh, err := m.store.GetCamp(ctx, camp.ID)
		if err != nil {
			return nil, lookup("recheck camp", err)
		}
		if !lifecycle.HasCapacity(*fresh) {
			return nil, lifecycle.ErrFull
		}
	}

	reg := lifecycle.NewRegistration(now, *camp, userID, fields)
	if err := m.store.CreateRegistration(ctx, &reg); err != nil {
		if reserved {
			if _, relErr := m.store.DecrementParticipants(ctx, camp.ID); relErr != nil {
				log.Printf("Failed to release seat on camp %d: %v", camp.ID, relErr)
			}
		}
		return nil, upstream("create registration", err)
	}
	if reserved {
		camp.CurrentParticipants++
	}

	if m.notifier != nil {
		if err := m.notifier.NotifyRegistration(*camp, reg); err != nil {
			log.Printf("Failed to notify registration %d: %v", reg.ID, err)
		}
	}
	return &reg, nil
}

// Transition moves a registration to a new review status on behalf of actor.
// A nil notes leaves the existing notes untouched.
func (m *Manager) Transition(ctx context.Context, actor models.User, registrationID uint, to models.RegistrationStatus, notes *string) (*models.Registration, error) {
	reg, err := m.store.GetRegistration(ctx, registrationID)
	if err != nil {
		return nil, lookup("get registration", err)
	}
	camp, err := m.manageable(ctx, actor, reg.CampID)
	if err != nil {
		return nil, err
	}

	from := reg.Status
	if !lifecycle.CanTransition(from, to) {
		return nil, &TransitionError{From: string(from), To: string(to), Err: lifecycle.ErrInvalidTransition}
	}

	now := m.now()
	actorID := actor.ID
	updates := map[string]interface{}{
		"status":         to,
		"reviewed_at":    now,
		"reviewed_by_id": actorID,
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	// The counter delta below is only valid if the status is still from.
	if err := m.store.UpdateRegistrationFrom(ctx, reg.ID, "status", from, updates); err != nil {
		return nil, lookup("update registration", err)
	}
	reg.Status = to
	reg.ReviewedAt = &now
	reg.ReviewedByID = &actorID
	if notes != nil {
		reg.Notes = *notes
	}

	m.adjustCounter(ctx, camp.ID, m.counted.Delta(from, to))
	m.record(ctx, models.RegistrationHistory{
		RegistrationID: reg.ID,
		CampID:         camp.ID,
		ActorID:        actor.ID,
		Kind:           models.HistoryStatus,
		From:           string(from),
		To:             string(to),
		Notes:          reg.Notes,
	})

	if from != to && m.notifier != nil {
		if err := m.notifier.NotifyStatusChange(*camp, *reg, from, actor); err != nil {
			log.Printf("Failed to notify status change of registration %d: %v", reg.ID, err)
		}
	}
	return reg, nil
}

// UpdatePayment moves a registration through the payment workflow.
func (m *Manager) UpdatePayment(ctx context.Context, actor models.User, registrationID uint, to models.PaymentStatus) (*models.Registration, error) {
	reg, err := m.store.GetRegistration(ctx, registrationID)
	if err != nil {
		return nil, lookup("get registration", err)
	}
	camp, err := m.manageable(ctx, actor, reg.CampID)
	if err != nil {
		return nil, err
	}

	from := reg.PaymentStatus
	if !lifecycle.CanTransitionPayment(from, to) {
		return nil, &TransitionError{From: string(from), To: string(to), Err: lifecycle.ErrInvalidPayment}
	}

	updates := map[string]interface{}{"payment_status": to}
	if to == models.PaymentPaid && from != models.PaymentPaid {
		now := m.now()
		updates["payment_verified_at"] = now
		reg.PaymentVerifiedAt = &now
	}
	if err := m.store.UpdateRegistrationFrom(ctx, reg.ID, "payment_status", from, updates); err != nil {
		return nil, lookup("update payment", err)
	}
	reg.PaymentStatus = to

	m.record(ctx, models.RegistrationHistory{
		RegistrationID: reg.ID,
		CampID:         camp.ID,
		ActorID:        actor.ID,
		Kind:           models.HistoryPayment,
		From:           string(from),
		To:             string(to),
	})
	return reg, nil
}

// Recount rewrites a camp's participant counter from its registrations and
// returns the new value.
func (m *Manager) Recount(ctx context.Context, actor models.User, campID uint) (int, error) {
	camp, err := m.manageable(ctx, actor, campID)
	if err != nil {
		return 0, err
	}
	n, err := m.store.CountRegistrations(ctx, store.RegistrationFilter{
		CampID:   camp.ID,
		Statuses: m.counted.Statuses(),
	})
	if err != nil {
		return 0, upstream("count registrations", err)
	}
	if err := m.store.SetParticipants(ctx, camp.ID, int(n)); err != nil {
		return 0, upstream("set participants", err)
	}
	if int(n) != camp.CurrentParticipants {
		log.Printf("Recounted camp %d participants: %d -> %d", camp.ID, camp.CurrentParticipants, n)
	}
	return int(n), nil
}

// DeleteCamp removes a camp and everything it owns. Camps with an accepted
// registration are kept. The deleted camp is returned so its files can be
// cleaned up.
func (m *Manager) DeleteCamp(ctx context.Context, actor models.User, campID uint) (*models.Camp, error) {
	camp, err := m.manageable(ctx, actor, campID)
	if err != nil {
		return nil, err
	}
	accepted, err := m.store.CountRegistrations(ctx, store.RegistrationFilter{
		CampID:   camp.ID,
		Statuses: []models.RegistrationStatus{models.StatusAccepted},
	})
	if err != nil {
		return nil, upstream("count accepted registrations", err)
	}
	if accepted > 0 {
		return nil, ErrHasAcceptedRegistrations
	}
	if err := m.store.DeleteCampCascade(ctx, camp.ID); err != nil {
		return nil, lookup("delete camp", err)
	}
	return camp, nil
}

func (m *Manager) adjustCounter(ctx context.Context, campID uint, delta int) {
	var err error
	switch {
	case delta > 0:
		// Organizers may accept past the cap.
		_, err = m.store.IncrementParticipants(ctx, campID, false)
	case delta < 0:
		_, err = m.store.DecrementParticipants(ctx, campID)
	default:
		return
	}
	if err != nil {
		log.Printf("Failed to adjust participants of camp %d by %d: %v", campID, delta, err)
	}
}

func (m *Manager) record(ctx context.Context, h models.RegistrationHistory) {
	if err := m.store.AddHistory(ctx, &h); err != nil {
		log.Printf("Failed to record history for registration %d: %v", h.RegistrationID, err)
	}
}
