package registrar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SICout9010/K-Camp/internal/lifecycle"
	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/SICout9010/K-Camp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	registrations []uint
	changes       []string
}

func (n *recordingNotifier) NotifyRegistration(camp models.Camp, reg models.Registration) error {
	n.registrations = append(n.registrations, reg.ID)
	return nil
}

func (n *recordingNotifier) NotifyStatusChange(camp models.Camp, reg models.Registration, from models.RegistrationStatus, actor models.User) error {
	n.changes = append(n.changes, fmt.Sprintf("%s->%s", from, reg.Status))
	return errors.New("discord is down")
}

// brokenCounter fails every increment.
type brokenCounter struct {
	*store.Store
}

func (brokenCounter) IncrementParticipants(ctx context.Context, campID uint, capped bool) (bool, error) {
	return false, errors.New("connection reset")
}

// filledOnRecheck fills the camp right before the second camp read, as if
// other applicants took the last seats between the two reads.
type filledOnRecheck struct {
	*store.Store
	reads int
}

func (s *filledOnRecheck) GetCamp(ctx context.Context, id uint) (*models.Camp, error) {
	s.reads++
	if s.reads == 2 {
		camp, err := s.Store.GetCamp(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.Store.SetParticipants(ctx, id, camp.MaxParticipants); err != nil {
			return nil, err
		}
	}
	return s.Store.GetCamp(ctx, id)
}

// readBarrier holds every GetRegistration until all callers have read.
type readBarrier struct {
	*store.Store
	arrived sync.WaitGroup
}

func (s *readBarrier) GetRegistration(ctx context.Context, id uint) (*models.Registration, error) {
	r, err := s.Store.GetRegistration(ctx, id)
	s.arrived.Done()
	s.arrived.Wait()
	return r, err
}

type fixture struct {
	db        *gorm.DB
	store     *store.Store
	organizer models.User
	camp      models.Camp
}

func setup(t *testing.T, max int) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	org := testutil.CreateUser(t, db, "organizer", models.RoleOrganizer)
	camp := testutil.CreateOpenCamp(t, db, "robotics", org, now, max)
	return fixture{db: db, store: store.New(db), organizer: org, camp: camp}
}

func (f fixture) participants(t *testing.T) int {
	t.Helper()
	camp, err := f.store.GetCamp(context.Background(), f.camp.ID)
	require.NoError(t, err)
	return camp.CurrentParticipants
}

func fields(name string) []lifecycle.Field {
	return []lifecycle.Field{{Key: "field_1", Value: name}, {Key: "field_2", Value: name + "@example.com"}}
}

func TestAdmit_SingleSeat(t *testing.T) {
	f := setup(t, 1)
	n := &recordingNotifier{}
	m := New(f.store, lifecycle.DefaultCountedSet(), WithClock(func() time.Time { return now }), WithNotifier(n))
	ctx := context.Background()
	first := testutil.CreateUser(t, f.db, "first", models.RoleStudent)
	second := testutil.CreateUser(t, f.db, "second", models.RoleStudent)

	reg, err := m.Admit(ctx, f.camp.ID, &first, fields("Somchai"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reg.Status)
	assert.Equal(t, models.PaymentPaid, reg.PaymentStatus)
	assert.Equal(t, now, reg.SubmittedAt)
	assert.Equal(t, "Somchai", reg.FormData.Get("field_1"))
	assert.Equal(t, 1, f.participants(t))
	assert.Equal(t, []uint{reg.ID}, n.registrations)

	_, err = m.Admit(ctx, f.camp.ID, &second, fields("Mali"))
	assert.ErrorIs(t, err, lifecycle.ErrFull)
	assert.Equal(t, 1, f.participants(t))
}

func TestAdmit_ConcurrentAttemptsForLastSeat(t *testing.T) {
	f := setup(t, 1)
	m := New(f.store, lifecycle.DefaultCountedSet(), WithClock(func() time.Time { return now }))

	const attempts = 8
	users := make([]models.User, attempts)
	for i := range users {
		users[i] = testutil.CreateUser(t, f.db, fmt.Sprintf("student-%d", i), models.RoleStudent)
	}

	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Admit(context.Background(), f.camp.ID, &users[i], fields(users[i].Name))
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		assert.ErrorIs(t, err, lifecycle.ErrFull)
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, 1, f.participants(t))

	n, err := f.store.CountRegistrations(context.Background(), store.RegistrationFilter{CampID: f.camp.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAdmit_Duplicate(t *testing.T) {
	f := setup(t, 5)
	m := New(f.store, lifecycle.DefaultCountedSet(), WithClock(func() time.Time { return now }))
	ctx := context.Background()
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)

	reg, err := m.Admit(ctx, f.camp.ID, &student, fields("Somchai"))
	require.NoError(t, err)

	_, err = m.Admit(ctx, f.camp.ID, &student, fields("Somchai"))
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyRegistered)
	assert.Equal(t, 1, f.participants(t))

	_, err = m.Transition(ctx, f.organizer, reg.ID, models.StatusCancelled, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.participants(t))

	_, err = m.Admit(ctx, f.camp.ID, &student, fields("Somchai"))
	assert.NoError(t, err, "a cancelled registration does not block a new one")
	assert.Equal(t, 1, f.participants(t))
}

func TestAdmit_Rejections(t *testing.T) {
	f := setup(t, 2)
	ctx := context.Background()
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)

	t.Run("camp not found", func(t *testing.T) {
		m := New(f.store, nil, WithClock(func() time.Time { return now }))
		_, err := m.Admit(ctx, 9999, &student, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("camp already started", func(t *testing.T) {
		later := now.Add(8 * 24 * time.Hour)
		m := New(f.store, nil, WithClock(func() time.Time { return later }))
		_, err := m.Admit(ctx, f.camp.ID, &student, nil)
		assert.ErrorIs(t, err, lifecycle.ErrWindowEnded)
	})

	t.Run("not yet open", func(t *testing.T) {
		earlier := now.Add(-48 * time.Hour)
		m := New(f.store, nil, WithClock(func() time.Time { return earlier }))
		_, err := m.Admit(ctx, f.camp.ID, &student, nil)
		assert.ErrorIs(t, err, lifecycle.ErrWindowUpcoming)
	})

	t.Run("anonymous needs permission", func(t *testing.T) {
		m := New(f.store, nil, WithClock(func() time.Time { return now }))
		_, err := m.Admit(ctx, f.camp.ID, nil, fields("Anon"))
		assert.ErrorIs(t, err, ErrLoginRequired)
		assert.Equal(t, 0, f.participants(t))

		require.NoError(t, f.store.UpdateCamp(ctx, f.camp.ID, map[string]interface{}{"allow_anonymous": true}))
		reg, err := m.Admit(ctx, f.camp.ID, nil, fields("Anon"))
		require.NoError(t, err)
		assert.Nil(t, reg.UserID)
	})
}

func TestAdmit_AcceptedOnlyPolicy(t *testing.T) {
	f := setup(t, 1)
	m := New(f.store, lifecycle.AcceptedOnly(), WithClock(func() time.Time { return now }))
	ctx := context.Background()
	first := testutil.CreateUser(t, f.db, "first", models.RoleStudent)
	second := testutil.CreateUser(t, f.db, "second", models.RoleStudent)

	_, err := m.Admit(ctx, f.camp.ID, &first, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.participants(t), "pending registrations are not counted")

	require.NoError(t, f.store.SetParticipants(ctx, f.camp.ID, 1))
	_, err = m.Admit(ctx, f.camp.ID, &second, nil)
	assert.ErrorIs(t, err, lifecycle.ErrFull)
}

func TestAdmit_FullOnRecheck(t *testing.T) {
	f := setup(t, 1)
	wrapped := &filledOnRecheck{Store: f.store}
	m := New(wrapped, lifecycle.AcceptedOnly(), WithClock(func() time.Time { return now }))
	ctx := context.Background()
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)

	_, err := m.Admit(ctx, f.camp.ID, &student, fields("Somchai"))
	assert.ErrorIs(t, err, lifecycle.ErrFull)
	assert.Equal(t, 2, wrapped.reads, "the first read saw a free seat")

	n, err := f.store.CountRegistrations(ctx, store.RegistrationFilter{CampID: f.camp.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestTransition_CounterEffects(t *testing.T) {
	f := setup(t, 10)
	n := &recordingNotifier{}
	m := New(f.store, lifecycle.AcceptedOnly(), WithClock(func() time.Time { return now }), WithNotifier(n))
	ctx := context.Background()
	a := testutil.CreateUser(t, f.db, "a", models.RoleStudent)
	b := testutil.CreateUser(t, f.db, "b", models.RoleStudent)

	regA, err := m.Admit(ctx, f.camp.ID, &a, nil)
	require.NoError(t, err)
	regB, err := m.Admit(ctx, f.camp.ID, &b, nil)
	require.NoError(t, err)

	notes := "strong essay"
	updated, err := m.Transition(ctx, f.organizer, regA.ID, models.StatusAccepted, &notes)
	require.NoError(t, err, "notification failures do not fail the transition")
	assert.Equal(t, models.StatusAccepted, updated.Status)
	assert.Equal(t, 1, f.participants(t))

	stored, err := f.store.GetRegistration(ctx, regA.ID)
	require.NoError(t, err)
	assert.Equal(t, "strong essay", stored.Notes)
	require.NotNil(t, stored.ReviewedByID)
	assert.Equal(t, f.organizer.ID, *stored.ReviewedByID)
	require.NotNil(t, stored.ReviewedAt)

	_, err = m.Transition(ctx, f.organizer, regA.ID, models.StatusRejected, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.participants(t), "accepted to rejected decrements once")

	_, err = m.Transition(ctx, f.organizer, regB.ID, models.StatusRejected, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.participants(t), "pending to rejected is neutral")

	history, err := f.store.ListHistory(ctx, regA.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "accepted", history[0].From)
	assert.Equal(t, "rejected", history[0].To)
	assert.Equal(t, []string{"pending->accepted", "accepted->rejected", "pending->rejected"}, n.changes)
}

func TestTransition_DecrementFloor(t *testing.T) {
	f := setup(t, 10)
	m := New(f.store, lifecycle.DefaultCountedSet(), WithClock(func() time.Time { return now }))
	ctx := context.Background()
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)

	reg, err := m.Admit(ctx, f.camp.ID, &student, nil)
	require.NoError(t, err)

	// Simulate drift from an earlier failed increment.
	require.NoError(t, f.store.SetParticipants(ctx, f.camp.ID, 0))

	_, err = m.Transition(ctx, f.organizer, reg.ID, models.StatusRejected, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.participants(t))
}

func TestTransition_ConcurrentSameMove(t *testing.T) {
	f := setup(t, 10)
	ctx := context.Background()
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)
	reg, err := New(f.store, lifecycle.AcceptedOnly(), WithClock(func() time.Time { return now })).
		Admit(ctx, f.camp.ID, &student, nil)
	require.NoError(t, err)

	barrier := &readBarrier{Store: f.store}
	barrier.arrived.Add(2)
	m := New(barrier, lifecycle.AcceptedOnly(), WithClock(func() time.Time { return now }))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Transition(ctx, f.organizer, reg.ID, models.StatusAccepted, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.participants(t))

	history, err := f.store.ListHistory(ctx, reg.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTransition_Authorization(t *testing.T) {
	f := setup(t, 10)
	m := New(f.store, lifecycle.AcceptedOnly(), WithClock(func() time.Time { return now }))
	ctx := context.Background()
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)
	stranger := testutil.CreateUser(t, f.db, "stranger", models.RoleOrganizer)
	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)

	reg, err := m.Admit(ctx, f.camp.ID, &student, nil)
	require.NoError(t, err)

	for _, actor := range []models.User{student, stranger} {
		_, err = m.Transition(ctx, actor, reg.ID, models.StatusAccepted, nil)
		assert.ErrorIs(t, err, ErrPermissionDenied, "actor %s", actor.Username)
	}
	stored, err := f.store.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.ReviewedAt)
	assert.Equal(t, 0, f.participants(t))

	_, err = m.Transition(ctx, admin, reg.ID, models.StatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.participants(t))

	_, err = m.Transition(ctx, admin, 9999, models.StatusAccepted, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransition_IllegalMove(t *testing.T) {
	f := setup(t, 10)
	m := New(f.store, nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)

	reg, err := m.Admit(ctx, f.camp.ID, &student, nil)
	require.NoError(t, err)
	_, err = m.Transition(ctx, f.organizer, reg.ID, models.StatusCancelled, nil)
	require.NoError(t, err)

	_, err = m.Transition(ctx, f.organizer, reg.ID, models.StatusAccepted, nil)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Equal(t, 0, f.participants(t))
}

func TestTransition_CounterFailureKeepsStatus(t *testing.T) {
	f := setup(t, 10)
	m := New(brokenCounter{f.store}, lifecycle.AcceptedOnly(), WithClock(func() time.Time { return now }))
	ctx := context.Background()
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)

	reg, err := m.Admit(ctx, f.camp.ID, &student, nil)
	require.NoError(t, err)

	_, err = m.Transition(ctx, f.organizer, reg.ID, models.StatusAccepted, nil)
	require.NoError(t, err)

	stored, err := f.store.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, stored.Status)
	assert.Equal(t, 0, f.participants(t), "counter drifts instead of losing the decision")

	recounted, err := m.Recount(ctx, f.organizer, f.camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, recounted)
	assert.Equal(t, 1, f.participants(t))
}

func TestAdmit_ReservationFailure(t *testing.T) {
	f := setup(t, 10)
	m := New(brokenCounter{f.store}, lifecycle.DefaultCountedSet(), WithClock(func() time.Time { return now }))
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)

	_, err := m.Admit(context.Background(), f.camp.ID, &student, nil)
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "reserve seat", upstreamErr.Op)

	n, err := f.store.CountRegistrations(context.Background(), store.RegistrationFilter{CampID: f.camp.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdatePayment(t *testing.T) {
	f := setup(t, 10)
	m := New(f.store, nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	require.NoError(t, f.store.UpdateCamp(ctx, f.camp.ID, map[string]interface{}{"registration_fee": 500}))
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)

	reg, err := m.Admit(ctx, f.camp.ID, &student, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, reg.PaymentStatus)

	_, err = m.UpdatePayment(ctx, student, reg.ID, models.PaymentPaid)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := m.UpdatePayment(ctx, f.organizer, reg.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)

	stored, err := f.store.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentVerifiedAt)
	assert.True(t, stored.PaymentVerifiedAt.Equal(now))

	_, err = m.UpdatePayment(ctx, f.organizer, reg.ID, models.PaymentUnpaid)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidPayment)

	// Someone refunded the payment after it was read here.
	require.NoError(t, f.store.UpdateRegistration(ctx, reg.ID, map[string]interface{}{"payment_status": models.PaymentRefunded}))
	err = f.store.UpdateRegistrationFrom(ctx, reg.ID, "payment_status", models.PaymentPaid, map[string]interface{}{"payment_status": models.PaymentRefunded})
	assert.ErrorIs(t, err, store.ErrStale)

	history, err := f.store.ListHistory(ctx, reg.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryPayment, history[0].Kind)
}

func TestDeleteCamp(t *testing.T) {
	f := setup(t, 10)
	m := New(f.store, nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	student := testutil.CreateUser(t, f.db, "student", models.RoleStudent)

	reg, err := m.Admit(ctx, f.camp.ID, &student, nil)
	require.NoError(t, err)
	_, err = m.Transition(ctx, f.organizer, reg.ID, models.StatusAccepted, nil)
	require.NoError(t, err)

	_, err = m.DeleteCamp(ctx, student, f.camp.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = m.DeleteCamp(ctx, f.organizer, f.camp.ID)
	assert.ErrorIs(t, err, ErrHasAcceptedRegistrations)

	_, err = m.Transition(ctx, f.organizer, reg.ID, models.StatusRejected, nil)
	require.NoError(t, err)

	deleted, err := m.DeleteCamp(ctx, f.organizer, f.camp.ID)
	require.NoError(t, err)
	assert.Equal(t, "robotics", deleted.Slug)

	_, err = f.store.GetRegistration(ctx, reg.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
