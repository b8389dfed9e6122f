package store

import (
	"context"

	"github.com/SICout9010/K-Camp/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegistrationFilter struct {
	CampID   uint
	UserID   uint
	Statuses []models.RegistrationStatus
	// ExcludeCancelled drops cancelled registrations.
	ExcludeCancelled bool
}

func (s *Store) CreateRegistration(ctx context.Context, r *models.Registration) error {
	return s.conn(ctx).Create(r).Error
}

func (s *Store) GetRegistration(ctx context.Context, id uint) (*models.Registration, error) {
	var r models.Registration
	if err := s.conn(ctx).Preload("User").First(&r, id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) UpdateRegistration(ctx context.Context, id uint, updates map[string]interface{}) error {
	res := s.conn(ctx).Model(&models.Registration{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRegistrationFrom applies updates only while column still holds from.
// It returns ErrStale when the registration has moved on since it was read.
func (s *Store) UpdateRegistrationFrom(ctx context.Context, id uint, column string, from interface{}, updates map[string]interface{}) error {
	res := s.conn(ctx).Model(&models.Registration{}).
		Where("id = ?", id).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: from}).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (s *Store) filterRegistrations(ctx context.Context, f RegistrationFilter) *gorm.DB {
	q := s.conn(ctx).Model(&models.Registration{})
	if f.CampID != 0 {
		q = q.Where("camp_id = ?", f.CampID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.ExcludeCancelled {
		q = q.Where("status <> ?", models.StatusCancelled)
	}
	return q
}

// FirstRegistration returns the newest registration matching f.
func (s *Store) FirstRegistration(ctx context.Context, f RegistrationFilter) (*models.Registration, error) {
	var r models.Registration
	err := s.filterRegistrations(ctx, f).Order("submitted_at desc").Order("id desc").First(&r).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) CountRegistrations(ctx context.Context, f RegistrationFilter) (int64, error) {
	var n int64
	err := s.filterRegistrations(ctx, f).Count(&n).Error
	return n, err
}

// ListRegistrations returns every matching registration with its user,
// newest submission first.
func (s *Store) ListRegistrations(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	var out []models.Registration
	err := s.filterRegistrations(ctx, f).Preload("User").
		Order("submitted_at desc").Order("id desc").
		Find(&out).Error
	return out, err
}

func (s *Store) AddHistory(ctx context.Context, h *models.RegistrationHistory) error {
	return s.conn(ctx).Create(h).Error
}

func (s *Store) ListHistory(ctx context.Context, registrationID uint) ([]models.RegistrationHistory, error) {
	var out []models.RegistrationHistory
	err := s.conn(ctx).Where("registration_id = ?", registrationID).
		Order("created_at desc").Order("id desc").
		Find(&out).Error
	return out, err
}

// UserRegistrations returns a user's registrations with their camps, newest
// first.
func (s *Store) UserRegistrations(ctx context.Context, userID uint) ([]models.Registration, error) {
	var out []models.Registration
	err := s.conn(ctx).Preload("Camp").Where("user_id = ?", userID).
		Order("submitted_at desc").Order("id desc").
		Find(&out).Error
	return out, err
}
