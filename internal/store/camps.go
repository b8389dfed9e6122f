package store

import (
	"context"

	"github.com/SICout9010/K-Camp/internal/models"
	"gorm.io/gorm"
)

type CampFilter struct {
	Status     models.CampStatus
	Visibility string
	Organizer  uint
}

func (s *Store) CreateCamp(ctx context.Context, camp *models.Camp) error {
	return s.conn(ctx).Create(camp).Error
}

func (s *Store) GetCamp(ctx context.Context, id uint) (*models.Camp, error) {
	var camp models.Camp
	if err := s.conn(ctx).First(&camp, id).Error; err != nil {
		return nil, translate(err)
	}
	return &camp, nil
}

func (s *Store) CampBySlug(ctx context.Context, slug string) (*models.Camp, error) {
	var camp models.Camp
	if err := s.conn(ctx).Where("slug = ?", slug).First(&camp).Error; err != nil {
		return nil, translate(err)
	}
	return &camp, nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Camp{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// ListCamps returns one page of camps, featured first then newest.
func (s *Store) ListCamps(ctx context.Context, f CampFilter, p Page) ([]models.Camp, int64, error) {
	q := s.conn(ctx).Model(&models.Camp{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Visibility != "" {
		q = q.Where("visibility = ?", f.Visibility)
	}
	if f.Organizer != 0 {
		q = q.Where("organizer_id = ?", f.Organizer)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var camps []models.Camp
	err := p.apply(q).Preload("Organizer").Preload("Faculty").
		Order("featured desc").Order("created_at desc").Order("id desc").
		Find(&camps).Error
	return camps, total, err
}

// UpdateCamp applies a partial update. Zero values in updates are written.
func (s *Store) UpdateCamp(ctx context.Context, id uint, updates map[string]interface{}) error {
	res := s.conn(ctx).Model(&models.Camp{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementParticipants adds one participant in a single statement. When
// capped is set the update only applies while the camp has a free seat, and
// false is returned if it was full.
func (s *Store) IncrementParticipants(ctx context.Context, campID uint, capped bool) (bool, error) {
	q := s.conn(ctx).Model(&models.Camp{}).Where("id = ?", campID)
	if capped {
		q = q.Where("current_participants < max_participants")
	}
	res := q.UpdateColumn("current_participants", gorm.Expr("current_participants + ?", 1))
	return res.RowsAffected > 0, res.Error
}

// DecrementParticipants removes one participant, never going below zero.
func (s *Store) DecrementParticipants(ctx context.Context, campID uint) (bool, error) {
	res := s.conn(ctx).Model(&models.Camp{}).
		Where("id = ? AND current_participants > 0", campID).
		UpdateColumn("current_participants", gorm.Expr("current_participants - ?", 1))
	return res.RowsAffected > 0, res.Error
}

func (s *Store) SetParticipants(ctx context.Context, campID uint, n int) error {
	return s.conn(ctx).Model(&models.Camp{}).Where("id = ?", campID).
		UpdateColumn("current_participants", n).Error
}

func (s *Store) IncrementViews(ctx context.Context, campID uint) error {
	return s.conn(ctx).Model(&models.Camp{}).Where("id = ?", campID).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// DeleteCampCascade removes a camp together with its form, registrations and
// their history.
func (s *Store) DeleteCampCascade(ctx context.Context, campID uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("camp_id = ?", campID).Delete(&models.RegistrationHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("camp_id = ?", campID).Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("camp_id = ?", campID).Delete(&models.RegistrationForm{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&models.Camp{}, campID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
