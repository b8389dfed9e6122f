package store

import (
	"context"
	"time"

	"github.com/SICout9010/K-Camp/internal/models"
)

func (s *Store) CreateAPIKey(ctx context.Context, k *models.APIKey) error {
	return s.conn(ctx).Create(k).Error
}

func (s *Store) ListAPIKeys(ctx context.Context, userID uint) ([]models.APIKey, error) {
	var out []models.APIKey
	err := s.conn(ctx).Where("user_id = ?", userID).Order("id asc").Find(&out).Error
	return out, err
}

func (s *Store) DeleteAPIKey(ctx context.Context, id, userID uint) error {
	res := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.APIKey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) APIKeyByKey(ctx context.Context, key string) (*models.APIKey, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var k models.APIKey
	if err := s.conn(ctx).Where(&models.APIKey{Key: key}).First(&k).Error; err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

func (s *Store) TouchAPIKey(ctx context.Context, id uint, at time.Time) error {
	return s.conn(ctx).Model(&models.APIKey{}).Where("id = ?", id).Update("last_used_at", at).Error
}
