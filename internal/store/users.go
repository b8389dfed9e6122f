package store

import (
	"context"
	"fmt"

	"github.com/SICout9010/K-Camp/internal/models"
)

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindOrInitUser loads the user for a provider identity, or returns an unsaved
// user carrying that identity.
func (s *Store) FindOrInitUser(ctx context.Context, provider, providerID string) (*models.User, error) {
	// Zero-valued struct conditions are dropped by gorm and would match
	// any user.
	if provider == "" || providerID == "" {
		return nil, fmt.Errorf("provider identity is incomplete")
	}
	var u models.User
	err := s.conn(ctx).FirstOrInit(&u, models.User{Provider: provider, ProviderID: providerID}).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return s.conn(ctx).Save(u).Error
}

func (s *Store) UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error {
	return s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	var out []models.Faculty
	err := s.conn(ctx).Order("name_th asc").Find(&out).Error
	return out, err
}

func (s *Store) GetFaculty(ctx context.Context, id uint) (*models.Faculty, error) {
	var f models.Faculty
	if err := s.conn(ctx).First(&f, id).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (s *Store) CreateFaculty(ctx context.Context, f *models.Faculty) error {
	return s.conn(ctx).Create(f).Error
}
