package store

import (
	"context"

	"github.com/SICout9010/K-Camp/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

func (s *Store) FormForCamp(ctx context.Context, campID uint) (*models.RegistrationForm, error) {
	var form models.RegistrationForm
	if err := s.conn(ctx).Where("camp_id = ?", campID).First(&form).Error; err != nil {
		return nil, translate(err)
	}
	return &form, nil
}

// SaveForm creates or replaces the registration form of a camp.
func (s *Store) SaveForm(ctx context.Context, campID uint, fields []models.FormField) (*models.RegistrationForm, error) {
	form := models.RegistrationForm{CampID: campID, Fields: datatypes.JSONSlice[models.FormField](fields)}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "camp_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "updated_at"}),
	}).Create(&form).Error
	if err != nil {
		return nil, err
	}
	return s.FormForCamp(ctx, campID)
}
