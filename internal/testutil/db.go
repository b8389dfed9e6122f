// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/SICout9010/K-Camp/internal/database"
	"github.com/SICout9010/K-Camp/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory sqlite database. A single connection is
// kept so every query sees the same memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()
	u := models.User{
		Provider:   "google",
		ProviderID: "id-" + name,
		Username:   name,
		Name:       name,
		Email:      name + "@example.com",
		Role:       role,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return u
}

// CreateOpenCamp stores a published camp whose registration window contains
// now.
func CreateOpenCamp(t *testing.T, db *gorm.DB, slug string, organizer models.User, now time.Time, max int) models.Camp {
	t.Helper()
	faculty := models.Faculty{Code: "fac-" + slug, NameTH: "วิศวกรรมศาสตร์", NameEN: "Engineering"}
	if err := db.Create(&faculty).Error; err != nil {
		t.Fatalf("failed to create faculty: %v", err)
	}
	camp := models.Camp{
		Title:             "Camp " + slug,
		Slug:              slug,
		RegistrationStart: now.Add(-24 * time.Hour),
		RegistrationEnd:   now.Add(24 * time.Hour),
		StartDate:         now.Add(7 * 24 * time.Hour),
		EndDate:           now.Add(9 * 24 * time.Hour),
		MaxParticipants:   max,
		OrganizerID:       organizer.ID,
		FacultyID:         faculty.ID,
		Status:            models.CampStatusPublished,
		Visibility:        "public",
	}
	if err := db.Create(&camp).Error; err != nil {
		t.Fatalf("failed to create camp: %v", err)
	}
	return camp
}
