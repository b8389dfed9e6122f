package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CampStatus string

const (
	CampStatusDraft     CampStatus = "draft"
	CampStatusPublished CampStatus = "published"
	CampStatusCancelled CampStatus = "cancelled"
	CampStatusArchived  CampStatus = "archived"
)

type Camp struct {
	gorm.Model
	Title            string                      `json:"title"`
	Slug             string                      `json:"slug" gorm:"uniqueIndex"`
	ShortDescription string                      `json:"short_description"`
	Description      string                      `json:"description"`
	Category         string                      `json:"category"`
	TargetAudience   datatypes.JSONSlice[string] `json:"target_audience"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	Location         string                      `json:"location"`
	LocationDetail   string                      `json:"location_detail"`
	Department       string                      `json:"department"`
	Requirements     string                      `json:"requirements"`
	Benefits         string                      `json:"benefits"`

	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end"`

	MinParticipants     int     `json:"min_participants"`
	MaxParticipants     int     `json:"max_participants"`
	CurrentParticipants int     `json:"current_participants"`
	RegistrationFee     float64 `json:"registration_fee"`
	AllowAnonymous      bool    `json:"allow_anonymous"`

	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	ContactLine  string `json:"contact_line"`
	Website      string `json:"website"`
	Facebook     string `json:"facebook"`
	Instagram    string `json:"instagram"`

	OrganizerID uint    `json:"organizer_id" gorm:"index"`
	Organizer   User    `json:"-" gorm:"foreignKey:OrganizerID"`
	FacultyID   uint    `json:"faculty_id"`
	Faculty     Faculty `json:"-" gorm:"foreignKey:FacultyID"`

	Status     CampStatus `json:"status" gorm:"index;default:'draft'"`
	Visibility string     `json:"visibility" gorm:"default:'public'"`
	Views      int        `json:"views"`
	Featured   bool       `json:"featured"`
	Banner     string     `json:"banner"` // storage object key
}
