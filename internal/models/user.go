package models

import (
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

type User struct {
	gorm.Model
	Provider   string `json:"provider" gorm:"uniqueIndex:idx_provider_identity"`
	ProviderID string `json:"-" gorm:"uniqueIndex:idx_provider_identity"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"` // storage object key
	Role       Role   `json:"role" gorm:"default:'student'"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanOrganize reports whether the user may create camps.
func (u User) CanOrganize() bool {
	return u.Role == RoleOrganizer || u.Role == RoleAdmin
}
