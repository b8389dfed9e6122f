package models

import (
	"gorm.io/gorm"
)

type HistoryKind string

const (
	HistoryStatus  HistoryKind = "status"
	HistoryPayment HistoryKind = "payment"
)

// RegistrationHistory is one entry of a registration's review trail.
type RegistrationHistory struct {
	gorm.Model
	RegistrationID uint        `json:"registration_id" gorm:"index"`
	CampID         uint        `json:"camp_id" gorm:"index"`
	ActorID        uint        `json:"actor_id"`
	Kind           HistoryKind `json:"kind"`
	From           string      `json:"from"`
	To             string      `json:"to"`
	Notes          string      `json:"notes"`
}
