package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "pending"
	StatusReviewing RegistrationStatus = "reviewing"
	StatusAccepted  RegistrationStatus = "accepted"
	StatusWaitlist  RegistrationStatus = "waitlist"
	StatusRejected  RegistrationStatus = "rejected"
	StatusCancelled RegistrationStatus = "cancelled"
)

// RegistrationStatuses lists every status in dashboard order.
var RegistrationStatuses = []RegistrationStatus{
	StatusPending, StatusReviewing, StatusAccepted, StatusWaitlist, StatusRejected, StatusCancelled,
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

var PaymentStatuses = []PaymentStatus{
	PaymentUnpaid, PaymentPending, PaymentPaid, PaymentRefunded,
}

type Registration struct {
	gorm.Model
	CampID            uint                        `json:"camp_id" gorm:"index"`
	Camp              Camp                        `json:"-" gorm:"foreignKey:CampID"`
	UserID            *uint                       `json:"user_id" gorm:"index"`
	User              *User                       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	FormData          FormData                    `json:"form_data"`
	Status            RegistrationStatus          `json:"status" gorm:"index;default:'pending'"`
	PaymentStatus     PaymentStatus               `json:"payment_status" gorm:"default:'unpaid'"`
	Notes             string                      `json:"notes"`
	Files             datatypes.JSONSlice[string] `json:"files"`
	SubmittedAt       time.Time                   `json:"submitted_at"`
	ReviewedAt        *time.Time                  `json:"reviewed_at"`
	ReviewedByID      *uint                       `json:"reviewed_by"`
	PaymentVerifiedAt *time.Time                  `json:"payment_verified_at"`
}
