package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "tel"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
)

type FormField struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// RegistrationForm is owned by exactly one camp.
type RegistrationForm struct {
	gorm.Model
	CampID uint                           `json:"camp_id" gorm:"uniqueIndex"`
	Fields datatypes.JSONSlice[FormField] `json:"fields"`
}

// DefaultFormFields is implied for camps without a RegistrationForm.
func DefaultFormFields() []FormField {
	return []FormField{
		{Key: "field_1", Label: "ชื่อ-นามสกุล", Type: FieldText, Required: true},
		{Key: "field_2", Label: "อีเมล", Type: FieldEmail, Required: true},
		{Key: "field_3", Label: "เบอร์โทรศัพท์", Type: FieldPhone, Required: false},
	}
}
