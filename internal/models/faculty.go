package models

import (
	"gorm.io/gorm"
)

type Faculty struct {
	gorm.Model
	Code   string `json:"code" gorm:"uniqueIndex"`
	NameTH string `json:"name_th"`
	NameEN string `json:"name_en"`
}
