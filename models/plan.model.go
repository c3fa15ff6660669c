package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionPlan is a seat-based team plan.
type SubscriptionPlan struct {
	gorm.Model
	Name         string         `json:"name" gorm:"not null"`
	MonthlyPrice float64        `json:"monthly_price" gorm:"not null"`
	MaxMembers   int            `json:"max_members" gorm:"not null"`
	Features     datatypes.JSON `json:"features"` // list of feature strings
	IsDeleted    bool           `gorm:"default:false"`
}
