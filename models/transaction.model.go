package models

import (
	"gorm.io/gorm"
)

// Transaction statuses. A transaction is created pending before the gateway
// call and moves exactly once to success or failed during verification.
const (
	TransactionPending = "pending"
	TransactionSuccess = "success"
	TransactionFailed  = "failed"
)

// Transaction records one payment attempt against the gateway.
// CourseID is set for course purchases, PlanID for team subscriptions;
// never both. The pending plan rides on the transaction row so that team
// checkout survives the redirect round-trip without session state.
type Transaction struct {
	gorm.Model
	UserID    uint    `gorm:"index;not null"`
	CourseID  *uint   `gorm:"index"`
	PlanID    *uint   `gorm:"index"`
	Amount    float64 `gorm:"not null"` // major currency units, converted to kobo at the gateway
	Reference string  `gorm:"uniqueIndex;not null"`
	Status    string  `gorm:"not null;default:'pending'"`
}
