package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName   string `gorm:"default:''"`
	LastName    string `gorm:"default:''"`
	Email       string `gorm:"unique;not null"`
	Password    string `gorm:"not null"`
	// No column default: signup must persist an explicit false here, and a
	// default would swallow the zero value on insert.
	IsActive     bool
	IsVerified   bool `gorm:"default:false"`
	IsInstructor bool `gorm:"default:false"`

	// B2B access granted through an active team subscription. Revoked by the
	// expiry sweep unless the user owns a team of their own. The column name
	// is pinned: the naming strategy would otherwise split B2B into b2_b.
	IsB2BMember bool `gorm:"column:is_b2b_member;default:false"`

	// One-time token for invited team members to set their first password.
	InviteToken string `gorm:"default:''"`

	LastLogin *time.Time `json:"last_login"`
	IsDeleted bool       `gorm:"default:false"`
}

// EmailVerificationToken is a single-use token mailed out at signup.
// Tokens older than 24 hours are treated as expired.
type EmailVerificationToken struct {
	gorm.Model
	Token  string `gorm:"uniqueIndex;not null"`
	UserID uint   `gorm:"index;not null"`
}

// IsExpired reports whether the verification window has passed.
func (t *EmailVerificationToken) IsExpired() bool {
	return time.Since(t.CreatedAt) > 24*time.Hour
}
