package models

import (
	"time"

	"gorm.io/gorm"
)

// Team is a seat-based subscription group. A user owns at most one team;
// the unique index on OwnerID is the authority for that. Membership is
// kept in TeamMember rows, distinct from ownership.
type Team struct {
	gorm.Model
	Name             string     `json:"name"`
	OwnerID          uint       `gorm:"uniqueIndex;not null"`
	PlanID           *uint      `gorm:"index"`
	IsActive         bool       `json:"is_active" gorm:"default:false"`
	SubscriptionEnds *time.Time `json:"subscription_ends"`
}

// HasExpired reports whether an active subscription has run past its end date.
func (t *Team) HasExpired() bool {
	return t.IsActive && t.SubscriptionEnds != nil && t.SubscriptionEnds.Before(time.Now())
}

// TeamMember links a user to a team. The composite unique index keeps a
// user from being added to the same team twice.
type TeamMember struct {
	gorm.Model
	TeamID uint `gorm:"index;not null;uniqueIndex:idx_team_user"`
	UserID uint `gorm:"index;not null;uniqueIndex:idx_team_user"`
}
