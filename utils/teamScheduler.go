package utils

import (
	"erudio/database"
	"erudio/models"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeTeamScheduler sets up the team subscription expiry sweep
func InitializeTeamScheduler() {
	log.Println("[TEAM-SCHEDULER] Initializing team scheduler...")

	c := cron.New()

	// Run daily at 2 AM to deactivate expired team subscriptions
	c.AddFunc("0 2 * * *", func() {
		log.Println("[TEAM-SCHEDULER] Running daily expiry sweep...")
		teams, members, err := DeactivateExpiredTeams(database.Database.Db)
		if err != nil {
			log.Printf("[TEAM-SCHEDULER] Sweep failed: %v", err)
			return
		}
		log.Printf("[TEAM-SCHEDULER] Deactivated %d teams and %d members", teams, members)
	})

	c.Start()
	log.Println("[TEAM-SCHEDULER] Team scheduler started - runs daily at 2 AM")
}

// DeactivateExpiredTeams finds active teams whose subscription end date has
// passed, deactivates them, and revokes access for their members. A member
// who owns a team of their own is skipped: their access is paid for
// separately and must not be revoked by someone else's expiry. The sweep is
// idempotent and safe to run concurrently with itself; the conditional
// update on is_active makes sure each team is processed by one run only.
func DeactivateExpiredTeams(db *gorm.DB) (int, int, error) {
	now := time.Now()

	var expiredTeams []models.Team
	if err := db.Where("is_active = ? AND subscription_ends IS NOT NULL AND subscription_ends < ?", true, now).
		Find(&expiredTeams).Error; err != nil {
		return 0, 0, err
	}

	teamCount := 0
	memberCount := 0

	for _, team := range expiredTeams {
		result := db.Model(&models.Team{}).
			Where("id = ? AND is_active = ?", team.ID, true).
			Update("is_active", false)
		if result.Error != nil {
			log.Printf("[TEAM-SCHEDULER] Failed to deactivate team %d: %v", team.ID, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			// another run got there first
			continue
		}
		teamCount++

		var memberIDs []uint
		if err := db.Model(&models.TeamMember{}).
			Where("team_id = ?", team.ID).
			Pluck("user_id", &memberIDs).Error; err != nil {
			log.Printf("[TEAM-SCHEDULER] Failed to list members of team %d: %v", team.ID, err)
			continue
		}

		for _, userID := range memberIDs {
			// Ownership is checked at deactivation time, not membership time.
			var owned int64
			if err := db.Model(&models.Team{}).Where("owner_id = ?", userID).Count(&owned).Error; err != nil {
				log.Printf("[TEAM-SCHEDULER] Ownership check failed for user %d: %v", userID, err)
				continue
			}
			if owned > 0 {
				continue
			}

			if err := db.Model(&models.User{}).Where("id = ?", userID).
				Updates(map[string]interface{}{"is_active": false, "is_b2b_member": false}).Error; err != nil {
				log.Printf("[TEAM-SCHEDULER] Failed to deactivate member %d: %v", userID, err)
				continue
			}
			memberCount++
		}
	}

	return teamCount, memberCount, nil
}
