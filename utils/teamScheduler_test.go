package utils

import (
	"fmt"
	"testing"
	"time"

	"erudio/database"
	"erudio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.RunMigrations(db)
	return db
}

func seedTeam(t *testing.T, db *gorm.DB, ownerEmail string, ends time.Time, memberEmails ...string) (*models.Team, []models.User) {
	t.Helper()

	owner := models.User{Email: ownerEmail, Password: "x", IsB2BMember: true}
	require.NoError(t, db.Create(&owner).Error)

	team := models.Team{
		Name:             ownerEmail + "'s Team",
		OwnerID:          owner.ID,
		IsActive:         true,
		SubscriptionEnds: &ends,
	}
	require.NoError(t, db.Create(&team).Error)

	var members []models.User
	for _, email := range memberEmails {
		member := models.User{Email: email, Password: "x", IsActive: true, IsB2BMember: true}
		require.NoError(t, db.Create(&member).Error)
		require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, UserID: member.ID}).Error)
		members = append(members, member)
	}
	return &team, members
}

func TestDeactivateExpiredTeams(t *testing.T) {
	db := setupTestDB(t)

	expired, expiredMembers := seedTeam(t, db, "expired@example.com",
		time.Now().Add(-time.Hour), "m1@example.com", "m2@example.com")
	current, currentMembers := seedTeam(t, db, "current@example.com",
		time.Now().Add(24*time.Hour), "m3@example.com")

	teams, members, err := DeactivateExpiredTeams(db)
	require.NoError(t, err)
	assert.Equal(t, 1, teams)
	assert.Equal(t, 2, members)

	var stored models.Team
	require.NoError(t, db.First(&stored, expired.ID).Error)
	assert.False(t, stored.IsActive)

	var storedCurrent models.Team
	require.NoError(t, db.First(&storedCurrent, current.ID).Error)
	assert.True(t, storedCurrent.IsActive)

	for _, member := range expiredMembers {
		var user models.User
		require.NoError(t, db.First(&user, member.ID).Error)
		assert.False(t, user.IsB2BMember)
		assert.False(t, user.IsActive)
	}
	for _, member := range currentMembers {
		var user models.User
		require.NoError(t, db.First(&user, member.ID).Error)
		assert.True(t, user.IsB2BMember)
	}
}

func TestDeactivateExpiredTeamsSkipsMemberOwners(t *testing.T) {
	db := setupTestDB(t)

	team, members := seedTeam(t, db, "expired@example.com",
		time.Now().Add(-time.Hour), "peer@example.com")
	peer := members[0]

	// The member also owns a team of their own; their access is theirs.
	ownTeam := models.Team{Name: "Peer Team", OwnerID: peer.ID, IsActive: true}
	require.NoError(t, db.Create(&ownTeam).Error)

	teams, revoked, err := DeactivateExpiredTeams(db)
	require.NoError(t, err)
	assert.Equal(t, 1, teams)
	assert.Equal(t, 0, revoked)

	var stored models.Team
	require.NoError(t, db.First(&stored, team.ID).Error)
	assert.False(t, stored.IsActive)

	var user models.User
	require.NoError(t, db.First(&user, peer.ID).Error)
	assert.True(t, user.IsB2BMember)
	assert.True(t, user.IsActive)
}

func TestDeactivateExpiredTeamsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	seedTeam(t, db, "expired@example.com", time.Now().Add(-time.Hour), "m1@example.com")

	teams, members, err := DeactivateExpiredTeams(db)
	require.NoError(t, err)
	assert.Equal(t, 1, teams)
	assert.Equal(t, 1, members)

	teams, members, err = DeactivateExpiredTeams(db)
	require.NoError(t, err)
	assert.Equal(t, 0, teams)
	assert.Equal(t, 0, members)
}
