package teamController

import (
	"fmt"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"erudio/config"
	"erudio/database"
	"erudio/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	config.LoadConfig()
	os.Exit(m.Run())
}

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

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", IsVerified: true}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createActiveTeam(t *testing.T, db *gorm.DB, owner *models.User, maxMembers int) *models.Team {
	t.Helper()
	plan := models.SubscriptionPlan{Name: "Starter", MonthlyPrice: 99, MaxMembers: maxMembers}
	require.NoError(t, db.Create(&plan).Error)

	ends := time.Now().Add(30 * 24 * time.Hour)
	team := models.Team{
		Name:             "Test Team",
		OwnerID:          owner.ID,
		PlanID:           &plan.ID,
		IsActive:         true,
		SubscriptionEnds: &ends,
	}
	require.NoError(t, db.Create(&team).Error)
	return &team
}

func TestAdmitMemberEnforcesSeatCap(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	team := createActiveTeam(t, db, owner, 2)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, _, err := AdmitMember(db, team.ID, email)
		require.NoError(t, err)
	}

	_, _, err := AdmitMember(db, team.ID, "c@example.com")
	assert.ErrorIs(t, err, ErrSeatCapFull)

	var seats int64
	db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&seats)
	assert.Equal(t, int64(2), seats)
}

func TestAdmitMemberInvitesUnknownEmail(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	team := createActiveTeam(t, db, owner, 5)

	member, invited, err := AdmitMember(db, team.ID, "  New.Person@Example.COM ")
	require.NoError(t, err)
	assert.True(t, invited)
	assert.Equal(t, "new.person@example.com", member.Email)
	assert.NotEmpty(t, member.InviteToken)
	assert.True(t, member.IsB2BMember)

	var stored models.User
	require.NoError(t, db.Where("email = ?", "new.person@example.com").First(&stored).Error)
	assert.True(t, stored.IsVerified)
	assert.True(t, stored.IsActive)
}

func TestAdmitMemberAttachesExistingUser(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	team := createActiveTeam(t, db, owner, 5)
	existing := createUser(t, db, "student@example.com")

	member, invited, err := AdmitMember(db, team.ID, "Student@Example.com")
	require.NoError(t, err)
	assert.False(t, invited)
	assert.Equal(t, existing.ID, member.ID)

	var stored models.User
	require.NoError(t, db.First(&stored, existing.ID).Error)
	assert.True(t, stored.IsB2BMember)
}

func TestAdmitMemberRejectsOwnerAndDuplicates(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	team := createActiveTeam(t, db, owner, 5)

	_, _, err := AdmitMember(db, team.ID, owner.Email)
	assert.ErrorIs(t, err, ErrOwnerAsMember)

	_, _, err = AdmitMember(db, team.ID, "member@example.com")
	require.NoError(t, err)
	_, _, err = AdmitMember(db, team.ID, "member@example.com")
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestAdmitMemberRejectsInactiveTeam(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	team := createActiveTeam(t, db, owner, 5)
	require.NoError(t, db.Model(team).Update("is_active", false).Error)

	_, _, err := AdmitMember(db, team.ID, "member@example.com")
	assert.ErrorIs(t, err, ErrTeamInactive)
}

func TestActivateTeamForOwnerReactivatesOnRenewal(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	plan := models.SubscriptionPlan{Name: "Starter", MonthlyPrice: 99, MaxMembers: 5}
	require.NoError(t, db.Create(&plan).Error)

	team, err := ActivateTeamForOwner(db, owner, plan.ID, true)
	require.NoError(t, err)
	require.NotNil(t, team)

	var stored models.Team
	require.NoError(t, db.Where("owner_id = ?", owner.ID).First(&stored).Error)
	assert.True(t, stored.IsActive)

	// The batch grant writes the column the raw UPDATE names; read it back
	// the same way so a migration rename cannot slip past the ORM.
	var b2bFlag int
	require.NoError(t, db.Raw("SELECT is_b2b_member FROM users WHERE id = ?", owner.ID).Scan(&b2bFlag).Error)
	assert.Equal(t, 1, b2bFlag)

	// Simulate expiry, then renew.
	require.NoError(t, db.Model(&stored).Update("is_active", false).Error)

	renewed, err := ActivateTeamForOwner(db, owner, plan.ID, true)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, renewed.ID)

	require.NoError(t, db.Where("owner_id = ?", owner.ID).First(&stored).Error)
	assert.True(t, stored.IsActive)

	var teams int64
	db.Model(&models.Team{}).Where("owner_id = ?", owner.ID).Count(&teams)
	assert.Equal(t, int64(1), teams)
}

func removeMemberApp(ownerID uint) *fiber.App {
	app := fiber.New()
	app.Delete("/team/member/:id", func(c *fiber.Ctx) error {
		memberID, _ := strconv.Atoi(c.Params("id"))
		c.Locals("userId", ownerID)
		c.Locals("memberID", memberID)
		return c.Next()
	}, RemoveMember)
	return app
}

func TestRemoveMemberRevokesDerivedAccess(t *testing.T) {
	db := setupTestDB(t)
	database.Database = database.DbInstance{Db: db}

	owner := createUser(t, db, "owner@example.com")
	team := createActiveTeam(t, db, owner, 5)

	member, _, err := AdmitMember(db, team.ID, "member@example.com")
	require.NoError(t, err)

	app := removeMemberApp(owner.ID)
	resp, err := app.Test(httptest.NewRequest("DELETE", "/team/member/"+strconv.Itoa(int(member.ID)), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var memberships int64
	db.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", team.ID, member.ID).Count(&memberships)
	assert.Equal(t, int64(0), memberships)

	var stored models.User
	require.NoError(t, db.First(&stored, member.ID).Error)
	assert.False(t, stored.IsB2BMember)
}

func TestRemoveMemberKeepsAccessForTeamOwners(t *testing.T) {
	db := setupTestDB(t)
	database.Database = database.DbInstance{Db: db}

	owner := createUser(t, db, "owner@example.com")
	team := createActiveTeam(t, db, owner, 5)

	// The member owns a team of their own; removal must not revoke their flag.
	member, _, err := AdmitMember(db, team.ID, "peer@example.com")
	require.NoError(t, err)
	createActiveTeam(t, db, member, 3)

	app := removeMemberApp(owner.ID)
	resp, err := app.Test(httptest.NewRequest("DELETE", "/team/member/"+strconv.Itoa(int(member.ID)), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.User
	require.NoError(t, db.First(&stored, member.ID).Error)
	assert.True(t, stored.IsB2BMember)
}

func TestRemoveMemberUnknownMembership(t *testing.T) {
	db := setupTestDB(t)
	database.Database = database.DbInstance{Db: db}

	owner := createUser(t, db, "owner@example.com")
	createActiveTeam(t, db, owner, 5)

	app := removeMemberApp(owner.ID)
	resp, err := app.Test(httptest.NewRequest("DELETE", "/team/member/999", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
