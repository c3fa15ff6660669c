package teamController

import (
	"errors"
	"erudio/config"
	"erudio/database"
	"erudio/middleware"
	"erudio/models"
	"erudio/utils"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Admission failures surfaced to the owner as policy denials.
var (
	ErrTeamInactive  = errors.New("team subscription is not active")
	ErrSeatCapFull   = errors.New("team has reached its seat limit")
	ErrOwnerAsMember = errors.New("the team owner cannot be added as a member")
	ErrAlreadyMember = errors.New("user is already a member of this team")
)

const subscriptionPeriod = 30 * 24 * time.Hour

// lockTeam re-reads the team row under a row lock so concurrent admissions
// serialize on the store. SQLite has no FOR UPDATE; its single-writer model
// covers the same ground in tests.
func lockTeam(tx *gorm.DB, teamID uint) (*models.Team, error) {
	var team models.Team
	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Where("id = ?", teamID).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// AdmitMember adds a user to the team roster, enforcing the active
// subscription and the plan's seat cap inside one transaction. The cap
// check runs against a locked team row so two concurrent admissions cannot
// both squeeze into the last seat. Returns the member user on success.
func AdmitMember(db *gorm.DB, teamID uint, email string) (*models.User, bool, error) {
	var member *models.User
	invited := false

	err := db.Transaction(func(tx *gorm.DB) error {
		team, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if !team.IsActive {
			return ErrTeamInactive
		}

		var plan models.SubscriptionPlan
		if team.PlanID == nil {
			return ErrTeamInactive
		}
		if err := tx.First(&plan, *team.PlanID).Error; err != nil {
			return err
		}

		var seats int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&seats).Error; err != nil {
			return err
		}
		if seats >= int64(plan.MaxMembers) {
			return ErrSeatCapFull
		}

		normalized := strings.ToLower(strings.TrimSpace(email))

		var user models.User
		err = tx.Where("LOWER(email) = ?", normalized).First(&user).Error
		switch {
		case err == nil:
			if user.ID == team.OwnerID {
				return ErrOwnerAsMember
			}
			var existing int64
			tx.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", team.ID, user.ID).Count(&existing)
			if existing > 0 {
				return ErrAlreadyMember
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Invited B2B members skip email verification: the invite is the
			// verification. The random credential is unusable until they
			// claim the account through the invite link.
			placeholder, hashErr := bcrypt.GenerateFromPassword([]byte(utils.NewToken()), config.AppConfig.SaltRound)
			if hashErr != nil {
				return hashErr
			}
			user = models.User{
				Email:       normalized,
				Password:    string(placeholder),
				IsActive:    true,
				IsVerified:  true,
				InviteToken: utils.NewToken(),
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			invited = true
		default:
			return err
		}

		if err := tx.Create(&models.TeamMember{TeamID: team.ID, UserID: user.ID}).Error; err != nil {
			return err
		}

		// Active subscription covers new members immediately.
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("is_b2b_member", true).Error; err != nil {
			return err
		}
		user.IsB2BMember = true

		member = &user
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return member, invited, nil
}

// ActivateTeamForOwner creates or reactivates the owner's team on a
// verified plan purchase. `apply` is false on an idempotent re-verification:
// the team is still fetched-or-created, but the subscription window is not
// extended again and no notifications go out.
func ActivateTeamForOwner(db *gorm.DB, owner *models.User, planID uint, apply bool) (*models.Team, error) {
	var plan models.SubscriptionPlan
	if err := db.Where("id = ? AND is_deleted = ?", planID, false).First(&plan).Error; err != nil {
		return nil, err
	}

	team := models.Team{
		Name:    fmt.Sprintf("%s's Team", owner.FirstName),
		OwnerID: owner.ID,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoNothing: true,
	}).Create(&team)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Renewal path: the team is reactivated, never recreated.
		if err := db.Where("owner_id = ?", owner.ID).First(&team).Error; err != nil {
			return nil, err
		}
	}

	if !apply {
		return &team, nil
	}

	ends := time.Now().Add(subscriptionPeriod)
	if err := db.Model(&team).Updates(map[string]interface{}{
		"plan_id":           planID,
		"is_active":         true,
		"subscription_ends": &ends,
	}).Error; err != nil {
		return nil, err
	}

	// Batch grant across the full roster, owner included.
	var memberIDs []uint
	if err := db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Pluck("user_id", &memberIDs).Error; err != nil {
		return nil, err
	}
	grantIDs := append(memberIDs, owner.ID)
	if err := db.Model(&models.User{}).Where("id IN ?", grantIDs).
		Updates(map[string]interface{}{"is_b2b_member": true, "is_active": true}).Error; err != nil {
		return nil, err
	}

	utils.Publish(utils.Event{
		Type:     utils.EventTeamActivated,
		Email:    owner.Email,
		Name:     owner.FirstName,
		PlanName: plan.Name,
	})
	var memberUsers []models.User
	if len(memberIDs) > 0 {
		db.Where("id IN ?", memberIDs).Find(&memberUsers)
	}
	for _, memberUser := range memberUsers {
		utils.Publish(utils.Event{
			Type:     utils.EventMemberAccessGranted,
			Email:    memberUser.Email,
			Name:     memberUser.FirstName,
			PlanName: plan.Name,
		})
	}

	return &team, nil
}

// GetTeam returns the caller's team with plan and roster
func GetTeam(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var team models.Team
	if err := db.Where("owner_id = ?", userID).First(&team).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You do not own a team yet. Subscribe to a plan to create one.", nil)
	}

	var plan models.SubscriptionPlan
	if team.PlanID != nil {
		db.First(&plan, *team.PlanID)
	}

	var memberIDs []uint
	db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Pluck("user_id", &memberIDs)

	var members []models.User
	if len(memberIDs) > 0 {
		db.Select("id", "first_name", "last_name", "email", "is_active", "is_b2b_member").
			Where("id IN ?", memberIDs).Find(&members)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Team fetched successfully!", fiber.Map{
		"team":        team,
		"plan":        plan,
		"members":     members,
		"has_expired": team.HasExpired(),
	})
}

// AddMember invites or attaches a member to the caller's team
func AddMember(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAddMember").(*struct {
		Email string `json:"email" validate:"required,email"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var team models.Team
	if err := db.Where("owner_id = ?", userID).First(&team).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You do not own a team!", nil)
	}

	member, invited, err := AdmitMember(db, team.ID, reqData.Email)
	switch {
	case errors.Is(err, ErrTeamInactive):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your team subscription is inactive. Renew it before adding members.", nil)
	case errors.Is(err, ErrSeatCapFull):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your plan's seat limit has been reached.", nil)
	case errors.Is(err, ErrOwnerAsMember):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You are the team owner and already have access.", nil)
	case errors.Is(err, ErrAlreadyMember):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This user is already on your team.", nil)
	case err != nil:
		log.Printf("Error admitting member to team %d: %v", team.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add member!", nil)
	}

	if invited {
		utils.Publish(utils.Event{
			Type:     utils.EventMemberInvited,
			Email:    member.Email,
			TeamName: team.Name,
			Link:     config.AppConfig.BaseURL + "/auth/set-password?token=" + member.InviteToken,
		})
	}

	member.Password = ""
	member.InviteToken = ""
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Member added successfully!", member)
}

// RemoveMember detaches a member from the caller's team. The account is
// kept; only the membership link and the access derived from it go away.
func RemoveMember(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	memberID := c.Locals("memberID").(int)

	db := database.Database.Db

	var team models.Team
	if err := db.Where("owner_id = ?", userID).First(&team).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You do not own a team!", nil)
	}

	// Hard delete: a soft-deleted row would collide with the unique
	// (team, user) index if the member is ever re-added.
	result := db.Unscoped().Where("team_id = ? AND user_id = ?", team.ID, memberID).Delete(&models.TeamMember{})
	if result.Error != nil {
		log.Printf("Error removing member %d from team %d: %v", memberID, team.ID, result.Error)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove member!", nil)
	}
	if result.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "This user is not on your team.", nil)
	}

	// Revoke derived access unless it is covered from elsewhere.
	var ownsTeam int64
	db.Model(&models.Team{}).Where("owner_id = ?", memberID).Count(&ownsTeam)

	var otherActive int64
	db.Model(&models.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id AND teams.is_active = ?", true).
		Where("team_members.user_id = ?", memberID).
		Count(&otherActive)

	if ownsTeam == 0 && otherActive == 0 {
		db.Model(&models.User{}).Where("id = ?", memberID).Update("is_b2b_member", false)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Member removed successfully!", nil)
}

// GetPlans lists the available subscription plans
func GetPlans(c *fiber.Ctx) error {
	var plans []models.SubscriptionPlan
	if err := database.Database.Db.Where("is_deleted = ?", false).
		Order("monthly_price asc").Find(&plans).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch plans!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Plans fetched successfully!", fiber.Map{
		"plans": plans,
	})
}
