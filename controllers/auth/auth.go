package authController

import (
	"erudio/config"
	"erudio/database"
	"erudio/middleware"
	"erudio/models"
	"erudio/utils"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Signup registers a new account and mails out a verification link. The
// account stays unverified (and cannot log in) until the link is clicked.
func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*struct {
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db
	email := strings.ToLower(strings.TrimSpace(reqData.Email))

	// Check if email already exists
	if err := db.Where("LOWER(email) = ?", email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		FirstName:  reqData.FirstName,
		LastName:   reqData.LastName,
		Email:      email,
		Password:   string(hashedPassword),
		IsActive:   false, // cannot log in until verified
		IsVerified: false,
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register user!", nil)
	}

	token := models.EmailVerificationToken{Token: utils.NewToken(), UserID: newUser.ID}
	if err := db.Create(&token).Error; err != nil {
		log.Printf("Error creating verification token: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register user!", nil)
	}

	utils.Publish(utils.Event{
		Type:  utils.EventVerificationRequested,
		Email: newUser.Email,
		Name:  newUser.FirstName,
		Link:  config.AppConfig.BaseURL + "/auth/verify/" + token.Token,
	})

	newUser.Password = ""
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registration successful! Please check your email to activate your account.", newUser)
}

// VerifyEmail activates an account from the mailed link. Expired tokens
// remove the unverified account so the email can be registered again.
func VerifyEmail(c *fiber.Ctx) error {
	tokenString := strings.TrimSpace(c.Params("token"))
	if tokenString == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Verification token is required!", nil)
	}

	db := database.Database.Db

	var token models.EmailVerificationToken
	if err := db.Where("token = ?", tokenString).First(&token).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "The verification link is invalid or has already been used.", nil)
	}

	if token.IsExpired() {
		// Hard delete: a soft-deleted row would still hold the unique email
		// and block the re-registration we just promised.
		db.Unscoped().Delete(&models.User{}, token.UserID)
		db.Unscoped().Delete(&token)
		return middleware.JsonResponse(c, fiber.StatusGone, false, "The verification link has expired. Please register again.", nil)
	}

	if err := db.Model(&models.User{}).Where("id = ?", token.UserID).
		Updates(map[string]interface{}{"is_active": true, "is_verified": true}).Error; err != nil {
		log.Printf("Error activating user %d: %v", token.UserID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify email!", nil)
	}
	db.Delete(&token)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified! Your account is now active.", nil)
}

// Login authenticates and returns a JWT
func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("LOWER(email) = ? AND is_deleted = ?", strings.ToLower(reqData.Email), false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	if !user.IsVerified {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your account is not verified. Please check your email for the activation link.", nil)
	}
	if !user.IsActive {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your account is inactive.", nil)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Email, user.IsInstructor)
	if err != nil {
		log.Printf("Error generating JWT for user %d: %v", user.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to log in!", nil)
	}

	now := time.Now()
	db.Model(&user).Update("last_login", &now)

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// SetPassword lets an invited team member claim their account with the
// one-time token from the invitation email.
func SetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSetPassword").(*struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("invite_token = ? AND invite_token <> ''", reqData.Token).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "The invitation link is invalid or has already been used.", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if err := db.Model(&user).Updates(map[string]interface{}{
		"password":     string(hashedPassword),
		"invite_token": "",
	}).Error; err != nil {
		log.Printf("Error setting password for user %d: %v", user.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to set password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password set successfully. You can now log in.", nil)
}
