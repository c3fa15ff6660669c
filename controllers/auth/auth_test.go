package authController

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"erudio/config"
	"erudio/database"
	"erudio/models"
	validators "erudio/validators/auth"

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

func authApp() *fiber.App {
	app := fiber.New()
	app.Post("/auth/signup", validators.Signup(), Signup)
	app.Get("/auth/verify/:token", VerifyEmail)
	return app
}

func signup(t *testing.T, app *fiber.App, email string) *http.Response {
	t.Helper()
	body := fmt.Sprintf(`{"first_name":"Ada","last_name":"Lovelace","email":%q,"password":"supersecret"}`, email)
	req := httptest.NewRequest("POST", "/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func TestSignupCreatesInactiveAccount(t *testing.T) {
	db := setupTestDB(t)
	database.Database = database.DbInstance{Db: db}
	app := authApp()

	resp := signup(t, app, "Ada@Example.com")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var user models.User
	require.NoError(t, db.Where("email = ?", "ada@example.com").First(&user).Error)
	assert.False(t, user.IsActive)
	assert.False(t, user.IsVerified)

	// The stored row must hold the explicit false, not a column default.
	var activeFlag int
	require.NoError(t, db.Raw("SELECT is_active FROM users WHERE id = ?", user.ID).Scan(&activeFlag).Error)
	assert.Equal(t, 0, activeFlag)

	var tokens int64
	db.Model(&models.EmailVerificationToken{}).Where("user_id = ?", user.ID).Count(&tokens)
	assert.Equal(t, int64(1), tokens)
}

func TestVerifyEmailActivatesAccount(t *testing.T) {
	db := setupTestDB(t)
	database.Database = database.DbInstance{Db: db}
	app := authApp()

	signup(t, app, "ada@example.com")

	var user models.User
	require.NoError(t, db.Where("email = ?", "ada@example.com").First(&user).Error)
	var token models.EmailVerificationToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&token).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/auth/verify/"+token.Token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&user, user.ID).Error)
	assert.True(t, user.IsActive)
	assert.True(t, user.IsVerified)
}

func TestExpiredVerificationFreesEmail(t *testing.T) {
	db := setupTestDB(t)
	database.Database = database.DbInstance{Db: db}
	app := authApp()

	signup(t, app, "dup@example.com")

	var user models.User
	require.NoError(t, db.Where("email = ?", "dup@example.com").First(&user).Error)
	var token models.EmailVerificationToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&token).Error)

	// Age the token past the 24 hour window.
	require.NoError(t, db.Model(&token).Update("created_at", time.Now().Add(-25*time.Hour)).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/auth/verify/"+token.Token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusGone, resp.StatusCode)

	// The row is gone outright; a soft delete would still hold the unique email.
	var count int64
	db.Unscoped().Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&count)
	assert.Equal(t, int64(0), count)

	resp = signup(t, app, "dup@example.com")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
