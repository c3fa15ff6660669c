package paymentController

import (
	"fmt"
	"testing"
	"time"

	"erudio/database"
	"erudio/models"
	courseModels "erudio/models/course"
	"erudio/utils"

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

// stubGateway returns a canned verify response and counts calls.
type stubGateway struct {
	resp  *utils.VerifyResponse
	calls int
}

func (s *stubGateway) VerifyTransaction(reference string) *utils.VerifyResponse {
	s.calls++
	return s.resp
}

func successResponse() *utils.VerifyResponse {
	resp := &utils.VerifyResponse{Status: true, Message: "Verification successful"}
	resp.Data.Status = "success"
	return resp
}

func declinedResponse(message string) *utils.VerifyResponse {
	resp := &utils.VerifyResponse{Status: false, Message: message}
	resp.Data.Status = "failed"
	return resp
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", IsVerified: true}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCourseTxn(t *testing.T, db *gorm.DB, userID, courseID uint) *models.Transaction {
	t.Helper()
	txn := models.Transaction{
		UserID:    userID,
		CourseID:  &courseID,
		Amount:    49.99,
		Reference: utils.GenerateReference("ERUDIO", userID, courseID),
		Status:    models.TransactionPending,
	}
	require.NoError(t, db.Create(&txn).Error)
	return &txn
}

func TestReconcileCoursePurchase(t *testing.T) {
	db := setupTestDB(t)

	user := createUser(t, db, "student@example.com")
	course := courseModels.Course{Title: "Go Basics", Slug: "go-basics", InstructorID: 1, Price: 49.99, IsPaid: true}
	require.NoError(t, db.Create(&course).Error)
	txn := createCourseTxn(t, db, user.ID, course.ID)

	gateway := &stubGateway{resp: successResponse()}

	result, err := Reconcile(db, gateway, user.ID, txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, result.Outcome)

	var stored models.Transaction
	require.NoError(t, db.First(&stored, txn.ID).Error)
	assert.Equal(t, models.TransactionSuccess, stored.Status)

	var enrollments int64
	db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)

	// Double-submitted callback: same reference verified again.
	result, err = Reconcile(db, gateway, user.ID, txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyGranted, result.Outcome)

	db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)
}

func TestReconcileDeclinedMarksFailed(t *testing.T) {
	db := setupTestDB(t)

	user := createUser(t, db, "student@example.com")
	course := courseModels.Course{Title: "Go Basics", Slug: "go-basics", InstructorID: 1, Price: 49.99, IsPaid: true}
	require.NoError(t, db.Create(&course).Error)
	txn := createCourseTxn(t, db, user.ID, course.ID)

	gateway := &stubGateway{resp: declinedResponse("Insufficient funds")}

	result, err := Reconcile(db, gateway, user.ID, txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, result.Outcome)
	assert.Contains(t, result.Message, "Insufficient funds")

	var stored models.Transaction
	require.NoError(t, db.First(&stored, txn.ID).Error)
	assert.Equal(t, models.TransactionFailed, stored.Status)

	var enrollments int64
	db.Model(&courseModels.Enrollment{}).Where("user_id = ?", user.ID).Count(&enrollments)
	assert.Equal(t, int64(0), enrollments)
}

func TestReconcileGatewayUnreachable(t *testing.T) {
	db := setupTestDB(t)

	user := createUser(t, db, "student@example.com")
	course := courseModels.Course{Title: "Go Basics", Slug: "go-basics", InstructorID: 1, Price: 49.99, IsPaid: true}
	require.NoError(t, db.Create(&course).Error)
	txn := createCourseTxn(t, db, user.ID, course.ID)

	gateway := &stubGateway{resp: nil}

	result, err := Reconcile(db, gateway, user.ID, txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGatewayUnreachable, result.Outcome)

	var stored models.Transaction
	require.NoError(t, db.First(&stored, txn.ID).Error)
	assert.Equal(t, models.TransactionFailed, stored.Status)
}

func TestReconcileRejectsForeignReference(t *testing.T) {
	db := setupTestDB(t)

	owner := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")
	course := courseModels.Course{Title: "Go Basics", Slug: "go-basics", InstructorID: 1, Price: 49.99, IsPaid: true}
	require.NoError(t, db.Create(&course).Error)
	txn := createCourseTxn(t, db, owner.ID, course.ID)

	gateway := &stubGateway{resp: successResponse()}

	result, err := Reconcile(db, gateway, other.ID, txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, result.Outcome)
	assert.Equal(t, 0, gateway.calls)

	var stored models.Transaction
	require.NoError(t, db.First(&stored, txn.ID).Error)
	assert.Equal(t, models.TransactionPending, stored.Status)
}

func TestReconcileTeamSubscription(t *testing.T) {
	db := setupTestDB(t)

	user := createUser(t, db, "owner@example.com")
	plan := models.SubscriptionPlan{Name: "Starter", MonthlyPrice: 99, MaxMembers: 5}
	require.NoError(t, db.Create(&plan).Error)

	planID := plan.ID
	txn := models.Transaction{
		UserID:    user.ID,
		PlanID:    &planID,
		Amount:    plan.MonthlyPrice,
		Reference: utils.GenerateReference("ERUDIO", user.ID, plan.ID),
		Status:    models.TransactionPending,
	}
	require.NoError(t, db.Create(&txn).Error)

	gateway := &stubGateway{resp: successResponse()}

	result, err := Reconcile(db, gateway, user.ID, txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, result.Outcome)

	var team models.Team
	require.NoError(t, db.Where("owner_id = ?", user.ID).First(&team).Error)
	assert.True(t, team.IsActive)
	require.NotNil(t, team.SubscriptionEnds)
	firstEnds := *team.SubscriptionEnds
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), firstEnds, time.Minute)

	// Re-verifying the same transaction must not extend the window again.
	result, err = Reconcile(db, gateway, user.ID, txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyGranted, result.Outcome)

	require.NoError(t, db.Where("owner_id = ?", user.ID).First(&team).Error)
	require.NotNil(t, team.SubscriptionEnds)
	assert.WithinDuration(t, firstEnds, *team.SubscriptionEnds, time.Second)

	var teams int64
	db.Model(&models.Team{}).Where("owner_id = ?", user.ID).Count(&teams)
	assert.Equal(t, int64(1), teams)
}
