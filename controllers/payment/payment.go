package paymentController

import (
	"erudio/config"
	courseControllers "erudio/controllers/course"
	"erudio/database"
	"erudio/middleware"
	"erudio/models"
	courseModels "erudio/models/course"
	"erudio/utils"
	"log"

	"github.com/gofiber/fiber/v2"
)

const referencePrefix = "ERUDIO"

// InitiateCoursePayment starts checkout for a paid course. Free and
// zero-price courses skip the gateway and enroll immediately.
func InitiateCoursePayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	slug := c.Locals("courseSlug").(string)

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("slug = ? AND is_published = ? AND is_deleted = ?", slug, true, false).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var existing courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "You are already enrolled in this course.", existing)
	}

	if !course.IsPaid || course.Price == 0 {
		enrollment, created, err := courseControllers.GetOrCreateEnrollment(db, userID, course.ID)
		if err != nil {
			log.Printf("Error enrolling user %d in free course %d: %v", userID, course.ID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
		}
		if created {
			utils.Publish(utils.Event{
				Type:        utils.EventEnrollmentGranted,
				Email:       user.Email,
				Name:        user.FirstName,
				CourseTitle: course.Title,
			})
		}
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "You have successfully enrolled in '"+course.Title+"'.", enrollment)
	}

	reference := utils.GenerateReference(referencePrefix, userID, course.ID)

	courseID := course.ID
	txn := models.Transaction{
		UserID:    userID,
		CourseID:  &courseID,
		Amount:    course.Price,
		Reference: reference,
		Status:    models.TransactionPending,
	}
	if err := db.Create(&txn).Error; err != nil {
		log.Printf("Error creating transaction %s: %v", reference, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start checkout!", nil)
	}

	callbackURL := config.AppConfig.BaseURL + "/payment/verify"
	amountKobo := int64(course.Price * 100)

	resp := utils.NewPaystack().InitializeTransaction(user.Email, amountKobo, reference, callbackURL)
	if resp == nil || !resp.Status {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "We couldn't connect to the payment gateway. Please try again later.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout started. Redirect the user to the authorization URL.", fiber.Map{
		"authorization_url": resp.Data.AuthorizationURL,
		"reference":         reference,
	})
}

// InitiateTeamSubscription starts checkout for a seat-based plan. The plan
// rides on the transaction row, so verification needs no session state to
// know what to activate.
func InitiateTeamSubscription(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	planID := uint(c.Locals("planID").(int))

	db := database.Database.Db

	var plan models.SubscriptionPlan
	if err := db.Where("id = ? AND is_deleted = ?", planID, false).First(&plan).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Plan not found!", nil)
	}

	reference := utils.GenerateReference(referencePrefix, userID, plan.ID)

	txn := models.Transaction{
		UserID:    userID,
		PlanID:    &plan.ID,
		Amount:    plan.MonthlyPrice,
		Reference: reference,
		Status:    models.TransactionPending,
	}
	if err := db.Create(&txn).Error; err != nil {
		log.Printf("Error creating transaction %s: %v", reference, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start checkout!", nil)
	}

	callbackURL := config.AppConfig.BaseURL + "/payment/verify"
	amountKobo := int64(plan.MonthlyPrice * 100)

	resp := utils.NewPaystack().InitializeTransaction(user.Email, amountKobo, reference, callbackURL)
	if resp == nil || !resp.Status {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "We couldn't connect to the payment gateway. Please try again later.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout started. Redirect the user to the authorization URL.", fiber.Map{
		"authorization_url": resp.Data.AuthorizationURL,
		"reference":         reference,
	})
}

// VerifyPayment handles the gateway callback and runs reconciliation
func VerifyPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reference := c.Locals("reference").(string)

	result, err := Reconcile(database.Database.Db, utils.NewPaystack(), userID, reference)
	if err != nil {
		log.Printf("Error reconciling %s: %v", reference, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify payment!", nil)
	}

	switch result.Outcome {
	case OutcomeNotFound:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, result.Message, nil)
	case OutcomeGatewayUnreachable:
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, result.Message, result.Transaction)
	case OutcomeDeclined:
		return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, result.Message, result.Transaction)
	default:
		return middleware.JsonResponse(c, fiber.StatusOK, true, result.Message, result.Transaction)
	}
}
