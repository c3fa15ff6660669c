package controllers

import (
	"erudio/database"
	"erudio/middleware"
	"erudio/models"
	courseModels "erudio/models/course"
	"erudio/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateEnrollment grants an entitlement idempotently. The unique
// (user, course) index plus ON CONFLICT DO NOTHING means two concurrent
// grants resolve to a single row; the returned flag reports whether this
// call created it.
func GetOrCreateEnrollment(db *gorm.DB, userID, courseID uint) (*courseModels.Enrollment, bool, error) {
	enrollment := courseModels.Enrollment{UserID: userID, CourseID: courseID}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return &enrollment, true, nil
	}
	// Lost the race or already enrolled; fetch the existing row.
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return nil, false, err
	}
	return &enrollment, false, nil
}

// ResolveEnrollment finds the caller's enrollment for a course, creating one
// on the fly for active B2B members, whose team subscription entitles them
// to the catalog without an explicit purchase.
func ResolveEnrollment(db *gorm.DB, user *models.User, courseID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&enrollment).Error
	if err == nil {
		return &enrollment, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if user.IsB2BMember && user.IsActive {
		created, _, err := GetOrCreateEnrollment(db, user.ID, courseID)
		return created, err
	}
	return nil, gorm.ErrRecordNotFound
}

// EnrollFree enrolls the caller in a free (or zero-price) course without
// touching the payment gateway. Paid courses are pointed at checkout.
func EnrollFree(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	slug := c.Locals("courseSlug").(string)

	var course courseModels.Course
	if err := database.Database.Db.
		Where("slug = ? AND is_published = ? AND is_deleted = ?", slug, true, false).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.IsPaid && course.Price > 0 {
		return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "This is a paid course. Please complete checkout to enroll.", nil)
	}

	enrollment, created, err := GetOrCreateEnrollment(database.Database.Db, userID, course.ID)
	if err != nil {
		log.Printf("Error enrolling user %d in course %d: %v", userID, course.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}
	if !created {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "You are already enrolled in this course.", enrollment)
	}

	utils.Publish(utils.Event{
		Type:        utils.EventEnrollmentGranted,
		Email:       user.Email,
		Name:        user.FirstName,
		CourseTitle: course.Title,
	})

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

// GetMyEnrollments lists the caller's enrollments with progress
func GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	type enrollmentView struct {
		Enrollment courseModels.Enrollment `json:"enrollment"`
		Course     courseModels.Course     `json:"course"`
		Progress   int                     `json:"progress_percentage"`
	}

	views := make([]enrollmentView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		var course courseModels.Course
		if err := database.Database.Db.First(&course, enrollment.CourseID).Error; err != nil {
			continue
		}
		outline, err := courseModels.LoadOutline(database.Database.Db, course.ID)
		if err != nil {
			continue
		}
		completed, err := courseModels.LoadCompletedLessonIDs(database.Database.Db, enrollment.ID)
		if err != nil {
			continue
		}
		views = append(views, enrollmentView{
			Enrollment: enrollment,
			Course:     course,
			Progress:   outline.ProgressPercentage(completed),
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": views,
	})
}
