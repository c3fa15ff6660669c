package controllers

import (
	"erudio/database"
	"erudio/middleware"
	"erudio/models"
	courseModels "erudio/models/course"
	"erudio/utils"
	"log"

	"github.com/gofiber/fiber/v2"
)

// GetLesson serves the course player view of one lesson. Access requires an
// entitlement, and a lesson inside a locked module is a policy denial, not a
// data error: the caller gets the next unlocked lesson to redirect to
// instead of a raw permission failure.
func GetLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseSlug := c.Locals("courseSlug").(string)
	lessonSlug := c.Locals("lessonSlug").(string)

	var course courseModels.Course
	if err := database.Database.Db.
		Where("slug = ? AND is_published = ? AND is_deleted = ?", courseSlug, true, false).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	enrollment, err := ResolveEnrollment(database.Database.Db, &user, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You must be enrolled in this course to view its lessons.", nil)
	}

	outline, err := courseModels.LoadOutline(database.Database.Db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course outline!", nil)
	}
	completed, err := courseModels.LoadCompletedLessonIDs(database.Database.Db, enrollment.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	var lesson *courseModels.Lesson
	var module *courseModels.Module
	for i := range outline.Modules {
		for j := range outline.Modules[i].Lessons {
			if outline.Modules[i].Lessons[j].Slug == lessonSlug {
				lesson = &outline.Modules[i].Lessons[j]
				module = &outline.Modules[i].Module
			}
		}
	}
	if lesson == nil || !lesson.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if !outline.IsModuleUnlocked(module.ID, completed) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Complete the previous modules to unlock this lesson.", fiber.Map{
			"next_lesson": outline.NextIncompleteLesson(completed),
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", fiber.Map{
		"course":       course,
		"module":       module,
		"lesson":       lesson,
		"is_completed": completed[lesson.ID],
	})
}

// MarkLessonComplete records a completion and tells the caller what to do
// next. Repeating the call for the same lesson is a no-op, and the
// course-completed notification fires only on the call that finished the
// course.
func MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.
		Where("user_id = ? AND course_id = ?", userID, lesson.CourseID).
		First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You must be enrolled in this course first!", nil)
	}

	added, err := courseModels.MarkLessonComplete(database.Database.Db, enrollment.ID, lesson.ID)
	if err != nil {
		log.Printf("Error marking lesson %d complete for enrollment %d: %v", lesson.ID, enrollment.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson complete!", nil)
	}

	outline, err := courseModels.LoadOutline(database.Database.Db, lesson.CourseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course outline!", nil)
	}
	completed, err := courseModels.LoadCompletedLessonIDs(database.Database.Db, enrollment.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	// Advancement uses the same published-only ordering as the unlock math.
	next := outline.NextIncompleteLesson(completed)

	if added && outline.IsComplete(completed) {
		var course courseModels.Course
		if err := database.Database.Db.First(&course, lesson.CourseID).Error; err == nil {
			utils.Publish(utils.Event{
				Type:        utils.EventCourseCompleted,
				Email:       user.Email,
				Name:        user.FirstName,
				CourseTitle: course.Title,
			})
		}
	}

	message := "Lesson marked complete!"
	if next == nil {
		message = "Congratulations! You have completed the course."
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"next_lesson":         next,
		"progress_percentage": outline.ProgressPercentage(completed),
	})
}

// GetCourseProgress reports overall progress and per-module state
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	slug := c.Locals("courseSlug").(string)

	var course courseModels.Course
	if err := database.Database.Db.
		Where("slug = ? AND is_deleted = ?", slug, false).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.
		Where("user_id = ? AND course_id = ?", userID, course.ID).
		First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	outline, err := courseModels.LoadOutline(database.Database.Db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course outline!", nil)
	}
	completed, err := courseModels.LoadCompletedLessonIDs(database.Database.Db, enrollment.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	type moduleState struct {
		ModuleID   uint   `json:"module_id"`
		Title      string `json:"title"`
		IsUnlocked bool   `json:"is_unlocked"`
		IsComplete bool   `json:"is_complete"`
	}

	states := make([]moduleState, 0, len(outline.Modules))
	for i := range outline.Modules {
		m := &outline.Modules[i]
		states = append(states, moduleState{
			ModuleID:   m.Module.ID,
			Title:      m.Module.Title,
			IsUnlocked: outline.IsModuleUnlocked(m.Module.ID, completed),
			IsComplete: m.IsModuleComplete(completed),
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"progress_percentage": outline.ProgressPercentage(completed),
		"modules":             states,
		"next_lesson":         outline.NextIncompleteLesson(completed),
	})
}
