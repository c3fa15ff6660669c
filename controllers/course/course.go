package controllers

import (
	"erudio/database"
	"erudio/middleware"
	courseModels "erudio/models/course"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists published courses, optionally filtered by a search term
func GetAllCourses(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedCourseList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("is_published = ? AND is_deleted = ?", true, false)

	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		db = db.Where("title ILIKE ? OR short_description ILIKE ?", like, like)
	}

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// GetCourseDetails returns a published course with its ordered outline and,
// for enrolled callers, per-module lock state and overall progress.
func GetCourseDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	slug := c.Locals("courseSlug").(string)

	var course courseModels.Course
	if err := database.Database.Db.
		Where("slug = ? AND is_published = ? AND is_deleted = ?", slug, true, false).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	outline, err := courseModels.LoadOutline(database.Database.Db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course outline!", nil)
	}

	var enrollment courseModels.Enrollment
	isEnrolled := database.Database.Db.
		Where("user_id = ? AND course_id = ?", userID, course.ID).
		First(&enrollment).Error == nil

	type moduleView struct {
		Module     courseModels.Module   `json:"module"`
		Lessons    []courseModels.Lesson `json:"lessons"`
		IsUnlocked bool                  `json:"is_unlocked"`
		IsComplete bool                  `json:"is_complete"`
	}

	completed := map[uint]bool{}
	if isEnrolled {
		if completed, err = courseModels.LoadCompletedLessonIDs(database.Database.Db, enrollment.ID); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
		}
	}

	modules := make([]moduleView, 0, len(outline.Modules))
	for i := range outline.Modules {
		m := &outline.Modules[i]
		view := moduleView{Module: m.Module, Lessons: m.Lessons}
		if isEnrolled {
			view.IsUnlocked = outline.IsModuleUnlocked(m.Module.ID, completed)
			view.IsComplete = m.IsModuleComplete(completed)
		}
		modules = append(modules, view)
	}

	data := fiber.Map{
		"course":      course,
		"modules":     modules,
		"is_enrolled": isEnrolled,
	}
	if isEnrolled {
		data["progress_percentage"] = outline.ProgressPercentage(completed)
		data["next_lesson"] = outline.NextIncompleteLesson(completed)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", data)
}
