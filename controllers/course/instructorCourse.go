package controllers

import (
	"erudio/database"
	"erudio/middleware"
	courseModels "erudio/models/course"
	"erudio/utils"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// uniqueCourseSlug derives a slug from the title, suffixing a counter until
// it is free. The unique index remains the authority; the loop just keeps
// the common case readable.
func uniqueCourseSlug(db *gorm.DB, title string) string {
	base := utils.Slugify(title)
	slug := base
	for counter := 1; ; counter++ {
		var count int64
		db.Model(&courseModels.Course{}).Where("slug = ?", slug).Count(&count)
		if count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func uniqueLessonSlug(db *gorm.DB, courseID uint, title string) string {
	base := utils.Slugify(title)
	slug := base
	for counter := 1; ; counter++ {
		var count int64
		db.Model(&courseModels.Lesson{}).Where("course_id = ? AND slug = ?", courseID, slug).Count(&count)
		if count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// ownedCourse loads a course owned by the calling instructor
func ownedCourse(c *fiber.Ctx, courseID uint) (*courseModels.Course, error) {
	userID := c.Locals("userId").(uint)
	var course courseModels.Course
	err := database.Database.Db.
		Where("id = ? AND instructor_id = ? AND is_deleted = ?", courseID, userID, false).
		First(&course).Error
	return &course, err
}

// CreateCourse creates a draft course for the calling instructor
func CreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title            string  `json:"title" validate:"required"`
		ShortDescription string  `json:"short_description" validate:"required"`
		LongDescription  string  `json:"long_description"`
		Price            float64 `json:"price" validate:"gte=0"`
		IsPaid           *bool   `json:"is_paid"`
		ThumbnailURL     string  `json:"thumbnail_url"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	course := courseModels.Course{
		Title:            reqData.Title,
		Slug:             uniqueCourseSlug(db, reqData.Title),
		ShortDescription: reqData.ShortDescription,
		LongDescription:  reqData.LongDescription,
		InstructorID:     userID,
		Price:            reqData.Price,
		ThumbnailURL:     reqData.ThumbnailURL,
		IsPaid:           reqData.IsPaid == nil || *reqData.IsPaid,
	}

	if err := db.Create(&course).Error; err != nil {
		log.Printf("Error creating course: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// UpdateCourse updates mutable course fields. The slug is stable once
// assigned and is deliberately not recomputed on title changes.
func UpdateCourse(c *fiber.Ctx) error {
	courseID := uint(c.Locals("courseID").(int))

	course, err := ownedCourse(c, courseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title            *string  `json:"title"`
		ShortDescription *string  `json:"short_description"`
		LongDescription  *string  `json:"long_description"`
		Price            *float64 `json:"price" validate:"omitempty,gte=0"`
		IsPaid           *bool    `json:"is_paid"`
		IsPublished      *bool    `json:"is_published"`
		ThumbnailURL     *string  `json:"thumbnail_url"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.ShortDescription != nil {
		updates["short_description"] = *reqData.ShortDescription
	}
	if reqData.LongDescription != nil {
		updates["long_description"] = *reqData.LongDescription
	}
	if reqData.Price != nil {
		updates["price"] = *reqData.Price
	}
	if reqData.IsPaid != nil {
		updates["is_paid"] = *reqData.IsPaid
	}
	if reqData.IsPublished != nil {
		updates["is_published"] = *reqData.IsPublished
	}
	if reqData.ThumbnailURL != nil {
		updates["thumbnail_url"] = *reqData.ThumbnailURL
	}

	if len(updates) > 0 {
		if err := database.Database.Db.Model(course).Updates(updates).Error; err != nil {
			log.Printf("Error updating course %d: %v", course.ID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// CreateModule appends a module at the end of the course
func CreateModule(c *fiber.Ctx) error {
	courseID := uint(c.Locals("courseID").(int))

	course, err := ownedCourse(c, courseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedModule").(*struct {
		Title string `json:"title" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var last int
	db.Model(&courseModels.Module{}).
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Select("COALESCE(MAX(order_index), 0)").Scan(&last)

	module := courseModels.Module{
		CourseID:   course.ID,
		Title:      reqData.Title,
		OrderIndex: last + 1,
	}

	if err := db.Create(&module).Error; err != nil {
		log.Printf("Error creating module: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// CreateLesson appends a lesson at the end of a module
func CreateLesson(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if _, err := ownedCourse(c, module.CourseID); err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title       string `json:"title" validate:"required"`
		VideoURL    string `json:"video_url"`
		Content     string `json:"content"`
		IsPublished *bool  `json:"is_published"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var last int
	db.Model(&courseModels.Lesson{}).
		Where("module_id = ? AND is_deleted = ?", module.ID, false).
		Select("COALESCE(MAX(order_index), 0)").Scan(&last)

	lesson := courseModels.Lesson{
		ModuleID:    module.ID,
		CourseID:    module.CourseID,
		Title:       reqData.Title,
		Slug:        uniqueLessonSlug(db, module.CourseID, reqData.Title),
		VideoURL:    reqData.VideoURL,
		Content:     reqData.Content,
		OrderIndex:  last + 1,
		IsPublished: reqData.IsPublished == nil || *reqData.IsPublished,
	}

	if err := db.Create(&lesson).Error; err != nil {
		log.Printf("Error creating lesson: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// ReorderModules renumbers a course's modules to match the submitted ID
// order. The renumbering happens in one transaction so readers never see a
// half-applied ordering, and every module of the course must be listed
// exactly once.
func ReorderModules(c *fiber.Ctx) error {
	courseID := uint(c.Locals("courseID").(int))

	course, err := ownedCourse(c, courseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedReorder").(*struct {
		IDs []uint `json:"ids" validate:"required,min=1,unique"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var count int64
	db.Model(&courseModels.Module{}).
		Where("course_id = ? AND is_deleted = ?", course.ID, false).Count(&count)
	if int(count) != len(reqData.IDs) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Reorder must list every module of the course exactly once!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for position, id := range reqData.IDs {
			result := tx.Model(&courseModels.Module{}).
				Where("id = ? AND course_id = ?", id, course.ID).
				Update("order_index", position+1)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("module %d does not belong to course %d", id, course.ID)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error reordering modules for course %d: %v", course.ID, err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to reorder modules!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules reordered successfully!", nil)
}

// ReorderLessons renumbers the lessons of one module atomically
func ReorderLessons(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if _, err := ownedCourse(c, module.CourseID); err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedReorder").(*struct {
		IDs []uint `json:"ids" validate:"required,min=1,unique"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var count int64
	db.Model(&courseModels.Lesson{}).
		Where("module_id = ? AND is_deleted = ?", module.ID, false).Count(&count)
	if int(count) != len(reqData.IDs) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Reorder must list every lesson of the module exactly once!", nil)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for position, id := range reqData.IDs {
			result := tx.Model(&courseModels.Lesson{}).
				Where("id = ? AND module_id = ?", id, module.ID).
				Update("order_index", position+1)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("lesson %d does not belong to module %d", id, module.ID)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error reordering lessons for module %d: %v", module.ID, err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to reorder lessons!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons reordered successfully!", nil)
}
