package courseValidator

import (
	"erudio/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CourseList validates optional pagination for the catalog listing
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)
		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

// CourseSlug validates the :slug path parameter
func CourseSlug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.TrimSpace(c.Params("slug"))
		if slug == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course slug is required!", nil)
		}
		c.Locals("courseSlug", slug)
		return c.Next()
	}
}

// LessonParams validates the :slug and :lessonSlug path parameters
func LessonParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseSlug := strings.TrimSpace(c.Params("slug"))
		lessonSlug := strings.TrimSpace(c.Params("lessonSlug"))
		if courseSlug == "" || lessonSlug == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course and lesson slugs are required!", nil)
		}
		c.Locals("courseSlug", courseSlug)
		c.Locals("lessonSlug", lessonSlug)
		return c.Next()
	}
}

// LessonID validates the :id path parameter for lesson completion
func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}
		c.Locals("lessonID", id)
		return c.Next()
	}
}
