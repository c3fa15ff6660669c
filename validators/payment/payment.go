package paymentValidator

import (
	"erudio/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CourseSlug validates the :slug path parameter for checkout
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

// PlanID validates the :id path parameter for team checkout
func PlanID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Plan ID!", nil)
		}
		c.Locals("planID", id)
		return c.Next()
	}
}

// VerifyReference requires the reference query parameter on the callback
func VerifyReference() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reference := strings.TrimSpace(c.Query("reference"))
		if reference == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment verification failed. No reference provided.", nil)
		}
		c.Locals("reference", reference)
		return c.Next()
	}
}
