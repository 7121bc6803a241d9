package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// jsonError writes the shared error envelope.
func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// formatTimePtr formats a nullable timestamp as RFC3339 UTC, or nil.
func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
