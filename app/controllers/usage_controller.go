package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/tablescout/tablescout/app/models"
	"github.com/tablescout/tablescout/app/repository"
	"github.com/tablescout/tablescout/internal/pkg/entitlements"
	"github.com/tablescout/tablescout/internal/pkg/metrics/counter"
	"github.com/tablescout/tablescout/internal/pkg/usercontext"
)

// Swappable seams for handler tests, like newWebhookProcessor.
var (
	usageLoadUser = func(id uint) (*models.User, error) {
		return repository.GetGlobalFactory().GetUserRepository().GetByID(id)
	}
	usageCountToday = counter.CountToday
	usageAddSearch  = counter.AddSearch
	usageAddView    = counter.AddRestaurantView
)

// HandleRecordSearch meters one restaurant search, enforcing the free-tier
// daily cap.
func HandleRecordSearch(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	user, err := usageLoadUser(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	plan := entitlements.PlanFor(user)
	limit := entitlements.DailySearchLimit(plan)
	used, err := usageCountToday(user.ID, models.UsageKindSearch)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load usage")
	}
	if limit != entitlements.Unlimited && used >= limit {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":   "limit_exceeded",
			"message": "Daily search limit reached. Upgrade to premium for unlimited searches.",
			"used":    used,
			"limit":   limit,
		})
	}

	if err := usageAddSearch(user.ID); err != nil {
		log.Printf("usage: recording search for user %d failed: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to record search")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"recorded": true,
		"used":     used + 1,
		"limit":    limit,
	})
}

// HandleRecordRestaurantView meters one restaurant detail view. Views are
// unmetered by plan; the counter feeds engagement stats only.
func HandleRecordRestaurantView(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	if err := usageAddView(userCtx.UserID); err != nil {
		log.Printf("usage: recording view for user %d failed: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to record view")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"recorded": true})
}
