package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tablescout/tablescout/app/models"
	"github.com/tablescout/tablescout/app/repository"
	"github.com/tablescout/tablescout/internal/pkg/entitlements"
	"github.com/tablescout/tablescout/internal/pkg/metrics/counter"
	"github.com/tablescout/tablescout/internal/pkg/usercontext"
	"github.com/tablescout/tablescout/internal/pkg/utils"
)

// HandleGetAccount returns account information for the authenticated user.
func HandleGetAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	plan := entitlements.PlanFor(user)

	searchesToday, err := counter.CountToday(user.ID, models.UsageKindSearch)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load usage")
	}
	viewsToday, err := counter.CountToday(user.ID, models.UsageKindRestaurantView)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load usage")
	}

	response := fiber.Map{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"avatar_url":    utils.AvatarURL(user.Email, 200),
		"status":        user.Status,
		"locale":        user.Locale,
		"is_admin":      user.Role == models.ROLE_ADMIN,
		"created_at":    user.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(user.LastLoginAt),
		"subscription": fiber.Map{
			"plan":       string(plan),
			"is_premium": user.IsPremium,
			"status":     user.SubscriptionStatus,
			"variant":    user.SubscriptionVariant,
			"ends_at":    formatTimePtr(user.SubscriptionEndsAt),
		},
		"usage": fiber.Map{
			"searches_today":         searchesToday,
			"restaurant_views_today": viewsToday,
		},
		"limits": fiber.Map{
			"daily_searches":     entitlements.DailySearchLimit(plan),
			"can_save_favorites": entitlements.CanSaveFavorites(plan),
		},
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// HandleListUsage returns the most recent flushed usage records.
func HandleListUsage(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	records, err := repository.GetGlobalFactory().GetUsageRepository().ListForUser(userCtx.UserID, c.QueryInt("limit", 30))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load usage records")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"records": records})
}
