package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tablescout/tablescout/app/repository"
	"github.com/tablescout/tablescout/internal/pkg/usercontext"
)

// Seam like newWebhookProcessor.
var webhookEventRepo = func() repository.WebhookEventRepository {
	return repository.GetGlobalFactory().GetWebhookEventRepository()
}

func requireAdmin(c *fiber.Ctx) (usercontext.UserContext, bool) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || !userCtx.IsAdmin {
		return userCtx, false
	}
	return userCtx, true
}

// HandleListUnprocessedWebhooks lists webhook event rows stuck at
// processed=false. These are deliveries that failed between the mutation and
// the mark-processed write; support re-drives them manually.
func HandleListUnprocessedWebhooks(c *fiber.Ctx) error {
	if _, ok := requireAdmin(c); !ok {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Admin access required")
	}

	events, err := webhookEventRepo().ListUnprocessed(c.QueryInt("limit", 100))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load webhook events")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":  len(events),
		"events": events,
	})
}

// HandleGetWebhookEvent returns one stored webhook delivery by its dedup key,
// payload included, for inspection before a re-drive.
func HandleGetWebhookEvent(c *fiber.Ctx) error {
	if _, ok := requireAdmin(c); !ok {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Admin access required")
	}

	eventID := c.Params("event_id")
	if eventID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Missing event id")
	}

	event, err := webhookEventRepo().GetByEventID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Unknown webhook event")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load webhook event")
	}

	return c.Status(fiber.StatusOK).JSON(event)
}
