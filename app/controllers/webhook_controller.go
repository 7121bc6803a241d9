package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tablescout/tablescout/internal/pkg/billing"
	"github.com/tablescout/tablescout/internal/pkg/database"
	"github.com/tablescout/tablescout/internal/pkg/env"
	"github.com/tablescout/tablescout/internal/pkg/mail"
)

// newWebhookProcessor builds the processor per delivery. Swappable seam for
// handler tests.
var newWebhookProcessor = func() (*billing.Processor, error) {
	secret := env.GetEnv("LEMONSQUEEZY_WEBHOOK_SECRET", "")
	db := database.GetDB()
	if db == nil {
		return nil, errors.New("database unavailable")
	}
	return billing.NewProcessorFromDB(secret, db).WithNotifier(mail.NewClientFromEnv()), nil
}

// HandleLemonSqueezyWebhook receives subscription lifecycle events from the
// payment provider. Only the provider calls this endpoint; every non-2xx
// response triggers a provider-side retry.
func HandleLemonSqueezyWebhook(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.SendStatus(fiber.StatusMethodNotAllowed)
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Signature"))

	processor, err := newWebhookProcessor()
	if err != nil {
		log.Printf("webhook: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook processor unavailable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	outcome, err := processor.Process(ctx, rawBody, signature)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidSignature):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
		case errors.Is(err, billing.ErrMissingSecret):
			log.Print("webhook: signing secret not configured")
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook secret not configured")
		default:
			// Malformed payloads and store failures both land here; the
			// provider retries on 500, which is what we want.
			log.Printf("webhook: processing failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook processing failed")
		}
	}

	switch outcome {
	case billing.OutcomeAlreadyProcessed:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "message": "Already processed"})
	case billing.OutcomeUserNotFound:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "message": "User not found"})
	default:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}
}
