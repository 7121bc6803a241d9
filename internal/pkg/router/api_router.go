package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/tablescout/tablescout/app/controllers"
	apiv1 "github.com/tablescout/tablescout/internal/api/v1"
	"github.com/tablescout/tablescout/internal/pkg/env"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// The webhook endpoint is registered outside the limiter; the payment
	// provider controls its own retry pacing and must never be throttled
	// into a retry loop.
	app.Post("/api/v1/webhooks/lemonsqueezy", controllers.HandleLemonSqueezyWebhook)

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)
}

// newLimiterStorage backs the rate limiter with Redis so limits hold across
// instances. Database 1 keeps limiter keys away from the usage counters.
func newLimiterStorage() *redis.Storage {
	port := 6379
	if v, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379")); err == nil {
		port = v
	}
	return redis.New(redis.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1,
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
