package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tablescout/tablescout/app/controllers"
	"github.com/tablescout/tablescout/internal/pkg/middleware"
)

// APIServer implements the v1 server surface by delegating to the
// controllers, keeping response shapes in one place.
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
}

// RegisterHandlers wires the v1 routes onto the given group.
func RegisterHandlers(v1 fiber.Router, s *APIServer) {
	v1.Get("/ping", s.GetPing)

	auth := v1.Group("/auth")
	auth.Post("/signup", controllers.HandleSignup)
	auth.Get("/confirm/:token", controllers.HandleConfirmEmail)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/password-reset", controllers.HandlePasswordResetRequest)
	auth.Post("/password-reset/confirm", controllers.HandlePasswordResetConfirm)

	protected := v1.Group("", middleware.APIKeyAuthMiddleware())
	protected.Get("/account", controllers.HandleGetAccount)
	protected.Get("/usage", controllers.HandleListUsage)
	protected.Post("/usage/searches", controllers.HandleRecordSearch)
	protected.Post("/usage/restaurant-views", controllers.HandleRecordRestaurantView)

	admin := protected.Group("/admin")
	admin.Get("/webhooks/unprocessed", controllers.HandleListUnprocessedWebhooks)
	admin.Get("/webhooks/:event_id", controllers.HandleGetWebhookEvent)
}
