package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tablescout/tablescout/app/repository"
	"github.com/tablescout/tablescout/internal/pkg/database"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Install the repository factory used by middleware and controllers.
	repository.SetGlobalFactory(repository.NewFactory(database.GetDB()))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
