package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/tablescout/tablescout/app/models"
	"github.com/tablescout/tablescout/app/repository"
	"github.com/tablescout/tablescout/internal/pkg/usercontext"
)

type stubWebhookEventRepo struct {
	events []models.WebhookEvent
}

func (r *stubWebhookEventRepo) GetByEventID(eventID string) (*models.WebhookEvent, error) {
	for i := range r.events {
		if r.events[i].EventID == eventID {
			return &r.events[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubWebhookEventRepo) ListUnprocessed(limit int) ([]models.WebhookEvent, error) {
	var out []models.WebhookEvent
	for _, ev := range r.events {
		if !ev.Processed {
			out = append(out, ev)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func setupAdminApp(t *testing.T, repo repository.WebhookEventRepository, isAdmin bool) *fiber.App {
	t.Helper()
	previous := webhookEventRepo
	webhookEventRepo = func() repository.WebhookEventRepository { return repo }
	t.Cleanup(func() { webhookEventRepo = previous })

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			UserID:     1,
			IsLoggedIn: true,
			IsAdmin:    isAdmin,
		})
		return c.Next()
	})
	app.Get("/api/v1/admin/webhooks/unprocessed", HandleListUnprocessedWebhooks)
	app.Get("/api/v1/admin/webhooks/:event_id", HandleGetWebhookEvent)
	return app
}

func TestListUnprocessedWebhooks(t *testing.T) {
	repo := &stubWebhookEventRepo{events: []models.WebhookEvent{
		{ID: 1, EventID: "subscription_created:sub_1:2025-06-01T10:00:00Z", Processed: true},
		{ID: 2, EventID: "subscription_updated:sub_1:2025-06-02T10:00:00Z", Processed: false},
	}}
	app := setupAdminApp(t, repo, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/admin/webhooks/unprocessed", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, float64(1), body["count"])
}

func TestGetWebhookEvent(t *testing.T) {
	repo := &stubWebhookEventRepo{events: []models.WebhookEvent{
		{ID: 1, EventID: "subscription_created:sub_1:2025-06-01T10:00:00Z", EventName: "subscription_created"},
	}}
	app := setupAdminApp(t, repo, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/admin/webhooks/subscription_created:sub_1:2025-06-01T10:00:00Z", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, "subscription_created", body["event_name"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/admin/webhooks/unknown-key", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminWebhooksRequireAdmin(t *testing.T) {
	app := setupAdminApp(t, &stubWebhookEventRepo{}, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/admin/webhooks/unprocessed", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
