package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/tablescout/tablescout/app/models"
	"github.com/tablescout/tablescout/internal/pkg/entitlements"
	"github.com/tablescout/tablescout/internal/pkg/usercontext"
)

// setupUsageApp swaps the usage seams and mounts the metering routes behind
// a stub that injects the authenticated user context.
func setupUsageApp(t *testing.T, user *models.User, used int64) (*fiber.App, *int) {
	t.Helper()

	prevLoad, prevCount, prevSearch, prevView := usageLoadUser, usageCountToday, usageAddSearch, usageAddView
	t.Cleanup(func() {
		usageLoadUser, usageCountToday, usageAddSearch, usageAddView = prevLoad, prevCount, prevSearch, prevView
	})

	recorded := 0
	usageLoadUser = func(id uint) (*models.User, error) { return user, nil }
	usageCountToday = func(userID uint, kind string) (int64, error) { return used, nil }
	usageAddSearch = func(userID uint) error { recorded++; return nil }
	usageAddView = func(userID uint) error { recorded++; return nil }

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("USER_CONTEXT", usercontext.UserContext{
				UserID:     user.ID,
				IsLoggedIn: true,
				IsPremium:  user.IsPremium,
			})
		}
		return c.Next()
	})
	app.Post("/api/v1/usage/searches", HandleRecordSearch)
	app.Post("/api/v1/usage/restaurant-views", HandleRecordRestaurantView)
	return app, &recorded
}

func TestRecordSearchUnderCap(t *testing.T) {
	user := &models.User{ID: 1, Email: "diner@example.com"}
	app, recorded := setupUsageApp(t, user, entitlements.FreeDailySearches-1)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/usage/searches", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, true, body["recorded"])
	assert.Equal(t, float64(entitlements.FreeDailySearches), body["used"])
	assert.Equal(t, float64(entitlements.FreeDailySearches), body["limit"])
	assert.Equal(t, 1, *recorded)
}

func TestRecordSearchAtCap(t *testing.T) {
	user := &models.User{ID: 1, Email: "diner@example.com"}
	app, recorded := setupUsageApp(t, user, entitlements.FreeDailySearches)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/usage/searches", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, "limit_exceeded", body["error"])
	assert.Equal(t, float64(entitlements.FreeDailySearches), body["used"])
	assert.Equal(t, float64(entitlements.FreeDailySearches), body["limit"])
	assert.Equal(t, 0, *recorded, "capped request must not record a search")
}

func TestRecordSearchPremiumUnlimited(t *testing.T) {
	user := &models.User{ID: 2, Email: "vip@example.com", IsPremium: true}
	app, recorded := setupUsageApp(t, user, 10_000)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/usage/searches", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, float64(entitlements.Unlimited), body["limit"])
	assert.Equal(t, 1, *recorded)
}

func TestRecordSearchUnauthenticated(t *testing.T) {
	app, recorded := setupUsageApp(t, nil, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/usage/searches", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, *recorded)
}

func TestRecordRestaurantView(t *testing.T) {
	user := &models.User{ID: 1, Email: "diner@example.com"}
	app, recorded := setupUsageApp(t, user, entitlements.FreeDailySearches)

	// views stay unmetered even when the search cap is exhausted
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/usage/restaurant-views", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, *recorded)
}
