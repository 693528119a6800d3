package sync

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"cal-sync/core/calendar"
	"cal-sync/core/calendar/calendartest"
	"cal-sync/core/syncconf"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, cfg syncconf.Config) (*fiber.App, *calendartest.Memory) {
	t.Helper()
	app := fiber.New()
	mem := calendartest.NewMemory(work, home)
	seedScenario(mem)
	handler := NewHandler(newTestService(mem, cfg))
	handler.RegisterRoutes(app)
	return app, mem
}

func TestHandleRun(t *testing.T) {
	app, mem := setupTestApp(t, testConfig())

	req := httptest.NewRequest("POST", "/sync", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3, body.Plan.Summary.Creates)
	assert.True(t, body.Result.Committed)
	assert.Len(t, mem.Entries(home.ID), 4)
}

func TestHandlePlan(t *testing.T) {
	app, mem := setupTestApp(t, testConfig())

	req := httptest.NewRequest("GET", "/sync/plan", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.DryRun)
	assert.Len(t, body.Plan.Actions, 4)
	assert.Equal(t, 0, mem.Writes)
}

func TestHandleRun_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.DestinationCalendar = "missing"
	app, _ := setupTestApp(t, cfg)

	req := httptest.NewRequest("POST", "/sync", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "missing")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 400, StatusFor(syncconf.ErrNoPrefix))
	assert.Equal(t, 400, StatusFor(calendar.ErrIdenticalCollections))
	assert.Equal(t, 404, StatusFor(calendar.ErrInvalidSourceCollection))
	assert.Equal(t, 503, StatusFor(calendar.ErrAuthorizationDenied))
	assert.Equal(t, 500, StatusFor(calendar.ErrBackendCommunication))
}

func TestLoader(t *testing.T) {
	mem := calendartest.NewMemory(work, home)
	feature := NewFeature(newTestService(mem, testConfig()))

	assert.Equal(t, "sync", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))

	disabled := NewFeature(newTestService(mem, syncconf.Default()))
	assert.False(t, disabled.IsEnabled())
}
