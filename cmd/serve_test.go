package cmd

import (
	"net/http/httptest"
	"testing"
	"time"

	"cal-sync/core/calendar"
	"cal-sync/core/calendar/calendartest"
	"cal-sync/core/config"
	"cal-sync/core/middleware/auth"
	"cal-sync/core/server"
	"cal-sync/core/syncconf"
	"cal-sync/feature/integrity"
	"cal-sync/feature/sync"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testServices() (*sync.Service, *integrity.Service) {
	mem := calendartest.NewMemory(src, dst)
	mem.Put(calendar.Entry{ID: "a", CollectionID: src.ID, Start: start, End: start.Add(time.Hour), Title: "Standup"})

	cfg := syncconf.Default()
	cfg.SourceCalendar = src.ID
	cfg.DestinationCalendar = dst.ID
	clock := clockwork.NewFakeClockAt(start)
	return sync.NewService(mem, cfg, zap.NewNop(), clock), integrity.NewService(mem, cfg, zap.NewNop(), clock)
}

func TestNewServer(t *testing.T) {
	cfg := &config.Config{Server: server.Config{ApiKey: "secret"}}
	svc, checker := testServices()
	app, err := newServer(cfg, zap.NewNop(), svc, checker)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Ray-ID"))

	resp, err = app.Test(httptest.NewRequest("GET", "/calendars", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/calendars", nil)
	req.Header.Set(auth.HeaderName, "secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/sync/plan?api_key=secret", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/integrity/backend", nil)
	req.Header.Set(auth.HeaderName, "secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestNewScheduler(t *testing.T) {
	svc, _ := testServices()

	c, err := newScheduler("", svc, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = newScheduler("@every 15m", svc, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)

	_, err = newScheduler("every day", svc, zap.NewNop())
	assert.Error(t, err)
}
