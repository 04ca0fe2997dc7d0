package session

import (
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	absMax  = 12 * time.Hour
	idleMax = 30 * time.Minute
)

func newTestManager(now time.Time) *Manager {
	m := NewManager(Options{
		Environment:    "staging",
		AbsoluteMaxAge: absMax,
		IdleMaxAge:     idleMax,
	})
	m.now = func() time.Time { return now }
	return m
}

func TestCheckValidity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		meta   Metadata
		valid  bool
		reason string
	}{
		{
			name:  "fresh",
			meta:  Metadata{SessionStart: now.Add(-time.Hour), LastActivity: now.Add(-time.Minute), SessionID: "s"},
			valid: true,
		},
		{
			name:   "idle but within absolute",
			meta:   Metadata{SessionStart: now.Add(-time.Hour), LastActivity: now.Add(-31 * time.Minute), SessionID: "s"},
			reason: ReasonExpiredIdle,
		},
		{
			name:   "absolute but recently active",
			meta:   Metadata{SessionStart: now.Add(-13 * time.Hour), LastActivity: now.Add(-time.Minute), SessionID: "s"},
			reason: ReasonExpiredAbsolute,
		},
		{
			name:   "both limits exceeded",
			meta:   Metadata{SessionStart: now.Add(-13 * time.Hour), LastActivity: now.Add(-2 * time.Hour), SessionID: "s"},
			reason: ReasonExpiredAbsolute,
		},
		{
			name:  "exactly at idle limit",
			meta:  Metadata{SessionStart: now.Add(-time.Hour), LastActivity: now.Add(-idleMax), SessionID: "s"},
			valid: true,
		},
		{
			name:   "no cookies",
			meta:   Metadata{},
			reason: ReasonMissing,
		},
		{
			name:   "no session id",
			meta:   Metadata{SessionStart: now, LastActivity: now},
			reason: ReasonMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CheckValidity(tt.meta, now, absMax, idleMax)
			assert.Equal(t, tt.valid, v.Valid)
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

func TestStartKeepsDeviceID(t *testing.T) {
	now := time.Now()
	m := newTestManager(now)
	jar := NewMemoryJar()

	first := m.Start(jar)
	require.NotEmpty(t, first.DeviceID)
	require.NotEmpty(t, first.SessionID)

	second := m.Start(jar)
	assert.Equal(t, first.DeviceID, second.DeviceID)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	read := m.Read(jar)
	assert.Equal(t, second.SessionID, read.SessionID)
	assert.Equal(t, now.UnixMilli(), read.SessionStart.UnixMilli())

	assert.Equal(t, int((365 * 24 * time.Hour).Seconds()), jar.Response["mp_staging_device_id"].MaxAge)
	assert.Equal(t, int(absMax.Seconds()), jar.Response["mp_staging_session_id"].MaxAge)
}

func TestTouchMovesLastActivity(t *testing.T) {
	start := time.Now().Add(-20 * time.Minute)
	m := newTestManager(start)
	jar := NewMemoryJar()
	m.Start(jar)

	later := start.Add(20 * time.Minute)
	m.now = func() time.Time { return later }
	_, v := m.Check(jar)
	assert.True(t, v.Valid)

	m.Touch(jar)
	meta := m.Read(jar)
	assert.Equal(t, later.UnixMilli(), meta.LastActivity.UnixMilli())
	assert.Equal(t, start.UnixMilli(), meta.SessionStart.UnixMilli())
}

func TestExpireReportsMissing(t *testing.T) {
	m := newTestManager(time.Now())
	jar := NewMemoryJar()
	m.Start(jar)

	m.Expire(jar)

	_, v := m.Check(jar)
	assert.False(t, v.Valid)
	assert.Equal(t, ReasonMissing, v.Reason)
	for _, name := range []string{"session_start", "last_activity", "session_id", "device_id"} {
		c := jar.Response["mp_staging_"+name]
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.LessOrEqual(t, c.MaxAge, 0)
	}
}

func TestCookiePrefix(t *testing.T) {
	assert.Equal(t, "mp_", CookiePrefix("production", true))
	assert.Equal(t, "mp_development_", CookiePrefix("development", false))
	assert.Equal(t, "mp_staging_", CookiePrefix("staging", false))
	assert.Equal(t, "mp_dev_", CookiePrefix("", false))
}

func TestFiberJarExpireWithinRequest(t *testing.T) {
	m := NewManager(Options{Environment: "test", AbsoluteMaxAge: absMax, IdleMaxAge: idleMax})
	app := fiber.New()

	var before, after Validity
	app.Get("/", func(c *fiber.Ctx) error {
		jar := NewFiberJar(c)
		_, before = m.Check(jar)
		m.Expire(jar)
		_, after = m.Check(jar)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/", nil)
	stamp := strconv.FormatInt(time.Now().Add(-time.Minute).UnixMilli(), 10)
	req.Header.Set("Cookie", "mp_test_session_start="+stamp+"; mp_test_last_activity="+stamp+"; mp_test_session_id=abc; mp_test_device_id=dev")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.True(t, before.Valid)
	assert.Equal(t, ReasonMissing, after.Reason)

	cleared := 0
	for _, h := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(h, "mp_test_") && strings.Contains(h, "=;") {
			cleared++
		}
	}
	assert.Equal(t, 4, cleared)
}

func TestFiberJarStartVisibleInSameRequest(t *testing.T) {
	m := NewManager(Options{Environment: "test", AbsoluteMaxAge: absMax, IdleMaxAge: idleMax})
	app := fiber.New()

	var started, read Metadata
	app.Get("/", func(c *fiber.Ctx) error {
		jar := NewFiberJar(c)
		started = m.Start(jar)
		read = m.Read(jar)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, started.SessionID, read.SessionID)
	assert.Equal(t, started.DeviceID, read.DeviceID)
}
