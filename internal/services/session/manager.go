// Package session owns the portal's first-party session cookies, which track
// session lifetime independently of the identity provider's tokens.
package session

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	cookieSessionStart = "session_start"
	cookieLastActivity = "last_activity"
	cookieSessionID    = "session_id"
	cookieDeviceID     = "device_id"
	cookieAccessToken  = "access_token"
	cookieRefreshToken = "refresh_token"

	deviceCookieMaxAge = 365 * 24 * time.Hour
)

// Reasons reported by CheckValidity.
const (
	ReasonMissing         = "missing"
	ReasonExpiredAbsolute = "expired_absolute"
	ReasonExpiredIdle     = "expired_idle"
)

// Metadata is what the four session cookies record.
type Metadata struct {
	SessionStart time.Time
	LastActivity time.Time
	SessionID    string
	DeviceID     string
}

type Validity struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type Options struct {
	Environment    string
	Production     bool
	Domain         string
	AbsoluteMaxAge time.Duration
	IdleMaxAge     time.Duration
}

type Manager struct {
	opts   Options
	prefix string
	now    func() time.Time
}

func NewManager(opts Options) *Manager {
	return &Manager{
		opts:   opts,
		prefix: CookiePrefix(opts.Environment, opts.Production),
		now:    time.Now,
	}
}

// CookiePrefix keeps production and non-production cookies apart when they
// share a parent domain. An unnamed non-production environment is "dev".
func CookiePrefix(env string, production bool) string {
	if production {
		return "mp_"
	}
	if env == "" {
		env = "dev"
	}
	return "mp_" + env + "_"
}

func (m *Manager) Name(cookie string) string {
	return m.prefix + cookie
}

// Start begins a new session. The device id survives from any earlier session.
func (m *Manager) Start(jar Jar) Metadata {
	now := m.now()
	meta := Metadata{
		SessionStart: now,
		LastActivity: now,
		SessionID:    uuid.NewString(),
		DeviceID:     jar.Get(m.Name(cookieDeviceID)),
	}
	if meta.DeviceID == "" {
		meta.DeviceID = uuid.NewString()
	}

	stamp := formatMillis(now)
	jar.Set(m.cookie(cookieSessionStart, stamp, m.opts.AbsoluteMaxAge))
	jar.Set(m.cookie(cookieLastActivity, stamp, m.opts.AbsoluteMaxAge))
	jar.Set(m.cookie(cookieSessionID, meta.SessionID, m.opts.AbsoluteMaxAge))
	jar.Set(m.cookie(cookieDeviceID, meta.DeviceID, deviceCookieMaxAge))
	return meta
}

// Touch records activity now.
func (m *Manager) Touch(jar Jar) time.Time {
	now := m.now()
	jar.Set(m.cookie(cookieLastActivity, formatMillis(now), m.opts.AbsoluteMaxAge))
	return now
}

func (m *Manager) Read(jar Jar) Metadata {
	return Metadata{
		SessionStart: parseMillis(jar.Get(m.Name(cookieSessionStart))),
		LastActivity: parseMillis(jar.Get(m.Name(cookieLastActivity))),
		SessionID:    jar.Get(m.Name(cookieSessionID)),
		DeviceID:     jar.Get(m.Name(cookieDeviceID)),
	}
}

// Check reads the cookies and applies the configured limits.
func (m *Manager) Check(jar Jar) (Metadata, Validity) {
	meta := m.Read(jar)
	return meta, CheckValidity(meta, m.now(), m.opts.AbsoluteMaxAge, m.opts.IdleMaxAge)
}

// Expire clears all four session cookies on the response and removes them
// from the request so later reads in the same request see no session.
func (m *Manager) Expire(jar Jar) {
	for _, name := range []string{cookieSessionStart, cookieLastActivity, cookieSessionID, cookieDeviceID} {
		jar.Clear(m.cookie(name, "", 0))
	}
}

// SetAuthTokens stores the provider token pair next to the session cookies.
func (m *Manager) SetAuthTokens(jar Jar, accessToken, refreshToken string) {
	jar.Set(m.cookie(cookieAccessToken, accessToken, m.opts.AbsoluteMaxAge))
	jar.Set(m.cookie(cookieRefreshToken, refreshToken, m.opts.AbsoluteMaxAge))
}

func (m *Manager) AuthTokens(jar Jar) (accessToken, refreshToken string) {
	return jar.Get(m.Name(cookieAccessToken)), jar.Get(m.Name(cookieRefreshToken))
}

func (m *Manager) ClearAuthTokens(jar Jar) {
	jar.Clear(m.cookie(cookieAccessToken, "", 0))
	jar.Clear(m.cookie(cookieRefreshToken, "", 0))
}

// CheckValidity decides whether a session may continue at now. The absolute
// limit is checked first, so a session past both limits reports
// expired_absolute.
func CheckValidity(meta Metadata, now time.Time, absoluteMax, idleMax time.Duration) Validity {
	if meta.SessionStart.IsZero() || meta.LastActivity.IsZero() || meta.SessionID == "" {
		return Validity{Reason: ReasonMissing}
	}
	if now.Sub(meta.SessionStart) > absoluteMax {
		return Validity{Reason: ReasonExpiredAbsolute}
	}
	if now.Sub(meta.LastActivity) > idleMax {
		return Validity{Reason: ReasonExpiredIdle}
	}
	return Validity{Valid: true}
}

func (m *Manager) cookie(name, value string, maxAge time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     m.Name(name),
		Value:    value,
		Path:     "/",
		Domain:   m.opts.Domain,
		MaxAge:   int(maxAge / time.Second),
		HTTPOnly: true,
		Secure:   m.opts.Production,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
