// Package middleware provides the Fiber middleware that guards portal routes:
// the merchant session check and the shared-secret guards for cron and hook
// callers.
package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"merchantportal/internal/logger"
	"merchantportal/internal/models"
	"merchantportal/internal/services/session"
	"merchantportal/internal/utils"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Authenticator resolves the merchant behind a request's session cookies.
type Authenticator interface {
	Authenticate(ctx context.Context, jar session.Jar) (*models.Principal, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Handler requires a live session and an active merchant, and stores the
// principal for the handlers.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	principal, err := m.auth.Authenticate(c.UserContext(), session.NewFiberJar(c))
	if err != nil {
		logger.FromFiber(c).Debug("Request not authenticated", zap.Error(err))
		return response.FromError(c, err)
	}

	utils.SetPrincipal(c, principal)
	return c.Next()
}

// CronAuth accepts only "Authorization: Bearer <secret>".
func CronAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || !secretMatches(secret, token) {
			logger.FromFiber(c).Warn("Rejected cron call", zap.String("path", c.Path()))
			return response.Unauthorized(c)
		}
		return c.Next()
	}
}

// HookSecret accepts only requests carrying the shared secret in X-Hook-Secret.
func HookSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !secretMatches(secret, c.Get("X-Hook-Secret")) {
			logger.FromFiber(c).Warn("Rejected hook call", zap.String("path", c.Path()))
			return response.Unauthorized(c)
		}
		return c.Next()
	}
}

// secretMatches never accepts an unset secret.
func secretMatches(secret, got string) bool {
	if secret == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(got)) == 1
}
