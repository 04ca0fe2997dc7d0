// Package response writes the portal's JSON envelope:
// {"success": true, ...} or {"success": false, "error": "..."}.
package response

import (
	"merchantportal/internal/apperrors"
	"merchantportal/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Success writes 200 with the given fields merged into the envelope.
func Success(c *fiber.Ctx, fields fiber.Map) error {
	return Status(c, fiber.StatusOK, fields)
}

func Created(c *fiber.Ctx, fields fiber.Map) error {
	return Status(c, fiber.StatusCreated, fields)
}

func Status(c *fiber.Ctx, status int, fields fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Not authenticated")
}

func ServerError(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, "Internal server error")
}

// FromError maps err to its status and envelope. Internal and upstream
// details are logged and replaced with a generic message.
func FromError(c *fiber.Ctx, err error) error {
	de, ok := apperrors.As(err)
	if !ok {
		de = apperrors.Internal(err)
	}

	log := logger.FromFiber(c)
	switch de.Kind {
	case apperrors.KindValidation, apperrors.KindNotFound, apperrors.KindConflict:
		return Error(c, de.Kind.HTTPStatus(), de.Message)
	case apperrors.KindUnauthenticated, apperrors.KindForbidden:
		return Error(c, de.Kind.HTTPStatus(), de.Message)
	case apperrors.KindSessionInvalid:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success":     false,
			"error":       de.Message,
			"forceLogout": true,
		})
	case apperrors.KindUnavailable:
		log.Warn("Upstream unavailable", zap.Error(err))
		return Error(c, fiber.StatusServiceUnavailable, "Service temporarily unavailable")
	case apperrors.KindUpstream:
		log.Error("Upstream error", zap.String("detail", de.Message), zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "Upstream service error")
	default:
		log.Error("Unhandled error", zap.Error(err))
		return ServerError(c)
	}
}

// ErrorHandler is installed as Fiber's ErrorHandler so nothing escapes a
// route without the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		if fe.Code >= fiber.StatusInternalServerError {
			logger.FromFiber(c).Error("Request failed", zap.Error(err))
			return ServerError(c)
		}
		return Error(c, fe.Code, fe.Message)
	}
	return FromError(c, err)
}
