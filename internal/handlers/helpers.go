package handlers

import (
	"merchantportal/internal/apperrors"
	"merchantportal/internal/models"
	"merchantportal/internal/utils"
	"merchantportal/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return validation.Struct(dst)
}

// principal returns the caller set by the auth middleware.
func principal(c *fiber.Ctx) (*models.Principal, error) {
	p, err := utils.GetPrincipal(c)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUnauthenticated, "NOT_AUTHENTICATED", "Not authenticated")
	}
	return p, nil
}
