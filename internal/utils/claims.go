package utils

import (
	"errors"

	"merchantportal/internal/models"

	"github.com/gofiber/fiber/v2"
)

const PrincipalKey = "principal"

// GetPrincipal extracts the authenticated caller from the Fiber context.
// It returns an error if the auth middleware did not run for this route.
func GetPrincipal(c *fiber.Ctx) (*models.Principal, error) {
	v := c.Locals(PrincipalKey)
	if v == nil {
		return nil, errors.New("principal not found in context")
	}

	p, ok := v.(*models.Principal)
	if !ok {
		return nil, errors.New("invalid principal type")
	}
	return p, nil
}

func SetPrincipal(c *fiber.Ctx, p *models.Principal) {
	c.Locals(PrincipalKey, p)
}
