package handlers

import (
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type MediaHandler struct {
	mediaService MediaService
}

func NewMediaHandler(mediaSvc MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaSvc}
}

// SignedURL issues a signed URL for ?key= or ?url=, or redirects to it when
// redirect=true.
func (h *MediaHandler) SignedURL(c *fiber.Ctx) error {
	target := c.Query("key")
	if target == "" {
		target = c.Query("url")
	}

	signed, err := h.mediaService.SignedURL(c.UserContext(), target)
	if err != nil {
		return response.FromError(c, err)
	}

	if c.QueryBool("redirect") {
		return c.Redirect(signed, fiber.StatusFound)
	}
	return response.Success(c, fiber.Map{"signedUrl": signed})
}
