package handlers

import (
	"merchantportal/internal/services/auth"
	"merchantportal/internal/services/session"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService     AuthService
	merchantService MerchantService
}

func NewAuthHandler(authService AuthService, merchantService MerchantService) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		merchantService: merchantService,
	}
}

// Login signs a merchant in and sets the session cookies.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input auth.LoginInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.authService.Login(c.UserContext(), session.NewFiberJar(c), input, auth.Client{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{"user": result})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.authService.Logout(c.UserContext(), session.NewFiberJar(c))
	return response.Success(c, fiber.Map{"message": "Logged out"})
}

// Session reports whether the session cookies are still usable without
// touching the identity provider.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{"session": h.authService.Status(session.NewFiberJar(c))})
}

// Me returns the signed-in merchant parent and its stores.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}

	parent, err := h.merchantService.GetParent(c.UserContext(), p.MerchantParentID)
	if err != nil {
		return response.FromError(c, err)
	}
	stores, err := h.merchantService.ListStores(c.UserContext(), p.MerchantParentID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{
		"user": fiber.Map{
			"id":    p.AuthUserID,
			"email": p.Email,
			"phone": p.Phone,
		},
		"merchant": parent,
		"stores":   stores,
	})
}
