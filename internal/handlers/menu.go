package handlers

import (
	"merchantportal/internal/services/menu"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type MenuHandler struct {
	menuService MenuService
}

func NewMenuHandler(menuSvc MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuSvc}
}

type availabilityInput struct {
	Available *bool `json:"available" validate:"required"`
}

func (h *MenuHandler) ListItems(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	items, err := h.menuService.ListItems(c.UserContext(), p.MerchantParentID, c.Params("storeId"), c.Query("category"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"items": items})
}

func (h *MenuHandler) CreateItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input menu.ItemInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	item, err := h.menuService.CreateItem(c.UserContext(), p.MerchantParentID, c.Params("storeId"), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{"item": item})
}

func (h *MenuHandler) UpdateItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input menu.ItemUpdate
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	item, err := h.menuService.UpdateItem(c.UserContext(), p.MerchantParentID, c.Params("storeId"), c.Params("itemId"), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"item": item})
}

func (h *MenuHandler) SetAvailability(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input availabilityInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	item, err := h.menuService.SetAvailability(c.UserContext(), p.MerchantParentID, c.Params("storeId"), c.Params("itemId"), *input.Available)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"item": item})
}

func (h *MenuHandler) DeleteItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.menuService.DeleteItem(c.UserContext(), p.MerchantParentID, c.Params("storeId"), c.Params("itemId")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, nil)
}

func (h *MenuHandler) ListOffers(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	offers, err := h.menuService.ListOffers(c.UserContext(), p.MerchantParentID, c.Params("storeId"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"offers": offers})
}

func (h *MenuHandler) CreateOffer(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input menu.OfferInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	offer, err := h.menuService.CreateOffer(c.UserContext(), p.MerchantParentID, c.Params("storeId"), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{"offer": offer})
}

func (h *MenuHandler) DeleteOffer(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.menuService.DeleteOffer(c.UserContext(), p.MerchantParentID, c.Params("storeId"), c.Params("offerId")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, nil)
}
