package handlers

import (
	"merchantportal/internal/services/order"
	"merchantportal/internal/utils/pagination"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orderService OrderService
}

func NewOrderHandler(orderSvc OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderSvc}
}

// List returns a page of the store's orders, newest first.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}

	page := pagination.ParseFromRequest(c)
	orders, total, err := h.orderService.List(c.UserContext(), p.MerchantParentID, c.Params("storeId"), c.Query("status"), page)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{
		"orders":     orders,
		"pagination": pagination.Meta(page, total),
	})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	o, err := h.orderService.Get(c.UserContext(), p.MerchantParentID, c.Params("storeId"), c.Params("orderId"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"order": o})
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input order.UpdateStatusInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	o, err := h.orderService.UpdateStatus(c.UserContext(), p.MerchantParentID, c.Params("storeId"), c.Params("orderId"), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"order": o})
}
