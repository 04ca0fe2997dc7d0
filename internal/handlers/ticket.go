package handlers

import (
	"merchantportal/internal/services/ticket"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TicketHandler struct {
	ticketService TicketService
}

func NewTicketHandler(ticketSvc TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketSvc}
}

func (h *TicketHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input ticket.CreateInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	t, err := h.ticketService.Create(c.UserContext(), p.MerchantParentID, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{"ticket": t})
}

func (h *TicketHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	tickets, err := h.ticketService.List(c.UserContext(), p.MerchantParentID, c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"tickets": tickets})
}

func (h *TicketHandler) Get(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	t, err := h.ticketService.Get(c.UserContext(), p.MerchantParentID, c.Params("ticketNumber"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"ticket": t})
}

func (h *TicketHandler) Reply(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input ticket.ReplyInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	t, err := h.ticketService.Reply(c.UserContext(), p.MerchantParentID, c.Params("ticketNumber"), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"ticket": t})
}

func (h *TicketHandler) Close(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	t, err := h.ticketService.Close(c.UserContext(), p.MerchantParentID, c.Params("ticketNumber"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"ticket": t})
}
