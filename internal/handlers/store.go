package handlers

import (
	"merchantportal/internal/services/store"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type StoreHandler struct {
	merchantService MerchantService
	storeService    StoreService
}

func NewStoreHandler(merchantSvc MerchantService, storeSvc StoreService) *StoreHandler {
	return &StoreHandler{merchantService: merchantSvc, storeService: storeSvc}
}

func (h *StoreHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	stores, err := h.merchantService.ListStores(c.UserContext(), p.MerchantParentID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"stores": stores})
}

func (h *StoreHandler) Get(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	st, err := h.merchantService.GetStore(c.UserContext(), p.MerchantParentID, c.Params("storeId"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"store": st})
}

func (h *StoreHandler) UpdateSettings(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input store.SettingsInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	st, err := h.storeService.UpdateSettings(c.UserContext(), p.MerchantParentID, c.Params("storeId"), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"store": st})
}

func (h *StoreHandler) GetBankDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	bank, err := h.storeService.GetBankDetails(c.UserContext(), p.MerchantParentID, c.Params("storeId"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"bank": bank})
}

func (h *StoreHandler) SetBankDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input store.BankInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	bank, err := h.storeService.SetBankDetails(c.UserContext(), p.MerchantParentID, c.Params("storeId"), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"bank": bank})
}
