package handlers

import (
	"merchantportal/internal/logger"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CronHandler serves scheduled jobs. Both jobs converge, so a retried call
// only repeats work that is still pending.
type CronHandler struct {
	menuService       MenuService
	onboardingService OnboardingService
}

func NewCronHandler(menuSvc MenuService, onboardingSvc OnboardingService) *CronHandler {
	return &CronHandler{menuService: menuSvc, onboardingService: onboardingSvc}
}

func (h *CronHandler) ResetLimits(c *fiber.Ctx) error {
	reset, err := h.menuService.ResetDailyLimits(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	logger.FromFiber(c).Info("Offer limits reset", zap.Int64("offers", reset))
	return response.Success(c, fiber.Map{"reset": reset})
}

func (h *CronHandler) OnboardingSweep(c *fiber.Ctx) error {
	result, err := h.onboardingService.Sweep(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{
		"scanned": result.Scanned,
		"cleaned": result.Cleaned,
		"failed":  result.Failed,
	})
}
