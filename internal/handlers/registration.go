package handlers

import (
	"merchantportal/internal/apperrors"
	"merchantportal/internal/models"
	"merchantportal/internal/services/merchant"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// RegistrationHandler serves the public onboarding wizard. Every call after
// OTP verification is tied to the verified phone rather than a client
// supplied parent id.
type RegistrationHandler struct {
	otpService        OTPService
	merchantService   MerchantService
	onboardingService OnboardingService
}

func NewRegistrationHandler(otpSvc OTPService, merchantSvc MerchantService, onboardingSvc OnboardingService) *RegistrationHandler {
	return &RegistrationHandler{
		otpService:        otpSvc,
		merchantService:   merchantSvc,
		onboardingService: onboardingSvc,
	}
}

type phoneInput struct {
	Phone string `json:"phone" validate:"required,phone"`
}

type verifyInput struct {
	Phone string `json:"phone" validate:"required,phone"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type progressInput struct {
	Phone string      `json:"phone" validate:"required,phone"`
	Step  int         `json:"step" validate:"required,min=1"`
	Data  models.JSON `json:"data"`
}

type storeInput struct {
	Phone string `json:"phone" validate:"required,phone"`
	merchant.CreateStoreInput
}

type stepInput struct {
	Phone string `json:"phone" validate:"required,phone"`
	Step  int    `json:"step" validate:"required,min=1"`
}

func (h *RegistrationHandler) SendOTP(c *fiber.Ctx) error {
	var input phoneInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	if err := h.otpService.Send(c.UserContext(), input.Phone); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"message": "OTP sent"})
}

func (h *RegistrationHandler) VerifyOTP(c *fiber.Ctx) error {
	var input verifyInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	if err := h.otpService.Verify(c.UserContext(), input.Phone, input.OTP); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"verified": true})
}

// Lookup tells the wizard whether to resume an existing registration.
func (h *RegistrationHandler) Lookup(c *fiber.Ctx) error {
	phone := c.Query("phone")
	if err := h.otpService.RequireVerified(c.UserContext(), phone); err != nil {
		return response.FromError(c, err)
	}

	lookup, err := h.merchantService.ResolveParentByPhone(c.UserContext(), phone)
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		return response.Success(c, fiber.Map{"exists": false})
	}
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{
		"exists":   true,
		"parent":   lookup.Parent,
		"stores":   lookup.Stores,
		"progress": lookup.Progress,
	})
}

func (h *RegistrationHandler) CreateParent(c *fiber.Ctx) error {
	var input merchant.CreateParentInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	if err := h.otpService.RequireVerified(c.UserContext(), input.Phone); err != nil {
		return response.FromError(c, err)
	}

	parent, err := h.merchantService.CreateParent(c.UserContext(), input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{"parent": parent})
}

func (h *RegistrationHandler) SaveProgress(c *fiber.Ctx) error {
	var input progressInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	parent, err := h.registrant(c, input.Phone)
	if err != nil {
		return response.FromError(c, err)
	}

	progress, err := h.onboardingService.SaveStep(c.UserContext(), parent.ID, input.Step, input.Data)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"progress": progress})
}

func (h *RegistrationHandler) CreateStore(c *fiber.Ctx) error {
	var input storeInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	parent, err := h.registrant(c, input.Phone)
	if err != nil {
		return response.FromError(c, err)
	}

	store, err := h.merchantService.CreateStore(c.UserContext(), parent.ID, input.CreateStoreInput)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{"store": store})
}

// AdvanceStep moves a draft store forward. Finishing the last step ends the
// phone verification window.
func (h *RegistrationHandler) AdvanceStep(c *fiber.Ctx) error {
	var input stepInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	parent, err := h.registrant(c, input.Phone)
	if err != nil {
		return response.FromError(c, err)
	}

	store, err := h.merchantService.AdvanceStep(c.UserContext(), parent.ID, c.Params("storeId"), input.Step)
	if err != nil {
		return response.FromError(c, err)
	}
	if store.IsCompleted {
		h.otpService.ConsumeVerified(c.UserContext(), input.Phone)
	}
	return response.Success(c, fiber.Map{"store": store})
}

// Draft reports the open registration progress for the signed-in merchant,
// if any store still needs finishing.
func (h *RegistrationHandler) Draft(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return response.FromError(c, err)
	}
	progress, err := h.onboardingService.OpenDraft(c.UserContext(), p.MerchantParentID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{
		"hasDraft":  progress != nil,
		"progress":  progress,
		"finalStep": h.onboardingService.FinalStep(),
	})
}

func (h *RegistrationHandler) registrant(c *fiber.Ctx, phone string) (*models.MerchantParent, error) {
	if err := h.otpService.RequireVerified(c.UserContext(), phone); err != nil {
		return nil, err
	}
	lookup, err := h.merchantService.ResolveParentByPhone(c.UserContext(), phone)
	if err != nil {
		return nil, err
	}
	return lookup.Parent, nil
}
