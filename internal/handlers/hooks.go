package handlers

import (
	"fmt"

	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type HookHandler struct {
	sms SMSSender
}

func NewHookHandler(sms SMSSender) *HookHandler {
	return &HookHandler{sms: sms}
}

// smsHookInput is the identity provider's send-SMS hook payload.
type smsHookInput struct {
	User struct {
		Phone string `json:"phone" validate:"required"`
	} `json:"user"`
	SMS struct {
		OTP string `json:"otp" validate:"required,max=10"`
	} `json:"sms"`
}

func (h *HookHandler) SendSMS(c *fiber.Ctx) error {
	var input smsHookInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	text := fmt.Sprintf("%s is your merchant portal verification code. Do not share it with anyone.", input.SMS.OTP)
	if err := h.sms.Send(c.UserContext(), input.User.Phone, text); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, nil)
}
