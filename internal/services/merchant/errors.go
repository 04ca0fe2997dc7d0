package merchant

import "merchantportal/internal/apperrors"

var (
	ErrMerchantNotFound = apperrors.New(apperrors.KindNotFound, "MERCHANT_NOT_FOUND", "No merchant account found for this user")
	ErrMerchantInactive = apperrors.New(apperrors.KindForbidden, "MERCHANT_INACTIVE", "Merchant account is inactive")
	ErrPhoneTaken       = apperrors.New(apperrors.KindConflict, "PHONE_REGISTERED", "A merchant with this phone number already exists")
	ErrStoreNotFound    = apperrors.New(apperrors.KindNotFound, "STORE_NOT_FOUND", "Store not found")
	ErrStepBackwards    = apperrors.New(apperrors.KindValidation, "STEP_BACKWARDS", "step cannot move backwards")
)
