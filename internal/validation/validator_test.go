package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchantportal/internal/apperrors"
)

type sample struct {
	Phone   string `json:"phone" validate:"required,phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Pincode string `json:"pincode" validate:"omitempty,pincode"`
	IFSC    string `json:"ifsc" validate:"omitempty,ifsc"`
	Step    int    `json:"step" validate:"gte=1,lte=9"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantMsg string
	}{
		{"valid", sample{Phone: "+91 98765 43210", Step: 3}, ""},
		{"missing phone", sample{Step: 1}, "phone is required"},
		{"bad email", sample{Phone: "9876543210", Email: "nope", Step: 1}, "email must be a valid email address"},
		{"bad pincode", sample{Phone: "9876543210", Pincode: "012345", Step: 1}, "pincode must be a 6 digit pincode"},
		{"lowercase ifsc ok", sample{Phone: "9876543210", IFSC: "hdfc0001234", Step: 1}, ""},
		{"step out of range", sample{Phone: "9876543210", Step: 12}, "step must be at most 9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}
