package models

import "github.com/golang-jwt/jwt/v5"

// ProviderClaims is the subset of the identity provider's access token the
// portal reads. The token is never verified locally.
type ProviderClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	SessionID string `json:"session_id"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	AuthUserID       string
	Email            string
	Phone            string
	MerchantParentID uint
	SessionID        string
	DeviceID         string
}
