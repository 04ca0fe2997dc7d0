package auth

import (
	"context"
	"time"

	"merchantportal/internal/services/merchant"
)

// MerchantResolver decides whether an identity is allowed into the portal.
type MerchantResolver interface {
	ResolveByCredentials(ctx context.Context, email, phone string) merchant.Resolution
}

// ParentLinker records which identity last signed in for a parent.
type ParentLinker interface {
	LinkAuthUser(ctx context.Context, parentID uint, authUserID string) error
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// Client describes the caller for the device session record.
type Client struct {
	IP        string
	UserAgent string
}

type LoginResult struct {
	UserID           string    `json:"userId"`
	Email            string    `json:"email"`
	MerchantParentID uint      `json:"merchantParentId"`
	SessionID        string    `json:"sessionId"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// Status reports the first-party session as the client sees it.
type Status struct {
	Valid         bool       `json:"valid"`
	Reason        string     `json:"reason,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	IdleExpiresAt *time.Time `json:"idleExpiresAt,omitempty"`
}
