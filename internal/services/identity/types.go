package identity

import (
	"context"
	"time"
)

// User is the provider's identity record.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Session is a provider token pair.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Provider is the set of identity operations the portal depends on.
type Provider interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	CurrentUser(ctx context.Context, accessToken string) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, accessToken string)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// errorResponse covers both the OAuth style and the newer code style bodies
// the provider returns.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}
