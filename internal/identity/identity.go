// Package identity talks to the hosted identity provider (Supabase GoTrue).
// Users, passwords and sessions live there; this service only forwards
// requests and verifies access tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type User struct {
	ID               string                 `json:"id"`
	Aud              string                 `json:"aud,omitempty"`
	Role             string                 `json:"role,omitempty"`
	Email            string                 `json:"email"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// AuthError is a rejection by the provider: bad credentials, an expired token,
// a duplicate registration. Message is safe to show to the client.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func IsAuthError(err error) bool {
	var authError *AuthError
	return errors.As(err, &authError)
}

var (
	ErrInvalidToken  = &AuthError{Status: http.StatusUnauthorized, Message: "Invalid or expired token"}
	ErrMissingTokens = &AuthError{Status: http.StatusBadRequest, Message: "Access token and refresh token are required"}
)

// ErrUpstream wraps failures to reach the provider or unexpected responses from it.
var ErrUpstream = errors.New("identity provider unavailable")

func upstreamError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUpstream, fmt.Sprintf(format, args...))
}

type Provider interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*User, *Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*User, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*User, error)
}
