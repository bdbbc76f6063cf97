package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt"
)

// TokenVerifier authenticates bearer tokens. With a JWT secret the signature is
// checked locally, otherwise every token is sent to the provider.
type TokenVerifier struct {
	provider Provider
	secret   []byte
}

func NewTokenVerifier(provider Provider, jwtSecret string) *TokenVerifier {
	verifier := &TokenVerifier{provider: provider}
	if jwtSecret != "" {
		verifier.secret = []byte(jwtSecret)
	}
	return verifier
}

var _ Authenticator = (*TokenVerifier)(nil)

type accessClaims struct {
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.StandardClaims
}

func (v *TokenVerifier) Authenticate(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	if v.secret == nil {
		user, err := v.provider.GetUser(ctx, accessToken)
		if err != nil {
			if IsAuthError(err) {
				return nil, ErrInvalidToken
			}
			return nil, err
		}
		return user, nil
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &User{
		ID:           claims.Subject,
		Aud:          claims.Audience,
		Role:         claims.Role,
		Email:        claims.Email,
		UserMetadata: claims.UserMetadata,
	}, nil
}
