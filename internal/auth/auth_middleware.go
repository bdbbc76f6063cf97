package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sebuszqo/VendorLedger/internal/identity"
)

type contextKey string

const userContextKey contextKey = "user"

func WithUser(ctx context.Context, user *identity.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func UserFromContext(ctx context.Context) (*identity.User, bool) {
	user, ok := ctx.Value(userContextKey).(*identity.User)
	return user, ok && user != nil
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

// Middleware rejects requests without a valid bearer token and stores the
// authenticated user in the request context.
func Middleware(authenticator identity.Authenticator, respondError func(w http.ResponseWriter, status int, message string, errors ...[]string), logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, present := bearerToken(r)
			if !present {
				respondError(w, http.StatusUnauthorized, "No authorization header")
				return
			}
			if token == "" {
				respondError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			user, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if identity.IsAuthError(err) {
					logger.Warn("authentication failed", "path", r.URL.Path, "error", err)
					respondError(w, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				logger.Error("authentication error", "path", r.URL.Path, "error", err)
				respondError(w, http.StatusInternalServerError, "Internal server error", []string{err.Error()})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
