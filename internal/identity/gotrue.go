package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// expiryLeeway refreshes sessions that are about to expire.
const expiryLeeway = 30 * time.Second

type GoTrueClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

func NewGoTrueClient(projectURL, anonKey string) *GoTrueClient {
	return &GoTrueClient{
		baseURL:    strings.TrimRight(projectURL, "/") + "/auth/v1",
		apiKey:     anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

var _ Provider = (*GoTrueClient)(nil)

func (c *GoTrueClient) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*User, *Session, error) {
	body := map[string]interface{}{"email": email, "password": password}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &raw); err != nil {
		return nil, nil, err
	}

	// With email confirmation enabled GoTrue answers with the bare user,
	// otherwise with a session carrying the user.
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, nil, upstreamError("could not decode signup response: %v", err)
	}
	if session.AccessToken != "" {
		return session.User, &session, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, nil, upstreamError("could not decode signup response: %v", err)
	}
	return &user, nil, nil
}

func (c *GoTrueClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *GoTrueClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *GoTrueClient) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *GoTrueClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetSession turns the token pair from a confirmation link into a live session,
// refreshing it when the access token has expired.
func (c *GoTrueClient) SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, ErrMissingTokens
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(accessToken, claims); err != nil {
		return nil, &AuthError{Status: http.StatusBadRequest, Message: "Invalid access token"}
	}

	expiresAt := int64(0)
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = int64(exp)
	}
	if expiresAt == 0 || c.now().Add(expiryLeeway).Unix() >= expiresAt {
		return c.RefreshSession(ctx, refreshToken)
	}

	user, err := c.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		ExpiresIn:    int(expiresAt - c.now().Unix()),
		ExpiresAt:    expiresAt,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

type errorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (b errorBody) text() string {
	for _, candidate := range []string{b.Msg, b.ErrorDescription, b.Message, b.Error} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func (c *GoTrueClient) do(ctx context.Context, method, path, accessToken string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstreamError("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var errBody errorBody
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		message := errBody.text()
		if resp.StatusCode >= http.StatusInternalServerError {
			return upstreamError("%s %s returned %s: %s", method, path, resp.Status, message)
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &AuthError{Status: resp.StatusCode, Message: message}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return upstreamError("could not decode %s response: %v", path, err)
	}
	return nil
}
