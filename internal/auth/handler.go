package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/sebuszqo/VendorLedger/internal/identity"
	"github.com/sebuszqo/VendorLedger/internal/response"
	"github.com/sebuszqo/VendorLedger/internal/views"
)

type Handler struct {
	provider     identity.Provider
	views        *views.Renderer
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
	logger       *slog.Logger
}

func NewHandler(
	provider identity.Provider,
	renderer *views.Renderer,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
	logger *slog.Logger,
) *Handler {
	if provider == nil || renderer == nil || respondJSON == nil || respondError == nil {
		panic("Provider, renderer and response functions must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		provider:     provider,
		views:        renderer,
		respondJSON:  respondJSON,
		respondError: respondError,
		logger:       logger.With("component", "auth"),
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// providerFailure answers with the provider's message for rejections and a
// generic 500 for everything else.
func (h *Handler) providerFailure(w http.ResponseWriter, err error, rejectionStatus int, action string) {
	if identity.IsAuthError(err) {
		h.logger.Warn(action+" rejected", "error", err)
		h.respondError(w, rejectionStatus, err.Error())
		return
	}
	h.respondError(w, http.StatusInternalServerError, "Internal server error", []string{err.Error()})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	metadata := map[string]interface{}{}
	if req.FirstName != "" {
		metadata["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		metadata["last_name"] = req.LastName
	}

	user, _, err := h.provider.SignUp(r.Context(), req.Email, req.Password, metadata)
	if err != nil {
		h.providerFailure(w, err, http.StatusBadRequest, "registration")
		return
	}

	h.logger.Info("user registered", "email", req.Email)
	h.respondJSON(w, http.StatusCreated, response.OK("Registration successful", map[string]interface{}{"user": user}))
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := h.provider.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.providerFailure(w, err, http.StatusUnauthorized, "login")
		return
	}

	h.logger.Info("user logged in", "email", req.Email)
	h.respondJSON(w, http.StatusOK, response.OK("Login successful", map[string]interface{}{
		"user":    session.User,
		"session": session,
	}))
}

// HandleLogout revokes the bearer session when one is supplied. Without a token
// there is nothing to revoke server-side.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token, _ := bearerToken(r); token != "" {
		if err := h.provider.SignOut(r.Context(), token); err != nil {
			h.providerFailure(w, err, http.StatusBadRequest, "logout")
			return
		}
	}
	h.logger.Info("user logged out")
	h.respondJSON(w, http.StatusOK, response.OK("Logout successful", nil))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("User retrieved successfully", map[string]interface{}{"user": user}))
}

func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("access_token")
	refreshToken := r.URL.Query().Get("refresh_token")
	if accessToken == "" || refreshToken == "" {
		h.logger.Warn("missing tokens in confirmation request")
		h.renderPage(w, http.StatusBadRequest, views.PageError, views.PageData{Title: "Confirmation failed", Kind: "error"})
		return
	}

	session, err := h.provider.SetSession(r.Context(), accessToken, refreshToken)
	if err != nil {
		status := http.StatusInternalServerError
		if identity.IsAuthError(err) {
			status = http.StatusBadRequest
		}
		h.logger.Error("could not establish session from confirmation link", "error", err)
		h.renderPage(w, status, views.PageError, views.PageData{Title: "Confirmation failed", Kind: "error"})
		return
	}

	data := views.PageData{Title: "Email confirmed", Kind: "success"}
	if session.User != nil {
		data.Email = session.User.Email
	}
	h.logger.Info("email confirmed and session established")
	h.renderPage(w, http.StatusOK, views.PageSuccess, data)
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, page string, data views.PageData) {
	if err := h.views.Render(w, status, page, data); err != nil {
		h.logger.Error("could not render page", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
