// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func OK(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Responder writes envelopes. Upstream error details (status >= 500) are only
// sent to clients when ExposeErrors is set.
type Responder struct {
	ExposeErrors bool
	Logger       *slog.Logger
}

func NewResponder(exposeErrors bool, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{ExposeErrors: exposeErrors, Logger: logger}
}

func (r *Responder) JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.Logger.Error("could not encode response", "status", status, "error", err)
	}
}

func (r *Responder) Error(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := Envelope{Success: false, Message: message}

	var details []string
	if len(errors) > 0 {
		details = errors[0]
	}
	if status >= http.StatusInternalServerError {
		if len(details) > 0 {
			r.Logger.Error(message, "status", status, "error", strings.Join(details, "; "))
			if r.ExposeErrors {
				payload.Error = strings.Join(details, "; ")
			}
		}
	} else if len(details) > 0 {
		payload.Errors = details
	}

	r.JSON(w, status, payload)
}
