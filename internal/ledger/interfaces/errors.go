package interfaces

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
	"github.com/sebuszqo/VendorLedger/internal/response"
)

type (
	RespondJSONFunc  func(w http.ResponseWriter, status int, payload interface{})
	RespondErrorFunc func(w http.ResponseWriter, status int, message string, errors ...[]string)
)

// writeServiceError maps ledger errors onto HTTP statuses. Anything unrecognised
// is reported as an upstream failure with fallback as the message.
func writeServiceError(w http.ResponseWriter, respondJSON RespondJSONFunc, respondError RespondErrorFunc, err error, fallback string) {
	if fundsErr, ok := ledgerErrors.AsInsufficientFunds(err); ok {
		respondJSON(w, http.StatusBadRequest, response.Envelope{
			Success: false,
			Message: fundsErr.Error(),
			Data: map[string]interface{}{
				"current_balance": fundsErr.CurrentBalance,
				"payment_amount":  fundsErr.PaymentAmount,
			},
		})
		return
	}

	var validationErrors *ledgerErrors.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		respondError(w, http.StatusBadRequest, "Validation errors occurred", validationErrors.Messages())
	case ledgerErrors.IsValidationError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledgerErrors.ErrAlreadyCompleted):
		respondError(w, http.StatusBadRequest, err.Error())
	case ledgerErrors.IsNotFoundError(err):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusInternalServerError, "Request timed out")
	default:
		respondError(w, http.StatusInternalServerError, fallback, []string{err.Error()})
	}
}

type pathParamKey string

// ValidateUUIDPathParam parses the named path parameter as a UUID and stores it
// in the request context. Malformed ids are answered with 404.
func ValidateUUIDPathParam(next http.Handler, respondError RespondErrorFunc, param, resource string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := r.PathValue(param)
		if value == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("%s ID is required", resource))
			return
		}
		parsed, err := uuid.Parse(value)
		if err != nil {
			respondError(w, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
			return
		}
		ctx := context.WithValue(r.Context(), pathParamKey(param), parsed)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// pathUUID returns the id stored by ValidateUUIDPathParam, parsing it directly
// when the middleware did not run.
func pathUUID(r *http.Request, param string) (uuid.UUID, bool) {
	if id, ok := r.Context().Value(pathParamKey(param)).(uuid.UUID); ok {
		return id, true
	}
	id, err := uuid.Parse(r.PathValue(param))
	return id, err == nil
}
