package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/application"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
	"github.com/sebuszqo/VendorLedger/internal/response"
	"github.com/shopspring/decimal"
)

type PaymentServiceInterface interface {
	ListPayments(ctx context.Context) ([]domain.PaymentDetails, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentDetails, error)
	CreatePayment(ctx context.Context, input application.CreatePaymentInput) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, paymentID uuid.UUID, patch domain.PaymentPatch) (*domain.PaymentDetails, error)
	ConfirmPayment(ctx context.Context, paymentID uuid.UUID) (*application.Confirmation, error)
	DeletePayment(ctx context.Context, paymentID uuid.UUID) error
}

type PaymentHandler struct {
	service      PaymentServiceInterface
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewPaymentHandler(service PaymentServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *PaymentHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &PaymentHandler{service: service, respondJSON: respondJSON, respondError: respondError}
}

type createPaymentRequest struct {
	VendorID    *uuid.UUID       `json:"vendor_id"`
	AccountID   *uuid.UUID       `json:"account_id"`
	Amount      *decimal.Decimal `json:"amount"`
	PaymentDate string           `json:"payment_date"`
}

func (req createPaymentRequest) toInput() (application.CreatePaymentInput, error) {
	var (
		input  application.CreatePaymentInput
		errors ledgerErrors.ValidationErrors
	)
	if req.VendorID == nil {
		errors.Add(ledgerErrors.NewValidationError("Vendor ID is required"))
	} else {
		input.VendorID = *req.VendorID
	}
	if req.AccountID == nil {
		errors.Add(ledgerErrors.NewValidationError("Account ID is required"))
	} else {
		input.AccountID = *req.AccountID
	}
	if req.Amount == nil {
		errors.Add(ledgerErrors.NewValidationError("Amount is required"))
	} else {
		input.Amount = *req.Amount
	}
	if req.PaymentDate == "" {
		errors.Add(ledgerErrors.NewValidationError("Payment date is required"))
	} else if date, err := domain.ParsePaymentDate(req.PaymentDate); err != nil {
		errors.Add(err)
	} else {
		input.PaymentDate = date
	}
	return input, errors.OrNil()
}

type updatePaymentRequest struct {
	Amount      *decimal.Decimal      `json:"amount"`
	PaymentDate *string               `json:"payment_date"`
	Status      *domain.PaymentStatus `json:"status"`
}

func (req updatePaymentRequest) toPatch() (domain.PaymentPatch, error) {
	patch := domain.PaymentPatch{Amount: req.Amount, Status: req.Status}
	if req.PaymentDate != nil {
		date, err := domain.ParsePaymentDate(*req.PaymentDate)
		if err != nil {
			return patch, err
		}
		patch.PaymentDate = &date
	}
	return patch, nil
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to fetch payments")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Payments retrieved successfully", map[string]interface{}{"payments": payments}))
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathUUID(r, "id")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Payment not found")
		return
	}
	payment, err := h.service.GetPayment(r.Context(), paymentID)
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to fetch payment")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Payment retrieved successfully", map[string]interface{}{"payment": payment}))
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to create payment")
		return
	}
	payment, err := h.service.CreatePayment(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to create payment")
		return
	}
	h.respondJSON(w, http.StatusCreated, response.OK("Payment created successfully", map[string]interface{}{"payment": payment}))
}

func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathUUID(r, "id")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Payment not found")
		return
	}
	var req updatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to update payment")
		return
	}
	payment, err := h.service.UpdatePayment(r.Context(), paymentID, patch)
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to update payment")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Payment updated successfully", map[string]interface{}{"payment": payment}))
}

func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathUUID(r, "id")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Payment not found")
		return
	}
	confirmation, err := h.service.ConfirmPayment(r.Context(), paymentID)
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to confirm payment")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Payment confirmed and account balance updated", confirmation))
}

func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathUUID(r, "id")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Payment not found")
		return
	}
	if err := h.service.DeletePayment(r.Context(), paymentID); err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to delete payment")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Payment deleted successfully", nil))
}
