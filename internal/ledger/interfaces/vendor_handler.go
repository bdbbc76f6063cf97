package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	"github.com/sebuszqo/VendorLedger/internal/response"
)

type VendorServiceInterface interface {
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error)
	CreateVendor(ctx context.Context, name string, schedule domain.PaymentSchedule, isActive *bool) (*domain.Vendor, error)
	UpdateVendor(ctx context.Context, vendorID uuid.UUID, patch domain.VendorPatch) (*domain.Vendor, error)
	DeleteVendor(ctx context.Context, vendorID uuid.UUID) error
}

type VendorHandler struct {
	service      VendorServiceInterface
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewVendorHandler(service VendorServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *VendorHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &VendorHandler{service: service, respondJSON: respondJSON, respondError: respondError}
}

type createVendorRequest struct {
	Name            string                 `json:"name"`
	PaymentSchedule domain.PaymentSchedule `json:"payment_schedule"`
	IsActive        *bool                  `json:"is_active"`
}

func (h *VendorHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.service.ListVendors(r.Context())
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to fetch vendors")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Vendors retrieved successfully", map[string]interface{}{"vendors": vendors}))
}

func (h *VendorHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathUUID(r, "id")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Vendor not found")
		return
	}
	vendor, err := h.service.GetVendor(r.Context(), vendorID)
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to fetch vendor")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Vendor retrieved successfully", map[string]interface{}{"vendor": vendor}))
}

func (h *VendorHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req createVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	vendor, err := h.service.CreateVendor(r.Context(), req.Name, req.PaymentSchedule, req.IsActive)
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to create vendor")
		return
	}
	h.respondJSON(w, http.StatusCreated, response.OK("Vendor created successfully", map[string]interface{}{"vendor": vendor}))
}

func (h *VendorHandler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathUUID(r, "id")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Vendor not found")
		return
	}
	var patch domain.VendorPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	vendor, err := h.service.UpdateVendor(r.Context(), vendorID, patch)
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to update vendor")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Vendor updated successfully", map[string]interface{}{"vendor": vendor}))
}

func (h *VendorHandler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathUUID(r, "id")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Vendor not found")
		return
	}
	if err := h.service.DeleteVendor(r.Context(), vendorID); err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to delete vendor")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Vendor deleted successfully", nil))
}
