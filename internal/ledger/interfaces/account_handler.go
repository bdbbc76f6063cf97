package interfaces

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/application"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	"github.com/sebuszqo/VendorLedger/internal/response"
)

type AccountServiceInterface interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
}

type ReportServiceInterface interface {
	GenerateReport(ctx context.Context) (*application.Report, error)
}

type AccountHandler struct {
	service      AccountServiceInterface
	reports      ReportServiceInterface
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewAccountHandler(service AccountServiceInterface, reports ReportServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *AccountHandler {
	if service == nil || reports == nil || respondJSON == nil || respondError == nil {
		panic("Services and response functions must not be nil")
	}
	return &AccountHandler{service: service, reports: reports, respondJSON: respondJSON, respondError: respondError}
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to fetch accounts")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Accounts retrieved successfully", map[string]interface{}{"accounts": accounts}))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathUUID(r, "id")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Account not found")
		return
	}
	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to fetch account")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Account retrieved successfully", map[string]interface{}{"account": account}))
}

func (h *AccountHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.GenerateReport(r.Context())
	if err != nil {
		writeServiceError(w, h.respondJSON, h.respondError, err, "Failed to generate report")
		return
	}
	h.respondJSON(w, http.StatusOK, response.OK("Report generated successfully", report))
}
