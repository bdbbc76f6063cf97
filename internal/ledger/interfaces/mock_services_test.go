package interfaces

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/application"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	"github.com/sebuszqo/VendorLedger/internal/response"
)

var testResponder = response.NewResponder(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

var (
	respondJSON  = testResponder.JSON
	respondError = testResponder.Error
)

type MockPaymentService struct {
	Payments     []domain.PaymentDetails
	Details      *domain.PaymentDetails
	Created      *domain.Payment
	Confirmation *application.Confirmation
	Err          error

	LastInput application.CreatePaymentInput
	LastPatch domain.PaymentPatch
	LastID    uuid.UUID
}

func (m *MockPaymentService) ListPayments(_ context.Context) ([]domain.PaymentDetails, error) {
	return m.Payments, m.Err
}

func (m *MockPaymentService) GetPayment(_ context.Context, paymentID uuid.UUID) (*domain.PaymentDetails, error) {
	m.LastID = paymentID
	return m.Details, m.Err
}

func (m *MockPaymentService) CreatePayment(_ context.Context, input application.CreatePaymentInput) (*domain.Payment, error) {
	m.LastInput = input
	return m.Created, m.Err
}

func (m *MockPaymentService) UpdatePayment(_ context.Context, paymentID uuid.UUID, patch domain.PaymentPatch) (*domain.PaymentDetails, error) {
	m.LastID = paymentID
	m.LastPatch = patch
	return m.Details, m.Err
}

func (m *MockPaymentService) ConfirmPayment(_ context.Context, paymentID uuid.UUID) (*application.Confirmation, error) {
	m.LastID = paymentID
	return m.Confirmation, m.Err
}

func (m *MockPaymentService) DeletePayment(_ context.Context, paymentID uuid.UUID) error {
	m.LastID = paymentID
	return m.Err
}

type MockVendorService struct {
	Vendors []domain.Vendor
	Vendor  *domain.Vendor
	Err     error

	LastName     string
	LastSchedule domain.PaymentSchedule
	LastPatch    domain.VendorPatch
}

func (m *MockVendorService) ListVendors(_ context.Context) ([]domain.Vendor, error) {
	return m.Vendors, m.Err
}

func (m *MockVendorService) GetVendor(_ context.Context, _ uuid.UUID) (*domain.Vendor, error) {
	return m.Vendor, m.Err
}

func (m *MockVendorService) CreateVendor(_ context.Context, name string, schedule domain.PaymentSchedule, _ *bool) (*domain.Vendor, error) {
	m.LastName = name
	m.LastSchedule = schedule
	return m.Vendor, m.Err
}

func (m *MockVendorService) UpdateVendor(_ context.Context, _ uuid.UUID, patch domain.VendorPatch) (*domain.Vendor, error) {
	m.LastPatch = patch
	return m.Vendor, m.Err
}

func (m *MockVendorService) DeleteVendor(_ context.Context, _ uuid.UUID) error {
	return m.Err
}

type MockAccountService struct {
	Accounts []domain.Account
	Account  *domain.Account
	Report   *application.Report
	Err      error
}

func (m *MockAccountService) ListAccounts(_ context.Context) ([]domain.Account, error) {
	return m.Accounts, m.Err
}

func (m *MockAccountService) GetAccount(_ context.Context, _ uuid.UUID) (*domain.Account, error) {
	return m.Account, m.Err
}

func (m *MockAccountService) GenerateReport(_ context.Context) (*application.Report, error) {
	return m.Report, m.Err
}
