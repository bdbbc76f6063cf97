package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/errors"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Payment struct {
	ID          uuid.UUID       `json:"id"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Status      PaymentStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Payment) Validate() error {
	if p.VendorID == uuid.Nil {
		return errors.NewValidationError("Vendor ID is required")
	}
	if p.AccountID == uuid.Nil {
		return errors.NewValidationError("Account ID is required")
	}
	if !p.Amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	if p.PaymentDate.IsZero() {
		return errors.NewValidationError("Payment date is required")
	}
	if !p.Status.IsValid() {
		return errors.ErrInvalidStatus
	}
	return nil
}

func (p *Payment) RoundToTwoDecimalPlaces() {
	p.Amount = p.Amount.Round(2)
}

type NameRef struct {
	Name string `json:"name"`
}

type AccountRef struct {
	Name    string           `json:"name"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

// PaymentDetails is a payment together with the names of the vendor and
// account it references.
type PaymentDetails struct {
	Payment
	Vendor  *NameRef    `json:"vendors"`
	Account *AccountRef `json:"accounts"`
}

// PaymentPatch holds the optional fields of a payment update.
type PaymentPatch struct {
	Amount      *decimal.Decimal
	PaymentDate *time.Time
	Status      *PaymentStatus
}

func (p PaymentPatch) Validate() error {
	if p.Amount != nil && !p.Amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return errors.ErrInvalidStatus
		}
		if *p.Status == StatusCompleted {
			return errors.ErrCompleteViaUpdate
		}
	}
	return nil
}

func (p PaymentPatch) Apply(payment *Payment) {
	if p.Amount != nil {
		payment.Amount = *p.Amount
	}
	if p.PaymentDate != nil {
		payment.PaymentDate = *p.PaymentDate
	}
	if p.Status != nil {
		payment.Status = *p.Status
	}
}

var paymentDateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

func ParsePaymentDate(value string) (time.Time, error) {
	for _, layout := range paymentDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, errors.ErrInvalidPaymentDate
}

type PaymentRepository interface {
	FindAll(ctx context.Context) ([]PaymentDetails, error)
	FindByID(ctx context.Context, paymentID uuid.UUID) (*Payment, error)
	FindDetailsByID(ctx context.Context, paymentID uuid.UUID) (*PaymentDetails, error)
	FindPendingBefore(ctx context.Context, before time.Time) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	// UpdatePending writes amount, payment date and status of a payment that is still pending.
	UpdatePending(ctx context.Context, payment *Payment) (bool, error)
	// TransitionStatus moves the payment from one status to another and reports
	// whether the payment was in the expected status.
	TransitionStatus(ctx context.Context, paymentID uuid.UUID, from, to PaymentStatus) (bool, error)
	// Delete removes the payment only if it still has the expected status.
	Delete(ctx context.Context, paymentID uuid.UUID, expected PaymentStatus) (bool, error)
}
