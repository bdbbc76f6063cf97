package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/errors"
)

type PaymentSchedule string

const (
	ScheduleWeekly   PaymentSchedule = "weekly"
	ScheduleBiweekly PaymentSchedule = "biweekly"
	ScheduleOnDemand PaymentSchedule = "on_demand"
)

func (s PaymentSchedule) IsValid() bool {
	switch s {
	case ScheduleWeekly, ScheduleBiweekly, ScheduleOnDemand:
		return true
	}
	return false
}

type Vendor struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	PaymentSchedule PaymentSchedule `json:"payment_schedule"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (v *Vendor) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return errors.ErrVendorNameRequired
	}
	if len(v.Name) > 200 {
		return errors.NewValidationError("Vendor name must be of length less than 200")
	}
	if !v.PaymentSchedule.IsValid() {
		return errors.ErrInvalidSchedule
	}
	return nil
}

// VendorPatch holds the optional fields of a vendor update. Nil fields are left untouched.
type VendorPatch struct {
	Name            *string          `json:"name"`
	PaymentSchedule *PaymentSchedule `json:"payment_schedule"`
	IsActive        *bool            `json:"is_active"`
}

func (p VendorPatch) IsEmpty() bool {
	return p.Name == nil && p.PaymentSchedule == nil && p.IsActive == nil
}

func (p VendorPatch) Apply(v *Vendor) {
	if p.Name != nil {
		v.Name = strings.TrimSpace(*p.Name)
	}
	if p.PaymentSchedule != nil {
		v.PaymentSchedule = *p.PaymentSchedule
	}
	if p.IsActive != nil {
		v.IsActive = *p.IsActive
	}
}

type VendorRepository interface {
	FindAll(ctx context.Context) ([]Vendor, error)
	FindByID(ctx context.Context, vendorID uuid.UUID) (*Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
	Update(ctx context.Context, vendor *Vendor) error
	Delete(ctx context.Context, vendorID uuid.UUID) error
}
