package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
)

type VendorService struct {
	repo domain.VendorRepository
}

func NewVendorService(repo domain.VendorRepository) *VendorService {
	return &VendorService{repo: repo}
}

func (s *VendorService) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	vendors, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list vendors: %w", err)
	}
	if vendors == nil {
		return []domain.Vendor{}, nil
	}
	return vendors, nil
}

func (s *VendorService) GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, notFound("Vendor", err)
	}
	return vendor, nil
}

func (s *VendorService) CreateVendor(ctx context.Context, name string, schedule domain.PaymentSchedule, isActive *bool) (*domain.Vendor, error) {
	now := time.Now().UTC()
	vendor := domain.Vendor{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(name),
		PaymentSchedule: schedule,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if isActive != nil {
		vendor.IsActive = *isActive
	}
	if err := vendor.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &vendor); err != nil {
		return nil, fmt.Errorf("could not save vendor: %w", err)
	}
	return &vendor, nil
}

func (s *VendorService) UpdateVendor(ctx context.Context, vendorID uuid.UUID, patch domain.VendorPatch) (*domain.Vendor, error) {
	if patch.IsEmpty() {
		return nil, ledgerErrors.NewValidationError("No fields to update")
	}
	vendor, err := s.repo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, notFound("Vendor", err)
	}
	patch.Apply(vendor)
	if err := vendor.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, notFound("Vendor", err)
	}
	return vendor, nil
}

func (s *VendorService) DeleteVendor(ctx context.Context, vendorID uuid.UUID) error {
	err := s.repo.Delete(ctx, vendorID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledgerErrors.ErrForeignKeyViolation):
		return ledgerErrors.ErrVendorHasPayments
	default:
		return notFound("Vendor", err)
	}
}
