package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
)

type VendorRepository struct {
	store *Store
}

func (r *VendorRepository) FindAll(_ context.Context) ([]domain.Vendor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	vendors := make([]domain.Vendor, 0, len(r.store.vendors))
	for _, vendor := range r.store.vendors {
		vendors = append(vendors, vendor)
	}
	sort.Slice(vendors, func(i, j int) bool {
		return vendors[i].CreatedAt.After(vendors[j].CreatedAt)
	})
	return vendors, nil
}

func (r *VendorRepository) FindByID(_ context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	vendor, exists := r.store.vendors[vendorID]
	if !exists {
		return nil, fmt.Errorf("%w: vendor %s", ledgerErrors.ErrRecordNotFound, vendorID)
	}
	return &vendor, nil
}

func (r *VendorRepository) Save(_ context.Context, vendor *domain.Vendor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.vendors[vendor.ID]; exists {
		return fmt.Errorf("vendor %s already exists", vendor.ID)
	}
	r.store.vendors[vendor.ID] = *vendor
	return nil
}

func (r *VendorRepository) Update(_ context.Context, vendor *domain.Vendor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, exists := r.store.vendors[vendor.ID]
	if !exists {
		return fmt.Errorf("%w: vendor %s", ledgerErrors.ErrRecordNotFound, vendor.ID)
	}
	vendor.CreatedAt = stored.CreatedAt
	vendor.UpdatedAt = time.Now().UTC()
	r.store.vendors[vendor.ID] = *vendor
	return nil
}

func (r *VendorRepository) Delete(_ context.Context, vendorID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.vendors[vendorID]; !exists {
		return fmt.Errorf("%w: vendor %s", ledgerErrors.ErrRecordNotFound, vendorID)
	}
	for _, payment := range r.store.payments {
		if payment.VendorID == vendorID {
			return fmt.Errorf("%w: vendor %s has payments", ledgerErrors.ErrForeignKeyViolation, vendorID)
		}
	}
	delete(r.store.vendors, vendorID)
	return nil
}
