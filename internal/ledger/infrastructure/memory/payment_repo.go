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

type PaymentRepository struct {
	store *Store
}

// details must be called with the store lock held.
func (r *PaymentRepository) details(payment domain.Payment) domain.PaymentDetails {
	details := domain.PaymentDetails{Payment: payment}
	if vendor, ok := r.store.vendors[payment.VendorID]; ok {
		details.Vendor = &domain.NameRef{Name: vendor.Name}
	}
	if account, ok := r.store.accounts[payment.AccountID]; ok {
		details.Account = &domain.AccountRef{Name: account.Name}
	}
	return details
}

func (r *PaymentRepository) FindAll(_ context.Context) ([]domain.PaymentDetails, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	payments := make([]domain.PaymentDetails, 0, len(r.store.payments))
	for _, payment := range r.store.payments {
		payments = append(payments, r.details(payment))
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].PaymentDate.After(payments[j].PaymentDate)
	})
	return payments, nil
}

func (r *PaymentRepository) FindByID(_ context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	payment, exists := r.store.payments[paymentID]
	if !exists {
		return nil, fmt.Errorf("%w: payment %s", ledgerErrors.ErrRecordNotFound, paymentID)
	}
	return &payment, nil
}

func (r *PaymentRepository) FindDetailsByID(_ context.Context, paymentID uuid.UUID) (*domain.PaymentDetails, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	payment, exists := r.store.payments[paymentID]
	if !exists {
		return nil, fmt.Errorf("%w: payment %s", ledgerErrors.ErrRecordNotFound, paymentID)
	}
	details := r.details(payment)
	return &details, nil
}

func (r *PaymentRepository) FindPendingBefore(_ context.Context, before time.Time) ([]domain.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var pending []domain.Payment
	for _, payment := range r.store.payments {
		if payment.Status == domain.StatusPending && payment.PaymentDate.Before(before) {
			pending = append(pending, payment)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].PaymentDate.Before(pending[j].PaymentDate)
	})
	return pending, nil
}

func (r *PaymentRepository) Save(_ context.Context, payment *domain.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.payments[payment.ID]; exists {
		return fmt.Errorf("payment %s already exists", payment.ID)
	}
	if _, exists := r.store.vendors[payment.VendorID]; !exists {
		return fmt.Errorf("%w: vendor %s", ledgerErrors.ErrForeignKeyViolation, payment.VendorID)
	}
	if _, exists := r.store.accounts[payment.AccountID]; !exists {
		return fmt.Errorf("%w: account %s", ledgerErrors.ErrForeignKeyViolation, payment.AccountID)
	}
	r.store.payments[payment.ID] = *payment
	return nil
}

func (r *PaymentRepository) UpdatePending(_ context.Context, payment *domain.Payment) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, exists := r.store.payments[payment.ID]
	if !exists || stored.Status != domain.StatusPending {
		return false, nil
	}
	stored.Amount = payment.Amount
	stored.PaymentDate = payment.PaymentDate
	stored.Status = payment.Status
	stored.UpdatedAt = time.Now().UTC()
	r.store.payments[payment.ID] = stored
	payment.UpdatedAt = stored.UpdatedAt
	return true, nil
}

func (r *PaymentRepository) TransitionStatus(_ context.Context, paymentID uuid.UUID, from, to domain.PaymentStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	payment, exists := r.store.payments[paymentID]
	if !exists || payment.Status != from {
		return false, nil
	}
	payment.Status = to
	payment.UpdatedAt = time.Now().UTC()
	r.store.payments[paymentID] = payment
	return true, nil
}

func (r *PaymentRepository) Delete(_ context.Context, paymentID uuid.UUID, expected domain.PaymentStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	payment, exists := r.store.payments[paymentID]
	if !exists || payment.Status != expected {
		return false, nil
	}
	delete(r.store.payments, paymentID)
	return true, nil
}
