package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) FindAll(_ context.Context) ([]domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *AccountRepository) FindByID(_ context.Context, accountID uuid.UUID) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, exists := r.store.accounts[accountID]
	if !exists {
		return nil, fmt.Errorf("%w: account %s", ledgerErrors.ErrRecordNotFound, accountID)
	}
	return &account, nil
}

func (r *AccountRepository) Save(_ context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if _, exists := r.store.accounts[account.ID]; exists {
		return fmt.Errorf("account %s already exists", account.ID)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	account.UpdatedAt = account.CreatedAt
	account.Version = 1
	r.store.accounts[account.ID] = *account
	return nil
}

func (r *AccountRepository) CompareAndSwapBalance(_ context.Context, accountID uuid.UUID, expectedVersion int64, balance decimal.Decimal) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, exists := r.store.accounts[accountID]
	if !exists {
		return false, fmt.Errorf("%w: account %s", ledgerErrors.ErrRecordNotFound, accountID)
	}
	if account.Version != expectedVersion {
		return false, nil
	}
	account.Balance = balance
	account.Version++
	account.UpdatedAt = time.Now().UTC()
	r.store.accounts[accountID] = account
	return true, nil
}
