// Package memory keeps vendors, accounts and payments in process memory.
// It is used by tests and by the STORE=memory development mode, and follows the
// same conditional-update semantics as the PostgreSQL repositories.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
)

var (
	_ domain.AccountRepository = (*AccountRepository)(nil)
	_ domain.VendorRepository  = (*VendorRepository)(nil)
	_ domain.PaymentRepository = (*PaymentRepository)(nil)
)

// Store is shared by the three repositories so that joins and reference
// checks see one consistent snapshot.
type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]domain.Account
	vendors  map[uuid.UUID]domain.Vendor
	payments map[uuid.UUID]domain.Payment
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]domain.Account),
		vendors:  make(map[uuid.UUID]domain.Vendor),
		payments: make(map[uuid.UUID]domain.Payment),
	}
}

func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{store: s}
}

func (s *Store) Vendors() *VendorRepository {
	return &VendorRepository{store: s}
}

func (s *Store) Payments() *PaymentRepository {
	return &PaymentRepository{store: s}
}
