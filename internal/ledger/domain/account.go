package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Balances and amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Account struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

type AccountRepository interface {
	FindAll(ctx context.Context) ([]Account, error)
	FindByID(ctx context.Context, accountID uuid.UUID) (*Account, error)
	Save(ctx context.Context, account *Account) error
	// CompareAndSwapBalance writes balance only if the stored version still
	// equals expectedVersion. It reports whether the write happened.
	CompareAndSwapBalance(ctx context.Context, accountID uuid.UUID, expectedVersion int64, balance decimal.Decimal) (bool, error)
}
