package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
	"github.com/shopspring/decimal"
)

const pgForeignKeyViolation = "23503"

// mapPgError translates driver errors the services need to distinguish.
func mapPgError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ledgerErrors.ErrRecordNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", ledgerErrors.ErrForeignKeyViolation, pgErr.ConstraintName)
	}
	return err
}

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, balance, version, created_at, updated_at FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.Name, &account.Balance, &account.Version, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, balance, version, created_at, updated_at FROM accounts WHERE id = $1`, accountID,
	).Scan(&account.ID, &account.Name, &account.Balance, &account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("could not load account %s: %w", accountID, mapPgError(err))
	}
	return &account, nil
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	query := `
		INSERT INTO accounts (id, name, balance)
		VALUES ($1, $2, $3)
		RETURNING version, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, account.ID, account.Name, account.Balance).
		Scan(&account.Version, &account.CreatedAt, &account.UpdatedAt)
}

func (r *AccountRepository) CompareAndSwapBalance(ctx context.Context, accountID uuid.UUID, expectedVersion int64, balance decimal.Decimal) (bool, error) {
	query := `
		UPDATE accounts
		SET balance = $1,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $2 AND version = $3`
	result, err := r.db.ExecContext(ctx, query, balance, accountID, expectedVersion)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 1 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("%w: account %s", ledgerErrors.ErrRecordNotFound, accountID)
	}
	return false, nil
}
