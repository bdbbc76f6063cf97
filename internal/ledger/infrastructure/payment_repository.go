package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
)

const selectPaymentDetails = `
	SELECT p.id, p.vendor_id, p.account_id, p.amount, p.payment_date, p.status, p.created_at, p.updated_at,
		v.name, a.name
	FROM payments p
	JOIN vendors v ON v.id = p.vendor_id
	JOIN accounts a ON a.id = p.account_id`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaymentDetails(row rowScanner) (domain.PaymentDetails, error) {
	var (
		details     domain.PaymentDetails
		vendorName  string
		accountName string
	)
	err := row.Scan(&details.ID, &details.VendorID, &details.AccountID, &details.Amount, &details.PaymentDate,
		&details.Status, &details.CreatedAt, &details.UpdatedAt, &vendorName, &accountName)
	if err != nil {
		return details, err
	}
	details.Vendor = &domain.NameRef{Name: vendorName}
	details.Account = &domain.AccountRef{Name: accountName}
	return details, nil
}

func (r *PaymentRepository) FindAll(ctx context.Context) ([]domain.PaymentDetails, error) {
	rows, err := r.db.QueryContext(ctx, selectPaymentDetails+` ORDER BY p.payment_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.PaymentDetails
	for rows.Next() {
		details, err := scanPaymentDetails(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, details)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, vendor_id, account_id, amount, payment_date, status, created_at, updated_at
		FROM payments WHERE id = $1`, paymentID,
	).Scan(&payment.ID, &payment.VendorID, &payment.AccountID, &payment.Amount, &payment.PaymentDate,
		&payment.Status, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("could not load payment %s: %w", paymentID, mapPgError(err))
	}
	return &payment, nil
}

func (r *PaymentRepository) FindDetailsByID(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentDetails, error) {
	details, err := scanPaymentDetails(r.db.QueryRowContext(ctx, selectPaymentDetails+` WHERE p.id = $1`, paymentID))
	if err != nil {
		return nil, fmt.Errorf("could not load payment %s: %w", paymentID, mapPgError(err))
	}
	return &details, nil
}

func (r *PaymentRepository) FindPendingBefore(ctx context.Context, before time.Time) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, vendor_id, account_id, amount, payment_date, status, created_at, updated_at
		FROM payments
		WHERE status = $1 AND payment_date < $2
		ORDER BY payment_date`, domain.StatusPending, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(&payment.ID, &payment.VendorID, &payment.AccountID, &payment.Amount, &payment.PaymentDate,
			&payment.Status, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, vendor_id, account_id, amount, payment_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.ID, payment.VendorID, payment.AccountID, payment.Amount, payment.PaymentDate,
		payment.Status, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *PaymentRepository) UpdatePending(ctx context.Context, payment *domain.Payment) (bool, error) {
	err := r.db.QueryRowContext(ctx, `
		UPDATE payments
		SET amount = $1,
			payment_date = $2,
			status = $3,
			updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING updated_at`,
		payment.Amount, payment.PaymentDate, payment.Status, payment.ID, domain.StatusPending,
	).Scan(&payment.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PaymentRepository) TransitionStatus(ctx context.Context, paymentID uuid.UUID, from, to domain.PaymentStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, paymentID, from)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, paymentID uuid.UUID, expected domain.PaymentStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1 AND status = $2`, paymentID, expected)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
