package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
)

type VendorRepository struct {
	db *sql.DB
}

func NewVendorRepository(db *sql.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) FindAll(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, payment_schedule, is_active, created_at, updated_at FROM vendors ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		var vendor domain.Vendor
		if err := rows.Scan(&vendor.ID, &vendor.Name, &vendor.PaymentSchedule, &vendor.IsActive, &vendor.CreatedAt, &vendor.UpdatedAt); err != nil {
			return nil, err
		}
		vendors = append(vendors, vendor)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *VendorRepository) FindByID(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, payment_schedule, is_active, created_at, updated_at FROM vendors WHERE id = $1`, vendorID,
	).Scan(&vendor.ID, &vendor.Name, &vendor.PaymentSchedule, &vendor.IsActive, &vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("could not load vendor %s: %w", vendorID, mapPgError(err))
	}
	return &vendor, nil
}

func (r *VendorRepository) Save(ctx context.Context, vendor *domain.Vendor) error {
	query := `
		INSERT INTO vendors (id, name, payment_schedule, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, vendor.ID, vendor.Name, vendor.PaymentSchedule, vendor.IsActive, vendor.CreatedAt, vendor.UpdatedAt)
	return err
}

func (r *VendorRepository) Update(ctx context.Context, vendor *domain.Vendor) error {
	query := `
		UPDATE vendors
		SET name = $1,
			payment_schedule = $2,
			is_active = $3,
			updated_at = NOW()
		WHERE id = $4
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, vendor.Name, vendor.PaymentSchedule, vendor.IsActive, vendor.ID).
		Scan(&vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not update vendor %s: %w", vendor.ID, mapPgError(err))
	}
	return nil
}

func (r *VendorRepository) Delete(ctx context.Context, vendorID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vendors WHERE id = $1`, vendorID)
	if err != nil {
		return fmt.Errorf("could not delete vendor %s: %w", vendorID, mapPgError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: vendor %s", ledgerErrors.ErrRecordNotFound, vendorID)
	}
	return nil
}
