package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
	"github.com/sebuszqo/VendorLedger/internal/ledger/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorService_Lifecycle(t *testing.T) {
	store := memory.NewStore()
	service := NewVendorService(store.Vendors())
	ctx := context.Background()

	_, err := service.CreateVendor(ctx, "  ", domain.ScheduleWeekly, nil)
	assert.ErrorIs(t, err, ledgerErrors.ErrVendorNameRequired)

	_, err = service.CreateVendor(ctx, "Acme", "monthly", nil)
	assert.ErrorIs(t, err, ledgerErrors.ErrInvalidSchedule)

	vendor, err := service.CreateVendor(ctx, " Acme ", domain.ScheduleBiweekly, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme", vendor.Name)
	assert.True(t, vendor.IsActive)

	inactive := false
	schedule := domain.ScheduleOnDemand
	updated, err := service.UpdateVendor(ctx, vendor.ID, domain.VendorPatch{IsActive: &inactive, PaymentSchedule: &schedule})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, domain.ScheduleOnDemand, updated.PaymentSchedule)
	assert.Equal(t, "Acme", updated.Name)

	_, err = service.UpdateVendor(ctx, vendor.ID, domain.VendorPatch{})
	assert.True(t, ledgerErrors.IsValidationError(err))

	_, err = service.UpdateVendor(ctx, uuid.New(), domain.VendorPatch{IsActive: &inactive})
	assert.True(t, ledgerErrors.IsNotFoundError(err))

	vendors, err := service.ListVendors(ctx)
	require.NoError(t, err)
	assert.Len(t, vendors, 1)

	require.NoError(t, service.DeleteVendor(ctx, vendor.ID))
	_, err = service.GetVendor(ctx, vendor.ID)
	assert.True(t, ledgerErrors.IsNotFoundError(err))
	assert.True(t, ledgerErrors.IsNotFoundError(service.DeleteVendor(ctx, vendor.ID)))
}

func TestVendorService_DeleteWithPayments(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	vendors := NewVendorService(store.Vendors())

	vendor, err := vendors.CreateVendor(ctx, "Acme", domain.ScheduleWeekly, nil)
	require.NoError(t, err)
	account := domain.Account{Name: "Operating", Balance: decimal.NewFromInt(100)}
	require.NoError(t, store.Accounts().Save(ctx, &account))

	payments := NewPaymentService(store.Payments(), store.Accounts(), store.Vendors(), Options{})
	_, err = payments.CreatePayment(ctx, CreatePaymentInput{
		VendorID: vendor.ID, AccountID: account.ID, Amount: decimal.NewFromInt(10), PaymentDate: time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, vendors.DeleteVendor(ctx, vendor.ID), ledgerErrors.ErrVendorHasPayments)
}

func TestReportService_GenerateReport(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	account := domain.Account{Name: "Operating", Balance: decimal.NewFromInt(100)}
	require.NoError(t, store.Accounts().Save(ctx, &account))
	vendor := domain.Vendor{ID: uuid.New(), Name: "Acme", PaymentSchedule: domain.ScheduleWeekly, IsActive: true}
	require.NoError(t, store.Vendors().Save(ctx, &vendor))

	payments := NewPaymentService(store.Payments(), store.Accounts(), store.Vendors(), Options{})
	_, err := payments.CreatePayment(ctx, CreatePaymentInput{
		VendorID: vendor.ID, AccountID: account.ID, Amount: decimal.NewFromInt(10), PaymentDate: time.Now().UTC(),
	})
	require.NoError(t, err)

	fixed := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
	reports := NewReportService(payments, NewAccountService(store.Accounts()))
	reports.now = func() time.Time { return fixed }

	report, err := reports.GenerateReport(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Payments, 1)
	assert.Len(t, report.Accounts, 1)
	assert.Equal(t, "Acme", report.Payments[0].Vendor.Name)
	assert.Equal(t, fixed, report.GeneratedAt)
}

func TestAccountService_GetAccount(t *testing.T) {
	store := memory.NewStore()
	service := NewAccountService(store.Accounts())
	ctx := context.Background()

	accounts, err := service.ListAccounts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)

	_, err = service.GetAccount(ctx, uuid.New())
	assert.True(t, ledgerErrors.IsNotFoundError(err))
}
