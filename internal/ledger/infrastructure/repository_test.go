package infrastructure

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	database "github.com/sebuszqo/VendorLedger/db"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupDB(t *testing.T) *database.DBService {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:16-alpine"),
		postgres.WithDatabase("ledger"),
		postgres.WithUsername("ledger"),
		postgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("could not terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dbService, err := database.NewDBService(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbService.Close() })

	require.NoError(t, dbService.Migrate(ctx))
	return dbService
}

func seedLedger(t *testing.T, dbService *database.DBService, balance int64) (domain.Account, domain.Vendor) {
	t.Helper()
	ctx := context.Background()

	account := domain.Account{Name: "Operating", Balance: decimal.NewFromInt(balance)}
	require.NoError(t, NewAccountRepository(dbService.DB).Save(ctx, &account))

	now := time.Now().UTC().Truncate(time.Microsecond)
	vendor := domain.Vendor{ID: uuid.New(), Name: "Acme", PaymentSchedule: domain.ScheduleOnDemand, IsActive: true,
		CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewVendorRepository(dbService.DB).Save(ctx, &vendor))
	return account, vendor
}

func TestPostgresRepositories(t *testing.T) {
	dbService := setupDB(t)
	ctx := context.Background()
	account, vendor := seedLedger(t, dbService, 100)

	accounts := NewAccountRepository(dbService.DB)
	vendors := NewVendorRepository(dbService.DB)
	payments := NewPaymentRepository(dbService.DB)

	t.Run("account compare-and-swap", func(t *testing.T) {
		stored, err := accounts.FindByID(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(decimal.NewFromInt(100)))

		swapped, err := accounts.CompareAndSwapBalance(ctx, account.ID, stored.Version, decimal.NewFromInt(90))
		require.NoError(t, err)
		assert.True(t, swapped)

		swapped, err = accounts.CompareAndSwapBalance(ctx, account.ID, stored.Version, decimal.NewFromInt(80))
		require.NoError(t, err)
		assert.False(t, swapped)

		_, err = accounts.CompareAndSwapBalance(ctx, uuid.New(), 1, decimal.Zero)
		assert.ErrorIs(t, err, ledgerErrors.ErrRecordNotFound)
	})

	t.Run("payment lifecycle", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		payment := domain.Payment{
			ID:          uuid.New(),
			VendorID:    vendor.ID,
			AccountID:   account.ID,
			Amount:      decimal.RequireFromString("40.25"),
			PaymentDate: now.Add(-24 * time.Hour),
			Status:      domain.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		require.NoError(t, payments.Save(ctx, &payment))

		details, err := payments.FindDetailsByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme", details.Vendor.Name)
		assert.Equal(t, "Operating", details.Account.Name)
		assert.True(t, details.Amount.Equal(payment.Amount))

		overdue, err := payments.FindPendingBefore(ctx, now)
		require.NoError(t, err)
		assert.Len(t, overdue, 1)

		payment.Amount = decimal.NewFromInt(30)
		ok, err := payments.UpdatePending(ctx, &payment)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = payments.TransitionStatus(ctx, payment.ID, domain.StatusPending, domain.StatusCompleted)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = payments.UpdatePending(ctx, &payment)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.ErrorIs(t, vendors.Delete(ctx, vendor.ID), ledgerErrors.ErrForeignKeyViolation)

		ok, err = payments.Delete(ctx, payment.ID, domain.StatusPending)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = payments.Delete(ctx, payment.ID, domain.StatusCompleted)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = payments.FindByID(ctx, payment.ID)
		assert.ErrorIs(t, err, ledgerErrors.ErrRecordNotFound)
	})

	t.Run("concurrent status transitions have one winner", func(t *testing.T) {
		now := time.Now().UTC()
		payment := domain.Payment{ID: uuid.New(), VendorID: vendor.ID, AccountID: account.ID,
			Amount: decimal.NewFromInt(1), PaymentDate: now, Status: domain.StatusPending, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, payments.Save(ctx, &payment))

		var winners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := payments.TransitionStatus(ctx, payment.ID, domain.StatusPending, domain.StatusCompleted)
				assert.NoError(t, err)
				if ok {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners.Load())
	})

	t.Run("vendor update and delete", func(t *testing.T) {
		now := time.Now().UTC()
		other := domain.Vendor{ID: uuid.New(), Name: "Globex", PaymentSchedule: domain.ScheduleWeekly, IsActive: true,
			CreatedAt: now, UpdatedAt: now}
		require.NoError(t, vendors.Save(ctx, &other))

		other.IsActive = false
		require.NoError(t, vendors.Update(ctx, &other))

		stored, err := vendors.FindByID(ctx, other.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)

		require.NoError(t, vendors.Delete(ctx, other.ID))
		assert.ErrorIs(t, vendors.Delete(ctx, other.ID), ledgerErrors.ErrRecordNotFound)

		missing := domain.Vendor{ID: uuid.New(), Name: "Nobody", PaymentSchedule: domain.ScheduleWeekly}
		assert.ErrorIs(t, vendors.Update(ctx, &missing), ledgerErrors.ErrRecordNotFound)
	})
}
