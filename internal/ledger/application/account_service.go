package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	"golang.org/x/sync/errgroup"
)

type AccountService struct {
	repo domain.AccountRepository
}

func NewAccountService(repo domain.AccountRepository) *AccountService {
	return &AccountService{repo: repo}
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, notFound("Account", err)
	}
	return account, nil
}

type Report struct {
	Payments    []domain.PaymentDetails `json:"payments"`
	Accounts    []domain.Account        `json:"accounts"`
	GeneratedAt time.Time               `json:"generated_at"`
}

type ReportService struct {
	payments *PaymentService
	accounts *AccountService
	now      func() time.Time
}

func NewReportService(payments *PaymentService, accounts *AccountService) *ReportService {
	return &ReportService{payments: payments, accounts: accounts, now: time.Now}
}

// GenerateReport loads payments and accounts concurrently.
func (s *ReportService) GenerateReport(ctx context.Context) (*Report, error) {
	report := &Report{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payments, err := s.payments.ListPayments(ctx)
		report.Payments = payments
		return err
	})
	g.Go(func() error {
		accounts, err := s.accounts.ListAccounts(ctx)
		report.Accounts = accounts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.GeneratedAt = s.now().UTC()
	return report, nil
}
