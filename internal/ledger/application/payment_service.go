package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	ledgerErrors "github.com/sebuszqo/VendorLedger/internal/ledger/errors"
	"github.com/shopspring/decimal"
)

const compensationTimeout = 5 * time.Second

// MetricsRecorder receives ledger events. The service works without one.
type MetricsRecorder interface {
	ObserveConfirmation(outcome string, duration time.Duration)
	SetAccountBalance(accountID uuid.UUID, balance decimal.Decimal)
	IncBalanceConflict()
}

type noopMetrics struct{}

func (noopMetrics) ObserveConfirmation(string, time.Duration)    {}
func (noopMetrics) SetAccountBalance(uuid.UUID, decimal.Decimal) {}
func (noopMetrics) IncBalanceConflict()                          {}

type Options struct {
	// BalanceRetries bounds the compare-and-swap attempts of one balance change.
	BalanceRetries int
	// RefundPendingOnDelete credits the account when a pending payment is deleted.
	RefundPendingOnDelete bool
	Metrics               MetricsRecorder
	Logger                *slog.Logger
}

type PaymentService struct {
	payments domain.PaymentRepository
	accounts domain.AccountRepository
	vendors  domain.VendorRepository
	opts     Options
	logger   *slog.Logger
	metrics  MetricsRecorder
}

func NewPaymentService(payments domain.PaymentRepository, accounts domain.AccountRepository, vendors domain.VendorRepository, opts Options) *PaymentService {
	if opts.BalanceRetries <= 0 {
		opts.BalanceRetries = 5
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &PaymentService{
		payments: payments,
		accounts: accounts,
		vendors:  vendors,
		opts:     opts,
		logger:   logger.With("component", "payment_ledger"),
		metrics:  metrics,
	}
}

// Confirmation is the result of a successful confirmation.
type Confirmation struct {
	Payment         *domain.PaymentDetails `json:"payment"`
	PreviousBalance decimal.Decimal        `json:"previous_balance"`
	NewBalance      decimal.Decimal        `json:"new_balance"`
	AmountDeducted  decimal.Decimal        `json:"amount_deducted"`
}

type CreatePaymentInput struct {
	VendorID    uuid.UUID
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	PaymentDate time.Time
}

func notFound(resource string, err error) error {
	if errors.Is(err, ledgerErrors.ErrRecordNotFound) {
		return ledgerErrors.NewNotFoundError(resource)
	}
	return err
}

func (s *PaymentService) ListPayments(ctx context.Context) ([]domain.PaymentDetails, error) {
	payments, err := s.payments.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list payments: %w", err)
	}
	if payments == nil {
		return []domain.PaymentDetails{}, nil
	}
	return payments, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentDetails, error) {
	details, err := s.payments.FindDetailsByID(ctx, paymentID)
	if err != nil {
		return nil, notFound("Payment", err)
	}
	return details, nil
}

// CreatePayment records a pending payment. The balance is checked but not reserved.
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.Payment, error) {
	now := time.Now().UTC()
	payment := domain.Payment{
		ID:          uuid.New(),
		VendorID:    input.VendorID,
		AccountID:   input.AccountID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	payment.RoundToTwoDecimalPlaces()
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.vendors.FindByID(ctx, payment.VendorID); err != nil {
		return nil, notFound("Vendor", err)
	}
	account, err := s.accounts.FindByID(ctx, payment.AccountID)
	if err != nil {
		return nil, notFound("Account", err)
	}
	if !account.CanCover(payment.Amount) {
		return nil, &ledgerErrors.InsufficientFundsError{CurrentBalance: account.Balance, PaymentAmount: payment.Amount}
	}

	if err := s.payments.Save(ctx, &payment); err != nil {
		if errors.Is(err, ledgerErrors.ErrForeignKeyViolation) {
			return nil, ledgerErrors.NewNotFoundError("Vendor or account")
		}
		return nil, fmt.Errorf("could not save payment: %w", err)
	}
	s.logger.Info("payment created", "payment_id", payment.ID, "amount", payment.Amount.String())
	return &payment, nil
}

// UpdatePayment edits a pending payment. Completion is only possible through ConfirmPayment.
func (s *PaymentService) UpdatePayment(ctx context.Context, paymentID uuid.UUID, patch domain.PaymentPatch) (*domain.PaymentDetails, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, notFound("Payment", err)
	}
	if payment.Status != domain.StatusPending {
		return nil, ledgerErrors.ErrPaymentNotPending
	}

	patch.Apply(payment)
	payment.RoundToTwoDecimalPlaces()
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.payments.UpdatePending(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("could not update payment: %w", err)
	}
	if !updated {
		return nil, ledgerErrors.ErrPaymentNotPending
	}
	return s.GetPayment(ctx, paymentID)
}

func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID uuid.UUID) (confirmation *Confirmation, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveConfirmation(confirmationOutcome(err), time.Since(start))
	}()

	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, notFound("Payment", err)
	}
	if err := pendingOrError(payment.Status); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(ctx, payment.AccountID)
	if err != nil {
		return nil, notFound("Account", err)
	}
	if !account.CanCover(payment.Amount) {
		return nil, &ledgerErrors.InsufficientFundsError{CurrentBalance: account.Balance, PaymentAmount: payment.Amount}
	}

	transitioned, err := s.payments.TransitionStatus(ctx, paymentID, domain.StatusPending, domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("could not complete payment: %w", err)
	}
	if !transitioned {
		// Someone else moved the payment out of pending since it was read.
		current, err := s.payments.FindByID(ctx, paymentID)
		if err != nil {
			return nil, notFound("Payment", err)
		}
		if err := pendingOrError(current.Status); err != nil {
			return nil, err
		}
		return nil, ledgerErrors.ErrConcurrentOperation
	}

	previous, updated, err := s.adjustBalance(ctx, payment.AccountID, payment.Amount.Neg())
	if err != nil {
		s.revertCompletion(ctx, paymentID, err)
		return nil, err
	}

	details, err := s.payments.FindDetailsByID(ctx, paymentID)
	if err != nil {
		return nil, notFound("Payment", err)
	}
	newBalance := updated
	if details.Account != nil {
		details.Account.Balance = &newBalance
	}

	s.logger.Info("payment confirmed",
		"payment_id", paymentID,
		"account_id", payment.AccountID,
		"previous_balance", previous.String(),
		"new_balance", updated.String(),
	)
	return &Confirmation{
		Payment:         details,
		PreviousBalance: previous,
		NewBalance:      updated,
		AmountDeducted:  payment.Amount,
	}, nil
}

func pendingOrError(status domain.PaymentStatus) error {
	switch status {
	case domain.StatusPending:
		return nil
	case domain.StatusCompleted:
		return ledgerErrors.ErrAlreadyCompleted
	default:
		return ledgerErrors.ErrPaymentNotPending
	}
}

// revertCompletion puts a completed payment back to pending when its debit failed.
// It runs detached from the request so a cancelled client cannot leave the payment completed.
func (s *PaymentService) revertCompletion(ctx context.Context, paymentID uuid.UUID, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	reverted, err := s.payments.TransitionStatus(ctx, paymentID, domain.StatusCompleted, domain.StatusPending)
	if err != nil || !reverted {
		s.logger.Error("could not revert payment after failed debit",
			"payment_id", paymentID, "cause", cause, "error", err)
		return
	}
	s.logger.Warn("payment reverted to pending after failed debit", "payment_id", paymentID, "cause", cause)
}

// DeletePayment removes a payment and credits its amount back when it had been debited.
func (s *PaymentService) DeletePayment(ctx context.Context, paymentID uuid.UUID) error {
	for attempt := 0; attempt < s.opts.BalanceRetries; attempt++ {
		payment, err := s.payments.FindByID(ctx, paymentID)
		if err != nil {
			return notFound("Payment", err)
		}

		deleted, err := s.payments.Delete(ctx, paymentID, payment.Status)
		if err != nil {
			return fmt.Errorf("could not delete payment: %w", err)
		}
		if !deleted {
			// Status changed between read and delete, look again.
			continue
		}

		if !s.refundable(payment.Status) {
			s.logger.Info("payment deleted", "payment_id", paymentID, "status", payment.Status)
			return nil
		}

		balance, err := s.refund(ctx, payment)
		if err != nil {
			return fmt.Errorf("could not refund deleted payment: %w", err)
		}
		s.logger.Info("payment deleted and refunded",
			"payment_id", paymentID, "account_id", payment.AccountID, "new_balance", balance.String())
		return nil
	}
	return ledgerErrors.ErrConcurrentOperation
}

// refund credits the amount of a deleted payment. The credit is detached from the
// request; when it still fails the payment row is restored so no debit goes unaccounted.
func (s *PaymentService) refund(ctx context.Context, payment *domain.Payment) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	_, balance, err := s.adjustBalance(ctx, payment.AccountID, payment.Amount)
	if err == nil {
		return balance, nil
	}

	if restoreErr := s.payments.Save(ctx, payment); restoreErr != nil {
		s.logger.Error("refund failed and payment could not be restored",
			"payment_id", payment.ID, "account_id", payment.AccountID, "amount", payment.Amount.String(),
			"cause", err, "error", restoreErr)
		return balance, err
	}
	s.logger.Warn("refund failed, payment restored", "payment_id", payment.ID, "cause", err)
	return balance, err
}

func (s *PaymentService) refundable(status domain.PaymentStatus) bool {
	switch status {
	case domain.StatusCompleted:
		return true
	case domain.StatusPending:
		return s.opts.RefundPendingOnDelete
	}
	return false
}

// OverduePending lists pending payments whose payment date is before now.
func (s *PaymentService) OverduePending(ctx context.Context, now time.Time) ([]domain.Payment, error) {
	return s.payments.FindPendingBefore(ctx, now)
}

// adjustBalance adds delta to the account balance with compare-and-swap retries.
// A negative result is rejected with InsufficientFundsError.
func (s *PaymentService) adjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) (previous, updated decimal.Decimal, err error) {
	for attempt := 0; attempt < s.opts.BalanceRetries; attempt++ {
		account, err := s.accounts.FindByID(ctx, accountID)
		if err != nil {
			return previous, updated, notFound("Account", err)
		}

		next := account.Balance.Add(delta)
		if next.IsNegative() {
			return account.Balance, account.Balance, &ledgerErrors.InsufficientFundsError{
				CurrentBalance: account.Balance,
				PaymentAmount:  delta.Neg(),
			}
		}

		swapped, err := s.accounts.CompareAndSwapBalance(ctx, accountID, account.Version, next)
		if err != nil {
			return previous, updated, fmt.Errorf("could not update account balance: %w", notFound("Account", err))
		}
		if swapped {
			s.metrics.SetAccountBalance(accountID, next)
			return account.Balance, next, nil
		}
		s.metrics.IncBalanceConflict()
		s.logger.Debug("balance conflict, retrying", "account_id", accountID, "attempt", attempt+1)
	}
	return previous, updated, ledgerErrors.ErrBalanceConflict
}

func confirmationOutcome(err error) string {
	switch {
	case err == nil:
		return "confirmed"
	case errors.Is(err, ledgerErrors.ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, ledgerErrors.ErrBalanceConflict):
		return "conflict"
	}
	if _, ok := ledgerErrors.AsInsufficientFunds(err); ok {
		return "insufficient_funds"
	}
	if ledgerErrors.IsNotFoundError(err) {
		return "not_found"
	}
	if ledgerErrors.IsValidationError(err) {
		return "invalid"
	}
	return "error"
}
