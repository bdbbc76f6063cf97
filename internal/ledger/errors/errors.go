package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := ve.Messages()
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

func (ve *ValidationErrors) Messages() []string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return errorMessages
}

// OrNil returns nil when nothing was collected so callers can return it directly.
func (ve *ValidationErrors) OrNil() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}

func IsValidationErrors(err error) bool {
	var validationErrors *ValidationErrors
	ok := errors.As(err, &validationErrors)
	return ok
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func IsNotFoundError(err error) bool {
	var notFoundError *NotFoundError
	return errors.As(err, &notFoundError)
}

// InsufficientFundsError reports the balance that was observed together with
// the amount that could not be covered.
type InsufficientFundsError struct {
	CurrentBalance decimal.Decimal
	PaymentAmount  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return "Insufficient account balance"
}

func AsInsufficientFunds(err error) (*InsufficientFundsError, bool) {
	var fundsError *InsufficientFundsError
	ok := errors.As(err, &fundsError)
	return fundsError, ok
}

var (
	ErrAlreadyCompleted    = errors.New("Payment is already completed")
	ErrPaymentNotPending   = NewValidationError("Only pending payments can be modified")
	ErrCompleteViaUpdate   = NewValidationError("Payments can only be completed through confirmation")
	ErrInvalidAmount       = NewValidationError("Amount must be greater than zero")
	ErrInvalidSchedule     = NewValidationError("Payment schedule must be 'weekly', 'biweekly' or 'on_demand'")
	ErrInvalidStatus       = NewValidationError("Status must be 'pending', 'completed' or 'cancelled'")
	ErrVendorNameRequired  = NewValidationError("Vendor name is required")
	ErrVendorHasPayments   = NewValidationError("Vendor has payments and cannot be deleted")
	ErrInvalidPaymentDate  = NewValidationError("Payment date must be formatted as YYYY-MM-DD or RFC3339")
	ErrRecordNotFound      = errors.New("record not found")
	ErrBalanceConflict     = errors.New("account balance was modified concurrently, giving up")
	ErrConcurrentOperation = errors.New("payment was modified concurrently, giving up")
	ErrForeignKeyViolation = errors.New("record is still referenced")
)
