package service

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrReceiptNotFound   = errors.New("receipt not found")
	ErrDesignNotFound    = errors.New("design not found")
	ErrCashEntryNotFound = errors.New("cash entry not found")
	ErrIllegalTransition = errors.New("illegal order status transition")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrReceiptVoided     = errors.New("receipt is voided")
)

// ValidationError reports a missing or malformed field. It is raised before
// anything is written.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", e.Field, e.Tag)
}

// PaymentMismatchError blocks a print whose payments do not settle the total.
// Remaining is signed: positive means underpaid, negative overpaid.
type PaymentMismatchError struct {
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
	Kind      string
}

func (e *PaymentMismatchError) Error() string {
	return fmt.Sprintf("payments do not match total: %s by %s", e.Kind, e.Remaining.Abs().StringFixed(2))
}

// InsufficientStockError is returned when a negative delta exceeds the stock on hand.
type InsufficientStockError struct {
	ItemID uuid.UUID
	Stock  int
	Delta  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: have %d, delta %d", e.ItemID, e.Stock, e.Delta)
}

// InvalidStockError is returned when a manual correction would set a negative stock.
type InvalidStockError struct {
	ItemID uuid.UUID
	Value  int
}

func (e *InvalidStockError) Error() string {
	return fmt.Sprintf("invalid stock %d for item %s", e.Value, e.ItemID)
}

// BackendUnavailableError wraps a persistence or cache failure.
type BackendUnavailableError struct {
	Op  string
	Err error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s: backend unavailable: %v", e.Op, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// domainError reports whether err already belongs to the service taxonomy.
func domainError(err error) bool {
	var (
		ve  *ValidationError
		pme *PaymentMismatchError
		ise *InsufficientStockError
		ive *InvalidStockError
		bue *BackendUnavailableError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &pme), errors.As(err, &ise),
		errors.As(err, &ive), errors.As(err, &bue):
		return true
	}
	for _, sentinel := range []error{
		ErrItemNotFound, ErrOrderNotFound, ErrReceiptNotFound, ErrDesignNotFound,
		ErrCashEntryNotFound, ErrIllegalTransition, ErrDuplicateRequest, ErrReceiptVoided,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// backendErr passes domain errors through, maps repository.ErrNotFound onto
// notFound and wraps everything else as BackendUnavailableError.
func backendErr(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if domainError(err) {
		return err
	}
	if notFound != nil && errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return &BackendUnavailableError{Op: op, Err: err}
}

// validate runs struct tags and returns the first failure as a ValidationError.
func validate(v interface{}) error {
	if errs := validator.ValidateStruct(v); len(errs) > 0 {
		return &ValidationError{Field: errs[0].FailedField, Tag: errs[0].Tag}
	}
	return nil
}
