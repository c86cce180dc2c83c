package service

import (
	"errors"
	"fmt"
)

// Errors returned by the order and gallery services.
var (
	ErrMissingRequiredField  = errors.New("name, class, section, and mobile number are required")
	ErrMissingPaymentMethod  = errors.New("payment method is required")
	ErrInvalidPaymentMethod  = errors.New("payment method must be bkash or cash")
	ErrMissingBkashDetails   = errors.New("transaction ID and payment number are required for bKash")
	ErrMissingLocation       = errors.New("location is required for cash payment")
	ErrMissingCustomLocation = errors.New("custom location is required")
	ErrNoFieldsProvided      = errors.New("at least one field (status, amountPaid, or totalPrice) is required")
	ErrInvalidAmount         = errors.New("amount must be between -9999999999.99 and 9999999999.99")
	ErrOrderNotFound         = errors.New("order not found")

	ErrMissingImageFile  = errors.New("file is required")
	ErrMissingImageTitle = errors.New("title is required")
	ErrImageNotFound     = errors.New("image not found")

	// ErrStorageFailure marks errors from the database or blob store.
	ErrStorageFailure = errors.New("storage failure")
)

// FieldError names the input field that failed validation.
// It unwraps to one of the sentinel errors above.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// storageError tags err as a storage failure while keeping the cause inspectable.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorageFailure, err))
}

// ErrorCode returns the stable kind name clients can switch on.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingRequiredField):
		return "MissingRequiredField"
	case errors.Is(err, ErrMissingPaymentMethod):
		return "MissingPaymentMethod"
	case errors.Is(err, ErrInvalidPaymentMethod):
		return "InvalidPaymentMethod"
	case errors.Is(err, ErrMissingBkashDetails):
		return "MissingBkashDetails"
	case errors.Is(err, ErrMissingLocation):
		return "MissingLocation"
	case errors.Is(err, ErrMissingCustomLocation):
		return "MissingCustomLocation"
	case errors.Is(err, ErrNoFieldsProvided):
		return "NoFieldsProvided"
	case errors.Is(err, ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(err, ErrOrderNotFound):
		return "OrderNotFound"
	case errors.Is(err, ErrMissingImageFile):
		return "MissingImageFile"
	case errors.Is(err, ErrMissingImageTitle):
		return "MissingImageTitle"
	case errors.Is(err, ErrImageNotFound):
		return "ImageNotFound"
	}
	return "StorageFailure"
}

// IsValidationError reports whether err is caused by bad caller input
// and should be answered with 400 Bad Request.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrMissingPaymentMethod) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrMissingBkashDetails) ||
		errors.Is(err, ErrMissingLocation) ||
		errors.Is(err, ErrMissingCustomLocation) ||
		errors.Is(err, ErrNoFieldsProvided) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrMissingImageFile) ||
		errors.Is(err, ErrMissingImageTitle)
}
