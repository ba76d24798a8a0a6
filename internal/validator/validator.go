package validator

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendbot/internal/domain"
)

// Validation error kinds. FieldError wraps exactly one of these.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrMalformedDateFormat = errors.New("malformed date format")
	ErrInvalidCalendarDate = errors.New("invalid calendar date")
	ErrEmptyMerchant       = errors.New("empty merchant")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnknownField        = errors.New("unknown field")
)

// FieldError reports why a raw value was rejected for a field.
type FieldError struct {
	Field domain.FieldKey
	Input string
	Kind  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Input, e.Kind)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

func fieldError(field domain.FieldKey, input string, kind error) *FieldError {
	return &FieldError{Field: field, Input: input, Kind: kind}
}

// Value is a validated, type-coerced field value.
type Value struct {
	Field      domain.FieldKey
	Amount     decimal.Decimal
	Date       time.Time
	Text       string
	CategoryID uuid.UUID
}

// ApplyTo records the value in the matching slot of set.
func (v Value) ApplyTo(set *domain.CorrectionSet) {
	switch v.Field {
	case domain.FieldTotal:
		amount := v.Amount
		set.Amount = &amount
	case domain.FieldDate:
		date := v.Date
		set.Date = &date
	case domain.FieldMerchant:
		merchant := v.Text
		set.Merchant = &merchant
	case domain.FieldCategory:
		id := v.CategoryID
		set.CategoryID = &id
	}
}

// FieldValidator validates and coerces the raw input for a single correctable field.
type FieldValidator interface {
	Key() domain.FieldKey
	Validate(raw string, categories []domain.Category) (Value, error)
}
