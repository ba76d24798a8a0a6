package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendbot/internal/domain"
)

// DateLayout is the only accepted input layout for dates.
const DateLayout = "2006-01-02"

var (
	// At most two decimals: totals are stored as NUMERIC(14,2).
	amountPattern = regexp.MustCompile(`^\d+([.,]\d{1,2})?$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

type amountValidator struct{}

func (amountValidator) Key() domain.FieldKey { return domain.FieldTotal }

func (amountValidator) Validate(raw string, _ []domain.Category) (Value, error) {
	s := strings.TrimSpace(raw)
	if !amountPattern.MatchString(s) {
		return Value{}, fieldError(domain.FieldTotal, raw, ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil || !amount.IsPositive() {
		return Value{}, fieldError(domain.FieldTotal, raw, ErrInvalidAmount)
	}
	return Value{Field: domain.FieldTotal, Amount: amount}, nil
}

type dateValidator struct{}

func (dateValidator) Key() domain.FieldKey { return domain.FieldDate }

func (dateValidator) Validate(raw string, _ []domain.Category) (Value, error) {
	s := strings.TrimSpace(raw)
	if !datePattern.MatchString(s) {
		return Value{}, fieldError(domain.FieldDate, raw, ErrMalformedDateFormat)
	}
	// time.Parse rejects out-of-range months and days, including Feb 30.
	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return Value{}, fieldError(domain.FieldDate, raw, ErrInvalidCalendarDate)
	}
	return Value{Field: domain.FieldDate, Date: date}, nil
}

type merchantValidator struct{}

func (merchantValidator) Key() domain.FieldKey { return domain.FieldMerchant }

func (merchantValidator) Validate(raw string, _ []domain.Category) (Value, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{}, fieldError(domain.FieldMerchant, raw, ErrEmptyMerchant)
	}
	return Value{Field: domain.FieldMerchant, Text: s}, nil
}

type categoryValidator struct{}

func (categoryValidator) Key() domain.FieldKey { return domain.FieldCategory }

// Validate matches by exact presentation key; no trimming or case folding.
func (categoryValidator) Validate(raw string, categories []domain.Category) (Value, error) {
	for _, c := range categories {
		if c.PresentationKey() == raw {
			return Value{Field: domain.FieldCategory, CategoryID: c.ID, Text: c.Name}, nil
		}
	}
	return Value{}, fieldError(domain.FieldCategory, raw, ErrUnknownCategory)
}
