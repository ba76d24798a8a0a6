package validator_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendbot/internal/domain"
	"spendbot/internal/validator"
)

func testCategories() []domain.Category {
	return []domain.Category{
		{ID: uuid.New(), Name: "Groceries", Icon: "🛒"},
		{ID: uuid.New(), Name: "Transport"},
	}
}

func TestRegistry_Fields_Order(t *testing.T) {
	r := validator.NewDefaultRegistry()
	assert.Equal(t, []domain.FieldKey{
		domain.FieldTotal, domain.FieldDate, domain.FieldMerchant, domain.FieldCategory,
	}, r.Fields())
}

func TestValidate_Total_Valid(t *testing.T) {
	r := validator.NewDefaultRegistry()
	tests := []struct {
		input string
		want  string
	}{
		{"15", "15"},
		{"15.00", "15"},
		{"12,50", "12.5"},
		{" 7.25 ", "7.25"},
		{"0.01", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := r.Validate(domain.FieldTotal, tt.input, nil)
			require.NoError(t, err)
			assert.True(t, v.Amount.Equal(decimal.RequireFromString(tt.want)), "got %s", v.Amount)
			assert.True(t, v.Amount.IsPositive())
		})
	}
}

func TestValidate_Total_Invalid(t *testing.T) {
	r := validator.NewDefaultRegistry()
	for _, input := range []string{"", "abc", "-5", "0", "0.00", "1.2.3", "1,000.50", "12.", ".5", "1e3", "15.005", "0,001"} {
		t.Run(input, func(t *testing.T) {
			_, err := r.Validate(domain.FieldTotal, input, nil)
			assert.ErrorIs(t, err, validator.ErrInvalidAmount)
		})
	}
}

func TestValidate_Date(t *testing.T) {
	r := validator.NewDefaultRegistry()

	v, err := r.Validate(domain.FieldDate, "2024-02-29", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), v.Date)

	_, err = r.Validate(domain.FieldDate, "2024-13-40", nil)
	assert.ErrorIs(t, err, validator.ErrInvalidCalendarDate)
	assert.NotErrorIs(t, err, validator.ErrMalformedDateFormat)

	_, err = r.Validate(domain.FieldDate, "2023-02-29", nil)
	assert.ErrorIs(t, err, validator.ErrInvalidCalendarDate)

	for _, input := range []string{"29.02.2024", "2024-2-29", "24-02-29", "yesterday", ""} {
		_, err = r.Validate(domain.FieldDate, input, nil)
		assert.ErrorIs(t, err, validator.ErrMalformedDateFormat, input)
	}
}

func TestValidate_Merchant(t *testing.T) {
	r := validator.NewDefaultRegistry()

	v, err := r.Validate(domain.FieldMerchant, "  Corner Shop ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", v.Text)

	_, err = r.Validate(domain.FieldMerchant, "   ", nil)
	assert.ErrorIs(t, err, validator.ErrEmptyMerchant)
}

func TestValidate_Category(t *testing.T) {
	r := validator.NewDefaultRegistry()
	cats := testCategories()

	v, err := r.Validate(domain.FieldCategory, "🛒 Groceries", cats)
	require.NoError(t, err)
	assert.Equal(t, cats[0].ID, v.CategoryID)

	v, err = r.Validate(domain.FieldCategory, "Transport", cats)
	require.NoError(t, err)
	assert.Equal(t, cats[1].ID, v.CategoryID)

	for _, input := range []string{"Groceries", "groceries", "🛒 groceries", "Food"} {
		_, err = r.Validate(domain.FieldCategory, input, cats)
		assert.ErrorIs(t, err, validator.ErrUnknownCategory, input)
	}
}

func TestValidate_UnknownField(t *testing.T) {
	r := validator.NewDefaultRegistry()
	_, err := r.Validate("tip", "5", nil)
	assert.ErrorIs(t, err, validator.ErrUnknownField)

	var fe *validator.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.FieldKey("tip"), fe.Field)
}

func TestRegistry_Build(t *testing.T) {
	r := validator.NewDefaultRegistry()
	cats := testCategories()

	set, err := r.Build([]domain.Correction{
		{Field: domain.FieldTotal, Value: "10"},
		{Field: domain.FieldMerchant, Value: "Bakery"},
		{Field: domain.FieldCategory, Value: "Transport"},
		{Field: domain.FieldTotal, Value: "15,00"},
	}, cats)
	require.NoError(t, err)

	require.NotNil(t, set.Amount)
	assert.True(t, set.Amount.Equal(decimal.NewFromInt(15)))
	require.NotNil(t, set.Merchant)
	assert.Equal(t, "Bakery", *set.Merchant)
	require.NotNil(t, set.CategoryID)
	assert.Equal(t, cats[1].ID, *set.CategoryID)
	assert.Nil(t, set.Date)

	empty, err := r.Build(nil, cats)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = r.Build([]domain.Correction{{Field: domain.FieldDate, Value: "2024-13-01"}}, cats)
	assert.ErrorIs(t, err, validator.ErrInvalidCalendarDate)
}
