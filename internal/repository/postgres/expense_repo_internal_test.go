package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"spendbot/internal/domain"
)

func TestBuildCorrectionUpdate_Empty(t *testing.T) {
	id := uuid.New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	query, args := buildCorrectionUpdate(7, id, domain.CorrectionSet{}, domain.ExpenseStatusConfirmed, now)

	assert.Equal(t, "UPDATE expenses SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4", query)
	assert.Equal(t, []interface{}{domain.ExpenseStatusConfirmed, now, id, int64(7)}, args)
}

func TestBuildCorrectionUpdate_AllFields(t *testing.T) {
	id := uuid.New()
	catID := uuid.New()
	now := time.Now()
	amount := decimal.NewFromInt(15)
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	merchant := "Bakery"

	query, args := buildCorrectionUpdate(7, id, domain.CorrectionSet{
		Amount:     &amount,
		Date:       &date,
		Merchant:   &merchant,
		CategoryID: &catID,
	}, domain.ExpenseStatusConfirmed, now)

	assert.Equal(t,
		"UPDATE expenses SET status = $1, updated_at = $2, amount = $3, expense_date = $4, merchant = $5, category_id = $6 WHERE id = $7 AND user_id = $8",
		query)
	assert.Len(t, args, 8)
	assert.Equal(t, amount, args[2])
	assert.Equal(t, catID, args[5])
	assert.Equal(t, int64(7), args[7])
}
