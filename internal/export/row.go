// Package export renders a user's expenses as CSV or an Excel workbook.
package export

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendbot/internal/domain"
)

// Row is one expense flattened for a spreadsheet.
type Row struct {
	Date        time.Time
	Merchant    string
	Category    string
	Amount      decimal.Decimal
	Currency    string
	Status      domain.ExpenseStatus
	Source      string
	Description string
	CreatedAt   time.Time
}

// columns is the header row shared by both formats.
var columns = []string{
	"Date",
	"Merchant",
	"Category",
	"Amount",
	"Currency",
	"Status",
	"Source",
	"Description",
	"Created At",
}

// BuildRows resolves category names and flattens expenses in their given order.
// Expenses whose category is unknown or unset get an empty category cell.
func BuildRows(expenses []domain.Expense, categories []domain.Category) []Row {
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	rows := make([]Row, 0, len(expenses))
	for i := range expenses {
		e := &expenses[i]
		row := Row{
			Date:        e.Date,
			Merchant:    e.Merchant,
			Amount:      e.Amount,
			Currency:    e.Currency,
			Status:      e.Status,
			Source:      e.Source,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		}
		if e.CategoryID != nil {
			row.Category = names[*e.CategoryID]
		}
		rows = append(rows, row)
	}
	return rows
}
