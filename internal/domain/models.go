package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a bot user identified by their Telegram user id.
type User struct {
	ID        int64     `db:"id" json:"id"`
	ChatID    int64     `db:"chat_id" json:"chat_id"`
	Username  string    `db:"username" json:"username"`
	Language  string    `db:"language" json:"language"`
	Currency  string    `db:"currency" json:"currency"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Category is a user-selectable expense category.
type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Icon      string    `db:"icon" json:"icon"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PresentationKey is the label a category is shown and matched under: "icon name", or
// just the name when no icon is set.
func (c Category) PresentationKey() string {
	if c.Icon == "" {
		return c.Name
	}
	return c.Icon + " " + c.Name
}

// LineItem is a single purchased position on a receipt.
type LineItem struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	ExpenseID uuid.UUID       `db:"expense_id" json:"expense_id"`
	Name      string          `db:"name" json:"name"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Total     decimal.Decimal `db:"total" json:"total"`
}

// Expense is a persisted expense record, possibly still awaiting user review.
type Expense struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Currency    string          `db:"currency" json:"currency"`
	Date        time.Time       `db:"expense_date" json:"date"`
	Merchant    string          `db:"merchant" json:"merchant"`
	CategoryID  *uuid.UUID      `db:"category_id" json:"category_id"`
	Description string          `db:"description" json:"description"`
	Status      ExpenseStatus   `db:"status" json:"status"`
	Source      string          `db:"source" json:"source"`
	ParserModel string          `db:"parser_model" json:"parser_model"`
	Items       []LineItem      `db:"-" json:"items"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (e *Expense) Clone() *Expense {
	if e == nil {
		return nil
	}
	out := *e
	if e.CategoryID != nil {
		id := *e.CategoryID
		out.CategoryID = &id
	}
	if e.Items != nil {
		out.Items = append([]LineItem(nil), e.Items...)
	}
	return &out
}

// ExpenseAuditEntry records a mutation of an expense.
type ExpenseAuditEntry struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	ExpenseID uuid.UUID       `db:"expense_id" json:"expense_id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Action    AuditAction     `db:"action" json:"action"`
	Changes   json.RawMessage `db:"changes" json:"changes"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// ExtractionResult is the outcome of turning receipt bytes into expense fields.
type ExtractionResult struct {
	Succeeded   bool
	Expense     *Expense
	NeedsReview bool
	// UncertainFields lists the fields the parser was not confident about.
	UncertainFields []FieldKey
	// ReviewHint is free text shown alongside the review question.
	ReviewHint    string
	FailureReason string
}

// Correction is a raw replacement value for one field of an extracted expense.
// It is validated when applied, not when collected.
type Correction struct {
	Field FieldKey
	Value string
}

// CorrectionSet is the validated, typed form of a batch of corrections.
// Nil fields are left untouched.
type CorrectionSet struct {
	Amount     *decimal.Decimal
	Date       *time.Time
	Merchant   *string
	CategoryID *uuid.UUID
}

// IsEmpty reports whether the set changes nothing.
func (c CorrectionSet) IsEmpty() bool {
	return c.Amount == nil && c.Date == nil && c.Merchant == nil && c.CategoryID == nil
}

// ApplyTo writes the set onto e.
func (c CorrectionSet) ApplyTo(e *Expense) {
	if c.Amount != nil {
		e.Amount = *c.Amount
	}
	if c.Date != nil {
		e.Date = *c.Date
	}
	if c.Merchant != nil {
		e.Merchant = *c.Merchant
	}
	if c.CategoryID != nil {
		id := *c.CategoryID
		e.CategoryID = &id
	}
}

// Prompt is an outbound chat message, optionally with a fixed ordered menu of reply labels.
type Prompt struct {
	Text    string
	Options []string
}
