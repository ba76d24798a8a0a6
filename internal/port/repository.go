package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"spendbot/internal/domain"
)

// UserRepository defines the contract for user profile persistence.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
}

// CategoryRepository defines the contract for category lookups.
// All query methods include userID so users only ever see their own categories.
type CategoryRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.Category, error)
	GetByID(ctx context.Context, userID int64, categoryID uuid.UUID) (*domain.Category, error)
}

// ExpenseRepository defines the contract for expense persistence.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, userID int64, expenseID uuid.UUID) (*domain.Expense, error)
	// ListByUser returns the user's expenses dated within [from, to], oldest first,
	// without line items.
	ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]domain.Expense, error)
	// ApplyCorrections writes the set and the new status in a single transaction and
	// returns the stored record.
	ApplyCorrections(ctx context.Context, userID int64, expenseID uuid.UUID, set domain.CorrectionSet, status domain.ExpenseStatus) (*domain.Expense, error)
}

// ExpenseAuditRepository defines the contract for the expense audit log.
type ExpenseAuditRepository interface {
	Create(ctx context.Context, entry *domain.ExpenseAuditEntry) error
}
