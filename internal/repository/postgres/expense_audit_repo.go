package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"spendbot/internal/domain"
	"spendbot/internal/port"
)

type expenseAuditRepo struct {
	db *sqlx.DB
}

// NewExpenseAuditRepo creates a new PostgreSQL-backed ExpenseAuditRepository.
func NewExpenseAuditRepo(db *sqlx.DB) port.ExpenseAuditRepository {
	return &expenseAuditRepo{db: db}
}

func (r *expenseAuditRepo) Create(ctx context.Context, entry *domain.ExpenseAuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_audit_log (id, expense_id, user_id, action, changes)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.ExpenseID, entry.UserID, entry.Action, entry.Changes)
	if err != nil {
		return fmt.Errorf("expenseAuditRepo.Create: %w", err)
	}
	return nil
}
