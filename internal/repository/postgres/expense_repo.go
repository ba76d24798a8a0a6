package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"spendbot/internal/domain"
	"spendbot/internal/port"
)

type expenseRepo struct {
	db *sqlx.DB
}

// NewExpenseRepo creates a new PostgreSQL-backed ExpenseRepository.
func NewExpenseRepo(db *sqlx.DB) port.ExpenseRepository {
	return &expenseRepo{db: db}
}

const expenseColumns = `id, user_id, amount, currency, expense_date, merchant, category_id,
	description, status, source, parser_model, created_at, updated_at`

func (r *expenseRepo) Create(ctx context.Context, e *domain.Expense) error {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (`+expenseColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			e.ID, e.UserID, e.Amount, e.Currency, e.Date, e.Merchant, e.CategoryID,
			e.Description, e.Status, e.Source, e.ParserModel, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range e.Items {
			it := &e.Items[i]
			if it.ID == uuid.Nil {
				it.ID = uuid.New()
			}
			it.ExpenseID = e.ID
			_, err := tx.ExecContext(ctx,
				`INSERT INTO expense_items (id, expense_id, position, name, quantity, price, total)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				it.ID, it.ExpenseID, i, it.Name, it.Quantity, it.Price, it.Total)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("expenseRepo.Create: %w", err)
	}
	return nil
}

func (r *expenseRepo) GetByID(ctx context.Context, userID int64, expenseID uuid.UUID) (*domain.Expense, error) {
	e, err := getExpense(ctx, r.db, userID, expenseID)
	if err != nil {
		return nil, fmt.Errorf("expenseRepo.GetByID: %w", err)
	}
	return e, nil
}

func (r *expenseRepo) ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]domain.Expense, error) {
	var expenses []domain.Expense
	err := r.db.SelectContext(ctx, &expenses,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE user_id = $1 AND expense_date BETWEEN $2 AND $3
		 ORDER BY expense_date, created_at`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("expenseRepo.ListByUser: %w", err)
	}
	return expenses, nil
}

func (r *expenseRepo) ApplyCorrections(ctx context.Context, userID int64, expenseID uuid.UUID, set domain.CorrectionSet, status domain.ExpenseStatus) (*domain.Expense, error) {
	var updated *domain.Expense
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args := buildCorrectionUpdate(userID, expenseID, set, status, time.Now().UTC())
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrExpenseNotFound
		}
		updated, err = getExpense(ctx, tx, userID, expenseID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("expenseRepo.ApplyCorrections: %w", err)
	}
	return updated, nil
}

// buildCorrectionUpdate renders the UPDATE for the non-nil fields of set.
func buildCorrectionUpdate(userID int64, expenseID uuid.UUID, set domain.CorrectionSet, status domain.ExpenseStatus, now time.Time) (string, []interface{}) {
	clauses := []string{"status = $1", "updated_at = $2"}
	args := []interface{}{status, now}

	add := func(column string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if set.Amount != nil {
		add("amount", *set.Amount)
	}
	if set.Date != nil {
		add("expense_date", *set.Date)
	}
	if set.Merchant != nil {
		add("merchant", *set.Merchant)
	}
	if set.CategoryID != nil {
		add("category_id", *set.CategoryID)
	}

	args = append(args, expenseID, userID)
	query := fmt.Sprintf("UPDATE expenses SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(clauses, ", "), len(args)-1, len(args))
	return query, args
}

func getExpense(ctx context.Context, q sqlx.QueryerContext, userID int64, expenseID uuid.UUID) (*domain.Expense, error) {
	var e domain.Expense
	err := sqlx.GetContext(ctx, q, &e,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND user_id = $2`, expenseID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}

	err = sqlx.SelectContext(ctx, q, &e.Items,
		`SELECT id, expense_id, name, quantity, price, total
		 FROM expense_items WHERE expense_id = $1 ORDER BY position`, expenseID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
