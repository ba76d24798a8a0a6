package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"spendbot/internal/domain"
	"spendbot/internal/port"
)

type categoryRepo struct {
	db *sqlx.DB
}

// NewCategoryRepo creates a new PostgreSQL-backed CategoryRepository.
func NewCategoryRepo(db *sqlx.DB) port.CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Category, error) {
	var cats []domain.Category
	err := r.db.SelectContext(ctx, &cats,
		`SELECT * FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("categoryRepo.ListByUser: %w", err)
	}
	return cats, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, userID int64, categoryID uuid.UUID) (*domain.Category, error) {
	var cat domain.Category
	err := r.db.GetContext(ctx, &cat,
		`SELECT * FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("categoryRepo.GetByID: %w", err)
	}
	return &cat, nil
}
