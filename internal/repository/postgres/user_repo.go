package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"spendbot/internal/domain"
	"spendbot/internal/port"
)

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new PostgreSQL-backed UserRepository.
func NewUserRepo(db *sqlx.DB) port.UserRepository {
	return &userRepo{db: db}
}

// Upsert records the chat and username a user was last seen with. Language and
// currency are only set on first insert; they belong to the settings flow afterwards.
func (r *userRepo) Upsert(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	err := r.db.GetContext(ctx, user,
		`INSERT INTO users (id, chat_id, username, language, currency, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET chat_id = EXCLUDED.chat_id, username = EXCLUDED.username, updated_at = EXCLUDED.updated_at
		 RETURNING *`,
		user.ID, user.ChatID, user.Username, user.Language, user.Currency, now)
	if err != nil {
		return fmt.Errorf("userRepo.Upsert: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return &user, nil
}
