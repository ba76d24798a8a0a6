package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spendbot/internal/domain"
	"spendbot/internal/port"
	"spendbot/internal/validator"
)

// ExpenseService finalizes reviewed expenses.
type ExpenseService interface {
	// ApplyCorrections validates the corrections, writes them and marks the expense
	// confirmed. An empty slice confirms the expense as extracted.
	ApplyCorrections(ctx context.Context, userID int64, expenseID uuid.UUID, corrections []domain.Correction, categories []domain.Category) (*domain.Expense, error)
}

type expenseService struct {
	expenses  port.ExpenseRepository
	auditRepo port.ExpenseAuditRepository
	registry  *validator.Registry
	log       *zap.Logger
}

// NewExpenseService creates a new ExpenseService. auditRepo may be nil.
func NewExpenseService(expenses port.ExpenseRepository, auditRepo port.ExpenseAuditRepository, registry *validator.Registry, log *zap.Logger) ExpenseService {
	return &expenseService{
		expenses:  expenses,
		auditRepo: auditRepo,
		registry:  registry,
		log:       log,
	}
}

func (s *expenseService) ApplyCorrections(ctx context.Context, userID int64, expenseID uuid.UUID, corrections []domain.Correction, categories []domain.Category) (*domain.Expense, error) {
	set, err := s.registry.Build(corrections, categories)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCommit, err)
	}

	updated, err := s.expenses.ApplyCorrections(ctx, userID, expenseID, set, domain.ExpenseStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCommit, err)
	}

	action := domain.AuditExpenseConfirmed
	if !set.IsEmpty() {
		action = domain.AuditExpenseCorrected
	}
	s.audit(ctx, updated, action, changesOf(set))

	s.log.Info("expenseService: expense committed",
		zap.Int64("user_id", userID),
		zap.String("expense_id", expenseID.String()),
		zap.String("action", string(action)))
	return updated, nil
}

func (s *expenseService) audit(ctx context.Context, expense *domain.Expense, action domain.AuditAction, changes json.RawMessage) {
	if s.auditRepo == nil {
		return
	}
	entry := &domain.ExpenseAuditEntry{
		ID:        uuid.New(),
		ExpenseID: expense.ID,
		UserID:    expense.UserID,
		Action:    action,
		Changes:   changes,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.log.Warn("expenseService: failed to write audit entry",
			zap.String("expense_id", expense.ID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func changesOf(set domain.CorrectionSet) json.RawMessage {
	changes := map[string]string{}
	if set.Amount != nil {
		changes[string(domain.FieldTotal)] = set.Amount.String()
	}
	if set.Date != nil {
		changes[string(domain.FieldDate)] = set.Date.Format(validator.DateLayout)
	}
	if set.Merchant != nil {
		changes[string(domain.FieldMerchant)] = *set.Merchant
	}
	if set.CategoryID != nil {
		changes[string(domain.FieldCategory)] = set.CategoryID.String()
	}
	b, _ := json.Marshal(changes)
	return b
}
