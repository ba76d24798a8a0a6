package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spendbot/internal/domain"
	"spendbot/internal/parser"
	"spendbot/internal/port"
	"spendbot/internal/validator"
)

// ExtractorConfig tunes how parsed receipts are judged.
type ExtractorConfig struct {
	// ReviewConfidence is the score at or below which a field is considered uncertain.
	ReviewConfidence float64
	DefaultCurrency  string
}

// ReceiptExtractor implements port.Extractor on top of an LLM DocumentParser. A
// successfully parsed receipt is stored as a pending expense that the user then reviews.
type ReceiptExtractor struct {
	parser     port.DocumentParser
	expenses   port.ExpenseRepository
	categories port.CategoryRepository
	users      port.UserRepository
	auditRepo  port.ExpenseAuditRepository
	cfg        ExtractorConfig
	log        *zap.Logger
	now        func() time.Time
}

// NewReceiptExtractor creates a ReceiptExtractor. auditRepo may be nil.
func NewReceiptExtractor(
	p port.DocumentParser,
	expenses port.ExpenseRepository,
	categories port.CategoryRepository,
	users port.UserRepository,
	auditRepo port.ExpenseAuditRepository,
	cfg ExtractorConfig,
	log *zap.Logger,
) *ReceiptExtractor {
	return &ReceiptExtractor{
		parser:     p,
		expenses:   expenses,
		categories: categories,
		users:      users,
		auditRepo:  auditRepo,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// receiptData mirrors the "data" object requested by parser.BuildReceiptPrompt.
type receiptData struct {
	Total       json.RawMessage `json:"total"`
	Currency    string          `json:"currency"`
	Date        string          `json:"date"`
	Merchant    string          `json:"merchant"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Items       []struct {
		Name     string          `json:"name"`
		Quantity json.RawMessage `json:"quantity"`
		Price    json.RawMessage `json:"price"`
		Total    json.RawMessage `json:"total"`
	} `json:"items"`
}

// Extract implements port.Extractor.
func (x *ReceiptExtractor) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractionResult, error) {
	out, err := x.parser.Parse(ctx, port.ParseInput{
		FileBytes:   input.Bytes,
		ContentType: input.ContentType,
		SourceTag:   input.SourceTag,
	})
	if err != nil {
		x.log.Warn("extractor: parse failed", zap.Int64("user_id", input.UserID), zap.Error(err))
		return &domain.ExtractionResult{FailureReason: failureReason(err)}, nil
	}

	var data receiptData
	if err := json.Unmarshal(out.StructuredData, &data); err != nil {
		x.log.Warn("extractor: unexpected receipt shape", zap.Int64("user_id", input.UserID), zap.Error(err))
		return &domain.ExtractionResult{FailureReason: "the receipt could not be read"}, nil
	}

	expense, missing := x.buildExpense(input, &data, out.ModelUsed)
	if expense.Amount.IsZero() && len(expense.Items) == 0 && expense.Merchant == "" {
		return &domain.ExtractionResult{FailureReason: "no purchase was found in the document"}, nil
	}
	expense.Currency = x.currencyFor(ctx, input.UserID, data.Currency)
	expense.CategoryID = x.matchCategory(ctx, input.UserID, data.Category)

	uncertain := x.uncertainFields(out.ConfidenceScores, missing)

	if err := x.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("%w: saving expense: %v", domain.ErrExtraction, err)
	}
	x.audit(ctx, expense, out.ModelUsed)

	x.log.Info("extractor: receipt extracted",
		zap.Int64("user_id", input.UserID),
		zap.String("expense_id", expense.ID.String()),
		zap.String("model", out.ModelUsed),
		zap.Int("uncertain_fields", len(uncertain)))

	return &domain.ExtractionResult{
		Succeeded:       true,
		Expense:         expense,
		NeedsReview:     len(uncertain) > 0,
		UncertainFields: uncertain,
	}, nil
}

// buildExpense maps parsed data onto a pending expense and reports which core fields
// were absent.
func (x *ReceiptExtractor) buildExpense(input port.ExtractInput, data *receiptData, model string) (*domain.Expense, map[domain.FieldKey]bool) {
	missing := map[domain.FieldKey]bool{}
	now := x.now()

	expense := &domain.Expense{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Merchant:    strings.TrimSpace(data.Merchant),
		Description: strings.TrimSpace(data.Description),
		Status:      domain.ExpenseStatusPendingReview,
		Source:      input.SourceTag,
		ParserModel: model,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, it := range data.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		qty := decimalOrZero(it.Quantity)
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		price := decimalOrZero(it.Price)
		total := decimalOrZero(it.Total)
		if total.IsZero() {
			total = price.Mul(qty)
		}
		expense.Items = append(expense.Items, domain.LineItem{
			ID:        uuid.New(),
			ExpenseID: expense.ID,
			Name:      name,
			Quantity:  qty,
			Price:     price,
			Total:     total,
		})
	}

	expense.Amount = decimalOrZero(data.Total).Round(2)
	if !expense.Amount.IsPositive() {
		expense.Amount = decimal.Zero
		for _, it := range expense.Items {
			expense.Amount = expense.Amount.Add(it.Total)
		}
		missing[domain.FieldTotal] = true
	}

	if d, err := time.Parse(validator.DateLayout, strings.TrimSpace(data.Date)); err == nil {
		expense.Date = d
	} else {
		expense.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		missing[domain.FieldDate] = true
	}

	if expense.Merchant == "" {
		missing[domain.FieldMerchant] = true
	}

	return expense, missing
}

func (x *ReceiptExtractor) currencyFor(ctx context.Context, userID int64, parsed string) string {
	if c := strings.ToUpper(strings.TrimSpace(parsed)); len(c) == 3 {
		return c
	}
	if x.users != nil {
		if u, err := x.users.GetByID(ctx, userID); err == nil && u.Currency != "" {
			return u.Currency
		}
	}
	return x.cfg.DefaultCurrency
}

// matchCategory resolves the suggested category by case-insensitive name.
func (x *ReceiptExtractor) matchCategory(ctx context.Context, userID int64, suggested string) *uuid.UUID {
	suggested = strings.TrimSpace(suggested)
	if suggested == "" || x.categories == nil {
		return nil
	}
	cats, err := x.categories.ListByUser(ctx, userID)
	if err != nil {
		x.log.Warn("extractor: listing categories failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, suggested) {
			id := c.ID
			return &id
		}
	}
	return nil
}

// uncertainFields returns the core fields, in registry order, that are missing or whose
// confidence is at or below the threshold.
func (x *ReceiptExtractor) uncertainFields(raw json.RawMessage, missing map[domain.FieldKey]bool) []domain.FieldKey {
	scores := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &scores)
	}

	var out []domain.FieldKey
	for _, key := range []domain.FieldKey{domain.FieldTotal, domain.FieldDate, domain.FieldMerchant} {
		if missing[key] {
			out = append(out, key)
			continue
		}
		if score, ok := scores[string(key)].(float64); ok && score <= x.cfg.ReviewConfidence {
			out = append(out, key)
		}
	}
	return out
}

func (x *ReceiptExtractor) audit(ctx context.Context, expense *domain.Expense, model string) {
	if x.auditRepo == nil {
		return
	}
	changes, _ := json.Marshal(map[string]string{
		"amount": expense.Amount.String(),
		"model":  model,
	})
	entry := &domain.ExpenseAuditEntry{
		ID:        uuid.New(),
		ExpenseID: expense.ID,
		UserID:    expense.UserID,
		Action:    domain.AuditExpenseExtracted,
		Changes:   changes,
	}
	if err := x.auditRepo.Create(ctx, entry); err != nil {
		x.log.Warn("extractor: failed to write audit entry", zap.String("expense_id", expense.ID.String()), zap.Error(err))
	}
}

func failureReason(err error) string {
	var rlErr *parser.RateLimitError
	switch {
	case errors.As(err, &rlErr):
		return "the recognition service is busy, please try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return "recognition took too long"
	default:
		return "the receipt could not be read"
	}
}

// decimalOrZero accepts a JSON number or a numeric string.
func decimalOrZero(raw json.RawMessage) decimal.Decimal {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SetClock overrides the time source.
func (x *ReceiptExtractor) SetClock(now func() time.Time) {
	x.now = now
}
