package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/number"

	"spendbot/internal/domain"
	"spendbot/internal/lexicon"
	"spendbot/internal/port"
)

// Summarizer renders an expense as a short localized text block.
type Summarizer interface {
	Format(ctx context.Context, expense *domain.Expense, loc lexicon.Locale) (string, error)
}

type summarizer struct {
	categories port.CategoryRepository
}

// NewSummarizer creates a Summarizer that resolves category names through categories.
func NewSummarizer(categories port.CategoryRepository) Summarizer {
	return &summarizer{categories: categories}
}

var errNoExpense = errors.New("no expense to summarize")

func (s *summarizer) Format(ctx context.Context, expense *domain.Expense, loc lexicon.Locale) (string, error) {
	if expense == nil {
		return "", errNoExpense
	}

	amount, err := FormatAmount(loc, expense.Amount.InexactFloat64(), expense.Currency)
	if err != nil {
		return "", err
	}

	category, err := s.categoryLabel(ctx, expense, loc)
	if err != nil {
		return "", err
	}

	lines := []string{
		loc.Sprintf(lexicon.MsgSummaryAmount, amount),
		loc.Sprintf(lexicon.MsgSummaryDate, expense.Date.Format(loc.DateLayout())),
		loc.Sprintf(lexicon.MsgSummaryCategory, category),
	}
	if expense.Merchant != "" {
		lines = append(lines, loc.Sprintf(lexicon.MsgSummaryMerchant, expense.Merchant))
	}
	if expense.Description != "" {
		lines = append(lines, loc.Sprintf(lexicon.MsgSummaryDescription, expense.Description))
	}

	if len(expense.Items) > 0 {
		lines = append(lines, "", loc.Sprintf(lexicon.MsgSummaryItems))
		p := loc.Printer()
		for _, it := range expense.Items {
			total := p.Sprint(number.Decimal(it.Total.InexactFloat64(), number.Scale(2)))
			if !it.Quantity.Equal(decimal.NewFromInt(1)) {
				lines = append(lines, fmt.Sprintf("• %s ×%s: %s", it.Name, it.Quantity.String(), total))
			} else {
				lines = append(lines, fmt.Sprintf("• %s: %s", it.Name, total))
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}

func (s *summarizer) categoryLabel(ctx context.Context, expense *domain.Expense, loc lexicon.Locale) (string, error) {
	if expense.CategoryID == nil {
		return loc.Sprintf(lexicon.MsgUncategorized), nil
	}
	cat, err := s.categories.GetByID(ctx, expense.UserID, *expense.CategoryID)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return loc.Sprintf(lexicon.MsgUncategorized), nil
		}
		return "", fmt.Errorf("resolving category: %w", err)
	}
	return cat.PresentationKey(), nil
}

// FormatAmount renders amount in the currency's standard precision, with the locale's
// number separators, followed by the ISO code.
func FormatAmount(loc lexicon.Locale, amount float64, code string) (string, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("unknown currency %q: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return loc.Printer().Sprint(number.Decimal(amount, number.Scale(scale))) + " " + unit.String(), nil
}
