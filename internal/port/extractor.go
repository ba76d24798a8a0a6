package port

import (
	"context"

	"spendbot/internal/domain"
)

// ExtractInput is what the workflow hands to the extraction service.
type ExtractInput struct {
	UserID      int64
	Bytes       []byte
	ContentType string
	SourceTag   string
}

// Extractor turns receipt bytes into a structured expense. It may be slow and may fail;
// callers do not retry.
type Extractor interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.ExtractionResult, error)
}
