package ai

import (
	"context"

	"github.com/spigell/invoice-matcher/internal/document"
)

// Extractor turns a raw uploaded file into a structured record.
type Extractor interface {
	Extract(ctx context.Context, upload *document.Upload) (*document.ExtractedData, error)
}
