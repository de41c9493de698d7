package extraction

import (
	"context"
	"errors"
	"maps"

	"github.com/spigell/invoice-matcher/internal/ai"
	"github.com/spigell/invoice-matcher/internal/document"
)

type aiSource struct {
	extractor ai.Extractor
	details   map[string]string
	disabled  bool
	reason    string
}

// NewAI creates a source delegating to an AI extractor. A nil extractor
// yields a disabled source.
func NewAI(extractor ai.Extractor, details map[string]string) Source {
	s := &aiSource{extractor: extractor, details: details}
	if extractor == nil {
		s.Disable("ai extractor is not configured")
	}
	return s
}

func (s *aiSource) Name() string { return "ai" }

func (s *aiSource) Disable(reason string) {
	s.disabled = true
	s.reason = reason
}

func (s *aiSource) IsEnabled() bool { return !s.disabled }

func (s *aiSource) Accepts(upload *document.Upload) bool {
	return !upload.IsRecordFile()
}

func (s *aiSource) Extract(ctx context.Context, upload *document.Upload) (*document.ExtractedData, error) {
	if s.extractor == nil {
		return nil, errors.New("ai extractor is not configured")
	}
	return s.extractor.Extract(ctx, upload)
}

func (s *aiSource) Status() Status {
	details := make(map[string]string, len(s.details))
	maps.Copy(details, s.details)
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason, Details: details}
}
