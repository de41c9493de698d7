package extraction

import (
	"context"

	"github.com/spigell/invoice-matcher/internal/document"
)

type recordFileSource struct {
	disabled bool
	reason   string
}

// NewRecordFile creates a source reading already structured YAML or JSON records.
func NewRecordFile() Source {
	return &recordFileSource{}
}

func (s *recordFileSource) Name() string { return "record_file" }

func (s *recordFileSource) Disable(reason string) {
	s.disabled = true
	s.reason = reason
}

func (s *recordFileSource) IsEnabled() bool { return !s.disabled }

func (s *recordFileSource) Accepts(upload *document.Upload) bool {
	return upload.IsRecordFile()
}

func (s *recordFileSource) Extract(_ context.Context, upload *document.Upload) (*document.ExtractedData, error) {
	return document.LoadRecordFile(upload.Path)
}

func (s *recordFileSource) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason}
}
