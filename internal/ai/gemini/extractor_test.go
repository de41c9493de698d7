package gemini

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/invoice-matcher/internal/document"
)

type stubGenerator struct {
	response      string
	err           error
	lastPrompt    string
	lastMediaType string
	lastData      []byte
}

func (s *stubGenerator) GenerateFromFile(_ context.Context, prompt, mediaType string, data []byte) (string, error) {
	s.lastPrompt = prompt
	s.lastMediaType = mediaType
	s.lastData = data
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func writeUpload(t *testing.T, kind document.Kind, name, content string) *document.Upload {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return &document.Upload{ID: "upload-1", Kind: kind, Path: path, MediaType: "application/pdf"}
}

func TestExtractorExtract(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `{
		"documentNumber": " INV-1001 ",
		"vendor": "Acme Corp",
		"date": "2024-03-01",
		"total": 1250.5,
		"items": [
			{"description": "Widget", "quantity": 2, "unitPrice": 500, "total": 1000},
			{"description": "Setup", "quantity": "1", "unitPrice": "$250.50", "total": "250.50"}
		]
	}` + "\n```"}
	extractor := NewExtractor(stub, zap.NewNop(), 0)
	upload := writeUpload(t, document.KindInvoice, "inv.pdf", "%PDF-1.4")

	record, err := extractor.Extract(context.Background(), upload)
	require.NoError(t, err)

	assert.Equal(t, "INV-1001", record.DocumentNumber)
	assert.Equal(t, "Acme Corp", record.Vendor)
	assert.Equal(t, "2024-03-01", record.Date)
	assert.Equal(t, 1250.5, record.Total)
	require.Len(t, record.Items, 2)
	assert.Equal(t, document.LineItem{Description: "Setup", Quantity: 1, UnitPrice: 250.5, Total: 250.5}, record.Items[1])

	assert.Equal(t, "%PDF-1.4", string(stub.lastData))
	assert.Equal(t, "application/pdf", stub.lastMediaType)
	assert.Contains(t, stub.lastPrompt, "Analyze this invoice document")
	assert.Contains(t, stub.lastPrompt, "the invoice number")
}

func TestExtractorPurchaseOrderPrompt(t *testing.T) {
	stub := &stubGenerator{response: `{"documentNumber": "PO-1", "vendor": "Acme", "total": 10}`}
	extractor := NewExtractor(stub, nil, 0)
	upload := writeUpload(t, document.KindPurchaseOrder, "po.pdf", "%PDF")

	record, err := extractor.Extract(context.Background(), upload)
	require.NoError(t, err)

	assert.Contains(t, stub.lastPrompt, "Analyze this purchase order document")
	assert.Contains(t, stub.lastPrompt, "the PO number")
	assert.NotContains(t, stub.lastPrompt, "{{", "unreplaced placeholder")
	assert.NotNil(t, record.Items)
	assert.Empty(t, record.Items)
}

func TestExtractorPropagatesGeneratorError(t *testing.T) {
	boom := errors.New("boom")
	extractor := NewExtractor(&stubGenerator{err: boom}, zap.NewNop(), 0)
	upload := writeUpload(t, document.KindInvoice, "inv.pdf", "%PDF")

	_, err := extractor.Extract(context.Background(), upload)
	assert.ErrorIs(t, err, boom)
}

func TestExtractorRejectsUnknownKind(t *testing.T) {
	extractor := NewExtractor(&stubGenerator{}, zap.NewNop(), 0)
	upload := writeUpload(t, document.Kind("receipt"), "r.pdf", "%PDF")

	_, err := extractor.Extract(context.Background(), upload)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		total   float64
	}{
		{name: "plain", raw: `{"total": 12.5}`, total: 12.5},
		{name: "code block", raw: "```json\n{\"total\": \"$1,200.00\"}\n```", total: 1200},
		{name: "chatter around json", raw: "Here you go: {\"total\": 3} Thanks!", total: 3},
		{name: "empty amount", raw: `{"total": ""}`, total: 0},
		{name: "no json", raw: "I cannot read this file", wantErr: true},
		{name: "broken json", raw: `{"total": 1,,}`, wantErr: true},
		{name: "bad amount", raw: `{"total": "about ten"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := parseResponse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.total, record.Total)
		})
	}
}
