package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/invoice-matcher/internal/ai"
	"github.com/spigell/invoice-matcher/internal/document"
	"github.com/spigell/invoice-matcher/internal/utils"
)

type fileGenerator interface {
	GenerateFromFile(ctx context.Context, prompt, mediaType string, data []byte) (string, error)
}

// Extractor asks Gemini to read an invoice or purchase order.
type Extractor struct {
	generator fileGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Extractor = (*Extractor)(nil)

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// ErrUnsupportedKind is returned for uploads that are neither invoices nor purchase orders.
var ErrUnsupportedKind = errors.New("unsupported document kind")

type promptHints struct {
	document string
	number   string
	vendor   string
	date     string
}

var hintsByKind = map[document.Kind]promptHints{
	document.KindInvoice: {
		document: "invoice",
		number:   "the invoice number",
		vendor:   "the vendor/company name",
		date:     "the invoice date",
	},
	document.KindPurchaseOrder: {
		document: "purchase order",
		number:   "the PO number",
		vendor:   "the vendor/supplier name",
		date:     "the order date",
	},
}

func NewExtractor(generator fileGenerator, logger *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (e *Extractor) Extract(ctx context.Context, upload *document.Upload) (*document.ExtractedData, error) {
	if upload == nil {
		return nil, fmt.Errorf("upload is required")
	}

	prompt, err := buildPrompt(upload.Kind)
	if err != nil {
		return nil, err
	}

	data, err := upload.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", upload.Name(), err)
	}

	e.logger.Debug("gemini generate content request",
		zap.String("upload_id", upload.ID),
		zap.String("document_kind", upload.Kind.String()),
		zap.String("media_type", upload.MediaType),
		zap.Int("file_size", len(data)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateFromFile(ctx, prompt, upload.MediaType, data)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.String("upload_id", upload.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(kind document.Kind) (string, error) {
	hints, ok := hintsByKind[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	prompt := strings.NewReplacer(
		"{{DOCUMENT}}", hints.document,
		"{{NUMBER_HINT}}", hints.number,
		"{{VENDOR_HINT}}", hints.vendor,
		"{{DATE_HINT}}", hints.date,
	).Replace(promptTemplate)

	return strings.TrimSpace(prompt), nil
}

func parseResponse(raw string) (*document.ExtractedData, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("parse gemini response: no json object found")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var record document.ExtractedData
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncKind(coerceAmount),
		WeaklyTypedInput: true,
		Result:           &record,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	record.DocumentNumber = strings.TrimSpace(record.DocumentNumber)
	record.Vendor = strings.TrimSpace(record.Vendor)
	record.Date = strings.TrimSpace(record.Date)
	if record.Items == nil {
		record.Items = []document.LineItem{}
	}

	return &record, nil
}

// extractJSON strips markdown code fences and returns the outermost JSON object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return ""
	}
	return strings.TrimSpace(raw[start : end+1])
}

// coerceAmount lets amounts written as "$1,250.00" decode into float fields.
func coerceAmount(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.String || to != reflect.Float64 {
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return "0", nil
	}
	return s, nil
}
