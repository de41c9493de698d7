package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/invoice-matcher/internal/document"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	require.Len(t, fields, 1)
	assert.Equal(t, "provider", fields[0].Key)
	assert.Equal(t, "Gemini", fields[0].String)

	assert.Empty(t, StringFields())
}

func TestWithFieldsNilLogger(t *testing.T) {
	enriched := WithFields(nil, zap.String("baz", "qux"))
	require.NotNil(t, enriched, "expected fallback logger when nil provided")

	enriched.Info("does not panic")
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "  ").Info("test log")

	entries := observed.All()
	require.Len(t, entries, 1)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "gemini", ctx[FieldProvider])
	assert.NotContains(t, ctx, FieldModel, "empty model is omitted")
}

func TestDocumentFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	zap.New(core).Info("extracted", DocumentFields(document.KindPurchaseOrder, "po-1.pdf")...)

	ctx := observed.All()[0].ContextMap()
	assert.Equal(t, "po", ctx[FieldDocumentKind])
	assert.Equal(t, "po-1.pdf", ctx[FieldDocumentKey])
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		json, debug bool
	}{{false, false}, {true, true}} {
		l, err := build(tc.json, tc.debug, []string{"stderr"})
		require.NoError(t, err)
		assert.Equal(t, tc.debug, l.Core().Enabled(zapcore.DebugLevel))
	}
}
