// Package reconcile pairs invoices with purchase orders and reports the
// field-level differences between each pair.
//
// Everything here is pure: inputs are never mutated, nothing is logged and
// no errors are returned. The package is safe to call from many goroutines.
package reconcile

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/spigell/invoice-matcher/internal/document"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

type Status string

const (
	StatusMatch    Status = "match"
	StatusMismatch Status = "mismatch"
)

type valueKind uint8

const (
	textValue valueKind = iota
	numberValue
)

// Value is one side of a Difference. It holds either display text
// (formatted amounts, vendor names) or a raw number (counts, quantities).
type Value struct {
	kind   valueKind
	text   string
	number float64
}

func Text(s string) Value {
	return Value{kind: textValue, text: s}
}

func Number(n float64) Value {
	return Value{kind: numberValue, number: n}
}

func (v Value) IsNumber() bool {
	return v.kind == numberValue
}

// Float returns the raw number and whether the value holds one.
func (v Value) Float() (float64, bool) {
	return v.number, v.kind == numberValue
}

func (v Value) String() string {
	if v.kind == numberValue {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}
	return v.text
}

// MarshalJSON keeps the two shapes apart: text as a JSON string, numbers as
// JSON numbers. Non-finite numbers have no JSON form and are written as text.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == numberValue {
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.number)
	}
	return json.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*v = Number(number)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*v = Text(text)
	return nil
}

// Difference is one detected discrepancy between an invoice and its purchase order.
type Difference struct {
	Field        string   `json:"field"`
	InvoiceValue Value    `json:"invoiceValue"`
	POValue      Value    `json:"poValue"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
}

// MatchResult pairs one invoice with the purchase order selected for it.
type MatchResult struct {
	InvoiceID   string                  `json:"invoiceId"`
	POID        string                  `json:"poId"`
	Invoice     *document.ExtractedData `json:"invoice"`
	PO          *document.ExtractedData `json:"po"`
	Status      Status                  `json:"status"`
	Differences []Difference            `json:"differences"`
}

func (r MatchResult) Matched() bool {
	return r.Status == StatusMatch
}
