package document

import (
	"fmt"
	"strings"
)

// Kind tells which side of the reconciliation a document belongs to.
type Kind string

const (
	KindInvoice       Kind = "invoice"
	KindPurchaseOrder Kind = "po"
)

// ParseKind accepts the short and long spellings used on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "invoice", "invoices", "inv":
		return KindInvoice, nil
	case "po", "pos", "purchase-order", "purchase_order":
		return KindPurchaseOrder, nil
	default:
		return "", fmt.Errorf("unknown document kind: %q", s)
	}
}

func (k Kind) String() string {
	return string(k)
}

// Title is the human readable name of the kind.
func (k Kind) Title() string {
	switch k {
	case KindInvoice:
		return "invoice"
	case KindPurchaseOrder:
		return "purchase order"
	default:
		return string(k)
	}
}

// ExtractedData is the structured content of one invoice or purchase order.
// Date is kept as free-form text and never parsed.
type ExtractedData struct {
	DocumentNumber string     `json:"documentNumber" yaml:"documentNumber" mapstructure:"documentNumber"`
	Vendor         string     `json:"vendor" yaml:"vendor" mapstructure:"vendor"`
	Date           string     `json:"date" yaml:"date" mapstructure:"date"`
	Total          float64    `json:"total" yaml:"total" mapstructure:"total"`
	Items          []LineItem `json:"items" yaml:"items" mapstructure:"items"`
}

// LineItem is a single row of a document. Total is taken as given and is
// not re-derived from Quantity and UnitPrice.
type LineItem struct {
	Description string  `json:"description" yaml:"description" mapstructure:"description"`
	Quantity    float64 `json:"quantity" yaml:"quantity" mapstructure:"quantity"`
	UnitPrice   float64 `json:"unitPrice" yaml:"unitPrice" mapstructure:"unitPrice"`
	Total       float64 `json:"total" yaml:"total" mapstructure:"total"`
}
