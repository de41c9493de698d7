package reconcile

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/invoice-matcher/internal/document"
)

const (
	// amountTolerance is the largest amount difference still treated as equal.
	amountTolerance = 0.01

	highPercentThreshold   = 10.0
	mediumPercentThreshold = 5.0

	itemLabelRunes = 30
)

// Compare lists the differences between an invoice and a purchase order in
// a fixed order: vendor, total amount, line item count, then per item.
func Compare(invoice, po *document.ExtractedData) []Difference {
	differences := make([]Difference, 0)

	if !sameVendor(invoice.Vendor, po.Vendor) {
		differences = append(differences, Difference{
			Field:        "Vendor",
			InvoiceValue: Text(invoice.Vendor),
			POValue:      Text(po.Vendor),
			Severity:     SeverityHigh,
			Message:      "Vendor names do not match",
		})
	}

	if diff, ok := compareTotals(invoice.Total, po.Total); ok {
		differences = append(differences, diff)
	}

	if len(invoice.Items) != len(po.Items) {
		differences = append(differences, Difference{
			Field:        "Line Items",
			InvoiceValue: Number(float64(len(invoice.Items))),
			POValue:      Number(float64(len(po.Items))),
			Severity:     SeverityMedium,
			Message:      "Different number of line items",
		})
	}

	return append(differences, compareLineItems(invoice.Items, po.Items)...)
}

func compareTotals(invoiceTotal, poTotal float64) (Difference, bool) {
	d := math.Abs(invoiceTotal - poTotal)
	if !(d > amountTolerance) {
		return Difference{}, false
	}

	diff := Difference{
		Field:        "Total Amount",
		InvoiceValue: Text(formatCurrency(invoiceTotal)),
		POValue:      Text(formatCurrency(poTotal)),
	}

	if poTotal == 0 {
		diff.Severity = SeverityHigh
		diff.Message = fmt.Sprintf("Amount differs by %s (PO total is zero)", formatCurrency(d))
		return diff, true
	}

	percent := d / poTotal * 100
	diff.Severity = totalSeverity(percent)
	diff.Message = fmt.Sprintf("Amount differs by %s (%.1f%%)", formatCurrency(d), percent)
	return diff, true
}

func totalSeverity(percent float64) Severity {
	switch {
	case percent > highPercentThreshold:
		return SeverityHigh
	case percent > mediumPercentThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// compareLineItems walks both lists by position. Positions present on only
// one side are skipped; the count difference is reported separately.
func compareLineItems(invoiceItems, poItems []document.LineItem) []Difference {
	var differences []Difference

	n := min(len(invoiceItems), len(poItems))
	for i := 0; i < n; i++ {
		invItem, poItem := invoiceItems[i], poItems[i]

		if math.Abs(invItem.Total-poItem.Total) > amountTolerance {
			differences = append(differences, Difference{
				Field:        fmt.Sprintf("Item %d: %s", i+1, truncateRunes(invItem.Description, itemLabelRunes)),
				InvoiceValue: Text(formatCurrency(invItem.Total)),
				POValue:      Text(formatCurrency(poItem.Total)),
				Severity:     SeverityMedium,
				Message:      "Line item total mismatch",
			})
		}

		if invItem.Quantity != poItem.Quantity {
			differences = append(differences, Difference{
				Field:        fmt.Sprintf("Item %d Quantity", i+1),
				InvoiceValue: Number(invItem.Quantity),
				POValue:      Number(poItem.Quantity),
				Severity:     SeverityLow,
				Message:      "Quantity mismatch",
			})
		}
	}

	return differences
}

func sameVendor(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

func formatCurrency(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
