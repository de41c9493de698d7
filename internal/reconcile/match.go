package reconcile

import (
	"math"
	"strings"

	"github.com/spigell/invoice-matcher/internal/document"
)

// candidateTotalTolerance is the amount difference below which a purchase
// order is considered a candidate for an invoice.
const candidateTotalTolerance = 1.0

// Match pairs every invoice with a purchase order from the pool and compares
// them. The pool is never depleted, so several invoices may share one
// purchase order. Invoices are skipped when the pool is empty.
func Match(invoices, pos *document.Collection) []MatchResult {
	results := make([]MatchResult, 0, invoices.Len())

	invoices.Each(func(invoiceID string, invoice *document.ExtractedData) bool {
		candidate, ok := FindCandidate(invoice, pos)
		if !ok {
			return true
		}

		differences := Compare(invoice, candidate.Data)
		status := StatusMismatch
		if len(differences) == 0 {
			status = StatusMatch
		}

		results = append(results, MatchResult{
			InvoiceID:   invoiceID,
			POID:        candidate.Key,
			Invoice:     invoice,
			PO:          candidate.Data,
			Status:      status,
			Differences: differences,
		})
		return true
	})

	return results
}

// FindCandidate returns the first purchase order in pool order that shares
// the vendor (case-insensitive) or the document number, or whose total is
// within one currency unit. Without such an order the first one in the pool
// is returned. ok is false only for an empty pool.
func FindCandidate(invoice *document.ExtractedData, pos *document.Collection) (document.Entry, bool) {
	var (
		found document.Entry
		ok    bool
	)

	vendor := strings.ToLower(invoice.Vendor)
	pos.Each(func(key string, po *document.ExtractedData) bool {
		if strings.ToLower(po.Vendor) == vendor ||
			po.DocumentNumber == invoice.DocumentNumber ||
			math.Abs(po.Total-invoice.Total) < candidateTotalTolerance {
			found, ok = document.Entry{Key: key, Data: po}, true
			return false
		}
		return true
	})
	if ok {
		return found, true
	}

	return pos.First()
}
