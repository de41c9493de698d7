package reconcile

import (
	"fmt"
	"strings"
)

const (
	markerMatched  = "✓"
	markerReview   = "⚠️"
	markerDocument = "📄"
	markerHigh     = "🔴"
	markerMedium   = "🟡"
	markerLow      = "🟢"
)

// Summarize renders a plain text report: matched and mismatched counts
// followed by the messages of every mismatched result, in input order.
func Summarize(results []MatchResult) string {
	matched, mismatched := 0, 0
	for _, r := range results {
		switch r.Status {
		case StatusMatch:
			matched++
		case StatusMismatch:
			mismatched++
		}
	}

	var b strings.Builder
	b.WriteString("Matching Complete!\n\n")
	fmt.Fprintf(&b, "%s %d %s matched perfectly\n", markerMatched, matched, plural(matched, "invoice", "invoices"))

	if mismatched == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "%s %d %s %s review\n\n", markerReview, mismatched,
		plural(mismatched, "invoice", "invoices"), plural(mismatched, "needs", "need"))
	b.WriteString("Issues Found:\n")

	for _, r := range results {
		if r.Status != StatusMismatch {
			continue
		}
		fmt.Fprintf(&b, "\n%s Invoice %s:\n", markerDocument, documentNumber(r))
		for _, d := range r.Differences {
			fmt.Fprintf(&b, "  %s %s\n", SeverityMarker(d.Severity), d.Message)
		}
	}

	return b.String()
}

// SeverityMarker is the symbol printed in front of a difference.
func SeverityMarker(s Severity) string {
	switch s {
	case SeverityHigh:
		return markerHigh
	case SeverityMedium:
		return markerMedium
	default:
		return markerLow
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func documentNumber(r MatchResult) string {
	if r.Invoice == nil {
		return ""
	}
	return r.Invoice.DocumentNumber
}
