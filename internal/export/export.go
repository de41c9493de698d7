// Package export writes reconciliation results to CSV and JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/invoice-matcher/internal/reconcile"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var csvHeader = []string{
	"Invoice Number",
	"PO Number",
	"Invoice Vendor",
	"PO Vendor",
	"Invoice Total",
	"PO Total",
	"Status",
	"Issues",
}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// FileName follows the match-results-YYYY-MM-DD.<ext> convention. The date is taken in UTC.
func FileName(format Format, at time.Time) string {
	return fmt.Sprintf("match-results-%s.%s", at.UTC().Format("2006-01-02"), format)
}

// WriteCSV writes one row per result. Fields are quoted whenever they
// contain a delimiter, quote or newline.
func WriteCSV(w io.Writer, results []reconcile.MatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range results {
		invoice, po := r.Invoice, r.PO
		if invoice == nil || po == nil {
			return fmt.Errorf("result %s has no document pair", r.InvoiceID)
		}

		issues := make([]string, 0, len(r.Differences))
		for _, d := range r.Differences {
			issues = append(issues, d.Message)
		}

		row := []string{
			invoice.DocumentNumber,
			po.DocumentNumber,
			invoice.Vendor,
			po.Vendor,
			formatAmount(invoice.Total),
			formatAmount(po.Total),
			string(r.Status),
			strings.Join(issues, "; "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the results as an indented JSON array.
func WriteJSON(w io.Writer, results []reconcile.MatchResult) error {
	if results == nil {
		results = []reconcile.MatchResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// ToFile writes results in the given format into dir and returns the file path.
func ToFile(dir string, format Format, results []reconcile.MatchResult, at time.Time) (string, error) {
	if format != FormatCSV && format != FormatJSON {
		return "", fmt.Errorf("unsupported export format: %q", format)
	}
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(format, at))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}

	if err := writeAndClose(file, format, results); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}

// writeAndClose reports a failed close as a failed write.
func writeAndClose(w io.WriteCloser, format Format, results []reconcile.MatchResult) error {
	var err error
	if format == FormatCSV {
		err = WriteCSV(w, results)
	} else {
		err = WriteJSON(w, results)
	}

	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return err
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
