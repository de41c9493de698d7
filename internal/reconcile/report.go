package reconcile

import "github.com/spigell/invoice-matcher/internal/document"

// Report is the outcome of a whole reconciliation run.
type Report struct {
	Results []MatchResult `json:"results"`
	// Unmatched holds invoice keys that produced no result because the
	// purchase order pool was empty. Match itself drops them silently.
	Unmatched []string `json:"unmatched,omitempty"`
	Summary   string   `json:"summary"`
}

// Reconcile runs Match and Summarize and records the invoices Match dropped.
func Reconcile(invoices, pos *document.Collection) *Report {
	results := Match(invoices, pos)

	var unmatched []string
	if pos.Len() == 0 {
		unmatched = invoices.Keys()
	}

	return &Report{
		Results:   results,
		Unmatched: unmatched,
		Summary:   Summarize(results),
	}
}

// Counts returns the number of matched and mismatched results.
func (r *Report) Counts() (matched, mismatched int) {
	for _, res := range r.Results {
		if res.Matched() {
			matched++
		} else {
			mismatched++
		}
	}
	return matched, mismatched
}
