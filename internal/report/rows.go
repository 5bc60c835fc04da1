package report

import (
	"sort"

	"fintrack/internal/core"
)

// Columns is the header shared by every tabular export.
var Columns = []string{"Date", "Type", "Category", "Amount", "Description"}

const dateLayout = "2006-01-02"

// SortMostRecentFirst returns a copy of txs ordered by date, newest first.
// Transactions on the same instant keep their input order, so every export
// built from the same window lists rows identically.
func SortMostRecentFirst(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Record formats a transaction for the CSV export: the amount is the raw
// decimal, not currency formatted.
func Record(t core.Transaction) []string {
	return []string{
		t.Date.Format(dateLayout),
		t.Type.Label(),
		t.Category,
		t.Amount.String(),
		t.Description,
	}
}

// DisplayRecord is Record with the amount currency formatted, as printed in
// the PDF table.
func DisplayRecord(t core.Transaction) []string {
	rec := Record(t)
	rec[3] = core.FormatCurrency(t.Amount)
	return rec
}
