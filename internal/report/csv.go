package report

import (
	"bytes"
	"encoding/csv"

	"fintrack/internal/core"
)

// CSV writes the header followed by one record per transaction, newest first.
// An empty window yields the header row alone.
func (r *Renderer) CSV(txs []core.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, renderFailed(FormatCSV, err)
	}
	for _, t := range SortMostRecentFirst(txs) {
		if err := w.Write(Record(t)); err != nil {
			return nil, renderFailed(FormatCSV, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, renderFailed(FormatCSV, err)
	}
	return buf.Bytes(), nil
}
