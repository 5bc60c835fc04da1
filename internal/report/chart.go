package report

import (
	"bytes"
	"fmt"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"
)

// Slice is one category wedge of the spending pie.
type Slice struct {
	Category string
	Amount   decimal.Decimal
	Percent  string
	Label    string
}

// SpendingSlices groups expenses by category in encounter order. Zero amount
// categories are dropped. It returns nil when there is nothing to draw.
func SpendingSlices(txs []core.Transaction) []Slice {
	var (
		order  []string
		totals = map[string]decimal.Decimal{}
		sum    = decimal.Zero
	)
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		if _, seen := totals[t.Category]; !seen {
			order = append(order, t.Category)
			totals[t.Category] = decimal.Zero
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
		sum = sum.Add(t.Amount)
	}
	if !sum.IsPositive() {
		return nil
	}

	slices := make([]Slice, 0, len(order))
	for _, cat := range order {
		amount := totals[cat]
		if amount.IsZero() {
			continue
		}
		pct := core.FormatPercent(amount, sum)
		slices = append(slices, Slice{
			Category: cat,
			Amount:   amount,
			Percent:  pct,
			Label:    fmt.Sprintf("%s (%s)", cat, pct),
		})
	}
	return slices
}

// SpendingPie renders the spending by category pie as a PNG. It returns nil
// bytes and a nil error when the window has no spending.
func (r *Renderer) SpendingPie(txs []core.Transaction) ([]byte, error) {
	slices := SpendingSlices(txs)
	if len(slices) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, len(slices))
	for i, s := range slices {
		values[i] = chart.Value{Value: s.Amount.InexactFloat64(), Label: s.Label}
	}
	pie := chart.PieChart{
		Title:  r.cfg.ChartTitle,
		Width:  r.cfg.ChartSize,
		Height: r.cfg.ChartSize,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, renderFailed(FormatPNG, err)
	}
	return buf.Bytes(), nil
}
