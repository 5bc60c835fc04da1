package report

import (
	"sort"

	"fintrack/internal/core"

	"github.com/xuri/excelize/v2"
)

const (
	sheetTransactions = "Transactions"
	sheetCategories   = "Categories"

	// excelize built-in number format "0.00".
	numFmtTwoDecimals = 2
)

// XLSX builds a workbook with the transaction table and its summary on the
// first sheet and the category spending ranking on the second.
func (r *Renderer) XLSX(txs []core.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeTransactionsSheet(f, txs); err != nil {
		return nil, renderFailed(FormatXLSX, err)
	}
	if err := writeCategoriesSheet(f, txs); err != nil {
		return nil, renderFailed(FormatXLSX, err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, renderFailed(FormatXLSX, err)
	}
	return buf.Bytes(), nil
}

func writeTransactionsSheet(f *excelize.File, txs []core.Transaction) error {
	if err := f.SetSheetName("Sheet1", sheetTransactions); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
	if err != nil {
		return err
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetTransactions, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetTransactions, "A1", "E1", bold); err != nil {
		return err
	}

	row := 2
	for _, t := range SortMostRecentFirst(txs) {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []interface{}{
			t.Date.Format(dateLayout),
			t.Type.Label(),
			t.Category,
			t.Amount.InexactFloat64(),
			t.Description,
		}
		if err := f.SetSheetRow(sheetTransactions, cell, &values); err != nil {
			return err
		}
		row++
	}
	if row > 2 {
		last, _ := excelize.CoordinatesToCellName(4, row-1)
		if err := f.SetCellStyle(sheetTransactions, "D2", last, money); err != nil {
			return err
		}
	}

	s := core.Summarize(txs)
	row++
	for _, line := range []struct {
		label  string
		amount float64
	}{
		{"Total Income", s.TotalIncome.InexactFloat64()},
		{"Total Expenses", s.TotalExpenses.InexactFloat64()},
		{"Balance", s.Balance.InexactFloat64()},
	} {
		label, _ := excelize.CoordinatesToCellName(3, row)
		value, _ := excelize.CoordinatesToCellName(4, row)
		if err := f.SetSheetRow(sheetTransactions, label, &[]interface{}{line.label, line.amount}); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetTransactions, label, label, bold); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetTransactions, value, value, money); err != nil {
			return err
		}
		row++
	}

	if err := f.SetColWidth(sheetTransactions, "A", "D", 14); err != nil {
		return err
	}
	return f.SetColWidth(sheetTransactions, "E", "E", 40)
}

func writeCategoriesSheet(f *excelize.File, txs []core.Transaction) error {
	if _, err := f.NewSheet(sheetCategories); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetCategories, "A1", &[]interface{}{"Category", "Amount", "Share"}); err != nil {
		return err
	}

	slices := SpendingSlices(txs)
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Amount.GreaterThan(slices[j].Amount)
	})
	for i, s := range slices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{s.Category, s.Amount.InexactFloat64(), s.Percent}
		if err := f.SetSheetRow(sheetCategories, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetCategories, "A", "C", 16)
}
