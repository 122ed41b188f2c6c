package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetTransactions = "Transactions"
	sheetSummary      = "Summary"
)

// WriteExcel renders the report as an xlsx workbook with a transaction sheet
// and a summary sheet.
func WriteExcel(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetTransactions); err != nil {
		return fmt.Errorf("WriteExcel: rename sheet: %w", err)
	}

	header := []interface{}{"Date", "Description", "Category", "Owner", "Type", "Amount"}
	if err := f.SetSheetRow(sheetTransactions, "A1", &header); err != nil {
		return fmt.Errorf("WriteExcel: header: %w", err)
	}

	for i, line := range r.Lines {
		amount, _ := line.Amount.Float64()
		row := []interface{}{
			line.Date.Format("2006-01-02"),
			line.Description,
			line.Category,
			line.Owner,
			string(line.Type),
			amount,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetTransactions, cell, &row); err != nil {
			return fmt.Errorf("WriteExcel: row %d: %w", i, err)
		}
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("WriteExcel: summary sheet: %w", err)
	}

	income, _ := r.TotalIncome.Float64()
	expense, _ := r.TotalExpense.Float64()
	net, _ := r.Net.Float64()

	summaryRows := [][]interface{}{
		{"Period", fmt.Sprintf("%s to %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))},
		{"Total income", income},
		{"Total expense", expense},
		{"Net", net},
		{},
		{"Category", "Spent"},
	}
	for _, c := range r.Categories {
		spent, _ := c.Amount.Float64()
		summaryRows = append(summaryRows, []interface{}{c.Category, spent})
	}

	for i := range summaryRows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &summaryRows[i]); err != nil {
			return fmt.Errorf("WriteExcel: summary row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("WriteExcel: write: %w", err)
	}
	return nil
}
