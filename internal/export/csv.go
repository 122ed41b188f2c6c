package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

var csvHeader = []string{"date", "description", "category", "owner", "type", "amount"}

// WriteCSV renders the report as CSV: a header row, one row per line, and a
// trailing totals block.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}

	for _, line := range r.Lines {
		record := []string{
			line.Date.Format("2006-01-02"),
			line.Description,
			line.Category,
			line.Owner,
			string(line.Type),
			line.Amount.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV: row: %w", err)
		}
	}

	totals := [][]string{
		{"", "", "", "", "total income", r.TotalIncome.StringFixed(2)},
		{"", "", "", "", "total expense", r.TotalExpense.StringFixed(2)},
		{"", "", "", "", "net", r.Net.StringFixed(2)},
	}
	for _, record := range totals {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV: totals: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}
