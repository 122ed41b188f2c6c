package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// WritePDF renders the report as a single-column PDF statement: title,
// summary block, then the transaction table.
func WritePDF(w io.Writer, r *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Financial Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Summary")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Total income: %s", r.TotalIncome.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Total expense: %s", r.TotalExpense.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Net: %s", r.Net.StringFixed(2)))
	pdf.Ln(8)

	if len(r.Categories) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 6, "Spending by category")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		for _, c := range r.Categories {
			pdf.Cell(90, 5, c.Category)
			pdf.CellFormat(30, 5, c.Amount.StringFixed(2), "", 0, "R", false, 0, "")
			pdf.Ln(5)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Transactions")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(22, 6, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(68, 6, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Category", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Owner", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Amount", "B", 0, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range r.Lines {
		pdf.CellFormat(22, 5, line.Date.Format("2006-01-02"), "", 0, "L", false, 0, "")
		pdf.CellFormat(68, 5, truncate(line.Description, 42), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 5, truncate(line.Category, 20), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 5, truncate(line.Owner, 20), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, line.Amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.Ln(5)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("WritePDF: output: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
