package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
)

func sampleTransactions() []*domain.Transaction {
	day := func(d int) time.Time {
		return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
	}
	return []*domain.Transaction{
		{
			TransactionID: "t-2",
			Description:   "Groceries",
			Amount:        decimal.NewFromInt(-250),
			Type:          domain.TransactionTypeExpense,
			Date:          day(10),
			AccountID:     "acc-1",
			CategoryID:    "cat-food",
		},
		{
			TransactionID: "t-1",
			Description:   "Salary",
			Amount:        decimal.NewFromInt(5000),
			Type:          domain.TransactionTypeIncome,
			Date:          day(5),
			AccountID:     "acc-1",
		},
		{
			TransactionID: "t-3",
			Description:   "Dinner",
			Amount:        decimal.NewFromInt(-120),
			Type:          domain.TransactionTypeExpense,
			Date:          day(12),
			CardID:        "card-1",
			CategoryID:    "cat-food",
		},
		{
			TransactionID: "t-4",
			Description:   "Bus pass",
			Amount:        decimal.NewFromInt(-60),
			Type:          domain.TransactionTypeExpense,
			Date:          day(15),
			AccountID:     "acc-1",
			CategoryID:    "cat-transport",
		},
	}
}

func sampleNames() Names {
	return Names{
		Accounts:   map[string]string{"acc-1": "Checking"},
		Cards:      map[string]string{"card-1": "Platinum"},
		Categories: map[string]string{"cat-food": "Food", "cat-transport": "Transport"},
	}
}

func buildSampleReport() *Report {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	return BuildReport("user-1", start, end, sampleTransactions(), sampleNames())
}

func TestBuildReportTotals(t *testing.T) {
	r := buildSampleReport()

	if !r.TotalIncome.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("income = %s, want 5000", r.TotalIncome)
	}
	if !r.TotalExpense.Equal(decimal.NewFromInt(430)) {
		t.Errorf("expense = %s, want 430", r.TotalExpense)
	}
	if !r.Net.Equal(decimal.NewFromInt(4570)) {
		t.Errorf("net = %s, want 4570", r.Net)
	}
}

func TestBuildReportLinesSortedAndResolved(t *testing.T) {
	r := buildSampleReport()

	if len(r.Lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(r.Lines))
	}
	for i := 1; i < len(r.Lines); i++ {
		if r.Lines[i].Date.Before(r.Lines[i-1].Date) {
			t.Fatalf("lines not sorted by date at index %d", i)
		}
	}
	if r.Lines[0].Description != "Salary" {
		t.Errorf("first line = %q, want Salary", r.Lines[0].Description)
	}
	if r.Lines[2].Owner != "Platinum" {
		t.Errorf("card owner = %q, want Platinum", r.Lines[2].Owner)
	}
	if r.Lines[1].Category != "Food" {
		t.Errorf("category = %q, want Food", r.Lines[1].Category)
	}
}

func TestBuildReportCategoryTotalsDescending(t *testing.T) {
	r := buildSampleReport()

	if len(r.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(r.Categories))
	}
	if r.Categories[0].Category != "Food" || !r.Categories[0].Amount.Equal(decimal.NewFromInt(370)) {
		t.Errorf("first category = %+v, want Food 370", r.Categories[0])
	}
	if r.Categories[1].Category != "Transport" || !r.Categories[1].Amount.Equal(decimal.NewFromInt(60)) {
		t.Errorf("second category = %+v, want Transport 60", r.Categories[1])
	}
}

func TestBuildReportUnknownIDsFallBack(t *testing.T) {
	txs := []*domain.Transaction{{
		TransactionID: "t-1",
		Description:   "Mystery",
		Amount:        decimal.NewFromInt(-10),
		Type:          domain.TransactionTypeExpense,
		Date:          time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
		AccountID:     "acc-unknown",
	}}
	r := BuildReport("user-1", time.Time{}, time.Time{}, txs, Names{})

	if r.Lines[0].Owner != "acc-unknown" {
		t.Errorf("owner = %q, want the raw id", r.Lines[0].Owner)
	}
	if r.Lines[0].Category != "uncategorized" {
		t.Errorf("category = %q, want uncategorized", r.Lines[0].Category)
	}
}

func TestWriteCSV(t *testing.T) {
	r := buildSampleReport()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, r); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-read CSV: %v", err)
	}
	// header + 4 lines + 3 totals rows
	if len(records) != 8 {
		t.Fatalf("got %d records, want 8", len(records))
	}
	if records[0][0] != "date" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][1] != "Salary" || records[1][5] != "5000.00" {
		t.Errorf("first row = %v", records[1])
	}
	last := records[len(records)-1]
	if last[4] != "net" || last[5] != "4570.00" {
		t.Errorf("totals row = %v", last)
	}
}

func TestWriteExcelProducesWorkbook(t *testing.T) {
	r := buildSampleReport()

	var buf bytes.Buffer
	if err := WriteExcel(&buf, r); err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}
	// xlsx is a zip archive; PK is the magic prefix.
	if buf.Len() == 0 || buf.String()[:2] != "PK" {
		t.Error("output does not look like an xlsx file")
	}
}

func TestWritePDFProducesDocument(t *testing.T) {
	r := buildSampleReport()

	var buf bytes.Buffer
	if err := WritePDF(&buf, r); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Error("output does not look like a PDF file")
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("csv"); err != nil {
		t.Errorf("csv should parse: %v", err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Error("docx should be rejected")
	}
}
