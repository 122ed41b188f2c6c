package export

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
)

// Format selects the artifact type a report is rendered to.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// Line is one transaction as it appears in a rendered report.
type Line struct {
	Date        time.Time
	Description string
	Category    string
	Owner       string // account or card name
	Type        domain.TransactionType
	Amount      decimal.Decimal
}

// CategoryTotal aggregates expense volume for one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// Report is the fully computed period report. Building it is pure; the
// writers in this package only render it.
type Report struct {
	UserID      string
	Start       time.Time
	End         time.Time
	GeneratedAt time.Time

	Lines        []Line
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
	Categories   []CategoryTotal
}

// Names resolves entity ids to display names for report lines. Missing
// entries render as the raw id so a report never fails on a dangling
// reference.
type Names struct {
	Accounts   map[string]string
	Cards      map[string]string
	Categories map[string]string
}

func (n Names) account(id string) string {
	if name, ok := n.Accounts[id]; ok {
		return name
	}
	return id
}

func (n Names) card(id string) string {
	if name, ok := n.Cards[id]; ok {
		return name
	}
	return id
}

func (n Names) category(id string) string {
	if id == "" {
		return "uncategorized"
	}
	if name, ok := n.Categories[id]; ok {
		return name
	}
	return id
}

// BuildReport computes the report for the given transactions. Transactions
// are assumed pre-filtered to the user and period; lines come out sorted by
// date ascending, category totals by expense volume descending.
func BuildReport(userID string, start, end time.Time, txs []*domain.Transaction, names Names) *Report {
	r := &Report{
		UserID:       userID,
		Start:        start,
		End:          end,
		GeneratedAt:  time.Now(),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}

	byCategory := make(map[string]decimal.Decimal)

	for _, t := range txs {
		owner := ""
		switch {
		case t.OwnedByAccount():
			owner = names.account(t.AccountID)
		case t.OwnedByCard():
			owner = names.card(t.CardID)
		}

		line := Line{
			Date:        t.Date,
			Description: t.Description,
			Category:    names.category(t.CategoryID),
			Owner:       owner,
			Type:        t.Type,
			Amount:      t.Amount,
		}
		r.Lines = append(r.Lines, line)

		switch {
		case t.Amount.IsPositive():
			r.TotalIncome = r.TotalIncome.Add(t.Amount)
		case t.Amount.IsNegative():
			expense := t.Amount.Abs()
			r.TotalExpense = r.TotalExpense.Add(expense)
			if t.Type == domain.TransactionTypeExpense {
				byCategory[line.Category] = byCategory[line.Category].Add(expense)
			}
		}
	}

	r.Net = r.TotalIncome.Sub(r.TotalExpense)

	sort.SliceStable(r.Lines, func(i, j int) bool {
		return r.Lines[i].Date.Before(r.Lines[j].Date)
	})

	for cat, amount := range byCategory {
		r.Categories = append(r.Categories, CategoryTotal{Category: cat, Amount: amount})
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		if !r.Categories[i].Amount.Equal(r.Categories[j].Amount) {
			return r.Categories[i].Amount.GreaterThan(r.Categories[j].Amount)
		}
		return r.Categories[i].Category < r.Categories[j].Category
	})

	return r
}
