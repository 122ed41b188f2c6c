package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
)

// ContactSelf is the sentinel for "no responsible party", i.e. transactions
// attributed to the primary user rather than to any contact.
const ContactSelf = "self"

// Filter narrows the invoices returned by Invoices. The zero value selects
// everything.
type Filter struct {
	// Year and Month select a single bucket when Year is non-zero.
	Year  int
	Month time.Month

	// Contact keeps only transactions attributed to the given contact ID.
	// ContactSelf keeps only transactions with no contact.
	Contact string
}

func (f Filter) matchesContact(t *domain.Transaction) bool {
	switch f.Contact {
	case "":
		return true
	case ContactSelf:
		return t.ContactID == ""
	default:
		return t.ContactID == f.Contact
	}
}

func (f Filter) matchesBucket(month time.Month, year int) bool {
	if f.Year == 0 {
		return true
	}
	return f.Year == year && f.Month == month
}

type bucketKey struct {
	year  int
	month time.Month
}

// Invoices groups the card's transactions into monthly invoices. Each bucket
// actually populated by transactions yields one MonthlyInvoice with the
// summed absolute amount, the cycle's due date and status open; a persisted
// invoice row for the same (month, year) overrides the status only, never
// the computed total. Read-only: re-running over the same inputs yields the
// same result. Invoices are returned newest first.
func Invoices(card *domain.CreditCard, txs []*domain.Transaction, persisted []*domain.Invoice, f Filter) []*domain.MonthlyInvoice {
	buckets := make(map[bucketKey]*domain.MonthlyInvoice)

	for _, t := range txs {
		if t.CardID != card.CardID {
			continue
		}
		if !f.matchesContact(t) {
			continue
		}

		month, year := CycleBucket(t.Date, card.ClosingDay)
		key := bucketKey{year: year, month: month}
		inv := buckets[key]
		if inv == nil {
			inv = &domain.MonthlyInvoice{
				Month:   month,
				Year:    year,
				Total:   decimal.Zero,
				DueDate: DueDate(month, year, card),
				Status:  domain.InvoiceStatusOpen,
			}
			buckets[key] = inv
		}
		inv.Transactions = append(inv.Transactions, t)
		inv.Total = inv.Total.Add(t.Amount.Abs())
	}

	for _, row := range persisted {
		if row.CardID != card.CardID {
			continue
		}
		if inv, ok := buckets[bucketKey{year: row.Year, month: row.Month}]; ok {
			inv.Status = row.Status
		}
	}

	result := make([]*domain.MonthlyInvoice, 0, len(buckets))
	for key, inv := range buckets {
		if !f.matchesBucket(key.month, key.year) {
			continue
		}
		result = append(result, inv)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})

	return result
}
