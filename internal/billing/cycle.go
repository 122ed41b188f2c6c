// Package billing implements the credit-card billing-cycle rules: bucketing
// charges into monthly invoices by the card's closing day, and aggregating
// per-invoice totals.
package billing

import (
	"time"

	"github.com/GabrielSantos777/planix/internal/domain"
)

// CycleBucket returns the (month, year) of the invoice a charge posts to.
// A charge dated on or after the card's closing day belongs to the next
// calendar month's invoice; December wraps into January of the following
// year. Total over all valid dates, closingDay in [1,31].
func CycleBucket(date time.Time, closingDay int) (time.Month, int) {
	month, year := date.Month(), date.Year()
	if date.Day() >= closingDay {
		if month == time.December {
			return time.January, year + 1
		}
		return month + 1, year
	}
	return month, year
}

// DueDate returns when the invoice for bucket (month, year) is payable on
// the given card. The due day falls in the bucket month itself when it is on
// or after the closing day, otherwise in the following month: the cycle
// closes, then payment comes due. Days past the end of a month roll forward
// per native date arithmetic.
func DueDate(month time.Month, year int, card *domain.CreditCard) time.Time {
	due := time.Date(year, month, card.DueDay, 0, 0, 0, 0, time.UTC)
	if card.DueDay < card.ClosingDay {
		due = due.AddDate(0, 1, 0)
	}
	return due
}
