package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditCard is a credit card owned by a user. CurrentBalance tracks the
// magnitude of posted, unpaid charges and is therefore non-negative: card
// transactions contribute the absolute value of their amount, and invoice
// payments reduce it.
type CreditCard struct {
	CardID         string
	UserID         string
	Name           string
	CardType       string
	CreditLimit    decimal.Decimal
	CurrentBalance decimal.Decimal

	// DueDay and ClosingDay are days of month in [1,31]. Charges dated on or
	// after ClosingDay post to the next month's invoice.
	DueDay     int
	ClosingDay int

	// BestPurchaseDay is the suggested day to buy for the longest float,
	// nil when not configured.
	BestPurchaseDay *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InvoiceStatus is the payment state of a credit-card invoice.
type InvoiceStatus string

const (
	InvoiceStatusOpen    InvoiceStatus = "open"
	InvoiceStatusClosed  InvoiceStatus = "closed"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusPartial InvoiceStatus = "partial"
)

// Invoice is the persisted override record for one billing cycle of a card.
// At most one row exists per (CardID, Month, Year); writes go through an
// upsert on that key. The natural total is always recomputed from the card's
// transactions; a persisted row overrides status and paid amount only.
type Invoice struct {
	InvoiceID   string
	CardID      string
	UserID      string
	Month       time.Month
	Year        int
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Status      InvoiceStatus
	DueDate     time.Time
	PaymentDate *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MonthlyInvoice is the in-memory aggregation of one billing cycle: the
// card's transactions bucketed into a (Month, Year) cycle, with the summed
// absolute amount and the cycle's due date. Status defaults to open and is
// overridden by a matching persisted Invoice.
type MonthlyInvoice struct {
	Month        time.Month
	Year         int
	Transactions []*Transaction
	Total        decimal.Decimal
	DueDate      time.Time
	Status       InvoiceStatus
}
