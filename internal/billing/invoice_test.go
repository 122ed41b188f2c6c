package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
)

func testCard() *domain.CreditCard {
	return &domain.CreditCard{
		CardID:     "card-1",
		UserID:     "user-1",
		Name:       "Main Card",
		ClosingDay: 5,
		DueDay:     15,
	}
}

func cardTx(id string, date time.Time, amount string, contactID string) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: id,
		UserID:        "user-1",
		CardID:        "card-1",
		Type:          domain.TransactionTypeExpense,
		Date:          date,
		Amount:        decimal.RequireFromString(amount),
		ContactID:     contactID,
	}
}

func TestInvoicesGrouping(t *testing.T) {
	card := testCard()
	txs := []*domain.Transaction{
		// Posts to March (day 3 < closing day 5).
		cardTx("t1", time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), "-100.50", ""),
		// Posts to April (day 10 >= closing day 5).
		cardTx("t2", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), "-49.50", ""),
		// Also April.
		cardTx("t3", time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), "-50", ""),
		// Different card is ignored.
		{TransactionID: "t4", CardID: "card-2", Date: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("-999")},
	}

	invoices := Invoices(card, txs, nil, Filter{})
	if len(invoices) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(invoices))
	}

	// Newest first: April 2024 then March 2024.
	april, march := invoices[0], invoices[1]
	if april.Month != time.April || april.Year != 2024 {
		t.Errorf("expected first invoice April 2024, got %v %d", april.Month, april.Year)
	}
	if march.Month != time.March || march.Year != 2024 {
		t.Errorf("expected second invoice March 2024, got %v %d", march.Month, march.Year)
	}

	// Totals are sums of absolute amounts.
	if want := decimal.RequireFromString("99.50"); !april.Total.Equal(want) {
		t.Errorf("april total = %s, want %s", april.Total, want)
	}
	if want := decimal.RequireFromString("100.50"); !march.Total.Equal(want) {
		t.Errorf("march total = %s, want %s", march.Total, want)
	}

	if len(april.Transactions) != 2 || len(march.Transactions) != 1 {
		t.Errorf("transaction lists = %d/%d, want 2/1", len(april.Transactions), len(march.Transactions))
	}

	// Default status is open; due date on the card's due day in the bucket month.
	if march.Status != domain.InvoiceStatusOpen {
		t.Errorf("march status = %s, want open", march.Status)
	}
	if want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC); !march.DueDate.Equal(want) {
		t.Errorf("march due date = %v, want %v", march.DueDate, want)
	}
}

func TestInvoicesStatusOverride(t *testing.T) {
	card := testCard()
	txs := []*domain.Transaction{
		cardTx("t1", time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), "-200", ""),
	}
	persisted := []*domain.Invoice{
		{
			InvoiceID: "inv-1",
			CardID:    "card-1",
			Month:     time.March,
			Year:      2024,
			Status:    domain.InvoiceStatusPaid,
			// A stale persisted total must not override the computed one.
			TotalAmount: decimal.RequireFromString("123.45"),
		},
		// Row for another card is ignored.
		{InvoiceID: "inv-2", CardID: "card-2", Month: time.March, Year: 2024, Status: domain.InvoiceStatusClosed},
	}

	invoices := Invoices(card, txs, persisted, Filter{})
	if len(invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(invoices))
	}
	if invoices[0].Status != domain.InvoiceStatusPaid {
		t.Errorf("status = %s, want paid", invoices[0].Status)
	}
	if want := decimal.RequireFromString("200"); !invoices[0].Total.Equal(want) {
		t.Errorf("total = %s, want %s (persisted total must not leak in)", invoices[0].Total, want)
	}
}

func TestInvoicesFilters(t *testing.T) {
	card := testCard()
	txs := []*domain.Transaction{
		cardTx("t1", time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), "-10", ""),
		cardTx("t2", time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), "-20", "contact-9"),
		cardTx("t3", time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), "-30", "contact-9"),
	}

	t.Run("by month", func(t *testing.T) {
		invoices := Invoices(card, txs, nil, Filter{Year: 2024, Month: time.March})
		if len(invoices) != 1 || invoices[0].Month != time.March {
			t.Fatalf("expected only March 2024, got %d invoices", len(invoices))
		}
	})

	t.Run("by contact", func(t *testing.T) {
		invoices := Invoices(card, txs, nil, Filter{Contact: "contact-9"})
		var total decimal.Decimal
		for _, inv := range invoices {
			total = total.Add(inv.Total)
		}
		if want := decimal.RequireFromString("50"); !total.Equal(want) {
			t.Errorf("contact-filtered total = %s, want %s", total, want)
		}
	})

	t.Run("self sentinel keeps only contact-free transactions", func(t *testing.T) {
		invoices := Invoices(card, txs, nil, Filter{Contact: ContactSelf})
		if len(invoices) != 1 {
			t.Fatalf("expected 1 invoice, got %d", len(invoices))
		}
		if want := decimal.RequireFromString("10"); !invoices[0].Total.Equal(want) {
			t.Errorf("self total = %s, want %s", invoices[0].Total, want)
		}
	})
}

func TestInvoicesIdempotent(t *testing.T) {
	card := testCard()
	txs := []*domain.Transaction{
		cardTx("t1", time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), "-10.10", ""),
		cardTx("t2", time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC), "-20.20", ""),
	}
	persisted := []*domain.Invoice{
		{CardID: "card-1", Month: time.January, Year: 2025, Status: domain.InvoiceStatusClosed},
	}

	first := Invoices(card, txs, persisted, Filter{})
	second := Invoices(card, txs, persisted, Filter{})

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Month != second[i].Month || first[i].Year != second[i].Year ||
			!first[i].Total.Equal(second[i].Total) || first[i].Status != second[i].Status {
			t.Errorf("invoice %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}

	// December charge past the closing day landed in January 2025 and picked
	// up the persisted closed status.
	if first[0].Year != 2025 || first[0].Month != time.January || first[0].Status != domain.InvoiceStatusClosed {
		t.Errorf("expected January 2025 closed first, got %v %d %s", first[0].Month, first[0].Year, first[0].Status)
	}
}
