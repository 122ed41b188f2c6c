package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/billing"
	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/infra/memory"
	"github.com/GabrielSantos777/planix/internal/store"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	svc := NewService(st, st, st, st, zerolog.Nop())
	return svc, st
}

func seedAccount(t *testing.T, st *memory.Store, id, initial string) {
	t.Helper()
	bal := decimal.RequireFromString(initial)
	err := st.InsertAccount(context.Background(), &domain.Account{
		AccountID:      id,
		UserID:         "user-1",
		Name:           id,
		Type:           domain.AccountTypeBank,
		InitialBalance: bal,
		CurrentBalance: bal,
		Currency:       "BRL",
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func seedCard(t *testing.T, st *memory.Store, id, limit string) {
	t.Helper()
	err := st.InsertCard(context.Background(), &domain.CreditCard{
		CardID:      id,
		UserID:      "user-1",
		Name:        id,
		CreditLimit: decimal.RequireFromString(limit),
		ClosingDay:  5,
		DueDay:      15,
	})
	if err != nil {
		t.Fatalf("seed card: %v", err)
	}
}

func accountBalance(t *testing.T, st *memory.Store, id string) decimal.Decimal {
	t.Helper()
	acc, err := st.GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %s: %v", id, err)
	}
	return acc.CurrentBalance
}

func cardBalance(t *testing.T, st *memory.Store, id string) decimal.Decimal {
	t.Helper()
	card, err := st.GetCard(context.Background(), id)
	if err != nil {
		t.Fatalf("get card %s: %v", id, err)
	}
	return card.CurrentBalance
}

func expense(account, amount string) *domain.Transaction {
	return &domain.Transaction{
		UserID:      "user-1",
		Description: "test expense",
		Amount:      decimal.RequireFromString(amount),
		Type:        domain.TransactionTypeExpense,
		Date:        time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		AccountID:   account,
	}
}

func TestCreateTransactionAccountBalances(t *testing.T) {
	svc, st := newTestService(t)
	seedAccount(t, st, "acc-1", "1000")
	ctx := context.Background()

	mut, err := svc.CreateTransaction(ctx, expense("acc-1", "-50"))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if want := decimal.RequireFromString("950"); !accountBalance(t, st, "acc-1").Equal(want) {
		t.Errorf("balance after expense = %s, want %s", accountBalance(t, st, "acc-1"), want)
	}
	if len(mut.Accounts) != 1 || !mut.Accounts[0].CurrentBalance.Equal(decimal.RequireFromString("950")) {
		t.Errorf("mutation did not carry the updated account")
	}

	income := &domain.Transaction{
		UserID:    "user-1",
		Amount:    decimal.RequireFromString("200"),
		Type:      domain.TransactionTypeIncome,
		Date:      time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		AccountID: "acc-1",
	}
	if _, err := svc.CreateTransaction(ctx, income); err != nil {
		t.Fatalf("CreateTransaction income: %v", err)
	}
	if want := decimal.RequireFromString("1150"); !accountBalance(t, st, "acc-1").Equal(want) {
		t.Errorf("balance after income = %s, want %s", accountBalance(t, st, "acc-1"), want)
	}
}

func TestCreateTransactionCardUsesMagnitude(t *testing.T) {
	svc, st := newTestService(t)
	seedCard(t, st, "card-1", "1000")
	ctx := context.Background()

	tx := &domain.Transaction{
		UserID: "user-1",
		Amount: decimal.RequireFromString("-75"),
		Type:   domain.TransactionTypeExpense,
		Date:   time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		CardID: "card-1",
	}
	if _, err := svc.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	// -75 increases the card balance by 75, not by -75.
	if want := decimal.RequireFromString("75"); !cardBalance(t, st, "card-1").Equal(want) {
		t.Errorf("card balance = %s, want %s", cardBalance(t, st, "card-1"), want)
	}
}

func TestCreateDeleteRoundTrip(t *testing.T) {
	svc, st := newTestService(t)
	seedAccount(t, st, "acc-1", "1000")
	ctx := context.Background()

	mut, err := svc.CreateTransaction(ctx, expense("acc-1", "-123.45"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.DeleteTransaction(ctx, "user-1", mut.Transaction.TransactionID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if want := decimal.RequireFromString("1000"); !accountBalance(t, st, "acc-1").Equal(want) {
		t.Errorf("create+delete must restore the balance exactly, got %s", accountBalance(t, st, "acc-1"))
	}
	if _, err := st.GetTransaction(ctx, mut.Transaction.TransactionID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("transaction still present after delete")
	}
}

func TestUpdateTransactionReverseThenApply(t *testing.T) {
	svc, st := newTestService(t)
	seedAccount(t, st, "acc-1", "600")
	ctx := context.Background()

	mut, err := svc.CreateTransaction(ctx, expense("acc-1", "-100"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Balance now 500, already reflecting the -100.
	if want := decimal.RequireFromString("500"); !accountBalance(t, st, "acc-1").Equal(want) {
		t.Fatalf("setup balance = %s, want %s", accountBalance(t, st, "acc-1"), want)
	}

	edited := expense("acc-1", "-150")
	edited.TransactionID = mut.Transaction.TransactionID
	if _, err := svc.UpdateTransaction(ctx, edited); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Reverse-then-apply: 500 + 100 - 150 = 450... with initial 600 the net
	// effect of a single -150 is 450.
	if want := decimal.RequireFromString("450"); !accountBalance(t, st, "acc-1").Equal(want) {
		t.Errorf("balance after edit = %s, want %s", accountBalance(t, st, "acc-1"), want)
	}
}

func TestUpdateTransactionMovesOwner(t *testing.T) {
	svc, st := newTestService(t)
	seedAccount(t, st, "acc-1", "1000")
	seedAccount(t, st, "acc-2", "1000")
	ctx := context.Background()

	mut, err := svc.CreateTransaction(ctx, expense("acc-1", "-100"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved := expense("acc-2", "-100")
	moved.TransactionID = mut.Transaction.TransactionID
	updMut, err := svc.UpdateTransaction(ctx, moved)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	// The reversal targets the old owner, the application the new one.
	if want := decimal.RequireFromString("1000"); !accountBalance(t, st, "acc-1").Equal(want) {
		t.Errorf("old owner balance = %s, want %s", accountBalance(t, st, "acc-1"), want)
	}
	if want := decimal.RequireFromString("900"); !accountBalance(t, st, "acc-2").Equal(want) {
		t.Errorf("new owner balance = %s, want %s", accountBalance(t, st, "acc-2"), want)
	}
	if len(updMut.Accounts) != 2 {
		t.Errorf("mutation carried %d accounts, want both owners", len(updMut.Accounts))
	}
}

func TestUpdateUnknownTransactionFails(t *testing.T) {
	svc, st := newTestService(t)
	seedAccount(t, st, "acc-1", "1000")
	ctx := context.Background()

	ghost := expense("acc-1", "-10")
	ghost.TransactionID = "missing"
	if _, err := svc.UpdateTransaction(ctx, ghost); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("update unknown = %v, want ErrTransactionNotFound", err)
	}
	if _, err := svc.DeleteTransaction(ctx, "user-1", "missing"); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("delete unknown = %v, want ErrTransactionNotFound", err)
	}
}

func TestInsufficientFundsRejectedBeforeAnyWrite(t *testing.T) {
	svc, st := newTestService(t)
	seedAccount(t, st, "acc-1", "30")
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, expense("acc-1", "-50"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	if want := decimal.RequireFromString("30"); !accountBalance(t, st, "acc-1").Equal(want) {
		t.Errorf("balance changed on rejected mutation: %s", accountBalance(t, st, "acc-1"))
	}
	txs, _ := st.ListTransactionsByAccount(ctx, "acc-1")
	if len(txs) != 0 {
		t.Errorf("rejected mutation persisted %d transactions", len(txs))
	}
}

func TestCreditLimitRejected(t *testing.T) {
	svc, st := newTestService(t)
	seedCard(t, st, "card-1", "100")
	ctx := context.Background()

	tx := &domain.Transaction{
		UserID: "user-1",
		Amount: decimal.RequireFromString("-150"),
		Type:   domain.TransactionTypeExpense,
		Date:   time.Now(),
		CardID: "card-1",
	}
	if _, err := svc.CreateTransaction(ctx, tx); !errors.Is(err, ErrCreditLimitExceeded) {
		t.Fatalf("err = %v, want ErrCreditLimitExceeded", err)
	}
	if !cardBalance(t, st, "card-1").IsZero() {
		t.Errorf("card balance changed on rejected charge")
	}
}

func TestOwnerValidation(t *testing.T) {
	svc, st := newTestService(t)
	seedAccount(t, st, "acc-1", "100")
	seedCard(t, st, "card-1", "100")
	ctx := context.Background()

	none := &domain.Transaction{UserID: "user-1", Amount: decimal.RequireFromString("-1"), Date: time.Now()}
	if _, err := svc.CreateTransaction(ctx, none); !errors.Is(err, ErrNoOwner) {
		t.Errorf("no owner err = %v, want ErrNoOwner", err)
	}

	both := expense("acc-1", "-1")
	both.CardID = "card-1"
	if _, err := svc.CreateTransaction(ctx, both); !errors.Is(err, ErrAmbiguousOwner) {
		t.Errorf("double owner err = %v, want ErrAmbiguousOwner", err)
	}
}

func TestPayInvoiceUpsertsSingleRow(t *testing.T) {
	svc, st := newTestService(t)
	seedCard(t, st, "card-1", "1000")
	ctx := context.Background()

	charge := &domain.Transaction{
		UserID: "user-1",
		Amount: decimal.RequireFromString("-300"),
		Type:   domain.TransactionTypeExpense,
		Date:   time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), // posts to March (closing day 5)
		CardID: "card-1",
	}
	if _, err := svc.CreateTransaction(ctx, charge); err != nil {
		t.Fatalf("create charge: %v", err)
	}

	if _, err := svc.PayInvoice(ctx, "user-1", "card-1", time.March, 2024, decimal.RequireFromString("100"), time.Now(), ""); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if _, err := svc.PayInvoice(ctx, "user-1", "card-1", time.March, 2024, decimal.RequireFromString("300"), time.Now(), ""); err != nil {
		t.Fatalf("second payment: %v", err)
	}

	rows, err := st.ListInvoicesByCard(ctx, "card-1")
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single invoice row for (card, month, year), got %d", len(rows))
	}
	if !rows[0].PaidAmount.Equal(decimal.RequireFromString("300")) {
		t.Errorf("paid amount = %s, want the latest call's 300", rows[0].PaidAmount)
	}
	if rows[0].Status != domain.InvoiceStatusPaid {
		t.Errorf("status = %s, want paid", rows[0].Status)
	}
}

func TestPayInvoicePartialStatusAndCardBalance(t *testing.T) {
	svc, st := newTestService(t)
	seedCard(t, st, "card-1", "1000")
	ctx := context.Background()

	charge := &domain.Transaction{
		UserID: "user-1",
		Amount: decimal.RequireFromString("-200"),
		Type:   domain.TransactionTypeExpense,
		Date:   time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
		CardID: "card-1",
	}
	if _, err := svc.CreateTransaction(ctx, charge); err != nil {
		t.Fatalf("create charge: %v", err)
	}

	inv, err := svc.PayInvoice(ctx, "user-1", "card-1", time.March, 2024, decimal.RequireFromString("80"), time.Now(), "partial")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPartial {
		t.Errorf("status = %s, want partial", inv.Status)
	}
	if want := decimal.RequireFromString("120"); !cardBalance(t, st, "card-1").Equal(want) {
		t.Errorf("card balance after partial payment = %s, want %s", cardBalance(t, st, "card-1"), want)
	}
}

func TestCardInvoicesThroughService(t *testing.T) {
	svc, st := newTestService(t)
	seedCard(t, st, "card-1", "1000")
	ctx := context.Background()

	charge := &domain.Transaction{
		UserID: "user-1",
		Amount: decimal.RequireFromString("-42"),
		Type:   domain.TransactionTypeExpense,
		Date:   time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), // rolls to April
		CardID: "card-1",
	}
	if _, err := svc.CreateTransaction(ctx, charge); err != nil {
		t.Fatalf("create: %v", err)
	}

	invoices, err := svc.CardInvoices(ctx, "card-1", billing.Filter{})
	if err != nil {
		t.Fatalf("CardInvoices: %v", err)
	}
	if len(invoices) != 1 || invoices[0].Month != time.April || invoices[0].Year != 2024 {
		t.Fatalf("unexpected invoices: %+v", invoices)
	}
}
