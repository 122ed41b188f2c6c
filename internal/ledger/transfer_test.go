package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
)

func TestTransferCreatesLinkedPair(t *testing.T) {
	svc, st := newTestService(t)
	seedAccount(t, st, "checking", "500")
	seedAccount(t, st, "broker", "0")
	ctx := context.Background()

	res, err := svc.Transfer(ctx, TransferRequest{
		UserID:        "user-1",
		FromAccountID: "checking",
		ToAccountID:   "broker",
		Amount:        decimal.RequireFromString("200"),
		Date:          time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Description:   "fund brokerage",
		Action:        domain.InvestmentActionContribution,
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	debit, credit := res.Debit.Transaction, res.Credit.Transaction
	if debit.TransferGroupID == "" || debit.TransferGroupID != credit.TransferGroupID {
		t.Errorf("legs do not share a group id: %q vs %q", debit.TransferGroupID, credit.TransferGroupID)
	}
	if !debit.Amount.Equal(decimal.RequireFromString("-200")) || !credit.Amount.Equal(decimal.RequireFromString("200")) {
		t.Errorf("leg amounts = %s / %s, want -200 / 200", debit.Amount, credit.Amount)
	}
	if debit.InvestmentAction != domain.InvestmentActionContribution || credit.InvestmentAction != domain.InvestmentActionContribution {
		t.Errorf("legs not tagged with the investment action")
	}

	if want := decimal.RequireFromString("300"); !accountBalance(t, st, "checking").Equal(want) {
		t.Errorf("source balance = %s, want %s", accountBalance(t, st, "checking"), want)
	}
	if want := decimal.RequireFromString("200"); !accountBalance(t, st, "broker").Equal(want) {
		t.Errorf("destination balance = %s, want %s", accountBalance(t, st, "broker"), want)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	svc, st := newTestService(t)
	seedAccount(t, st, "checking", "50")
	seedAccount(t, st, "broker", "0")
	ctx := context.Background()

	_, err := svc.Transfer(ctx, TransferRequest{
		UserID:        "user-1",
		FromAccountID: "checking",
		ToAccountID:   "broker",
		Amount:        decimal.RequireFromString("200"),
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	// Nothing was written.
	if want := decimal.RequireFromString("50"); !accountBalance(t, st, "checking").Equal(want) {
		t.Errorf("source balance changed: %s", accountBalance(t, st, "checking"))
	}
	txs, _ := st.ListTransactionsByUser(ctx, "user-1")
	if len(txs) != 0 {
		t.Errorf("rejected transfer persisted %d transactions", len(txs))
	}
}

func TestTransferValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []TransferRequest{
		{UserID: "user-1", FromAccountID: "a", ToAccountID: "a", Amount: decimal.RequireFromString("10")},
		{UserID: "user-1", FromAccountID: "a", ToAccountID: "b", Amount: decimal.Zero},
		{UserID: "user-1", FromAccountID: "", ToAccountID: "b", Amount: decimal.RequireFromString("10")},
	}
	for i, req := range cases {
		if _, err := svc.Transfer(ctx, req); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestInvestmentLegHiddenFromVisibleList(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedAccount(t, st, "checking", "500")
	broker := &domain.Account{
		AccountID:      "broker",
		UserID:         "user-1",
		Name:           "broker",
		Type:           domain.AccountTypeInvestment,
		InitialBalance: decimal.Zero,
		CurrentBalance: decimal.Zero,
		Currency:       "BRL",
		IsActive:       true,
	}
	if err := st.InsertAccount(ctx, broker); err != nil {
		t.Fatalf("seed investment account: %v", err)
	}

	if _, err := svc.Transfer(ctx, TransferRequest{
		UserID:        "user-1",
		FromAccountID: "checking",
		ToAccountID:   "broker",
		Amount:        decimal.RequireFromString("100"),
		Action:        domain.InvestmentActionContribution,
	}); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	visible, err := svc.ListVisibleTransactions(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListVisibleTransactions: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("visible transactions = %d, want 1 (investment leg filtered)", len(visible))
	}
	if visible[0].AccountID != "checking" {
		t.Errorf("remaining leg targets %s, want checking", visible[0].AccountID)
	}

	// Both legs still exist in the raw ledger.
	all, _ := st.ListTransactionsByUser(ctx, "user-1")
	if len(all) != 2 {
		t.Errorf("raw ledger has %d transactions, want 2", len(all))
	}
}
