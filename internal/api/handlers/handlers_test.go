package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/api/middleware"
	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/infra/memory"
	"github.com/GabrielSantos777/planix/internal/ledger"
)

const testUser = "user-1"

type fixture struct {
	store        *memory.Store
	svc          *ledger.Service
	accounts     *AccountsHandler
	cards        *CardsHandler
	transactions *TransactionsHandler
	transfers    *TransfersHandler
	entities     *EntitiesHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	svc := ledger.NewService(st, st, st, st, zerolog.Nop())
	return &fixture{
		store:        st,
		svc:          svc,
		accounts:     NewAccountsHandler(st, svc, zerolog.Nop()),
		cards:        NewCardsHandler(st, svc, zerolog.Nop()),
		transactions: NewTransactionsHandler(svc, st, zerolog.Nop()),
		transfers:    NewTransfersHandler(svc, zerolog.Nop()),
		entities:     NewEntitiesHandler(st, st, st, st, zerolog.Nop()),
	}
}

func authedRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	return r.WithContext(middleware.WithUser(r.Context(), testUser))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func seedAccount(t *testing.T, f *fixture, name string, balance int64) *domain.Account {
	t.Helper()
	acc := &domain.Account{
		AccountID:      "acc-" + name,
		UserID:         testUser,
		Name:           name,
		Type:           domain.AccountTypeBank,
		InitialBalance: decimal.NewFromInt(balance),
		CurrentBalance: decimal.NewFromInt(balance),
		IsActive:       true,
	}
	if err := f.store.InsertAccount(context.Background(), acc); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acc
}

func TestCreateAccount(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/accounts", map[string]interface{}{
		"name":            "Checking",
		"type":            "bank",
		"currency":        "BRL",
		"initial_balance": "1500.50",
	})
	f.accounts.Create(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var got accountPayload
	decodeBody(t, w, &got)
	if got.AccountID == "" {
		t.Fatal("account_id not assigned")
	}
	if !got.CurrentBalance.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("current_balance = %s, want 1500.50", got.CurrentBalance)
	}
	if !got.IsActive {
		t.Fatal("new account should be active")
	}
}

func TestCreateAccountRejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/accounts", map[string]interface{}{
		"name": "Weird",
		"type": "mattress",
	})
	f.accounts.Create(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetAccountHidesOtherUsers(t *testing.T) {
	f := newFixture(t)
	acc := seedAccount(t, f, "Checking", 100)
	acc.UserID = "someone-else"
	if err := f.store.UpdateAccount(context.Background(), acc); err != nil {
		t.Fatalf("update account: %v", err)
	}

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodGet, "/api/accounts/"+acc.AccountID, nil)
	f.accounts.Get(w, r, acc.AccountID)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestAccountBalanceReportsDrift(t *testing.T) {
	f := newFixture(t)
	acc := seedAccount(t, f, "Checking", 1000)

	// Post a transaction through the ledger so stored and real agree.
	if _, err := f.svc.CreateTransaction(context.Background(), &domain.Transaction{
		UserID:      testUser,
		Description: "Groceries",
		Amount:      decimal.NewFromInt(-200),
		Type:        domain.TransactionTypeExpense,
		Date:        time.Now(),
		AccountID:   acc.AccountID,
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodGet, "/api/accounts/"+acc.AccountID+"/balance", nil)
	f.accounts.Balance(w, r, acc.AccountID)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var got struct {
		CurrentBalance decimal.Decimal `json:"current_balance"`
		RealBalance    decimal.Decimal `json:"real_balance"`
		InSync         bool            `json:"in_sync"`
	}
	decodeBody(t, w, &got)
	if !got.RealBalance.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("real_balance = %s, want 800", got.RealBalance)
	}
	if !got.InSync {
		t.Fatal("balances should be in sync after a ledger write")
	}
}

func TestCreateTransactionAdjustsBalance(t *testing.T) {
	f := newFixture(t)
	acc := seedAccount(t, f, "Checking", 1000)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/transactions", map[string]interface{}{
		"description": "Dinner",
		"amount":      "-85.40",
		"type":        "expense",
		"date":        "2026-08-10",
		"account_id":  acc.AccountID,
	})
	f.transactions.Create(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var got mutationPayload
	decodeBody(t, w, &got)
	if got.Transaction == nil || got.Transaction.TransactionID == "" {
		t.Fatal("transaction missing from mutation payload")
	}
	if len(got.Accounts) != 1 {
		t.Fatalf("accounts in payload = %d, want 1", len(got.Accounts))
	}
	want := decimal.RequireFromString("914.60")
	if !got.Accounts[0].CurrentBalance.Equal(want) {
		t.Fatalf("balance = %s, want %s", got.Accounts[0].CurrentBalance, want)
	}
}

func TestCreateTransactionInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	acc := seedAccount(t, f, "Checking", 50)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/transactions", map[string]interface{}{
		"description": "Rent",
		"amount":      "-900",
		"type":        "expense",
		"date":        "2026-08-10",
		"account_id":  acc.AccountID,
	})
	f.transactions.Create(w, r)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
}

func TestCreateTransactionRejectsBothOwners(t *testing.T) {
	f := newFixture(t)
	seedAccount(t, f, "Checking", 1000)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/transactions", map[string]interface{}{
		"description": "Confused",
		"amount":      "-10",
		"type":        "expense",
		"date":        "2026-08-10",
		"account_id":  "acc-Checking",
		"card_id":     "card-1",
	})
	f.transactions.Create(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestDeleteTransactionRestoresBalance(t *testing.T) {
	f := newFixture(t)
	acc := seedAccount(t, f, "Checking", 1000)

	mut, err := f.svc.CreateTransaction(context.Background(), &domain.Transaction{
		UserID:      testUser,
		Description: "Groceries",
		Amount:      decimal.NewFromInt(-300),
		Type:        domain.TransactionTypeExpense,
		Date:        time.Now(),
		AccountID:   acc.AccountID,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodDelete, "/api/transactions/"+mut.Transaction.TransactionID, nil)
	f.transactions.Delete(w, r, mut.Transaction.TransactionID)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var got mutationPayload
	decodeBody(t, w, &got)
	if len(got.Accounts) != 1 || !got.Accounts[0].CurrentBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance after delete = %v, want 1000", got.Accounts)
	}
}

func TestTransferMovesMoneyBetweenAccounts(t *testing.T) {
	f := newFixture(t)
	from := seedAccount(t, f, "Checking", 1000)
	to := seedAccount(t, f, "Broker", 0)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/transfers", map[string]interface{}{
		"from_account_id": from.AccountID,
		"to_account_id":   to.AccountID,
		"amount":          "250",
		"date":            "2026-08-15",
		"description":     "Funding",
		"action":          "contribution",
	})
	f.transfers.Create(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var got struct {
		Debit  mutationPayload `json:"debit"`
		Credit mutationPayload `json:"credit"`
	}
	decodeBody(t, w, &got)
	if got.Debit.Transaction.TransferGroupID == "" ||
		got.Debit.Transaction.TransferGroupID != got.Credit.Transaction.TransferGroupID {
		t.Fatal("transfer legs must share a transfer_group_id")
	}

	fromAfter, _ := f.store.GetAccount(context.Background(), from.AccountID)
	toAfter, _ := f.store.GetAccount(context.Background(), to.AccountID)
	if !fromAfter.CurrentBalance.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("source balance = %s, want 750", fromAfter.CurrentBalance)
	}
	if !toAfter.CurrentBalance.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("destination balance = %s, want 250", toAfter.CurrentBalance)
	}
}

func TestTransferRejectsOverdraft(t *testing.T) {
	f := newFixture(t)
	from := seedAccount(t, f, "Checking", 100)
	to := seedAccount(t, f, "Broker", 0)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/transfers", map[string]interface{}{
		"from_account_id": from.AccountID,
		"to_account_id":   to.AccountID,
		"amount":          "500",
	})
	f.transfers.Create(w, r)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
}

func TestCardInvoicesFiltersByCycle(t *testing.T) {
	f := newFixture(t)
	card := &domain.CreditCard{
		CardID:      "card-1",
		UserID:      testUser,
		Name:        "Platinum",
		CreditLimit: decimal.NewFromInt(5000),
		DueDay:      10,
		ClosingDay:  3,
	}
	if err := f.store.InsertCard(context.Background(), card); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	// One charge before the closing day, one after: two separate cycles.
	for _, tx := range []struct {
		day    int
		amount int64
	}{{1, -100}, {5, -40}} {
		if _, err := f.svc.CreateTransaction(context.Background(), &domain.Transaction{
			UserID:      testUser,
			Description: "Charge",
			Amount:      decimal.NewFromInt(tx.amount),
			Type:        domain.TransactionTypeExpense,
			Date:        time.Date(2026, time.March, tx.day, 0, 0, 0, 0, time.UTC),
			CardID:      card.CardID,
		}); err != nil {
			t.Fatalf("create charge: %v", err)
		}
	}

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodGet, "/api/cards/card-1/invoices?year=2026&month=3", nil)
	f.cards.Invoices(w, r, card.CardID)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var got []invoicePayload
	decodeBody(t, w, &got)
	if len(got) != 1 {
		t.Fatalf("invoices = %d, want 1", len(got))
	}
	if got[0].Month != 3 || !got[0].Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("cycle = %d/%s, want March total 100", got[0].Month, got[0].Total)
	}
}

func TestCreateCategoryDefaultsToExpense(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/categories", map[string]interface{}{
		"name": "Food",
	})
	f.entities.CreateCategory(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var got map[string]interface{}
	decodeBody(t, w, &got)
	if got["kind"] != "expense" {
		t.Fatalf("kind = %v, want expense", got["kind"])
	}
}
