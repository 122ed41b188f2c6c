package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/infra/memory"
	"github.com/GabrielSantos777/planix/internal/ledger"
)

type fakeExtractor struct {
	extraction *Extraction
	err        error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) (*Extraction, error) {
	return f.extraction, f.err
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) SendText(ctx context.Context, to, body string) error {
	f.sent = append(f.sent, body)
	return nil
}

func (f *fakeSender) last(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("no reply was sent")
	}
	return f.sent[len(f.sent)-1]
}

type handlerFixture struct {
	handler  *Handler
	store    *memory.Store
	sender   *fakeSender
	sessions *MemorySessionStore
}

func newHandlerFixture(t *testing.T, extractor Extractor) *handlerFixture {
	t.Helper()

	st := memory.NewStore()
	svc := ledger.NewService(st, st, st, st, zerolog.Nop())
	sender := &fakeSender{}
	sessions := NewMemorySessionStore(time.Minute)
	t.Cleanup(sessions.Close)

	h := NewHandler(svc, st, st, extractor, sender, sessions, "verify-secret", "user-1", zerolog.Nop())
	return &handlerFixture{handler: h, store: st, sender: sender, sessions: sessions}
}

func (f *handlerFixture) seedAccount(t *testing.T, id, name string, balance int64) {
	t.Helper()
	err := f.store.InsertAccount(context.Background(), &domain.Account{
		AccountID:      id,
		UserID:         "user-1",
		Name:           name,
		Type:           domain.AccountTypeBank,
		InitialBalance: decimal.NewFromInt(balance),
		CurrentBalance: decimal.NewFromInt(balance),
		Currency:       "BRL",
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("seedAccount: %v", err)
	}
}

func (f *handlerFixture) seedCard(t *testing.T, id, name string) {
	t.Helper()
	err := f.store.InsertCard(context.Background(), &domain.CreditCard{
		CardID:         id,
		UserID:         "user-1",
		Name:           name,
		CurrentBalance: decimal.Zero,
		DueDay:         10,
		ClosingDay:     5,
	})
	if err != nil {
		t.Fatalf("seedCard: %v", err)
	}
}

func inboundBody(from, text string) string {
	return fmt.Sprintf(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "entry-1",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"messages": [{"from": %q, "id": "msg-1", "type": "text", "text": {"body": %q}}]
				}
			}]
		}]
	}`, from, text)
}

func postMessage(t *testing.T, h *Handler, from, text string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundBody(from, text)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhookVerification(t *testing.T) {
	f := newHandlerFixture(t, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-secret&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "12345" {
		t.Errorf("body = %q, want the challenge echoed back", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 on a bad verify token", rec.Code)
	}
}

func TestWebhookSingleTargetRecordsImmediately(t *testing.T) {
	extractor := &fakeExtractor{extraction: &Extraction{
		Amount:      decimal.NewFromInt(50),
		Type:        domain.TransactionTypeExpense,
		Category:    "food",
		Description: "groceries",
	}}
	f := newHandlerFixture(t, extractor)
	f.seedAccount(t, "acc-1", "Checking", 1000)

	rec := postMessage(t, f.handler, "5511999990000", "spent 50 on groceries")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	reply := f.sender.last(t)
	if !strings.Contains(reply, "Expense of 50.00 recorded on Checking") {
		t.Errorf("reply = %q, want a confirmation", reply)
	}

	acc, err := f.store.GetAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !acc.CurrentBalance.Equal(decimal.NewFromInt(950)) {
		t.Errorf("balance = %s, want 950", acc.CurrentBalance)
	}
}

func TestWebhookDisambiguationFlow(t *testing.T) {
	extractor := &fakeExtractor{extraction: &Extraction{
		Amount:   decimal.NewFromInt(80),
		Type:     domain.TransactionTypeExpense,
		Category: "food",
	}}
	f := newHandlerFixture(t, extractor)
	f.seedAccount(t, "acc-1", "Checking", 500)
	f.seedCard(t, "card-1", "Platinum")

	postMessage(t, f.handler, "5511999990000", "dinner 80")

	prompt := f.sender.last(t)
	if !strings.Contains(prompt, "1. Checking") || !strings.Contains(prompt, "2. Platinum (card)") {
		t.Fatalf("prompt = %q, want a numbered target list", prompt)
	}

	// Picking option 2 posts to the card.
	postMessage(t, f.handler, "5511999990000", "2")

	reply := f.sender.last(t)
	if !strings.Contains(reply, "Platinum") {
		t.Errorf("reply = %q, want the card confirmation", reply)
	}

	card, err := f.store.GetCard(context.Background(), "card-1")
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if !card.CurrentBalance.Equal(decimal.NewFromInt(80)) {
		t.Errorf("card balance = %s, want 80", card.CurrentBalance)
	}
	acc, err := f.store.GetAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !acc.CurrentBalance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("account balance = %s, want untouched 500", acc.CurrentBalance)
	}
}

func TestWebhookInvalidSelectionReasks(t *testing.T) {
	extractor := &fakeExtractor{extraction: &Extraction{
		Amount: decimal.NewFromInt(30),
		Type:   domain.TransactionTypeExpense,
	}}
	f := newHandlerFixture(t, extractor)
	f.seedAccount(t, "acc-1", "Checking", 500)
	f.seedCard(t, "card-1", "Platinum")

	postMessage(t, f.handler, "5511999990000", "coffee 30")
	postMessage(t, f.handler, "5511999990000", "7")

	reply := f.sender.last(t)
	if !strings.Contains(reply, "between 1 and 2") {
		t.Fatalf("reply = %q, want a re-ask", reply)
	}

	// The selection survives an invalid pick.
	postMessage(t, f.handler, "5511999990000", "1")
	if !strings.Contains(f.sender.last(t), "Checking") {
		t.Errorf("reply = %q, want the account confirmation", f.sender.last(t))
	}
}

func TestWebhookExtractionFailureFallsBack(t *testing.T) {
	f := newHandlerFixture(t, &fakeExtractor{err: errors.New("model unavailable")})
	f.seedAccount(t, "acc-1", "Checking", 500)

	rec := postMessage(t, f.handler, "5511999990000", "blah")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on failure", rec.Code)
	}
	if f.sender.last(t) != fallbackReply {
		t.Errorf("reply = %q, want the fallback message", f.sender.last(t))
	}
}

func TestWebhookInsufficientFundsMessage(t *testing.T) {
	extractor := &fakeExtractor{extraction: &Extraction{
		Amount: decimal.NewFromInt(900),
		Type:   domain.TransactionTypeExpense,
	}}
	f := newHandlerFixture(t, extractor)
	f.seedAccount(t, "acc-1", "Checking", 100)

	postMessage(t, f.handler, "5511999990000", "rent 900")

	reply := f.sender.last(t)
	if !strings.Contains(reply, "Not enough balance") {
		t.Errorf("reply = %q, want an insufficient-funds message", reply)
	}
}

func TestWebhookIgnoresMalformedPayload(t *testing.T) {
	f := newHandlerFixture(t, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 so the platform does not retry", rec.Code)
	}
	if len(f.sender.sent) != 0 {
		t.Errorf("sent %d replies, want none", len(f.sender.sent))
	}
}
