package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/ledger"
	"github.com/GabrielSantos777/planix/internal/store"
)

const fallbackReply = "Sorry, I couldn't understand that. Try something like: \"spent 45 on groceries\"."

// Handler processes WhatsApp webhook calls: it runs inbound text through the
// extractor, posts the resulting transaction through the ledger service, and
// when more than one account or card is eligible, parks a pending selection
// until the user replies with a number.
type Handler struct {
	svc         *ledger.Service
	accounts    store.AccountRepository
	cards       store.CardRepository
	extractor   Extractor
	sender      Sender
	sessions    SessionStore
	verifyToken string
	userID      string
	log         zerolog.Logger
}

// NewHandler creates a webhook handler. userID identifies the owner all bot
// transactions are posted for.
func NewHandler(svc *ledger.Service, accounts store.AccountRepository, cards store.CardRepository, extractor Extractor, sender Sender, sessions SessionStore, verifyToken, userID string, log zerolog.Logger) *Handler {
	return &Handler{
		svc:         svc,
		accounts:    accounts,
		cards:       cards,
		extractor:   extractor,
		sender:      sender,
		sessions:    sessions,
		verifyToken: verifyToken,
		userID:      userID,
		log:         log,
	}
}

// ServeHTTP implements both halves of the webhook contract: GET for the
// platform's subscription verification handshake, POST for inbound events.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.verify(w, r)
	case http.MethodPost:
		h.receive(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, q.Get("hub.challenge"))
		return
	}
	w.WriteHeader(http.StatusForbidden)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := DecodePayload(r.Body)
	if err != nil {
		h.log.Warn().Err(err).Msg("Malformed webhook payload")
		// Always acknowledge: the platform retries on non-2xx and the
		// payload will not get better.
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, msg := range payload.TextMessages() {
		reply := h.handleMessage(ctx, msg.From, msg.Text.Body)
		if reply == "" {
			continue
		}
		if err := h.sender.SendText(ctx, msg.From, reply); err != nil {
			h.log.Error().Err(err).Str("to", msg.From).Msg("Failed to send chat reply")
		}
	}

	w.WriteHeader(http.StatusOK)
}

// handleMessage runs one inbound message through the selection state machine
// and returns the reply text. Failures never propagate: the user gets a
// generic fallback.
func (h *Handler) handleMessage(ctx context.Context, from, body string) string {
	text := strings.TrimSpace(body)
	if text == "" {
		return ""
	}

	// A numeric reply while a selection is pending resolves it.
	if pending, ok := h.sessions.Take(from); ok {
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(pending.Targets) {
			return h.apply(ctx, pending.Extraction, pending.Targets[n-1])
		}
		// Not a valid pick; park it again and re-ask.
		h.sessions.Put(from, pending)
		return fmt.Sprintf("Please reply with a number between 1 and %d.", len(pending.Targets))
	}

	extraction, err := h.extractor.Extract(ctx, text)
	if err != nil {
		h.log.Warn().Err(err).Str("from", from).Msg("Extraction failed")
		return fallbackReply
	}

	targets, err := h.eligibleTargets(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list chat targets")
		return fallbackReply
	}

	switch len(targets) {
	case 0:
		return "You have no active account or card to post to yet."
	case 1:
		return h.apply(ctx, extraction, targets[0])
	default:
		h.sessions.Put(from, &PendingSelection{
			Phone:      from,
			Extraction: extraction,
			Targets:    targets,
			ExpiresAt:  time.Now().Add(DefaultSessionTTL),
		})
		return selectionPrompt(extraction, targets)
	}
}

func (h *Handler) eligibleTargets(ctx context.Context) ([]Target, error) {
	accounts, err := h.accounts.ListAccountsByUser(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("eligibleTargets: %w", err)
	}
	cards, err := h.cards.ListCardsByUser(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("eligibleTargets: %w", err)
	}

	var targets []Target
	for _, a := range accounts {
		if a.IsActive && a.Type != domain.AccountTypeInvestment {
			targets = append(targets, Target{Kind: TargetAccount, ID: a.AccountID, Name: a.Name})
		}
	}
	for _, c := range cards {
		targets = append(targets, Target{Kind: TargetCard, ID: c.CardID, Name: c.Name + " (card)"})
	}
	return targets, nil
}

func (h *Handler) apply(ctx context.Context, e *Extraction, target Target) string {
	amount := e.Amount
	if e.Type == domain.TransactionTypeExpense {
		amount = amount.Neg()
	}

	tx := &domain.Transaction{
		UserID:      h.userID,
		Description: e.Description,
		Amount:      amount,
		Type:        e.Type,
		Date:        time.Now(),
		Notes:       "via whatsapp",
	}
	if tx.Description == "" {
		tx.Description = e.Category
	}
	switch target.Kind {
	case TargetAccount:
		tx.AccountID = target.ID
	case TargetCard:
		tx.CardID = target.ID
	}

	mut, err := h.svc.CreateTransaction(ctx, tx)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fmt.Sprintf("Not enough balance on %s for that.", target.Name)
		case errors.Is(err, ledger.ErrCreditLimitExceeded):
			return fmt.Sprintf("That would exceed the limit on %s.", target.Name)
		default:
			h.log.Error().Err(err).Msg("Failed to create chat transaction")
			return fallbackReply
		}
	}

	verb := "Expense"
	if e.Type == domain.TransactionTypeIncome {
		verb = "Income"
	}
	return fmt.Sprintf("%s of %s recorded on %s.", verb, formatAmount(mut.Transaction.Amount), target.Name)
}

func formatAmount(d decimal.Decimal) string {
	return d.Abs().StringFixed(2)
}

func selectionPrompt(e *Extraction, targets []Target) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Got it: %s of %s. Where should I post it?\n", e.Type, e.Amount.StringFixed(2))
	for i, t := range targets {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.Name)
	}
	b.WriteString("Reply with the number.")
	return b.String()
}
