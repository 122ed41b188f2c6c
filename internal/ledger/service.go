// Package ledger keeps the denormalized account and card balances consistent
// with the transaction history. Every transaction mutation flows through the
// Service, which validates, persists the row, and then adjusts the owning
// account's or card's running balance.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/billing"
	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/store"
)

// Service orchestrates transaction mutations and balance reconciliation.
// Mutations for the same user are serialized: the reverse-then-apply sequence
// is a read-modify-write over the denormalized balances, and the hosted store
// gives us no multi-statement transaction to hide behind. Single-instance
// deployments only; a second instance would reintroduce the race.
type Service struct {
	accounts store.AccountRepository
	cards    store.CardRepository
	txs      store.TransactionRepository
	invoices store.InvoiceRepository
	log      zerolog.Logger

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewService creates a ledger service over the given repositories.
func NewService(accounts store.AccountRepository, cards store.CardRepository, txs store.TransactionRepository, invoices store.InvoiceRepository, log zerolog.Logger) *Service {
	return &Service{
		accounts:  accounts,
		cards:     cards,
		txs:       txs,
		invoices:  invoices,
		log:       log,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// Mutation is the targeted result of a transaction mutation: the transaction
// itself plus whichever owners had their balance adjusted. Callers patch only
// these entities instead of refetching everything.
type Mutation struct {
	Transaction *domain.Transaction
	Accounts    []*domain.Account
	Cards       []*domain.CreditCard
}

func (s *Service) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func validateOwner(t *domain.Transaction) error {
	switch {
	case t.AccountID == "" && t.CardID == "":
		return ErrNoOwner
	case t.AccountID != "" && t.CardID != "":
		return ErrAmbiguousOwner
	}
	return nil
}

// RealBalance computes an account's balance from first principles: initial
// balance plus the net of all its transactions. Used for validation so a
// drifted denormalized balance can never let an overdraft through.
func (s *Service) RealBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	acc, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("RealBalance: %w", err)
	}
	txs, err := s.txs.ListTransactionsByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("RealBalance: %w", err)
	}
	balance := acc.InitialBalance
	for _, t := range txs {
		balance = balance.Add(t.Amount)
	}
	return balance, nil
}

// CreateTransaction validates and persists a new transaction, then applies
// its monetary effect to the owning account or card. For accounts the signed
// amount is added; for cards the absolute value is added, since card balances
// track the magnitude of charges.
func (s *Service) CreateTransaction(ctx context.Context, t *domain.Transaction) (*Mutation, error) {
	unlock := s.lockUser(t.UserID)
	defer unlock()
	return s.createLocked(ctx, t)
}

func (s *Service) createLocked(ctx context.Context, t *domain.Transaction) (*Mutation, error) {
	if err := validateOwner(t); err != nil {
		return nil, err
	}

	if t.OwnedByAccount() && t.Amount.IsNegative() {
		real, err := s.RealBalance(ctx, t.AccountID)
		if err != nil {
			return nil, fmt.Errorf("CreateTransaction: %w", err)
		}
		if real.Add(t.Amount).IsNegative() {
			return nil, ErrInsufficientFunds
		}
	}
	if t.OwnedByCard() {
		card, err := s.cards.GetCard(ctx, t.CardID)
		if err != nil {
			return nil, fmt.Errorf("CreateTransaction: %w", err)
		}
		if card.CreditLimit.IsPositive() && card.CurrentBalance.Add(t.Amount.Abs()).GreaterThan(card.CreditLimit) {
			return nil, ErrCreditLimitExceeded
		}
	}

	now := time.Now()
	if t.TransactionID == "" {
		t.TransactionID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if err := s.txs.InsertTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("CreateTransaction: insert: %w", err)
	}

	mut := &Mutation{Transaction: t}
	if err := s.applyEffect(ctx, t, false, mut); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	s.log.Info().
		Str("transaction_id", t.TransactionID).
		Str("user_id", t.UserID).
		Str("amount", t.Amount.String()).
		Msg("Transaction created")

	return mut, nil
}

// UpdateTransaction replaces an existing transaction. The original's monetary
// effect is first reversed on its original owner, then the new effect is
// applied to the (possibly different) new owner. Editing a transaction that
// does not exist is a hard failure.
func (s *Service) UpdateTransaction(ctx context.Context, t *domain.Transaction) (*Mutation, error) {
	unlock := s.lockUser(t.UserID)
	defer unlock()

	orig, err := s.txs.GetTransaction(ctx, t.TransactionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}
	if err := validateOwner(t); err != nil {
		return nil, err
	}

	mut := &Mutation{Transaction: t}

	// Reverse the original effect on the original owner before anything else:
	// the edit may have moved the transaction to a different account or card.
	if err := s.applyEffect(ctx, orig, true, mut); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: reverse: %w", err)
	}

	t.CreatedAt = orig.CreatedAt
	t.UpdatedAt = time.Now()
	if err := s.txs.UpdateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: update: %w", err)
	}

	if err := s.applyEffect(ctx, t, false, mut); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: apply: %w", err)
	}

	s.log.Info().
		Str("transaction_id", t.TransactionID).
		Str("user_id", t.UserID).
		Msg("Transaction updated")

	return mut, nil
}

// DeleteTransaction reverses the transaction's monetary effect from its
// owner and then removes the row. Deleting an unknown transaction is a hard
// failure.
func (s *Service) DeleteTransaction(ctx context.Context, userID, transactionID string) (*Mutation, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	orig, err := s.txs.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("DeleteTransaction: %w", err)
	}

	mut := &Mutation{Transaction: orig}
	if err := s.applyEffect(ctx, orig, true, mut); err != nil {
		return nil, fmt.Errorf("DeleteTransaction: reverse: %w", err)
	}

	if err := s.txs.DeleteTransaction(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("DeleteTransaction: delete: %w", err)
	}

	s.log.Info().
		Str("transaction_id", transactionID).
		Str("user_id", userID).
		Msg("Transaction deleted")

	return mut, nil
}

// applyEffect adjusts the owner's balance by the transaction's monetary
// effect. reverse subtracts instead of adding, used when an existing effect
// must be undone. The updated owner is appended to mut.
func (s *Service) applyEffect(ctx context.Context, t *domain.Transaction, reverse bool, mut *Mutation) error {
	switch {
	case t.OwnedByAccount():
		acc, err := s.accounts.GetAccount(ctx, t.AccountID)
		if err != nil {
			return fmt.Errorf("applyEffect: account %s: %w", t.AccountID, err)
		}
		delta := t.Amount
		if reverse {
			delta = delta.Neg()
		}
		acc.CurrentBalance = acc.CurrentBalance.Add(delta)
		if err := s.accounts.SetAccountBalance(ctx, acc.AccountID, acc.CurrentBalance); err != nil {
			return fmt.Errorf("applyEffect: set account balance: %w", err)
		}
		mut.Accounts = append(mut.Accounts, acc)

	case t.OwnedByCard():
		card, err := s.cards.GetCard(ctx, t.CardID)
		if err != nil {
			return fmt.Errorf("applyEffect: card %s: %w", t.CardID, err)
		}
		delta := t.Amount.Abs()
		if reverse {
			delta = delta.Neg()
		}
		card.CurrentBalance = card.CurrentBalance.Add(delta)
		if err := s.cards.SetCardBalance(ctx, card.CardID, card.CurrentBalance); err != nil {
			return fmt.Errorf("applyEffect: set card balance: %w", err)
		}
		mut.Cards = append(mut.Cards, card)
	}
	return nil
}

// ListVisibleTransactions returns the user's transactions minus the
// investment-account legs of transfer pairs, which would double-count plain
// income/expense totals.
func (s *Service) ListVisibleTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	txs, err := s.txs.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListVisibleTransactions: %w", err)
	}
	accounts, err := s.accounts.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListVisibleTransactions: %w", err)
	}

	investment := make(map[string]bool)
	for _, a := range accounts {
		if a.Type == domain.AccountTypeInvestment {
			investment[a.AccountID] = true
		}
	}

	visible := make([]*domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.IsInvestmentLeg() && investment[t.AccountID] {
			continue
		}
		visible = append(visible, t)
	}
	return visible, nil
}

// CardInvoices aggregates a card's transactions into monthly invoices,
// merging persisted override rows.
func (s *Service) CardInvoices(ctx context.Context, cardID string, f billing.Filter) ([]*domain.MonthlyInvoice, error) {
	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("CardInvoices: %w", err)
	}
	txs, err := s.txs.ListTransactionsByCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("CardInvoices: %w", err)
	}
	persisted, err := s.invoices.ListInvoicesByCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("CardInvoices: %w", err)
	}
	return billing.Invoices(card, txs, persisted, f), nil
}

// PayInvoice records a payment against a card's invoice for the given cycle.
// The invoice row is upserted on (card, month, year) — a second payment for
// the same cycle updates the single existing row — and the card's running
// balance is reduced by the amount paid.
func (s *Service) PayInvoice(ctx context.Context, userID, cardID string, month time.Month, year int, amount decimal.Decimal, paymentDate time.Time, notes string) (*domain.Invoice, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("PayInvoice: %w", err)
	}
	txs, err := s.txs.ListTransactionsByCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("PayInvoice: %w", err)
	}

	total := decimal.Zero
	for _, t := range txs {
		m, y := billing.CycleBucket(t.Date, card.ClosingDay)
		if m == month && y == year {
			total = total.Add(t.Amount.Abs())
		}
	}

	status := domain.InvoiceStatusPartial
	if amount.GreaterThanOrEqual(total) {
		status = domain.InvoiceStatusPaid
	}

	inv := &domain.Invoice{
		InvoiceID:   uuid.NewString(),
		CardID:      cardID,
		UserID:      userID,
		Month:       month,
		Year:        year,
		TotalAmount: total,
		PaidAmount:  amount,
		Status:      status,
		DueDate:     billing.DueDate(month, year, card),
		PaymentDate: &paymentDate,
		Notes:       notes,
	}
	if err := s.invoices.UpsertInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("PayInvoice: upsert: %w", err)
	}

	card.CurrentBalance = card.CurrentBalance.Sub(amount)
	if card.CurrentBalance.IsNegative() {
		card.CurrentBalance = decimal.Zero
	}
	if err := s.cards.SetCardBalance(ctx, cardID, card.CurrentBalance); err != nil {
		return nil, fmt.Errorf("PayInvoice: set card balance: %w", err)
	}

	s.log.Info().
		Str("card_id", cardID).
		Int("year", year).
		Str("month", month.String()).
		Str("paid", amount.String()).
		Msg("Invoice payment recorded")

	return inv, nil
}
