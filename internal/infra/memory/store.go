// Package memory provides an in-memory implementation of the store
// repositories. It is safe for concurrent use and is used by tests and local
// runs; data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/store"
)

// Store is an in-memory implementation of every repository interface in the
// store package. Values are copied on the way in and out so callers cannot
// mutate shared state.
type Store struct {
	mu          sync.RWMutex
	accounts    map[string]*domain.Account
	cards       map[string]*domain.CreditCard
	txs         map[string]*domain.Transaction
	invoices    map[invoiceKey]*domain.Invoice
	categories  map[string]*domain.Category
	contacts    map[string]*domain.Contact
	goals       map[string]*domain.Goal
	investments map[string]*domain.Investment
}

type invoiceKey struct {
	cardID string
	month  time.Month
	year   int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]*domain.Account),
		cards:       make(map[string]*domain.CreditCard),
		txs:         make(map[string]*domain.Transaction),
		invoices:    make(map[invoiceKey]*domain.Invoice),
		categories:  make(map[string]*domain.Category),
		contacts:    make(map[string]*domain.Contact),
		goals:       make(map[string]*domain.Goal),
		investments: make(map[string]*domain.Investment),
	}
}

// GetAccount implements store.AccountRepository.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

// ListAccountsByUser implements store.AccountRepository.
func (s *Store) ListAccountsByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Account
	for _, acc := range s.accounts {
		if acc.UserID == userID {
			cp := *acc
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// InsertAccount implements store.AccountRepository.
func (s *Store) InsertAccount(ctx context.Context, acc *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *acc
	s.accounts[acc.AccountID] = &cp
	return nil
}

// UpdateAccount implements store.AccountRepository.
func (s *Store) UpdateAccount(ctx context.Context, acc *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acc.AccountID]; !ok {
		return store.ErrNotFound
	}
	cp := *acc
	s.accounts[acc.AccountID] = &cp
	return nil
}

// SetAccountBalance implements store.AccountRepository.
func (s *Store) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return store.ErrNotFound
	}
	acc.CurrentBalance = balance
	acc.UpdatedAt = time.Now()
	return nil
}

// GetCard implements store.CardRepository.
func (s *Store) GetCard(ctx context.Context, cardID string) (*domain.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[cardID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *card
	return &cp, nil
}

// ListCardsByUser implements store.CardRepository.
func (s *Store) ListCardsByUser(ctx context.Context, userID string) ([]*domain.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.CreditCard
	for _, card := range s.cards {
		if card.UserID == userID {
			cp := *card
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// InsertCard implements store.CardRepository.
func (s *Store) InsertCard(ctx context.Context, card *domain.CreditCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *card
	s.cards[card.CardID] = &cp
	return nil
}

// UpdateCard implements store.CardRepository.
func (s *Store) UpdateCard(ctx context.Context, card *domain.CreditCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[card.CardID]; !ok {
		return store.ErrNotFound
	}
	cp := *card
	s.cards[card.CardID] = &cp
	return nil
}

// SetCardBalance implements store.CardRepository.
func (s *Store) SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[cardID]
	if !ok {
		return store.ErrNotFound
	}
	card.CurrentBalance = balance
	card.UpdatedAt = time.Now()
	return nil
}

// GetTransaction implements store.TransactionRepository.
func (s *Store) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.txs[transactionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) listTransactions(match func(*domain.Transaction) bool) []*domain.Transaction {
	var result []*domain.Transaction
	for _, t := range s.txs {
		if match(t) {
			cp := *t
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].TransactionID < result[j].TransactionID
	})
	return result
}

// ListTransactionsByUser implements store.TransactionRepository.
func (s *Store) ListTransactionsByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTransactions(func(t *domain.Transaction) bool { return t.UserID == userID }), nil
}

// ListTransactionsByAccount implements store.TransactionRepository.
func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTransactions(func(t *domain.Transaction) bool { return t.AccountID == accountID }), nil
}

// ListTransactionsByCard implements store.TransactionRepository.
func (s *Store) ListTransactionsByCard(ctx context.Context, cardID string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTransactions(func(t *domain.Transaction) bool { return t.CardID == cardID }), nil
}

// ListTransactionsByDateRange implements store.TransactionRepository.
func (s *Store) ListTransactionsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTransactions(func(t *domain.Transaction) bool {
		return t.UserID == userID && !t.Date.Before(start) && !t.Date.After(end)
	}), nil
}

// InsertTransaction implements store.TransactionRepository.
func (s *Store) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.txs[t.TransactionID] = &cp
	return nil
}

// UpdateTransaction implements store.TransactionRepository.
func (s *Store) UpdateTransaction(ctx context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[t.TransactionID]; !ok {
		return store.ErrNotFound
	}
	cp := *t
	s.txs[t.TransactionID] = &cp
	return nil
}

// DeleteTransaction implements store.TransactionRepository.
func (s *Store) DeleteTransaction(ctx context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[transactionID]; !ok {
		return store.ErrNotFound
	}
	delete(s.txs, transactionID)
	return nil
}

// ListInvoicesByCard implements store.InvoiceRepository.
func (s *Store) ListInvoicesByCard(ctx context.Context, cardID string) ([]*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Invoice
	for _, inv := range s.invoices {
		if inv.CardID == cardID {
			cp := *inv
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})
	return result, nil
}

// UpsertInvoice implements store.InvoiceRepository. The (card, month, year)
// key is the conflict target: a second upsert for the same cycle replaces the
// existing row instead of creating another.
func (s *Store) UpsertInvoice(ctx context.Context, inv *domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := invoiceKey{cardID: inv.CardID, month: inv.Month, year: inv.Year}
	cp := *inv
	if existing, ok := s.invoices[key]; ok {
		cp.InvoiceID = existing.InvoiceID
		cp.CreatedAt = existing.CreatedAt
	}
	cp.UpdatedAt = time.Now()
	s.invoices[key] = &cp
	return nil
}

// ListCategoriesByUser implements store.CategoryRepository.
func (s *Store) ListCategoriesByUser(ctx context.Context, userID string) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// InsertCategory implements store.CategoryRepository.
func (s *Store) InsertCategory(ctx context.Context, cat *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cat
	s.categories[cat.CategoryID] = &cp
	return nil
}

// ListContactsByUser implements store.ContactRepository.
func (s *Store) ListContactsByUser(ctx context.Context, userID string) ([]*domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Contact
	for _, c := range s.contacts {
		if c.UserID == userID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// InsertContact implements store.ContactRepository.
func (s *Store) InsertContact(ctx context.Context, c *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.contacts[c.ContactID] = &cp
	return nil
}

// ListGoalsByUser implements store.GoalRepository.
func (s *Store) ListGoalsByUser(ctx context.Context, userID string) ([]*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Goal
	for _, g := range s.goals {
		if g.UserID == userID {
			cp := *g
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// InsertGoal implements store.GoalRepository.
func (s *Store) InsertGoal(ctx context.Context, g *domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *g
	s.goals[g.GoalID] = &cp
	return nil
}

// UpdateGoal implements store.GoalRepository.
func (s *Store) UpdateGoal(ctx context.Context, g *domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.GoalID]; !ok {
		return store.ErrNotFound
	}
	cp := *g
	s.goals[g.GoalID] = &cp
	return nil
}

// ListInvestmentsByUser implements store.InvestmentRepository.
func (s *Store) ListInvestmentsByUser(ctx context.Context, userID string) ([]*domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Investment
	for _, inv := range s.investments {
		if inv.UserID == userID {
			cp := *inv
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// InsertInvestment implements store.InvestmentRepository.
func (s *Store) InsertInvestment(ctx context.Context, inv *domain.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *inv
	s.investments[inv.InvestmentID] = &cp
	return nil
}

// Interface guards.
var (
	_ store.AccountRepository     = (*Store)(nil)
	_ store.CardRepository        = (*Store)(nil)
	_ store.TransactionRepository = (*Store)(nil)
	_ store.InvoiceRepository     = (*Store)(nil)
	_ store.CategoryRepository    = (*Store)(nil)
	_ store.ContactRepository     = (*Store)(nil)
	_ store.GoalRepository        = (*Store)(nil)
	_ store.InvestmentRepository  = (*Store)(nil)
)
