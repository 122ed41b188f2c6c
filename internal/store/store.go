// Package store defines the repository interfaces the service is written
// against. Implementations live under internal/infra: a BigQuery-backed one
// for the hosted dataset and an in-memory one for tests and local runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("store: not found")

// AccountRepository persists accounts and their denormalized balances.
type AccountRepository interface {
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccountsByUser(ctx context.Context, userID string) ([]*domain.Account, error)
	InsertAccount(ctx context.Context, acc *domain.Account) error
	UpdateAccount(ctx context.Context, acc *domain.Account) error

	// SetAccountBalance writes only the denormalized current balance.
	SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
}

// CardRepository persists credit cards and their running balances.
type CardRepository interface {
	GetCard(ctx context.Context, cardID string) (*domain.CreditCard, error)
	ListCardsByUser(ctx context.Context, userID string) ([]*domain.CreditCard, error)
	InsertCard(ctx context.Context, card *domain.CreditCard) error
	UpdateCard(ctx context.Context, card *domain.CreditCard) error

	// SetCardBalance writes only the denormalized current balance.
	SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal) error
}

// TransactionRepository persists the transaction ledger.
type TransactionRepository interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID string) ([]*domain.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error)
	ListTransactionsByCard(ctx context.Context, cardID string) ([]*domain.Transaction, error)
	ListTransactionsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error)
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// InvoiceRepository persists credit-card invoice override rows. UpsertInvoice
// must enforce the uniqueness of (CardID, Month, Year): a second upsert for
// the same key updates the existing row in place.
type InvoiceRepository interface {
	ListInvoicesByCard(ctx context.Context, cardID string) ([]*domain.Invoice, error)
	UpsertInvoice(ctx context.Context, inv *domain.Invoice) error
}

// CategoryRepository persists transaction categories.
type CategoryRepository interface {
	ListCategoriesByUser(ctx context.Context, userID string) ([]*domain.Category, error)
	InsertCategory(ctx context.Context, cat *domain.Category) error
}

// ContactRepository persists responsible parties.
type ContactRepository interface {
	ListContactsByUser(ctx context.Context, userID string) ([]*domain.Contact, error)
	InsertContact(ctx context.Context, c *domain.Contact) error
}

// GoalRepository persists savings goals.
type GoalRepository interface {
	ListGoalsByUser(ctx context.Context, userID string) ([]*domain.Goal, error)
	InsertGoal(ctx context.Context, g *domain.Goal) error
	UpdateGoal(ctx context.Context, g *domain.Goal) error
}

// InvestmentRepository persists investment positions.
type InvestmentRepository interface {
	ListInvestmentsByUser(ctx context.Context, userID string) ([]*domain.Investment, error)
	InsertInvestment(ctx context.Context, inv *domain.Investment) error
}
