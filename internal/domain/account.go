package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account.
type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeInvestment AccountType = "investment"
)

// Account is a money-holding account owned by a user.
// CurrentBalance is denormalized: it is mutated only by the ledger service in
// response to transaction mutations, and must always equal
// InitialBalance + sum(amount) over all transactions referencing the account.
type Account struct {
	AccountID      string
	UserID         string
	Name           string
	Type           AccountType
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Currency       string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
