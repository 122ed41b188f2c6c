package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category labels transactions for reporting.
type Category struct {
	CategoryID string
	UserID     string
	Name       string
	Kind       TransactionType
	IsActive   bool
	CreatedAt  time.Time
}

// Contact is a responsible party a transaction can be attributed to, e.g. a
// family member sharing a card. An empty ContactID on a transaction means the
// primary user themselves.
type Contact struct {
	ContactID string
	UserID    string
	Name      string
	Phone     string
	CreatedAt time.Time
}

// Goal is a savings target the user tracks progress against.
type Goal struct {
	GoalID        string
	UserID        string
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      *time.Time
	IsCompleted   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Investment is a position held in an investment account.
type Investment struct {
	InvestmentID string
	UserID       string
	AccountID    string
	Name         string
	AssetType    string
	Amount       decimal.Decimal
	PurchaseDate time.Time
	CreatedAt    time.Time
}
