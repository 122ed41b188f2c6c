package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// InvestmentAction tags the legs of an investment money movement.
type InvestmentAction string

const (
	// InvestmentActionContribution moves money into an investment account.
	InvestmentActionContribution InvestmentAction = "contribution"
	// InvestmentActionRedemption moves money out of an investment account.
	InvestmentActionRedemption InvestmentAction = "redemption"
)

// Transaction is one ledger entry. Amount is signed: negative for expenses,
// positive for income and transfers in. A transaction references at most one
// of AccountID or CardID (empty string means unset).
type Transaction struct {
	TransactionID string
	UserID        string
	Description   string
	Amount        decimal.Decimal
	Type          TransactionType
	Date          time.Time

	AccountID string
	CardID    string

	CategoryID string
	ContactID  string

	// Installment metadata for card purchases split over several cycles.
	IsInstallment    bool
	InstallmentCount int
	InstallmentNo    int

	// Investment movement metadata. Both legs of a movement share
	// TransferGroupID so the pair can be recognized and the investment-side
	// leg excluded from plain income/expense listings.
	InvestmentAction InvestmentAction
	TransferGroupID  string

	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedByAccount reports whether the transaction posts to an account.
func (t *Transaction) OwnedByAccount() bool { return t.AccountID != "" }

// OwnedByCard reports whether the transaction posts to a credit card.
func (t *Transaction) OwnedByCard() bool { return t.CardID != "" }

// IsInvestmentLeg reports whether the transaction is one leg of an
// investment movement pair.
func (t *Transaction) IsInvestmentLeg() bool { return t.InvestmentAction != "" }
