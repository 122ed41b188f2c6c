package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
)

// Wire types for the JSON API. Dates travel as "2006-01-02"; money travels
// as decimal strings, never floats.

const dateLayout = "2006-01-02"

type accountPayload struct {
	AccountID      string          `json:"account_id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Currency       string          `json:"currency,omitempty"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at,omitempty"`
}

func accountToPayload(a *domain.Account) accountPayload {
	return accountPayload{
		AccountID:      a.AccountID,
		Name:           a.Name,
		Type:           string(a.Type),
		Currency:       a.Currency,
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type cardPayload struct {
	CardID          string          `json:"card_id"`
	Name            string          `json:"name"`
	CardType        string          `json:"card_type,omitempty"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	DueDay          int             `json:"due_day"`
	ClosingDay      int             `json:"closing_day"`
	BestPurchaseDay *int            `json:"best_purchase_day,omitempty"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at,omitempty"`
}

func cardToPayload(c *domain.CreditCard) cardPayload {
	return cardPayload{
		CardID:          c.CardID,
		Name:            c.Name,
		CardType:        c.CardType,
		CreditLimit:     c.CreditLimit,
		CurrentBalance:  c.CurrentBalance,
		DueDay:          c.DueDay,
		ClosingDay:      c.ClosingDay,
		BestPurchaseDay: c.BestPurchaseDay,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type transactionPayload struct {
	TransactionID    string          `json:"transaction_id"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Type             string          `json:"type"`
	Date             string          `json:"date"`
	AccountID        string          `json:"account_id,omitempty"`
	CardID           string          `json:"card_id,omitempty"`
	CategoryID       string          `json:"category_id,omitempty"`
	ContactID        string          `json:"contact_id,omitempty"`
	IsInstallment    bool            `json:"is_installment,omitempty"`
	InstallmentCount int             `json:"installment_count,omitempty"`
	InstallmentNo    int             `json:"installment_no,omitempty"`
	InvestmentAction string          `json:"investment_action,omitempty"`
	TransferGroupID  string          `json:"transfer_group_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at,omitempty"`
}

func transactionToPayload(t *domain.Transaction) transactionPayload {
	return transactionPayload{
		TransactionID:    t.TransactionID,
		Description:      t.Description,
		Amount:           t.Amount,
		Type:             string(t.Type),
		Date:             t.Date.Format(dateLayout),
		AccountID:        t.AccountID,
		CardID:           t.CardID,
		CategoryID:       t.CategoryID,
		ContactID:        t.ContactID,
		IsInstallment:    t.IsInstallment,
		InstallmentCount: t.InstallmentCount,
		InstallmentNo:    t.InstallmentNo,
		InvestmentAction: string(t.InvestmentAction),
		TransferGroupID:  t.TransferGroupID,
		Notes:            t.Notes,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func transactionsToPayload(txs []*domain.Transaction) []transactionPayload {
	out := make([]transactionPayload, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionToPayload(t))
	}
	return out
}

// mutationPayload carries the created/updated transaction plus the entities
// whose balances the write touched, so clients can refresh locally instead
// of refetching everything.
type mutationPayload struct {
	Transaction *transactionPayload `json:"transaction,omitempty"`
	Accounts    []accountPayload    `json:"accounts"`
	Cards       []cardPayload       `json:"cards"`
}

type invoicePayload struct {
	Month        int                  `json:"month"`
	Year         int                  `json:"year"`
	Total        decimal.Decimal      `json:"total"`
	Status       string               `json:"status"`
	DueDate      string               `json:"due_date"`
	Transactions []transactionPayload `json:"transactions"`
}

func invoiceToPayload(inv *domain.MonthlyInvoice) invoicePayload {
	return invoicePayload{
		Month:        int(inv.Month),
		Year:         inv.Year,
		Total:        inv.Total,
		Status:       string(inv.Status),
		DueDate:      inv.DueDate.Format(dateLayout),
		Transactions: transactionsToPayload(inv.Transactions),
	}
}
