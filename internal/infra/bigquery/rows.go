package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
)

// Row structs mirror the dataset schema one to one. Money columns are
// NUMERIC and travel as *big.Rat; the converters below translate to the
// decimal type the rest of the code uses.

type AccountRow struct {
	AccountID string `bigquery:"account_id"` // REQUIRED

	UserID      string `bigquery:"user_id"`      // REQUIRED
	AccountName string `bigquery:"account_name"` // REQUIRED
	AccountType string `bigquery:"account_type"` // REQUIRED
	Currency    string `bigquery:"currency"`     // NULLABLE (empty string → "")

	InitialBalance *big.Rat `bigquery:"initial_balance"` // NUMERIC
	CurrentBalance *big.Rat `bigquery:"current_balance"` // NUMERIC

	IsActive bool `bigquery:"is_active"`

	CreatedTS time.Time              `bigquery:"created_ts"` // default CURRENT_TIMESTAMP()
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE
}

type CardRow struct {
	CardID string `bigquery:"card_id"` // REQUIRED

	UserID   string `bigquery:"user_id"`
	CardName string `bigquery:"card_name"`
	CardType string `bigquery:"card_type"` // NULLABLE

	CreditLimit    *big.Rat `bigquery:"credit_limit"`    // NUMERIC
	CurrentBalance *big.Rat `bigquery:"current_balance"` // NUMERIC

	DueDay          int64              `bigquery:"due_day"`
	ClosingDay      int64              `bigquery:"closing_day"`
	BestPurchaseDay bigquery.NullInt64 `bigquery:"best_purchase_day"` // NULLABLE

	CreatedTS time.Time              `bigquery:"created_ts"`
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"`
}

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	UserID      string `bigquery:"user_id"`
	Description string `bigquery:"description"`

	Amount          *big.Rat   `bigquery:"amount"` // REQUIRED NUMERIC, signed
	TransactionType string     `bigquery:"transaction_type"`
	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	AccountID bigquery.NullString `bigquery:"account_id"`  // NULLABLE
	CardID    bigquery.NullString `bigquery:"card_id"`     // NULLABLE
	Category  bigquery.NullString `bigquery:"category_id"` // NULLABLE
	ContactID bigquery.NullString `bigquery:"contact_id"`  // NULLABLE

	IsInstallment    bool               `bigquery:"is_installment"`
	InstallmentCount bigquery.NullInt64 `bigquery:"installment_count"` // NULLABLE
	InstallmentNo    bigquery.NullInt64 `bigquery:"installment_no"`    // NULLABLE

	InvestmentAction bigquery.NullString `bigquery:"investment_action"` // NULLABLE
	TransferGroupID  bigquery.NullString `bigquery:"transfer_group_id"` // NULLABLE

	Notes bigquery.NullString `bigquery:"notes"` // NULLABLE

	CreatedTS time.Time              `bigquery:"created_ts"`
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"`
}

type InvoiceRow struct {
	InvoiceID string `bigquery:"invoice_id"` // REQUIRED

	CardID string `bigquery:"credit_card_id"` // REQUIRED
	UserID string `bigquery:"user_id"`

	// Month and Year identify the billing bucket; (credit_card_id, month,
	// year) is unique.
	Month int64 `bigquery:"month"`
	Year  int64 `bigquery:"year"`

	TotalAmount *big.Rat `bigquery:"total_amount"` // NUMERIC
	PaidAmount  *big.Rat `bigquery:"paid_amount"`  // NUMERIC

	Status string `bigquery:"status"`

	DueDate     civil.Date        `bigquery:"due_date"`
	PaymentDate bigquery.NullDate `bigquery:"payment_date"` // NULLABLE

	Notes bigquery.NullString `bigquery:"notes"` // NULLABLE

	CreatedTS time.Time              `bigquery:"created_ts"`
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"`
}

type CategoryRow struct {
	CategoryID   string    `bigquery:"category_id"`
	UserID       string    `bigquery:"user_id"`
	CategoryName string    `bigquery:"category_name"`
	Kind         string    `bigquery:"kind"`
	IsActive     bool      `bigquery:"is_active"`
	CreatedTS    time.Time `bigquery:"created_ts"`
}

type ContactRow struct {
	ContactID   string              `bigquery:"contact_id"`
	UserID      string              `bigquery:"user_id"`
	ContactName string              `bigquery:"contact_name"`
	Phone       bigquery.NullString `bigquery:"phone"` // NULLABLE
	CreatedTS   time.Time           `bigquery:"created_ts"`
}

type GoalRow struct {
	GoalID        string                 `bigquery:"goal_id"`
	UserID        string                 `bigquery:"user_id"`
	GoalName      string                 `bigquery:"goal_name"`
	TargetAmount  *big.Rat               `bigquery:"target_amount"`  // NUMERIC
	CurrentAmount *big.Rat               `bigquery:"current_amount"` // NUMERIC
	Deadline      bigquery.NullDate      `bigquery:"deadline"`       // NULLABLE
	IsCompleted   bool                   `bigquery:"is_completed"`
	CreatedTS     time.Time              `bigquery:"created_ts"`
	UpdatedTS     bigquery.NullTimestamp `bigquery:"updated_ts"`
}

type InvestmentRow struct {
	InvestmentID string     `bigquery:"investment_id"`
	UserID       string     `bigquery:"user_id"`
	AccountID    string     `bigquery:"account_id"`
	AssetName    string     `bigquery:"asset_name"`
	AssetType    string     `bigquery:"asset_type"`
	Amount       *big.Rat   `bigquery:"amount"` // NUMERIC
	PurchaseDate civil.Date `bigquery:"purchase_date"`
	CreatedTS    time.Time  `bigquery:"created_ts"`
}

func ratFromDecimal(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

func decimalFromRat(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	// NUMERIC carries 9 fractional digits; money uses 2 but round-tripping
	// through the column scale is lossless either way.
	return decimal.NewFromBigRat(r, 9)
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func nullInt(p *int) bigquery.NullInt64 {
	if p == nil {
		return bigquery.NullInt64{}
	}
	return bigquery.NullInt64{Int64: int64(*p), Valid: true}
}

func nullIntZero(n int) bigquery.NullInt64 {
	if n == 0 {
		return bigquery.NullInt64{}
	}
	return bigquery.NullInt64{Int64: int64(n), Valid: true}
}

func intPtr(n bigquery.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullTimestamp(t time.Time) bigquery.NullTimestamp {
	if t.IsZero() {
		return bigquery.NullTimestamp{}
	}
	return bigquery.NullTimestamp{Timestamp: t, Valid: true}
}

func timeFromNull(n bigquery.NullTimestamp) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return n.Timestamp
}

func nullDate(t *time.Time) bigquery.NullDate {
	if t == nil || t.IsZero() {
		return bigquery.NullDate{}
	}
	return bigquery.NullDate{Date: civil.DateOf(*t), Valid: true}
}

func datePtr(n bigquery.NullDate) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Date.In(time.UTC)
	return &t
}

func accountRowFromDomain(a *domain.Account) *AccountRow {
	return &AccountRow{
		AccountID:      a.AccountID,
		UserID:         a.UserID,
		AccountName:    a.Name,
		AccountType:    string(a.Type),
		Currency:       a.Currency,
		InitialBalance: ratFromDecimal(a.InitialBalance),
		CurrentBalance: ratFromDecimal(a.CurrentBalance),
		IsActive:       a.IsActive,
		CreatedTS:      a.CreatedAt,
		UpdatedTS:      nullTimestamp(a.UpdatedAt),
	}
}

func (r *AccountRow) toDomain() *domain.Account {
	return &domain.Account{
		AccountID:      r.AccountID,
		UserID:         r.UserID,
		Name:           r.AccountName,
		Type:           domain.AccountType(r.AccountType),
		Currency:       r.Currency,
		InitialBalance: decimalFromRat(r.InitialBalance),
		CurrentBalance: decimalFromRat(r.CurrentBalance),
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedTS,
		UpdatedAt:      timeFromNull(r.UpdatedTS),
	}
}

func cardRowFromDomain(c *domain.CreditCard) *CardRow {
	return &CardRow{
		CardID:          c.CardID,
		UserID:          c.UserID,
		CardName:        c.Name,
		CardType:        c.CardType,
		CreditLimit:     ratFromDecimal(c.CreditLimit),
		CurrentBalance:  ratFromDecimal(c.CurrentBalance),
		DueDay:          int64(c.DueDay),
		ClosingDay:      int64(c.ClosingDay),
		BestPurchaseDay: nullInt(c.BestPurchaseDay),
		CreatedTS:       c.CreatedAt,
		UpdatedTS:       nullTimestamp(c.UpdatedAt),
	}
}

func (r *CardRow) toDomain() *domain.CreditCard {
	return &domain.CreditCard{
		CardID:          r.CardID,
		UserID:          r.UserID,
		Name:            r.CardName,
		CardType:        r.CardType,
		CreditLimit:     decimalFromRat(r.CreditLimit),
		CurrentBalance:  decimalFromRat(r.CurrentBalance),
		DueDay:          int(r.DueDay),
		ClosingDay:      int(r.ClosingDay),
		BestPurchaseDay: intPtr(r.BestPurchaseDay),
		CreatedAt:       r.CreatedTS,
		UpdatedAt:       timeFromNull(r.UpdatedTS),
	}
}

func transactionRowFromDomain(t *domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:    t.TransactionID,
		UserID:           t.UserID,
		Description:      t.Description,
		Amount:           ratFromDecimal(t.Amount),
		TransactionType:  string(t.Type),
		TransactionDate:  civil.DateOf(t.Date),
		AccountID:        nullString(t.AccountID),
		CardID:           nullString(t.CardID),
		Category:         nullString(t.CategoryID),
		ContactID:        nullString(t.ContactID),
		IsInstallment:    t.IsInstallment,
		InstallmentCount: nullIntZero(t.InstallmentCount),
		InstallmentNo:    nullIntZero(t.InstallmentNo),
		InvestmentAction: nullString(string(t.InvestmentAction)),
		TransferGroupID:  nullString(t.TransferGroupID),
		Notes:            nullString(t.Notes),
		CreatedTS:        t.CreatedAt,
		UpdatedTS:        nullTimestamp(t.UpdatedAt),
	}
}

func (r *TransactionRow) toDomain() *domain.Transaction {
	return &domain.Transaction{
		TransactionID:    r.TransactionID,
		UserID:           r.UserID,
		Description:      r.Description,
		Amount:           decimalFromRat(r.Amount),
		Type:             domain.TransactionType(r.TransactionType),
		Date:             r.TransactionDate.In(time.UTC),
		AccountID:        r.AccountID.StringVal,
		CardID:           r.CardID.StringVal,
		CategoryID:       r.Category.StringVal,
		ContactID:        r.ContactID.StringVal,
		IsInstallment:    r.IsInstallment,
		InstallmentCount: int(r.InstallmentCount.Int64),
		InstallmentNo:    int(r.InstallmentNo.Int64),
		InvestmentAction: domain.InvestmentAction(r.InvestmentAction.StringVal),
		TransferGroupID:  r.TransferGroupID.StringVal,
		Notes:            r.Notes.StringVal,
		CreatedAt:        r.CreatedTS,
		UpdatedAt:        timeFromNull(r.UpdatedTS),
	}
}

func invoiceRowFromDomain(inv *domain.Invoice) *InvoiceRow {
	return &InvoiceRow{
		InvoiceID:   inv.InvoiceID,
		CardID:      inv.CardID,
		UserID:      inv.UserID,
		Month:       int64(inv.Month),
		Year:        int64(inv.Year),
		TotalAmount: ratFromDecimal(inv.TotalAmount),
		PaidAmount:  ratFromDecimal(inv.PaidAmount),
		Status:      string(inv.Status),
		DueDate:     civil.DateOf(inv.DueDate),
		PaymentDate: nullDate(inv.PaymentDate),
		Notes:       nullString(inv.Notes),
		CreatedTS:   inv.CreatedAt,
		UpdatedTS:   nullTimestamp(inv.UpdatedAt),
	}
}

func (r *InvoiceRow) toDomain() *domain.Invoice {
	return &domain.Invoice{
		InvoiceID:   r.InvoiceID,
		CardID:      r.CardID,
		UserID:      r.UserID,
		Month:       time.Month(r.Month),
		Year:        int(r.Year),
		TotalAmount: decimalFromRat(r.TotalAmount),
		PaidAmount:  decimalFromRat(r.PaidAmount),
		Status:      domain.InvoiceStatus(r.Status),
		DueDate:     r.DueDate.In(time.UTC),
		PaymentDate: datePtr(r.PaymentDate),
		Notes:       r.Notes.StringVal,
		CreatedAt:   r.CreatedTS,
		UpdatedAt:   timeFromNull(r.UpdatedTS),
	}
}

func categoryRowFromDomain(c *domain.Category) *CategoryRow {
	return &CategoryRow{
		CategoryID:   c.CategoryID,
		UserID:       c.UserID,
		CategoryName: c.Name,
		Kind:         string(c.Kind),
		IsActive:     c.IsActive,
		CreatedTS:    c.CreatedAt,
	}
}

func (r *CategoryRow) toDomain() *domain.Category {
	return &domain.Category{
		CategoryID: r.CategoryID,
		UserID:     r.UserID,
		Name:       r.CategoryName,
		Kind:       domain.TransactionType(r.Kind),
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedTS,
	}
}

func contactRowFromDomain(c *domain.Contact) *ContactRow {
	return &ContactRow{
		ContactID:   c.ContactID,
		UserID:      c.UserID,
		ContactName: c.Name,
		Phone:       nullString(c.Phone),
		CreatedTS:   c.CreatedAt,
	}
}

func (r *ContactRow) toDomain() *domain.Contact {
	return &domain.Contact{
		ContactID: r.ContactID,
		UserID:    r.UserID,
		Name:      r.ContactName,
		Phone:     r.Phone.StringVal,
		CreatedAt: r.CreatedTS,
	}
}

func goalRowFromDomain(g *domain.Goal) *GoalRow {
	return &GoalRow{
		GoalID:        g.GoalID,
		UserID:        g.UserID,
		GoalName:      g.Name,
		TargetAmount:  ratFromDecimal(g.TargetAmount),
		CurrentAmount: ratFromDecimal(g.CurrentAmount),
		Deadline:      nullDate(g.Deadline),
		IsCompleted:   g.IsCompleted,
		CreatedTS:     g.CreatedAt,
		UpdatedTS:     nullTimestamp(g.UpdatedAt),
	}
}

func (r *GoalRow) toDomain() *domain.Goal {
	return &domain.Goal{
		GoalID:        r.GoalID,
		UserID:        r.UserID,
		Name:          r.GoalName,
		TargetAmount:  decimalFromRat(r.TargetAmount),
		CurrentAmount: decimalFromRat(r.CurrentAmount),
		Deadline:      datePtr(r.Deadline),
		IsCompleted:   r.IsCompleted,
		CreatedAt:     r.CreatedTS,
		UpdatedAt:     timeFromNull(r.UpdatedTS),
	}
}

func investmentRowFromDomain(i *domain.Investment) *InvestmentRow {
	return &InvestmentRow{
		InvestmentID: i.InvestmentID,
		UserID:       i.UserID,
		AccountID:    i.AccountID,
		AssetName:    i.Name,
		AssetType:    i.AssetType,
		Amount:       ratFromDecimal(i.Amount),
		PurchaseDate: civil.DateOf(i.PurchaseDate),
		CreatedTS:    i.CreatedAt,
	}
}

func (r *InvestmentRow) toDomain() *domain.Investment {
	return &domain.Investment{
		InvestmentID: r.InvestmentID,
		UserID:       r.UserID,
		AccountID:    r.AccountID,
		Name:         r.AssetName,
		AssetType:    r.AssetType,
		Amount:       decimalFromRat(r.Amount),
		PurchaseDate: r.PurchaseDate.In(time.UTC),
		CreatedAt:    r.CreatedTS,
	}
}
