package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/store"
)

const accountColumns = `
	account_id,
	user_id,
	account_name,
	account_type,
	currency,
	initial_balance,
	current_balance,
	is_active,
	created_ts,
	updated_ts`

// GetAccount retrieves a single account by id.
func (r *Repository) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE account_id = @account_id
		LIMIT 1
	`, accountColumns, r.table("accounts")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: reading query: %w", err)
	}

	var row AccountRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetAccount: iterating: %w", err)
	}

	return row.toDomain(), nil
}

// ListAccountsByUser retrieves all accounts owned by a user, newest first.
func (r *Repository) ListAccountsByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, accountColumns, r.table("accounts")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccountsByUser: reading query: %w", err)
	}

	var accounts []*domain.Account
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccountsByUser: iterating: %w", err)
		}
		accounts = append(accounts, row.toDomain())
	}

	return accounts, nil
}

// InsertAccount inserts a new account row.
func (r *Repository) InsertAccount(ctx context.Context, acc *domain.Account) error {
	row := accountRowFromDomain(acc)
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now()
	}

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (
			@account_id, @user_id, @account_name, @account_type, @currency,
			@initial_balance, @current_balance, @is_active,
			@created_ts, @updated_ts
		)
	`, r.table("accounts"), accountColumns))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: row.AccountID},
		{Name: "user_id", Value: row.UserID},
		{Name: "account_name", Value: row.AccountName},
		{Name: "account_type", Value: row.AccountType},
		{Name: "currency", Value: row.Currency},
		{Name: "initial_balance", Value: row.InitialBalance},
		{Name: "current_balance", Value: row.CurrentBalance},
		{Name: "is_active", Value: row.IsActive},
		{Name: "created_ts", Value: row.CreatedTS},
		{Name: "updated_ts", Value: row.UpdatedTS},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertAccount: %w", err)
	}
	return nil
}

// UpdateAccount rewrites the mutable columns of an account row.
func (r *Repository) UpdateAccount(ctx context.Context, acc *domain.Account) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET account_name = @account_name,
			account_type = @account_type,
			currency = @currency,
			initial_balance = @initial_balance,
			current_balance = @current_balance,
			is_active = @is_active,
			updated_ts = CURRENT_TIMESTAMP()
		WHERE account_id = @account_id
	`, r.table("accounts")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_name", Value: acc.Name},
		{Name: "account_type", Value: string(acc.Type)},
		{Name: "currency", Value: acc.Currency},
		{Name: "initial_balance", Value: ratFromDecimal(acc.InitialBalance)},
		{Name: "current_balance", Value: ratFromDecimal(acc.CurrentBalance)},
		{Name: "is_active", Value: acc.IsActive},
		{Name: "account_id", Value: acc.AccountID},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	return nil
}

// SetAccountBalance writes only the denormalized current balance.
func (r *Repository) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET current_balance = @current_balance,
			updated_ts = CURRENT_TIMESTAMP()
		WHERE account_id = @account_id
	`, r.table("accounts")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "current_balance", Value: ratFromDecimal(balance)},
		{Name: "account_id", Value: accountID},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("SetAccountBalance: %w", err)
	}
	return nil
}
