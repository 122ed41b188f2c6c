package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/store"
)

const transactionColumns = `
	transaction_id,
	user_id,
	description,
	amount,
	transaction_type,
	transaction_date,
	account_id,
	card_id,
	category_id,
	contact_id,
	is_installment,
	installment_count,
	installment_no,
	investment_action,
	transfer_group_id,
	notes,
	created_ts,
	updated_ts`

// GetTransaction retrieves a single transaction by id.
func (r *Repository) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE transaction_id = @transaction_id
		LIMIT 1
	`, transactionColumns, r.table("transactions")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: transactionID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: reading query: %w", err)
	}

	var row TransactionRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: iterating: %w", err)
	}

	return row.toDomain(), nil
}

func (r *Repository) listTransactions(ctx context.Context, op, where string, params []bigquery.QueryParameter) ([]*domain.Transaction, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY transaction_date DESC, created_ts DESC
	`, transactionColumns, r.table("transactions"), where))
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: reading query: %w", op, err)
	}

	var txs []*domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iterating: %w", op, err)
		}
		txs = append(txs, row.toDomain())
	}

	return txs, nil
}

// ListTransactionsByUser retrieves the full ledger of a user, newest first.
func (r *Repository) ListTransactionsByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	return r.listTransactions(ctx, "ListTransactionsByUser",
		"user_id = @user_id",
		[]bigquery.QueryParameter{{Name: "user_id", Value: userID}})
}

// ListTransactionsByAccount retrieves the transactions posted to an account.
func (r *Repository) ListTransactionsByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	return r.listTransactions(ctx, "ListTransactionsByAccount",
		"account_id = @account_id",
		[]bigquery.QueryParameter{{Name: "account_id", Value: accountID}})
}

// ListTransactionsByCard retrieves the transactions posted to a card.
func (r *Repository) ListTransactionsByCard(ctx context.Context, cardID string) ([]*domain.Transaction, error) {
	return r.listTransactions(ctx, "ListTransactionsByCard",
		"card_id = @card_id",
		[]bigquery.QueryParameter{{Name: "card_id", Value: cardID}})
}

// ListTransactionsByDateRange retrieves a user's transactions within the
// inclusive date range.
func (r *Repository) ListTransactionsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error) {
	return r.listTransactions(ctx, "ListTransactionsByDateRange",
		"user_id = @user_id AND transaction_date BETWEEN @start_date AND @end_date",
		[]bigquery.QueryParameter{
			{Name: "user_id", Value: userID},
			{Name: "start_date", Value: civil.DateOf(start)},
			{Name: "end_date", Value: civil.DateOf(end)},
		})
}

// InsertTransaction inserts a new ledger row.
func (r *Repository) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	row := transactionRowFromDomain(tx)
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now()
	}

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (
			@transaction_id, @user_id, @description,
			@amount, @transaction_type, @transaction_date,
			@account_id, @card_id, @category_id, @contact_id,
			@is_installment, @installment_count, @installment_no,
			@investment_action, @transfer_group_id,
			@notes, @created_ts, @updated_ts
		)
	`, r.table("transactions"), transactionColumns))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: row.TransactionID},
		{Name: "user_id", Value: row.UserID},
		{Name: "description", Value: row.Description},
		{Name: "amount", Value: row.Amount},
		{Name: "transaction_type", Value: row.TransactionType},
		{Name: "transaction_date", Value: row.TransactionDate},
		{Name: "account_id", Value: row.AccountID},
		{Name: "card_id", Value: row.CardID},
		{Name: "category_id", Value: row.Category},
		{Name: "contact_id", Value: row.ContactID},
		{Name: "is_installment", Value: row.IsInstallment},
		{Name: "installment_count", Value: row.InstallmentCount},
		{Name: "installment_no", Value: row.InstallmentNo},
		{Name: "investment_action", Value: row.InvestmentAction},
		{Name: "transfer_group_id", Value: row.TransferGroupID},
		{Name: "notes", Value: row.Notes},
		{Name: "created_ts", Value: row.CreatedTS},
		{Name: "updated_ts", Value: row.UpdatedTS},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}
	return nil
}

// UpdateTransaction rewrites the mutable columns of a ledger row.
func (r *Repository) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	row := transactionRowFromDomain(tx)

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET description = @description,
			amount = @amount,
			transaction_type = @transaction_type,
			transaction_date = @transaction_date,
			account_id = @account_id,
			card_id = @card_id,
			category_id = @category_id,
			contact_id = @contact_id,
			is_installment = @is_installment,
			installment_count = @installment_count,
			installment_no = @installment_no,
			investment_action = @investment_action,
			transfer_group_id = @transfer_group_id,
			notes = @notes,
			updated_ts = CURRENT_TIMESTAMP()
		WHERE transaction_id = @transaction_id
	`, r.table("transactions")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "description", Value: row.Description},
		{Name: "amount", Value: row.Amount},
		{Name: "transaction_type", Value: row.TransactionType},
		{Name: "transaction_date", Value: row.TransactionDate},
		{Name: "account_id", Value: row.AccountID},
		{Name: "card_id", Value: row.CardID},
		{Name: "category_id", Value: row.Category},
		{Name: "contact_id", Value: row.ContactID},
		{Name: "is_installment", Value: row.IsInstallment},
		{Name: "installment_count", Value: row.InstallmentCount},
		{Name: "installment_no", Value: row.InstallmentNo},
		{Name: "investment_action", Value: row.InvestmentAction},
		{Name: "transfer_group_id", Value: row.TransferGroupID},
		{Name: "notes", Value: row.Notes},
		{Name: "transaction_id", Value: row.TransactionID},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a ledger row.
func (r *Repository) DeleteTransaction(ctx context.Context, transactionID string) error {
	q := r.client.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE transaction_id = @transaction_id
	`, r.table("transactions")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: transactionID},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	return nil
}
