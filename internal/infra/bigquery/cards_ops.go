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

const cardColumns = `
	card_id,
	user_id,
	card_name,
	card_type,
	credit_limit,
	current_balance,
	due_day,
	closing_day,
	best_purchase_day,
	created_ts,
	updated_ts`

// GetCard retrieves a single credit card by id.
func (r *Repository) GetCard(ctx context.Context, cardID string) (*domain.CreditCard, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE card_id = @card_id
		LIMIT 1
	`, cardColumns, r.table("credit_cards")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "card_id", Value: cardID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetCard: reading query: %w", err)
	}

	var row CardRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetCard: iterating: %w", err)
	}

	return row.toDomain(), nil
}

// ListCardsByUser retrieves all credit cards owned by a user, newest first.
func (r *Repository) ListCardsByUser(ctx context.Context, userID string) ([]*domain.CreditCard, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, cardColumns, r.table("credit_cards")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCardsByUser: reading query: %w", err)
	}

	var cards []*domain.CreditCard
	for {
		var row CardRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCardsByUser: iterating: %w", err)
		}
		cards = append(cards, row.toDomain())
	}

	return cards, nil
}

// InsertCard inserts a new credit card row.
func (r *Repository) InsertCard(ctx context.Context, card *domain.CreditCard) error {
	row := cardRowFromDomain(card)
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now()
	}

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (
			@card_id, @user_id, @card_name, @card_type,
			@credit_limit, @current_balance,
			@due_day, @closing_day, @best_purchase_day,
			@created_ts, @updated_ts
		)
	`, r.table("credit_cards"), cardColumns))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "card_id", Value: row.CardID},
		{Name: "user_id", Value: row.UserID},
		{Name: "card_name", Value: row.CardName},
		{Name: "card_type", Value: row.CardType},
		{Name: "credit_limit", Value: row.CreditLimit},
		{Name: "current_balance", Value: row.CurrentBalance},
		{Name: "due_day", Value: row.DueDay},
		{Name: "closing_day", Value: row.ClosingDay},
		{Name: "best_purchase_day", Value: row.BestPurchaseDay},
		{Name: "created_ts", Value: row.CreatedTS},
		{Name: "updated_ts", Value: row.UpdatedTS},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertCard: %w", err)
	}
	return nil
}

// UpdateCard rewrites the mutable columns of a credit card row.
func (r *Repository) UpdateCard(ctx context.Context, card *domain.CreditCard) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET card_name = @card_name,
			card_type = @card_type,
			credit_limit = @credit_limit,
			current_balance = @current_balance,
			due_day = @due_day,
			closing_day = @closing_day,
			best_purchase_day = @best_purchase_day,
			updated_ts = CURRENT_TIMESTAMP()
		WHERE card_id = @card_id
	`, r.table("credit_cards")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "card_name", Value: card.Name},
		{Name: "card_type", Value: card.CardType},
		{Name: "credit_limit", Value: ratFromDecimal(card.CreditLimit)},
		{Name: "current_balance", Value: ratFromDecimal(card.CurrentBalance)},
		{Name: "due_day", Value: int64(card.DueDay)},
		{Name: "closing_day", Value: int64(card.ClosingDay)},
		{Name: "best_purchase_day", Value: nullInt(card.BestPurchaseDay)},
		{Name: "card_id", Value: card.CardID},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdateCard: %w", err)
	}
	return nil
}

// SetCardBalance writes only the denormalized current balance.
func (r *Repository) SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET current_balance = @current_balance,
			updated_ts = CURRENT_TIMESTAMP()
		WHERE card_id = @card_id
	`, r.table("credit_cards")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "current_balance", Value: ratFromDecimal(balance)},
		{Name: "card_id", Value: cardID},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("SetCardBalance: %w", err)
	}
	return nil
}
