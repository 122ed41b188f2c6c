package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/GabrielSantos777/planix/internal/domain"
)

// ListCategoriesByUser retrieves a user's active categories ordered by name.
func (r *Repository) ListCategoriesByUser(ctx context.Context, userID string) ([]*domain.Category, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT category_id, user_id, category_name, kind, is_active, created_ts
		FROM %s
		WHERE user_id = @user_id AND is_active = TRUE
		ORDER BY category_name
	`, r.table("categories")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategoriesByUser: reading query: %w", err)
	}

	var categories []*domain.Category
	for {
		var row CategoryRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategoriesByUser: iterating: %w", err)
		}
		categories = append(categories, row.toDomain())
	}

	return categories, nil
}

// InsertCategory inserts a new category row.
func (r *Repository) InsertCategory(ctx context.Context, cat *domain.Category) error {
	row := categoryRowFromDomain(cat)
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now()
	}

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (category_id, user_id, category_name, kind, is_active, created_ts)
		VALUES (@category_id, @user_id, @category_name, @kind, @is_active, @created_ts)
	`, r.table("categories")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category_id", Value: row.CategoryID},
		{Name: "user_id", Value: row.UserID},
		{Name: "category_name", Value: row.CategoryName},
		{Name: "kind", Value: row.Kind},
		{Name: "is_active", Value: row.IsActive},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertCategory: %w", err)
	}
	return nil
}

// ListContactsByUser retrieves a user's contacts ordered by name.
func (r *Repository) ListContactsByUser(ctx context.Context, userID string) ([]*domain.Contact, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT contact_id, user_id, contact_name, phone, created_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY contact_name
	`, r.table("contacts")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListContactsByUser: reading query: %w", err)
	}

	var contacts []*domain.Contact
	for {
		var row ContactRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListContactsByUser: iterating: %w", err)
		}
		contacts = append(contacts, row.toDomain())
	}

	return contacts, nil
}

// InsertContact inserts a new contact row.
func (r *Repository) InsertContact(ctx context.Context, c *domain.Contact) error {
	row := contactRowFromDomain(c)
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now()
	}

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (contact_id, user_id, contact_name, phone, created_ts)
		VALUES (@contact_id, @user_id, @contact_name, @phone, @created_ts)
	`, r.table("contacts")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "contact_id", Value: row.ContactID},
		{Name: "user_id", Value: row.UserID},
		{Name: "contact_name", Value: row.ContactName},
		{Name: "phone", Value: row.Phone},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertContact: %w", err)
	}
	return nil
}

// ListGoalsByUser retrieves a user's savings goals, newest first.
func (r *Repository) ListGoalsByUser(ctx context.Context, userID string) ([]*domain.Goal, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT goal_id, user_id, goal_name, target_amount, current_amount,
			deadline, is_completed, created_ts, updated_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, r.table("goals")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListGoalsByUser: reading query: %w", err)
	}

	var goals []*domain.Goal
	for {
		var row GoalRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListGoalsByUser: iterating: %w", err)
		}
		goals = append(goals, row.toDomain())
	}

	return goals, nil
}

// InsertGoal inserts a new goal row.
func (r *Repository) InsertGoal(ctx context.Context, g *domain.Goal) error {
	row := goalRowFromDomain(g)
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now()
	}

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (goal_id, user_id, goal_name, target_amount, current_amount,
			deadline, is_completed, created_ts, updated_ts)
		VALUES (@goal_id, @user_id, @goal_name, @target_amount, @current_amount,
			@deadline, @is_completed, @created_ts, @updated_ts)
	`, r.table("goals")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "goal_id", Value: row.GoalID},
		{Name: "user_id", Value: row.UserID},
		{Name: "goal_name", Value: row.GoalName},
		{Name: "target_amount", Value: row.TargetAmount},
		{Name: "current_amount", Value: row.CurrentAmount},
		{Name: "deadline", Value: row.Deadline},
		{Name: "is_completed", Value: row.IsCompleted},
		{Name: "created_ts", Value: row.CreatedTS},
		{Name: "updated_ts", Value: row.UpdatedTS},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertGoal: %w", err)
	}
	return nil
}

// UpdateGoal rewrites the mutable columns of a goal row.
func (r *Repository) UpdateGoal(ctx context.Context, g *domain.Goal) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET goal_name = @goal_name,
			target_amount = @target_amount,
			current_amount = @current_amount,
			deadline = @deadline,
			is_completed = @is_completed,
			updated_ts = CURRENT_TIMESTAMP()
		WHERE goal_id = @goal_id
	`, r.table("goals")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "goal_name", Value: g.Name},
		{Name: "target_amount", Value: ratFromDecimal(g.TargetAmount)},
		{Name: "current_amount", Value: ratFromDecimal(g.CurrentAmount)},
		{Name: "deadline", Value: nullDate(g.Deadline)},
		{Name: "is_completed", Value: g.IsCompleted},
		{Name: "goal_id", Value: g.GoalID},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdateGoal: %w", err)
	}
	return nil
}

// ListInvestmentsByUser retrieves a user's investment positions, newest first.
func (r *Repository) ListInvestmentsByUser(ctx context.Context, userID string) ([]*domain.Investment, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT investment_id, user_id, account_id, asset_name, asset_type,
			amount, purchase_date, created_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, r.table("investments")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListInvestmentsByUser: reading query: %w", err)
	}

	var investments []*domain.Investment
	for {
		var row InvestmentRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListInvestmentsByUser: iterating: %w", err)
		}
		investments = append(investments, row.toDomain())
	}

	return investments, nil
}

// InsertInvestment inserts a new investment row.
func (r *Repository) InsertInvestment(ctx context.Context, inv *domain.Investment) error {
	row := investmentRowFromDomain(inv)
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now()
	}

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (investment_id, user_id, account_id, asset_name, asset_type,
			amount, purchase_date, created_ts)
		VALUES (@investment_id, @user_id, @account_id, @asset_name, @asset_type,
			@amount, @purchase_date, @created_ts)
	`, r.table("investments")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "investment_id", Value: row.InvestmentID},
		{Name: "user_id", Value: row.UserID},
		{Name: "account_id", Value: row.AccountID},
		{Name: "asset_name", Value: row.AssetName},
		{Name: "asset_type", Value: row.AssetType},
		{Name: "amount", Value: row.Amount},
		{Name: "purchase_date", Value: row.PurchaseDate},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertInvestment: %w", err)
	}
	return nil
}
