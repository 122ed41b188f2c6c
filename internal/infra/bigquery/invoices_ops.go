package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/GabrielSantos777/planix/internal/domain"
)

const invoiceColumns = `
	invoice_id,
	credit_card_id,
	user_id,
	month,
	year,
	total_amount,
	paid_amount,
	status,
	due_date,
	payment_date,
	notes,
	created_ts,
	updated_ts`

// ListInvoicesByCard retrieves the persisted invoice rows of a card, newest
// cycle first.
func (r *Repository) ListInvoicesByCard(ctx context.Context, cardID string) ([]*domain.Invoice, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE credit_card_id = @credit_card_id
		ORDER BY year DESC, month DESC
	`, invoiceColumns, r.table("credit_card_invoices")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "credit_card_id", Value: cardID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListInvoicesByCard: reading query: %w", err)
	}

	var invoices []*domain.Invoice
	for {
		var row InvoiceRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListInvoicesByCard: iterating: %w", err)
		}
		invoices = append(invoices, row.toDomain())
	}

	return invoices, nil
}

// UpsertInvoice writes an invoice row keyed on (credit_card_id, month, year).
// A MERGE keeps the key unique: an existing row is updated in place, keeping
// its invoice_id and created_ts.
func (r *Repository) UpsertInvoice(ctx context.Context, inv *domain.Invoice) error {
	if inv.InvoiceID == "" {
		inv.InvoiceID = uuid.NewString()
	}
	row := invoiceRowFromDomain(inv)
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now()
	}

	q := r.client.Query(fmt.Sprintf(`
		MERGE %s T
		USING (SELECT @credit_card_id AS credit_card_id, @month AS month, @year AS year) S
		ON T.credit_card_id = S.credit_card_id AND T.month = S.month AND T.year = S.year
		WHEN MATCHED THEN UPDATE SET
			total_amount = @total_amount,
			paid_amount = @paid_amount,
			status = @status,
			due_date = @due_date,
			payment_date = @payment_date,
			notes = @notes,
			updated_ts = CURRENT_TIMESTAMP()
		WHEN NOT MATCHED THEN INSERT (%s)
		VALUES (
			@invoice_id, @credit_card_id, @user_id, @month, @year,
			@total_amount, @paid_amount, @status,
			@due_date, @payment_date, @notes,
			@created_ts, NULL
		)
	`, r.table("credit_card_invoices"), invoiceColumns))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "invoice_id", Value: row.InvoiceID},
		{Name: "credit_card_id", Value: row.CardID},
		{Name: "user_id", Value: row.UserID},
		{Name: "month", Value: row.Month},
		{Name: "year", Value: row.Year},
		{Name: "total_amount", Value: row.TotalAmount},
		{Name: "paid_amount", Value: row.PaidAmount},
		{Name: "status", Value: row.Status},
		{Name: "due_date", Value: row.DueDate},
		{Name: "payment_date", Value: row.PaymentDate},
		{Name: "notes", Value: row.Notes},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpsertInvoice: %w", err)
	}
	return nil
}
