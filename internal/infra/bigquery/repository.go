// Package bigquery implements the store repositories on a BigQuery dataset.
// All writes go through DML so touched rows stay updatable; streaming inserts
// would park them in the streaming buffer where UPDATE and DELETE fail.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/GabrielSantos777/planix/internal/store"
)

// Repository implements the store interfaces on a BigQuery dataset.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewRepository creates a repository with a shared BigQuery client. Call
// Close when done to release the connection.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// table returns the fully qualified, backtick-quoted table name.
func (r *Repository) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", r.projectID, r.datasetID, name)
}

// runDML executes a DML query and waits for the job to finish.
func (r *Repository) runDML(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

var _ store.AccountRepository = (*Repository)(nil)
var _ store.CardRepository = (*Repository)(nil)
var _ store.TransactionRepository = (*Repository)(nil)
var _ store.InvoiceRepository = (*Repository)(nil)
var _ store.CategoryRepository = (*Repository)(nil)
var _ store.ContactRepository = (*Repository)(nil)
var _ store.GoalRepository = (*Repository)(nil)
var _ store.InvestmentRepository = (*Repository)(nil)
