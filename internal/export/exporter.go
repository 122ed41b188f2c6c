package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/GabrielSantos777/planix/internal/gcs"
	"github.com/GabrielSantos777/planix/internal/jobs"
	"github.com/GabrielSantos777/planix/internal/store"
)

// Exporter is the worker-side handler for report export jobs: it loads the
// period's transactions, renders the artifact and uploads it to the bucket.
type Exporter struct {
	txs        store.TransactionRepository
	accounts   store.AccountRepository
	cards      store.CardRepository
	categories store.CategoryRepository
	storage    gcs.StorageService
	jobStore   jobs.JobStore
	bucket     string
	log        zerolog.Logger
}

// NewExporter wires an export handler.
func NewExporter(txs store.TransactionRepository, accounts store.AccountRepository, cards store.CardRepository, categories store.CategoryRepository, storage gcs.StorageService, jobStore jobs.JobStore, bucket string, log zerolog.Logger) *Exporter {
	return &Exporter{
		txs:        txs,
		accounts:   accounts,
		cards:      cards,
		categories: categories,
		storage:    storage,
		jobStore:   jobStore,
		bucket:     bucket,
		log:        log,
	}
}

// Handle implements jobs.JobHandler for export jobs. A returned error puts
// the job back on the retry path.
func (e *Exporter) Handle(ctx context.Context, job jobs.Job) error {
	exportJob, ok := job.(*jobs.ExportReportJob)
	if !ok {
		return fmt.Errorf("Handle: unexpected job type %s", job.GetType())
	}

	e.log.Info().
		Str("job_id", exportJob.JobID).
		Str("user_id", exportJob.UserID).
		Str("format", exportJob.Format).
		Msg("Processing export job")

	format, err := ParseFormat(exportJob.Format)
	if err != nil {
		// A bad format never gets better; fail without retry noise.
		return fmt.Errorf("Handle: %w", err)
	}

	report, err := e.buildReport(ctx, exportJob.UserID, exportJob.StartDate, exportJob.EndDate)
	if err != nil {
		return fmt.Errorf("Handle: %w", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, format, report); err != nil {
		return fmt.Errorf("Handle: render: %w", err)
	}

	object := objectName(exportJob.UserID, exportJob.JobID, format)
	uri, err := e.storage.UploadBytes(ctx, e.bucket, object, format.ContentType(), buf.Bytes())
	if err != nil {
		return fmt.Errorf("Handle: upload: %w", err)
	}

	exportJob.ResultURI = uri

	e.log.Info().
		Str("job_id", exportJob.JobID).
		Str("uri", uri).
		Int("bytes", buf.Len()).
		Msg("Export artifact uploaded")

	return nil
}

func (e *Exporter) buildReport(ctx context.Context, userID string, start, end time.Time) (*Report, error) {
	txs, err := e.txs.ListTransactionsByDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("buildReport: transactions: %w", err)
	}

	names := Names{
		Accounts:   map[string]string{},
		Cards:      map[string]string{},
		Categories: map[string]string{},
	}

	accounts, err := e.accounts.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buildReport: accounts: %w", err)
	}
	for _, a := range accounts {
		names.Accounts[a.AccountID] = a.Name
	}

	cards, err := e.cards.ListCardsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buildReport: cards: %w", err)
	}
	for _, c := range cards {
		names.Cards[c.CardID] = c.Name
	}

	categories, err := e.categories.ListCategoriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buildReport: categories: %w", err)
	}
	for _, c := range categories {
		names.Categories[c.CategoryID] = c.Name
	}

	return BuildReport(userID, start, end, txs, names), nil
}

func objectName(userID, jobID string, format Format) string {
	return fmt.Sprintf("reports/%s/%s.%s", userID, jobID, format)
}
