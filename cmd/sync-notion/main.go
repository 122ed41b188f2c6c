package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	infraBQ "github.com/GabrielSantos777/planix/internal/infra/bigquery"
	"github.com/GabrielSantos777/planix/internal/logger"
	"github.com/GabrielSantos777/planix/internal/notionsync"
)

func main() {
	log := logger.New()

	project := flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project for BigQuery (required)")
	dataset := flag.String("dataset", "planix", "BigQuery dataset name")
	userID := flag.String("user", os.Getenv("DEFAULT_USER_ID"), "User ID to sync (required)")
	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format (required for transaction sync)")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format (required for transaction sync)")
	notionToken := flag.String("notion-token", os.Getenv("NOTION_TOKEN"), "Notion API token (required)")
	txDBID := flag.String("transactions-db-id", "", "Notion database ID for the transaction mirror")
	invoiceDBID := flag.String("invoices-db-id", "", "Notion database ID for the invoice mirror")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	if *project == "" {
		log.Fatal().Msg("Error: --project is required")
	}
	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *txDBID == "" && *invoiceDBID == "" {
		log.Fatal().Msg("Error: at least one of --transactions-db-id or --invoices-db-id is required")
	}

	var startDate, endDate time.Time
	if *txDBID != "" {
		var err error
		startDate, err = time.Parse("2006-01-02", *startDateStr)
		if err != nil {
			log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
		}
		endDate, err = time.Parse("2006-01-02", *endDateStr)
		if err != nil {
			log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
		}
		if endDate.Before(startDate) {
			log.Fatal().
				Time("start_date", startDate).
				Time("end_date", endDate).
				Msg("Error: end-date must be after start-date")
		}
	}

	// Bound the whole run so the CLI doesn't hang on a stuck API call.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("user_id", *userID).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	repo, err := infraBQ.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	notionClient := notionsync.NewNotionClient(*notionToken)

	if *txDBID != "" {
		if err := notionsync.SyncTransactions(ctx, repo, repo, repo, repo, notionClient, *txDBID, *userID, startDate, endDate, *dryRun); err != nil {
			log.Fatal().Err(err).Msg("Transaction sync failed")
		}
	}

	if *invoiceDBID != "" {
		if err := notionsync.SyncInvoices(ctx, repo, repo, repo, notionClient, *invoiceDBID, *userID, *dryRun); err != nil {
			log.Fatal().Err(err).Msg("Invoice sync failed")
		}
	}

	fmt.Println("Sync completed successfully.")
}
