package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/GabrielSantos777/planix/internal/export"
	infraBQ "github.com/GabrielSantos777/planix/internal/infra/bigquery"
	"github.com/GabrielSantos777/planix/internal/ledger"
	"github.com/GabrielSantos777/planix/internal/logger"
	"github.com/GabrielSantos777/planix/internal/store"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		runExport(log)
	case "reconcile":
		runReconcile(log)
	case "inspect":
		runInspect(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Planix CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  export     Render a period report to a local file")
	fmt.Println("  reconcile  Compare stored balances against transaction history")
	fmt.Println("  inspect    Show an account and its recent transactions")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func openRepository(ctx context.Context, log zerolog.Logger, project, dataset string) *infraBQ.Repository {
	if project == "" {
		log.Fatal().Msg("A GCP project is required (set -project or GOOGLE_CLOUD_PROJECT)")
	}
	repo, err := infraBQ.NewRepository(ctx, project, dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	return repo
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	project := fs.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project for BigQuery")
	dataset := fs.String("dataset", "planix", "BigQuery dataset name")
	userID := fs.String("user", os.Getenv("DEFAULT_USER_ID"), "User ID to report on")
	formatStr := fs.String("format", "csv", "Output format: csv, xlsx or pdf")
	startStr := fs.String("start", "", "Start date in YYYY-MM-DD format")
	endStr := fs.String("end", "", "End date in YYYY-MM-DD format")
	out := fs.String("out", "", "Output file (defaults to report.<format>)")
	fs.Parse(os.Args[2:])

	format, err := export.ParseFormat(*formatStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid format")
	}
	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", *endStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid end date, expected YYYY-MM-DD")
	}
	if *userID == "" {
		log.Fatal().Msg("A user ID is required (set -user or DEFAULT_USER_ID)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repo := openRepository(ctx, log, *project, *dataset)
	defer repo.Close()

	txs, err := repo.ListTransactionsByDateRange(ctx, *userID, start, end)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}
	names, err := loadNames(ctx, repo, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load display names")
	}

	report := export.BuildReport(*userID, start, end, txs, names)

	path := *out
	if path == "" {
		path = "report." + string(format)
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to create output file")
	}
	defer f.Close()

	if err := export.Render(f, format, report); err != nil {
		log.Fatal().Err(err).Msg("Failed to render report")
	}

	fmt.Printf("Wrote %d transactions to %s\n", len(report.Lines), path)
}

func loadNames(ctx context.Context, repo *infraBQ.Repository, userID string) (export.Names, error) {
	var names export.Names

	accounts, err := repo.ListAccountsByUser(ctx, userID)
	if err != nil {
		return names, err
	}
	names.Accounts = make(map[string]string, len(accounts))
	for _, a := range accounts {
		names.Accounts[a.AccountID] = a.Name
	}

	cards, err := repo.ListCardsByUser(ctx, userID)
	if err != nil {
		return names, err
	}
	names.Cards = make(map[string]string, len(cards))
	for _, c := range cards {
		names.Cards[c.CardID] = c.Name
	}

	categories, err := repo.ListCategoriesByUser(ctx, userID)
	if err != nil {
		return names, err
	}
	names.Categories = make(map[string]string, len(categories))
	for _, c := range categories {
		names.Categories[c.CategoryID] = c.Name
	}

	return names, nil
}

func runReconcile(log zerolog.Logger) {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	project := fs.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project for BigQuery")
	dataset := fs.String("dataset", "planix", "BigQuery dataset name")
	userID := fs.String("user", os.Getenv("DEFAULT_USER_ID"), "User ID to reconcile")
	fix := fs.Bool("fix", false, "Rewrite stored balances that drifted from history")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("A user ID is required (set -user or DEFAULT_USER_ID)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repo := openRepository(ctx, log, *project, *dataset)
	defer repo.Close()

	svc := ledger.NewService(repo, repo, repo, repo, log)

	accounts, err := repo.ListAccountsByUser(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list accounts")
	}

	drifted := 0
	for _, acc := range accounts {
		real, err := svc.RealBalance(ctx, acc.AccountID)
		if err != nil {
			log.Fatal().Err(err).Str("account_id", acc.AccountID).Msg("Failed to compute real balance")
		}
		if acc.CurrentBalance.Equal(real) {
			fmt.Printf("  [OK]    %-24s %s\n", acc.Name, acc.CurrentBalance.StringFixed(2))
			continue
		}
		drifted++
		fmt.Printf("  [DRIFT] %-24s stored %s, real %s\n", acc.Name, acc.CurrentBalance.StringFixed(2), real.StringFixed(2))
		if *fix {
			if err := repo.SetAccountBalance(ctx, acc.AccountID, real); err != nil {
				log.Fatal().Err(err).Str("account_id", acc.AccountID).Msg("Failed to fix balance")
			}
			fmt.Printf("  [FIXED] %s\n", acc.Name)
		}
	}

	if drifted == 0 {
		fmt.Println("All account balances match transaction history.")
	} else if !*fix {
		fmt.Printf("%d account(s) drifted. Re-run with -fix to rewrite stored balances.\n", drifted)
	}
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	project := fs.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project for BigQuery")
	dataset := fs.String("dataset", "planix", "BigQuery dataset name")
	accountID := fs.String("account", "", "Account ID to inspect (required)")
	limit := fs.Int("limit", 20, "Number of recent transactions to show")
	fs.Parse(os.Args[2:])

	if *accountID == "" {
		log.Fatal().Msg("An account ID is required (-account)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo := openRepository(ctx, log, *project, *dataset)
	defer repo.Close()

	acc, err := repo.GetAccount(ctx, *accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Fatal().Str("account_id", *accountID).Msg("Account not found")
		}
		log.Fatal().Err(err).Msg("Failed to get account")
	}

	fmt.Printf("Account:  %s (%s)\n", acc.Name, acc.Type)
	fmt.Printf("Currency: %s\n", acc.Currency)
	fmt.Printf("Balance:  %s (initial %s)\n", acc.CurrentBalance.StringFixed(2), acc.InitialBalance.StringFixed(2))
	fmt.Printf("Active:   %v\n\n", acc.IsActive)

	txs, err := repo.ListTransactionsByAccount(ctx, *accountID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}
	if len(txs) > *limit {
		txs = txs[:*limit]
	}

	fmt.Printf("Recent transactions (%d):\n", len(txs))
	for _, t := range txs {
		fmt.Printf("  %s  %10s  %-8s  %s\n", t.Date.Format("2006-01-02"), t.Amount.StringFixed(2), t.Type, t.Description)
	}
}
