package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/GabrielSantos777/planix/internal/billing"
	"github.com/GabrielSantos777/planix/internal/logger"
	"github.com/GabrielSantos777/planix/internal/store"
)

const (
	// BatchSize defines the number of transactions to process in a single batch.
	BatchSize = 100
)

// SyncTransactions mirrors a user's ledger for the given date range into a
// Notion database. The Transaction ID title property keys the mirror:
//  1. Pages whose transaction no longer exists are archived.
//  2. Transactions without a page get one created.
//  3. Transactions that already have a page are skipped; the ledger is the
//     source of truth and edits re-enter through a delete/create pair.
func SyncTransactions(ctx context.Context, txRepo store.TransactionRepository, accounts store.AccountRepository, cards store.CardRepository, categories store.CategoryRepository, notionClient NotionService, notionDBID, userID string, startDate, endDate time.Time, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Time("start_date", startDate).
		Time("end_date", endDate).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	transactions, err := txRepo.ListTransactionsByDateRange(ctx, userID, startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to query transactions: %w", err)
	}

	log.Info().Int("transaction_count", len(transactions)).Msg("Retrieved transactions from the ledger")

	names, err := displayNames(ctx, accounts, cards, categories, userID)
	if err != nil {
		return err
	}

	validTransactionIDs := make(map[string]bool)
	for _, tx := range transactions {
		validTransactionIDs[tx.TransactionID] = true
	}

	log.Info().Msg("Querying existing transactions from Notion")
	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	existingTransactionIDs := make(map[string]bool)
	for _, page := range notionPages {
		txID := extractPageTitle(page)
		if txID != "" {
			existingTransactionIDs[txID] = true
		}
	}

	deleted := deleteStalePages(ctx, notionClient, notionPages, validTransactionIDs, dryRun, log)

	var created, skipped int
	for i := 0; i < len(transactions); i += BatchSize {
		end := i + BatchSize
		if end > len(transactions) {
			end = len(transactions)
		}

		for _, tx := range transactions[i:end] {
			if existingTransactionIDs[tx.TransactionID] {
				skipped++
				continue
			}

			if dryRun {
				log.Info().
					Str("transaction_id", tx.TransactionID).
					Msg("[DRY RUN] Would create new Notion page")
				created++
				continue
			}

			props := TransactionToNotionProperties(tx, names)
			page, err := notionClient.CreatePage(ctx, notionDBID, props)
			if err != nil {
				log.Warn().
					Err(err).
					Str("transaction_id", tx.TransactionID).
					Msg("Failed to create Notion page")
				continue
			}
			log.Info().
				Str("transaction_id", tx.TransactionID).
				Str("page_id", string(page.ID)).
				Msg("Created Notion page")
			created++
		}
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(transactions)).
		Msg("Transaction sync completed")

	return nil
}

// SyncInvoices mirrors the computed billing cycles of every card of a user
// into a Notion database, keyed by the cycle title ("<card> <year>-<month>").
// Existing cycle pages are updated in place so status changes propagate.
func SyncInvoices(ctx context.Context, txRepo store.TransactionRepository, cards store.CardRepository, invoices store.InvoiceRepository, notionClient NotionService, notionDBID, userID string, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Bool("dry_run", dryRun).
		Msg("Starting invoice sync to Notion")

	userCards, err := cards.ListCardsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to query cards: %w", err)
	}

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	pagesByCycle := make(map[string]notionapi.Page)
	for _, page := range notionPages {
		if key := extractPageTitle(page); key != "" {
			pagesByCycle[key] = page
		}
	}

	var created, updated int
	for _, card := range userCards {
		txs, err := txRepo.ListTransactionsByCard(ctx, card.CardID)
		if err != nil {
			return fmt.Errorf("failed to query transactions for card %s: %w", card.CardID, err)
		}
		persisted, err := invoices.ListInvoicesByCard(ctx, card.CardID)
		if err != nil {
			return fmt.Errorf("failed to query invoices for card %s: %w", card.CardID, err)
		}

		cycles := billing.Invoices(card, txs, persisted, billing.Filter{})
		for _, cycle := range cycles {
			key := invoiceCycleKey(card.Name, cycle)
			props := InvoiceToNotionProperties(card.Name, cycle)

			if page, ok := pagesByCycle[key]; ok {
				if dryRun {
					log.Info().Str("cycle", key).Msg("[DRY RUN] Would update Notion page")
					updated++
					continue
				}
				if _, err := notionClient.UpdatePage(ctx, string(page.ID), props); err != nil {
					log.Warn().Err(err).Str("cycle", key).Msg("Failed to update Notion page")
					continue
				}
				updated++
				continue
			}

			if dryRun {
				log.Info().Str("cycle", key).Msg("[DRY RUN] Would create Notion page")
				created++
				continue
			}
			if _, err := notionClient.CreatePage(ctx, notionDBID, props); err != nil {
				log.Warn().Err(err).Str("cycle", key).Msg("Failed to create Notion page")
				continue
			}
			created++
		}
	}

	log.Info().
		Int("created", created).
		Int("updated", updated).
		Msg("Invoice sync completed")

	return nil
}

func displayNames(ctx context.Context, accounts store.AccountRepository, cards store.CardRepository, categories store.CategoryRepository, userID string) (map[string]string, error) {
	names := make(map[string]string)

	accList, err := accounts.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	for _, a := range accList {
		names[a.AccountID] = a.Name
	}

	cardList, err := cards.ListCardsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	for _, c := range cardList {
		names[c.CardID] = c.Name
	}

	catList, err := categories.ListCategoriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	for _, c := range catList {
		names[c.CategoryID] = c.Name
	}

	return names, nil
}

func deleteStalePages(ctx context.Context, notionClient NotionService, pages []notionapi.Page, valid map[string]bool, dryRun bool, log zerolog.Logger) int {
	var deleted int
	for _, page := range pages {
		key := extractPageTitle(page)
		if key != "" && valid[key] {
			continue
		}
		if dryRun {
			log.Info().
				Str("key", key).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would delete stale Notion page")
			deleted++
			continue
		}
		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("key", key).
				Str("page_id", string(page.ID)).
				Msg("Failed to delete stale Notion page")
			continue
		}
		deleted++
	}
	return deleted
}

// queryAllNotionPages pages through a Notion database and returns every page.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
