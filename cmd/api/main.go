package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GabrielSantos777/planix/internal/api/handlers"
	"github.com/GabrielSantos777/planix/internal/api/middleware"
	"github.com/GabrielSantos777/planix/internal/chat"
	"github.com/GabrielSantos777/planix/internal/export"
	"github.com/GabrielSantos777/planix/internal/gcsuploader"
	infraBQ "github.com/GabrielSantos777/planix/internal/infra/bigquery"
	"github.com/GabrielSantos777/planix/internal/infra/memory"
	"github.com/GabrielSantos777/planix/internal/jobs/inmemory"
	"github.com/GabrielSantos777/planix/internal/ledger"
	"github.com/GabrielSantos777/planix/internal/logger"
	"github.com/GabrielSantos777/planix/internal/store"
)

func main() {
	var (
		port        = flag.String("port", "8080", "HTTP server port")
		project     = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project for BigQuery (empty runs the in-memory store)")
		dataset     = flag.String("dataset", "planix", "BigQuery dataset name")
		bucket      = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for exported reports (or set GCS_BUCKET env)")
		workers     = flag.Int("workers", 2, "Number of export worker goroutines")
		defaultUser = flag.String("user", os.Getenv("DEFAULT_USER_ID"), "Default user ID for unauthenticated requests")

		verifyToken = flag.String("verify-token", os.Getenv("WHATSAPP_VERIFY_TOKEN"), "WhatsApp webhook verification token")
		waToken     = flag.String("whatsapp-token", os.Getenv("WHATSAPP_TOKEN"), "WhatsApp Cloud API bearer token")
		waPhoneID   = flag.String("whatsapp-phone-id", os.Getenv("WHATSAPP_PHONE_NUMBER_ID"), "WhatsApp Cloud API phone number ID")
		geminiModel = flag.String("gemini-model", "gemini-2.0-flash", "Gemini model for message extraction")
	)
	flag.Parse()

	log := logger.New()

	if *bucket == "" {
		log.Warn().Msg("No GCS bucket configured - report exports will fail to upload")
	}
	if *defaultUser == "" {
		*defaultUser = "default"
	}

	ctx := context.Background()

	// Repository wiring: BigQuery when a project is configured, otherwise
	// the in-memory store for local development.
	var (
		accounts    store.AccountRepository
		cards       store.CardRepository
		txs         store.TransactionRepository
		invoices    store.InvoiceRepository
		categories  store.CategoryRepository
		contacts    store.ContactRepository
		goals       store.GoalRepository
		investments store.InvestmentRepository
	)
	if *project != "" {
		repo, err := infraBQ.NewRepository(ctx, *project, *dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer repo.Close()
		accounts, cards, txs, invoices = repo, repo, repo, repo
		categories, contacts, goals, investments = repo, repo, repo, repo
		log.Info().Str("project", *project).Str("dataset", *dataset).Msg("Using BigQuery store")
	} else {
		st := memory.NewStore()
		accounts, cards, txs, invoices = st, st, st, st
		categories, contacts, goals, investments = st, st, st, st
		log.Warn().Msg("No GCP project configured - using in-memory store, data is not persisted")
	}

	svc := ledger.NewService(accounts, cards, txs, invoices, log)
	storage := gcsuploader.NewGCSStorageService()

	// Job infrastructure: exports render in the background and upload to GCS.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	exporter := export.NewExporter(txs, accounts, cards, categories, storage, jobStore, *bucket, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Int("workers", *workers).Msg("Starting export workers")
		if err := jobQueue.Start(workerCtx, exporter.Handle); err != nil {
			log.Error().Err(err).Msg("Export workers stopped with error")
		}
	}()

	// Handlers
	accountsHandler := handlers.NewAccountsHandler(accounts, svc, log)
	cardsHandler := handlers.NewCardsHandler(cards, svc, log)
	transactionsHandler := handlers.NewTransactionsHandler(svc, txs, log)
	transfersHandler := handlers.NewTransfersHandler(svc, log)
	reportsHandler := handlers.NewReportsHandler(jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	entitiesHandler := handlers.NewEntitiesHandler(categories, contacts, goals, investments, log)
	importsHandler := handlers.NewImportsHandler(storage, log)

	sessions := chat.NewMemorySessionStore(chat.DefaultSessionTTL)
	defer sessions.Close()
	chatHandler := chat.NewHandler(
		svc, accounts, cards,
		chat.NewGeminiExtractor(*geminiModel),
		chat.NewGraphSender(*waToken, *waPhoneID, ""),
		sessions,
		*verifyToken, *defaultUser, log,
	)

	mux := http.NewServeMux()

	// Accounts endpoints
	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			accountsHandler.List(w, r)
		case http.MethodPost:
			accountsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/accounts/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/accounts/")
		if rest == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Account ID is required")
			return
		}
		if accountID, ok := strings.CutSuffix(rest, "/balance"); ok {
			if r.Method == http.MethodGet {
				accountsHandler.Balance(w, r, accountID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		switch r.Method {
		case http.MethodGet:
			accountsHandler.Get(w, r, rest)
		case http.MethodPut:
			accountsHandler.Update(w, r, rest)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Cards endpoints
	mux.HandleFunc("/api/cards", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cardsHandler.List(w, r)
		case http.MethodPost:
			cardsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/cards/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/cards/")
		if rest == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Card ID is required")
			return
		}
		if cardID, ok := strings.CutSuffix(rest, "/invoices/pay"); ok {
			if r.Method == http.MethodPost {
				cardsHandler.PayInvoice(w, r, cardID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		if cardID, ok := strings.CutSuffix(rest, "/invoices"); ok {
			if r.Method == http.MethodGet {
				cardsHandler.Invoices(w, r, cardID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		switch r.Method {
		case http.MethodGet:
			cardsHandler.Get(w, r, rest)
		case http.MethodPut:
			cardsHandler.Update(w, r, rest)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		transactionID := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if transactionID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			transactionsHandler.Update(w, r, transactionID)
		case http.MethodDelete:
			transactionsHandler.Delete(w, r, transactionID)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Transfers endpoint
	mux.HandleFunc("/api/transfers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transfersHandler.Create(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Reports endpoint
	mux.HandleFunc("/api/reports/export", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reportsHandler.Export(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		if r.Method == http.MethodGet {
			jobsHandler.Get(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Supporting collections
	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			entitiesHandler.ListCategories(w, r)
		case http.MethodPost:
			entitiesHandler.CreateCategory(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/contacts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			entitiesHandler.ListContacts(w, r)
		case http.MethodPost:
			entitiesHandler.CreateContact(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/goals", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			entitiesHandler.ListGoals(w, r)
		case http.MethodPost:
			entitiesHandler.CreateGoal(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/investments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			entitiesHandler.ListInvestments(w, r)
		case http.MethodPost:
			entitiesHandler.CreateInvestment(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Imports endpoint
	mux.HandleFunc("/api/imports/csv", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			importsHandler.ImportCSV(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// WhatsApp webhook. Mounted outside /api: the platform authenticates via
	// the verify token, not the Auth middleware.
	mux.Handle("/webhook", chatHandler)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(*defaultUser)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
