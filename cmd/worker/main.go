package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GabrielSantos777/planix/internal/export"
	"github.com/GabrielSantos777/planix/internal/gcsuploader"
	infraBQ "github.com/GabrielSantos777/planix/internal/infra/bigquery"
	"github.com/GabrielSantos777/planix/internal/jobs/inmemory"
	"github.com/GabrielSantos777/planix/internal/logger"
)

// Standalone export worker. The queue is in-memory today, so this binary is
// only useful once the queue is swapped for a shared broker (Cloud Tasks or
// Pub/Sub); until then the API server runs the same workers in-process.
func main() {
	var (
		project = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project for BigQuery")
		dataset = flag.String("dataset", "planix", "BigQuery dataset name")
		bucket  = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for exported reports (or set GCS_BUCKET env)")
		workers = flag.Int("workers", 2, "Number of export worker goroutines")
	)
	flag.Parse()

	log := logger.New()

	if *project == "" {
		log.Fatal().Msg("A GCP project is required (set -project or GOOGLE_CLOUD_PROJECT)")
	}
	if *bucket == "" {
		log.Fatal().Msg("A GCS bucket is required (set -bucket or GCS_BUCKET)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := infraBQ.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	exporter := export.NewExporter(repo, repo, repo, repo, gcsuploader.NewGCSStorageService(), jobStore, *bucket, log)

	if err := jobQueue.Start(ctx, exporter.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Int("workers", *workers).Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
