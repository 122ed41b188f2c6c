package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GabrielSantos777/planix/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.ExportReportJob {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, _ := store.GetJob(context.Background(), jobID)
	t.Fatalf("job never reached %s, last state: %+v", want, job)
	return nil
}

func TestQueueProcessesJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(4, 2, store)
	defer q.Close()

	var handled atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		handled.Add(1)
		return nil
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ExportReportJob{UserID: "user-1", Format: "csv"}
	if err := q.PublishExportReport(context.Background(), job); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("expected the queue to assign a job id")
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Error("expected start and completion timestamps")
	}
	if got := handled.Load(); got != 1 {
		t.Errorf("handler ran %d times, want 1", got)
	}
}

func TestQueueRetriesFailedJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(4, 1, store)
	defer q.Close()

	var attempts atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient failure")
		}
		return nil
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ExportReportJob{UserID: "user-1", Format: "csv", MaxRetries: 2}
	if err := q.PublishExportReport(context.Background(), job); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.RetryCount != 1 {
		t.Errorf("retry count = %d, want 1", done.RetryCount)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("handler ran %d times, want 2", got)
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	q := NewQueue(1, 1, NewStore())
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	err := q.PublishExportReport(context.Background(), &jobs.ExportReportJob{UserID: "user-1"})
	if err == nil {
		t.Fatal("expected publish on a closed queue to fail")
	}
}

func TestStoreListJobsFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Now()
	for i, spec := range []struct {
		id     string
		user   string
		status jobs.JobStatus
	}{
		{"j-1", "user-1", jobs.JobStatusCompleted},
		{"j-2", "user-1", jobs.JobStatusPending},
		{"j-3", "user-2", jobs.JobStatusCompleted},
	} {
		err := store.SaveJob(ctx, &jobs.ExportReportJob{
			JobID:     spec.id,
			UserID:    spec.user,
			Status:    spec.status,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("SaveJob: %v", err)
		}
	}

	got, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "user-1"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d jobs, want 2", len(got))
	}
	// Newest first.
	if got[0].JobID != "j-2" || got[1].JobID != "j-1" {
		t.Errorf("order = %s, %s", got[0].JobID, got[1].JobID)
	}

	got, err = store.ListJobs(ctx, jobs.JobFilter{UserID: "user-1", Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 1 || got[0].JobID != "j-1" {
		t.Errorf("filtered jobs = %+v", got)
	}
}
