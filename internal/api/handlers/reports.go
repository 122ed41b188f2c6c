package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/GabrielSantos777/planix/internal/api/middleware"
	"github.com/GabrielSantos777/planix/internal/export"
	"github.com/GabrielSantos777/planix/internal/jobs"
)

// ReportsHandler serves POST /api/reports/export. Rendering is slow (PDF,
// spreadsheet) so the request only enqueues a job; clients poll /api/jobs
// for the artifact URI.
type ReportsHandler struct {
	publisher jobs.Publisher
	log       zerolog.Logger
}

func NewReportsHandler(publisher jobs.Publisher, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{publisher: publisher, log: log}
}

type exportReportRequest struct {
	Format    string `json:"format"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Export handles POST /api/reports/export.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req exportReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := export.ParseFormat(req.Format); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "format must be csv, xlsx or pdf")
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		middleware.WriteError(w, http.StatusBadRequest, "end_date must not be before start_date")
		return
	}

	job := &jobs.ExportReportJob{
		UserID:    userID,
		Format:    req.Format,
		StartDate: start,
		EndDate:   end,
	}
	if err := h.publisher.PublishExportReport(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("publish export job failed")
		middleware.WriteError(w, http.StatusServiceUnavailable, "failed to enqueue export job")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}
