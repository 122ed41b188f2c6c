package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/GabrielSantos777/planix/internal/api/middleware"
	"github.com/GabrielSantos777/planix/internal/jobs"
	"github.com/GabrielSantos777/planix/internal/store"
)

// JobsHandler serves /api/jobs for polling export progress.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// List handles GET /api/jobs. Optional query params: status, limit, offset.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	q := r.URL.Query()

	filter := jobs.JobFilter{UserID: userID}
	if s := q.Get("status"); s != "" {
		filter.Status = jobs.JobStatus(s)
	}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	if o := q.Get("offset"); o != "" {
		offset, err := strconv.Atoi(o)
		if err != nil || offset < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = offset
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list jobs failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, list)
}

// Get handles GET /api/jobs/{id}.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("get job failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job.UserID != middleware.UserID(r.Context()) {
		middleware.WriteError(w, http.StatusNotFound, "job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}
