// internal/api/handler/api/jobs.go
package api

import (
	"net/http"
	"strings"

	"github.com/meanrev/pairscan/internal/api/job"
	"github.com/meanrev/pairscan/internal/api/response"
)

// JobsHandler serves job status lookups.
type JobsHandler struct {
	jobStore *job.Store
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(jobStore *job.Store) *JobsHandler {
	return &JobsHandler{jobStore: jobStore}
}

// List returns all live jobs, newest first.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.jobStore.List())
}

// Get returns the status of a single job. The job ID is the final path
// segment: GET /api/jobs/{id}.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	j, err := h.jobStore.Get(id)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, j)
}
