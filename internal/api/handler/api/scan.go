// internal/api/handler/api/scan.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/meanrev/pairscan/internal/api/job"
	"github.com/meanrev/pairscan/internal/api/response"
	"github.com/meanrev/pairscan/internal/core"
	"github.com/meanrev/pairscan/internal/metrics"
	"github.com/meanrev/pairscan/internal/scanner"
)

const scanTimeout = 10 * time.Minute

// ScanApp defines the interface needed from app.App.
type ScanApp interface {
	Scan(ctx context.Context, symbols []string, progress scanner.Progress) (*scanner.ScanResult, error)
}

// ScanRequest is the request body for starting a scan.
type ScanRequest struct {
	Symbols []string `json:"symbols,omitempty"`
}

// ScanHandler handles pair scan API requests. Scans run as async jobs
// because a full universe scan can take minutes.
type ScanHandler struct {
	jobStore *job.Store
	app      ScanApp
	universe []string // default symbols when the request names none
	metrics  *metrics.Registry
	active   atomic.Int64
}

// NewScanHandler creates a new scan handler. metricsReg may be nil.
func NewScanHandler(jobStore *job.Store, app ScanApp, universe []string, metricsReg *metrics.Registry) *ScanHandler {
	return &ScanHandler{
		jobStore: jobStore,
		app:      app,
		universe: universe,
		metrics:  metricsReg,
	}
}

// trackActive adjusts the running-scan count and mirrors it to the
// jobs-active gauge.
func (h *ScanHandler) trackActive(delta int64) {
	n := h.active.Add(delta)
	if h.metrics != nil {
		h.metrics.SetJobsActive("scan", int(n))
	}
}

// Create starts a new scan job.
func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrConfigInvalid, err))
			return
		}
	}

	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = h.universe
	}
	if len(symbols) < 2 {
		err := core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scan needs at least 2 symbols, got %d", len(symbols)))
		response.Error(w, response.StatusFor(err), err)
		return
	}

	j := h.jobStore.Create("scan")
	jobID := j.ID
	status := j.Status

	go h.runScan(jobID, symbols)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id":  jobID,
		"status":  status,
		"symbols": len(symbols),
	})
}

// runScan executes the scan and updates job status.
func (h *ScanHandler) runScan(jobID string, symbols []string) {
	h.trackActive(1)
	defer h.trackActive(-1)

	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	result, err := h.app.Scan(ctx, symbols, func(done, total int) {
		if total == 0 {
			return
		}
		h.jobStore.Update(jobID, func(j *job.Job) {
			j.Progress = done * 100 / total
		})
	})

	if err != nil {
		var coreErr *core.Error
		if !errors.As(err, &coreErr) {
			coreErr = core.WrapError(core.ErrProviderFailed, err)
		}
		h.jobStore.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = coreErr
		})
		return
	}

	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Progress = 100
		j.Result = result
	})
}
