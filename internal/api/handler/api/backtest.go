// internal/api/handler/api/backtest.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/meanrev/pairscan/internal/api/response"
	"github.com/meanrev/pairscan/internal/backtest"
	"github.com/meanrev/pairscan/internal/core"
)

const backtestTimeout = 2 * time.Minute

// BacktestApp defines the interface needed from app.App.
type BacktestApp interface {
	Backtest(ctx context.Context, symbol1, symbol2 string, cfg backtest.Config) (*backtest.Result, error)
}

// BacktestRequest is the request body for running a backtest.
// Omitted parameters fall back to the server's configured defaults.
type BacktestRequest struct {
	Symbol1 string `json:"symbol1"`
	Symbol2 string `json:"symbol2"`

	EntryThreshold  *float64 `json:"entry_threshold,omitempty"`
	ExitThreshold   *float64 `json:"exit_threshold,omitempty"`
	StopLoss        *float64 `json:"stop_loss,omitempty"`
	UseDynamicHedge *bool    `json:"use_dynamic_hedge,omitempty"`
	Interval        string   `json:"interval,omitempty"`
}

// BacktestHandler handles backtest API requests. A single pair backtest
// is fast enough to run synchronously within the request.
type BacktestHandler struct {
	app      BacktestApp
	defaults backtest.Config
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(app BacktestApp, defaults backtest.Config) *BacktestHandler {
	return &BacktestHandler{app: app, defaults: defaults}
}

// Run executes a backtest and returns the result.
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	if req.Symbol1 == "" || req.Symbol2 == "" {
		err := core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("symbol1 and symbol2 are required"))
		response.Error(w, response.StatusFor(err), err)
		return
	}
	if req.Symbol1 == req.Symbol2 {
		err := core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cannot backtest %s against itself", req.Symbol1))
		response.Error(w, response.StatusFor(err), err)
		return
	}

	cfg := h.defaults
	if req.EntryThreshold != nil {
		cfg.EntryThreshold = *req.EntryThreshold
	}
	if req.ExitThreshold != nil {
		cfg.ExitThreshold = *req.ExitThreshold
	}
	if req.StopLoss != nil {
		cfg.StopLoss = *req.StopLoss
	}
	if req.UseDynamicHedge != nil {
		cfg.UseDynamicHedge = *req.UseDynamicHedge
	}
	if req.Interval != "" {
		cfg.Interval = core.Interval(req.Interval)
	}
	if err := cfg.Validate(); err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), backtestTimeout)
	defer cancel()

	result, err := h.app.Backtest(ctx, req.Symbol1, req.Symbol2, cfg)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}
