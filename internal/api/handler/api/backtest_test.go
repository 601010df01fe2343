// internal/api/handler/api/backtest_test.go
package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meanrev/pairscan/internal/backtest"
)

type fakeBacktestApp struct {
	lastCfg backtest.Config
	result  *backtest.Result
	err     error
}

func (f *fakeBacktestApp) Backtest(_ context.Context, _, _ string, cfg backtest.Config) (*backtest.Result, error) {
	f.lastCfg = cfg
	return f.result, f.err
}

func runBacktestRequest(app *fakeBacktestApp, body string) *httptest.ResponseRecorder {
	h := NewBacktestHandler(app, backtest.DefaultConfig())
	req := httptest.NewRequest("POST", "/api/backtest", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.Run(w, req)
	return w
}

func TestBacktestHandler_AppliesOverrides(t *testing.T) {
	app := &fakeBacktestApp{result: &backtest.Result{}}

	w := runBacktestRequest(app,
		`{"symbol1":"AAAUSDT","symbol2":"BBBUSDT","entry_threshold":1.5,"use_dynamic_hedge":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if app.lastCfg.EntryThreshold != 1.5 {
		t.Errorf("entry threshold = %f, want 1.5", app.lastCfg.EntryThreshold)
	}
	if !app.lastCfg.UseDynamicHedge {
		t.Error("expected dynamic hedge enabled")
	}
	// Untouched fields keep their defaults.
	if app.lastCfg.StopLoss != backtest.DefaultConfig().StopLoss {
		t.Errorf("stop loss = %f, want default", app.lastCfg.StopLoss)
	}
}

func TestBacktestHandler_RejectsInvalidOverrides(t *testing.T) {
	app := &fakeBacktestApp{result: &backtest.Result{}}

	// Entry above stop loss fails config validation.
	w := runBacktestRequest(app,
		`{"symbol1":"AAAUSDT","symbol2":"BBBUSDT","entry_threshold":5.0}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBacktestHandler_RejectsBadInterval(t *testing.T) {
	app := &fakeBacktestApp{result: &backtest.Result{}}

	w := runBacktestRequest(app,
		`{"symbol1":"AAAUSDT","symbol2":"BBBUSDT","interval":"7m"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBacktestHandler_MalformedBody(t *testing.T) {
	app := &fakeBacktestApp{result: &backtest.Result{}}

	w := runBacktestRequest(app, `{not json`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
