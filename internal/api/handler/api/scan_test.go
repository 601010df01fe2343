// internal/api/handler/api/scan_test.go
package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meanrev/pairscan/internal/api/job"
	"github.com/meanrev/pairscan/internal/metrics"
	"github.com/meanrev/pairscan/internal/scanner"
)

// blockingScanApp holds the scan open until released, so tests can observe
// the in-flight state.
type blockingScanApp struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingScanApp) Scan(_ context.Context, _ []string, _ scanner.Progress) (*scanner.ScanResult, error) {
	close(b.started)
	<-b.release
	return &scanner.ScanResult{}, nil
}

func jobsActiveGauge(t *testing.T, reg *metrics.Registry, jobType string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "pairscan_jobs_active" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "type" && l.GetValue() == jobType {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func TestScanHandler_TracksActiveJobsGauge(t *testing.T) {
	app := &blockingScanApp{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	reg := metrics.NewRegistry()
	h := NewScanHandler(job.NewStore(10, time.Hour), app, nil, reg)

	req := httptest.NewRequest("POST", "/api/scan",
		bytes.NewBufferString(`{"symbols":["AAAUSDT","BBBUSDT"]}`))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	select {
	case <-app.started:
	case <-time.After(5 * time.Second):
		t.Fatal("scan job never started")
	}

	if got := jobsActiveGauge(t, reg, "scan"); got != 1 {
		t.Errorf("jobs_active while scanning = %f, want 1", got)
	}

	close(app.release)

	deadline := time.Now().Add(5 * time.Second)
	for jobsActiveGauge(t, reg, "scan") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("jobs_active never returned to 0")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
