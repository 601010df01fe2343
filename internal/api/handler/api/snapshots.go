// internal/api/handler/api/snapshots.go
package api

import (
	"fmt"
	"net/http"

	"github.com/meanrev/pairscan/internal/api/response"
	"github.com/meanrev/pairscan/internal/core"
	"github.com/meanrev/pairscan/internal/storage/archive"
)

// SnapshotsHandler lists archived scan and backtest snapshots.
type SnapshotsHandler struct {
	snapshots *archive.Snapshots
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(snapshots *archive.Snapshots) *SnapshotsHandler {
	return &SnapshotsHandler{snapshots: snapshots}
}

// List returns archive keys for a snapshot kind:
// GET /api/snapshots?kind=scans (default) or kind=backtests.
func (h *SnapshotsHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = archive.KindScan
	}
	if kind != archive.KindScan && kind != archive.KindBacktest {
		err := core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown snapshot kind %q", kind))
		response.Error(w, response.StatusFor(err), err)
		return
	}

	keys, err := h.snapshots.List(r.Context(), kind)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"kind": kind,
		"keys": keys,
	})
}
