// internal/storage/archive/snapshots.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meanrev/pairscan/internal/core"
)

// Snapshot kinds partition the archive key space.
const (
	KindScan     = "scans"
	KindBacktest = "backtests"
)

// Snapshots writes result documents to a Storage backend under
// date-partitioned keys like scans/2025/06/01/scan_120000.json.
type Snapshots struct {
	storage Storage
	now     func() time.Time
}

// NewSnapshots creates a snapshot writer over the given backend.
func NewSnapshots(storage Storage) *Snapshots {
	return &Snapshots{storage: storage, now: time.Now}
}

// Save marshals v to indented JSON and stores it. Returns the archive key.
func (s *Snapshots) Save(ctx context.Context, kind string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%s/%s/%s_%s.json",
		kind, now.Format("2006/01/02"), kindSingular(kind), now.Format("150405"))

	if err := s.storage.Write(ctx, key, data); err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	return key, nil
}

// Load reads the snapshot at key into v.
func (s *Snapshots) Load(ctx context.Context, key string, v any) error {
	data, err := s.storage.Read(ctx, key)
	if err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	return nil
}

// List returns the stored keys of the given kind, newest last (keys are
// date-partitioned, so lexical order is chronological).
func (s *Snapshots) List(ctx context.Context, kind string) ([]string, error) {
	keys, err := s.storage.List(ctx, kind)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return keys, nil
}

func kindSingular(kind string) string {
	switch kind {
	case KindScan:
		return "scan"
	case KindBacktest:
		return "backtest"
	}
	return kind
}
