// Package snapshot persists ranked correlation records as CSV files that are
// replaced atomically, so readers never observe a partial snapshot.
package snapshot

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/cryptocorr/internal/domain"
)

// header is the exact column set downstream consumers parse.
var header = []string{"Pair", "Correlation", "Combined Market Cap", "Combined Change %"}

// Writer writes one CSV snapshot per window into a directory.
type Writer struct {
	dir    string
	prefix string
	logger *zap.Logger
}

// NewWriter creates a snapshot writer. The directory is created on the first
// write when missing.
func NewWriter(dir, prefix string, logger *zap.Logger) *Writer {
	return &Writer{dir: dir, prefix: prefix, logger: logger}
}

// Write replaces the window's snapshot with the given records and returns the
// target path. Rows go to a temp file in the same directory which is synced
// and renamed over the target, so any failure leaves the previous snapshot in
// place. Non-finite correlations are rejected before anything is touched.
func (w *Writer) Write(window domain.Window, records []domain.PairRecord) (string, error) {
	for _, rec := range records {
		if math.IsNaN(rec.Correlation) || math.IsInf(rec.Correlation, 0) {
			return "", errors.Errorf("non-finite correlation for pair %s", rec.Label)
		}
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create snapshot directory")
	}

	target := filepath.Join(w.dir, window.Filename(w.prefix))
	tmp, err := os.CreateTemp(w.dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp snapshot file")
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return "", errors.Wrap(err, "failed to chmod temp snapshot file")
	}

	cw := csv.NewWriter(tmp)
	if err := cw.Write(header); err != nil {
		return "", errors.Wrap(err, "failed to write snapshot header")
	}
	for _, rec := range records {
		row := []string{
			rec.Label,
			strconv.FormatFloat(rec.Correlation, 'f', 4, 64),
			domain.FormatMarketCap(rec.CombinedMarketCap),
			strconv.FormatFloat(rec.CombinedChangePct, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return "", errors.Wrapf(err, "failed to write snapshot row for %s", rec.Label)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", errors.Wrap(err, "failed to flush snapshot")
	}

	if err := tmp.Sync(); err != nil {
		return "", errors.Wrap(err, "failed to sync snapshot")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "failed to close snapshot")
	}
	name := tmp.Name()
	tmp = nil
	if err := os.Rename(name, target); err != nil {
		os.Remove(name)
		return "", errors.Wrap(err, "failed to replace snapshot")
	}

	w.logger.Info("snapshot written",
		zap.String("file", target),
		zap.String("window", window.String()),
		zap.Int("pairs", len(records)))
	return target, nil
}
