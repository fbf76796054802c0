// Package boot runs the startup steps that must finish before requests are
// served.
package boot

import (
	"log/slog"

	"github.com/qrtrack/qrtrack"
	"github.com/qrtrack/qrtrack/attrpool"
	"github.com/qrtrack/qrtrack/config"
	"github.com/qrtrack/qrtrack/filesystem"
	"github.com/qrtrack/qrtrack/hashtbl"
)

// Table is the attribute table owned by the process.
type Table = hashtbl.T[qrtrack.Attribute, *qrtrack.Attribute]

func TableOptions(cfg config.Table) hashtbl.Options {
	return hashtbl.Options{
		Capacity:   cfg.Capacity,
		Path:       cfg.File,
		Tombstones: cfg.Tombstones,
		AtomicSave: cfg.AtomicSave,
	}
}

// Attributes opens the attribute table and, unless the marker attribute is
// already stored, fills it once from a freshly generated pool. Any error is
// meant to stop the process.
func Attributes(log *slog.Logger, fs *filesystem.T, cfg config.Table) (*Table, error) {
	tb, err := hashtbl.Open[qrtrack.Attribute, *qrtrack.Attribute](fs, TableOptions(cfg))
	if err != nil {
		return nil, err
	}

	if tb.Search(qrtrack.Marker) {
		log.Info("attribute table loaded",
			"path", fs.Child(tb.Path()),
			"items", tb.Len(),
			"capacity", tb.Cap())
		return tb, nil
	}

	pool := attrpool.Generate(cfg.Capacity, cfg.PoolSeed)
	dropped, err := tb.Fill(pool)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Warn("attribute pool did not fit",
			"dropped", dropped,
			"pool", len(pool))
	}

	log.Info("attribute table populated",
		"path", fs.Child(tb.Path()),
		"items", tb.Len(),
		"capacity", tb.Cap())
	return tb, nil
}
