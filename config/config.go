// Package config holds the process configuration, loaded from an optional
// YAML file over built in defaults.
package config

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/zeebo/errs/v2"
	"gopkg.in/yaml.v3"

	"github.com/qrtrack/qrtrack"
)

type Config struct {
	Listen   string   `yaml:"listen"`
	DataDir  string   `yaml:"data_dir"`
	Table    Table    `yaml:"table"`
	Tracking Tracking `yaml:"tracking"`
	QR       QR       `yaml:"qr"`
	Log      Log      `yaml:"log"`
}

type Table struct {
	File       string `yaml:"file"`
	Capacity   int    `yaml:"capacity"`
	Tombstones bool   `yaml:"tombstones"`
	AtomicSave bool   `yaml:"atomic_save"`
	PoolSeed   uint64 `yaml:"pool_seed"`
}

type Tracking struct {
	Path string `yaml:"path"`
}

type QR struct {
	Border       int `yaml:"border"`
	DefaultSize  int `yaml:"default_size"`
	MaxSize      int `yaml:"max_size"`
	// MaxLogoBytes bounds a decoded logo. Zero disables logos.
	MaxLogoBytes int `yaml:"max_logo_bytes"`
}

type Log struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Listen:  "127.0.0.1:4000",
		DataDir: ".",
		Table: Table{
			File:     qrtrack.AttributeFile,
			Capacity: qrtrack.AttributeCapacity,
			PoolSeed: 1,
		},
		Tracking: Tracking{
			Path: "tracking.db",
		},
		QR: QR{
			Border:       4,
			DefaultSize:  256,
			MaxSize:      2048,
			MaxLogoBytes: 1 << 20,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over Default. An empty path returns the
// defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errs.Wrap(err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errs.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Listen == "":
		return errs.Errorf("listen address is required")
	case c.Table.File == "":
		return errs.Errorf("table.file is required")
	case c.Table.Capacity <= 0:
		return errs.Errorf("table.capacity must be positive: %d", c.Table.Capacity)
	case c.Tracking.Path == "":
		return errs.Errorf("tracking.path is required")
	case c.QR.Border < 0:
		return errs.Errorf("qr.border must not be negative: %d", c.QR.Border)
	case c.QR.DefaultSize <= 0 || c.QR.MaxSize < c.QR.DefaultSize:
		return errs.Errorf("qr sizes must satisfy 0 < default_size <= max_size: %d, %d",
			c.QR.DefaultSize, c.QR.MaxSize)
	case c.QR.MaxLogoBytes < 0:
		return errs.Errorf("qr.max_logo_bytes must not be negative: %d", c.QR.MaxLogoBytes)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errs.Errorf("invalid log level: %q", level)
	}
}
