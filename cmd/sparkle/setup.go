package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vango-dev/sparkle/internal/config"
	"github.com/vango-dev/sparkle/pkg/persist"
)

// loadConfig reads path when given, otherwise the working directory.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore returns the configured state store, or nil when persistence
// is off.
func openStore(cfg *config.Config) (persist.Store, error) {
	p := cfg.Persistence
	switch p.Backend {
	case config.BackendMemory:
		return persist.NewMemoryStore(), nil
	case config.BackendFile:
		dir := p.Dir
		if !filepath.IsAbs(dir) && cfg.Path() != "" {
			dir = filepath.Join(filepath.Dir(cfg.Path()), dir)
		}
		return persist.NewFileStore(dir)
	case config.BackendS3:
		client := persist.NewS3Client(persist.S3Config{
			Region:    p.S3.Region,
			Endpoint:  p.S3.Endpoint,
			PathStyle: p.S3.PathStyle,
		})
		return persist.NewS3Store(client, p.S3.Bucket, p.S3.Prefix), nil
	default:
		return nil, nil
	}
}
