// Package backend opens the transaction store selected by DATA_BACKEND.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"fintrack/internal/config"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

// Backend is everything the services need from a store.
type Backend interface {
	storage.TransactionSource
	storage.CategoryReader
	storage.TransactionWriter
	storage.UserProvisioner

	Ping(ctx context.Context) error
}

type Kind string

const (
	SQLite Kind = "sqlite"
	Memory Kind = "memory"
)

var kinds = []Kind{SQLite, Memory}

// ParseKind accepts the DATA_BACKEND values.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(kinds, k) {
		return "", fmt.Errorf("unknown backend %q (want %s or %s)", s, SQLite, Memory)
	}
	return k, nil
}

// Settings selects and locates a store.
type Settings struct {
	Kind    Kind
	DBPath  string // sqlite
	DataDir string // memory: category seed files
}

func SettingsFrom(cfg *config.Config) (Settings, error) {
	if cfg == nil {
		return Settings{}, fmt.Errorf("nil config")
	}
	kind, err := ParseKind(cfg.DataBackend)
	if err != nil {
		return Settings{}, err
	}
	return Settings{Kind: kind, DBPath: cfg.SQLiteDBPath, DataDir: cfg.DataDir}, nil
}

func (s Settings) validate() error {
	if _, err := ParseKind(string(s.Kind)); err != nil {
		return err
	}
	if s.Kind == SQLite && s.DBPath == "" {
		return fmt.Errorf("sqlite backend needs a database path")
	}
	return nil
}

// Handle is an open store. Close releases it and is never nil.
type Handle struct {
	Backend
	Close func() error
}

// Open creates the store described by s. The sqlite store is migrated before
// it is returned.
func Open(_ context.Context, logger *slog.Logger, s Settings) (*Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	switch s.Kind {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(s.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("Opened SQLite store", "db_path", s.DBPath)
		return &Handle{Backend: repo, Close: repo.Close}, nil
	default:
		dir := s.DataDir
		if dir == "" {
			dir = "data"
		}
		store := memory.NewFromFiles(dir)
		logger.Info("Opened in-memory store", "seed_dir", dir)
		return &Handle{Backend: store, Close: store.Close}, nil
	}
}
