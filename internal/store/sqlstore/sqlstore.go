// Package sqlstore implements store.Store on top of a dbstore.Gateway.
// Settings and clips each wrap a record.Table for their own table.
package sqlstore

import (
	"context"
	"log/slog"

	"github.com/yiblet/clipkeep/internal/store"
	"github.com/yiblet/clipkeep/internal/store/dbstore"
)

// DB is the subset of *dbstore.Gateway the stores need.
type DB interface {
	dbstore.Executor
	Transaction(ctx context.Context, fn func(ctx context.Context, tx dbstore.Executor) error) error
	Close() error
}

// Store is a SQLite-backed store.Store.
type Store struct {
	db       DB
	settings *Settings
	clips    *Clips
}

var _ store.Store = (*Store)(nil)

// New creates a store over an initialized gateway. Call CreateTables
// before first use.
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:       db,
		settings: NewSettings(db, logger),
		clips:    NewClips(db),
	}
}

// CreateTables defines the settings and clipboard tables if needed.
func (s *Store) CreateTables(ctx context.Context) error {
	if err := s.settings.CreateTable(ctx); err != nil {
		return err
	}
	return s.clips.CreateTable(ctx)
}

// Clips returns the clip history store.
func (s *Store) Clips() store.ClipStore {
	return s.clips
}

// Settings returns the settings store.
func (s *Store) Settings() store.SettingStore {
	return s.settings
}

// Close closes the underlying gateway.
func (s *Store) Close() error {
	return s.db.Close()
}
