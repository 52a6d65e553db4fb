package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/yiblet/clipkeep/internal/store"
	"github.com/yiblet/clipkeep/internal/store/dbstore"
	"github.com/yiblet/clipkeep/internal/store/record"
)

// SettingsTable is the name of the settings table.
const SettingsTable = "settings"

// Settings is the key/value settings store.
type Settings struct {
	table  *record.Table
	logger *slog.Logger
}

var _ store.SettingStore = (*Settings)(nil)

// NewSettings returns a settings store running on exec.
func NewSettings(exec dbstore.Executor, logger *slog.Logger) *Settings {
	return &Settings{
		table: record.New(exec, SettingsTable,
			record.Column{Name: "key", Decl: "TEXT UNIQUE NOT NULL"},
			record.Column{Name: "value", Decl: "TEXT"},
		),
		logger: logger,
	}
}

// CreateTable defines the settings table if it does not exist.
func (s *Settings) CreateTable(ctx context.Context) error {
	if err := s.table.CreateTable(ctx); err != nil {
		return fmt.Errorf("failed to create %s table: %w", SettingsTable, err)
	}
	return nil
}

func (s *Settings) findByKey(ctx context.Context, key string) (dbstore.Row, bool, error) {
	return s.table.FindOne(ctx, "key = ?", key)
}

// Get returns the value for key.
func (s *Settings) Get(ctx context.Context, key string) (string, bool, error) {
	row, ok, err := s.findByKey(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting[%s]: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	value, ok := row.String("value")
	return value, ok, nil
}

// Set updates the active row for key in place, or inserts one.
// Known keys are validated first.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	if err := store.ValidateSetting(key, value); err != nil {
		return err
	}

	row, ok, err := s.findByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to set setting[%s]: %w", key, err)
	}
	if ok {
		n, err := s.table.Update(ctx, row.Int64("id"), record.Values{"value": value})
		if err != nil {
			return fmt.Errorf("failed to set setting[%s]: %w", key, err)
		}
		if n > 0 {
			return nil
		}
		// Row was deleted between lookup and update.
	}

	if _, err := s.table.Create(ctx, record.Values{"key": key, "value": value}); err != nil {
		return fmt.Errorf("failed to set setting[%s]: %w", key, err)
	}
	return nil
}

// GetAll returns every active key/value pair. Null values map to "".
func (s *Settings) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.table.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	result := make(map[string]string, len(rows))
	for _, row := range rows {
		key, _ := row.String("key")
		value, _ := row.String("value")
		result[key] = value
	}
	return result, nil
}

// SeedDefaults inserts each of store.DefaultSettings that has no active row.
// Losing an insert race to another seeder is not an error. Other failures
// are logged and returned together after every key has been tried.
func (s *Settings) SeedDefaults(ctx context.Context) error {
	keys := make([]string, 0, len(store.DefaultSettings))
	for k := range store.DefaultSettings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		_, ok, err := s.findByKey(ctx, key)
		if err != nil {
			s.logger.Warn("failed to check default setting", "key", key, "error", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			continue
		}

		_, err = s.table.Create(ctx, record.Values{"key": key, "value": store.DefaultSettings[key]})
		switch {
		case err == nil:
			s.logger.Debug("seeded default setting", "key", key, "value", store.DefaultSettings[key])
		case dbstore.IsConstraint(err):
			s.logger.Debug("default setting already seeded", "key", key)
		default:
			s.logger.Warn("failed to seed default setting", "key", key, "error", err)
			errs = append(errs, fmt.Errorf("seed %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
