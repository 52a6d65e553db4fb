// Package store defines the storage interfaces for clipkeep's persistence layer.
// It covers clip history (with soft delete) and key/value settings.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when an operation requires a row that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyContent is returned when creating a clip with no content.
	ErrEmptyContent = errors.New("clip content is empty")
)

// ClipStore manages clip history.
// Every read only sees active rows; deleted rows stay in storage.
type ClipStore interface {
	// Create stores a new clip and returns it with its assigned ID.
	Create(ctx context.Context, clip NewClip) (Clip, error)

	// FindByID returns the active clip with the given ID.
	// The bool is false when no such clip exists; that is not an error.
	FindByID(ctx context.Context, id int64) (Clip, bool, error)

	// FindAll returns active clips, newest first.
	FindAll(ctx context.Context) ([]Clip, error)

	// FindLatest returns the most recently inserted active clip.
	FindLatest(ctx context.Context) (Clip, bool, error)

	// FindBySource returns active clips with the given source tag, newest first.
	FindBySource(ctx context.Context, source string) ([]Clip, error)

	// Search returns active clips whose content contains query,
	// ignoring case, newest first.
	Search(ctx context.Context, query string) ([]Clip, error)

	// SoftDelete marks a clip deleted. Calling it twice is harmless.
	SoftDelete(ctx context.Context, id int64) error

	// SoftDeleteMany marks every clip in ids deleted, or none of them.
	// Returns ErrNotFound if any id has no active clip.
	SoftDeleteMany(ctx context.Context, ids []int64) error

	// Restore reverts a soft delete.
	// Returns ErrNotFound if there is no deleted clip with that ID.
	Restore(ctx context.Context, id int64) error

	// Count returns the number of clips, optionally including deleted ones.
	Count(ctx context.Context, includeDeleted bool) (int64, error)
}

// SettingStore manages key/value settings.
// At most one active row exists per key.
type SettingStore interface {
	// Get returns the value for key. The bool is false when the key
	// is missing or its value is null.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set inserts or updates the value for key.
	Set(ctx context.Context, key, value string) error

	// GetAll returns every active key/value pair.
	GetAll(ctx context.Context) (map[string]string, error)

	// SeedDefaults inserts DefaultSettings entries that are not present yet.
	// Existing values are never overwritten.
	SeedDefaults(ctx context.Context) error
}

// Store combines clip and settings storage.
type Store interface {
	// CreateTables defines the backing tables if they do not exist.
	CreateTables(ctx context.Context) error

	// Clips returns the clip history store.
	Clips() ClipStore

	// Settings returns the settings store.
	Settings() SettingStore

	// Close releases all resources.
	Close() error
}

// MatchesQuery reports whether content contains query, ignoring case.
// An empty query matches everything.
func MatchesQuery(content, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(content), strings.ToLower(query))
}
