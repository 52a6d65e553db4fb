package store

import (
	"time"
)

// SourceSystem tags clips captured from the system clipboard by the watcher.
const SourceSystem = "system"

// Clip is a single captured clipboard text entry.
type Clip struct {
	// ID is assigned by the storage layer on insert.
	ID int64 `json:"id"`

	// Content is the captured text. Never empty for an active clip.
	Content string `json:"content"`

	// Source is an optional origin tag such as "system".
	Source string `json:"source"`

	// CreatedAt is set once at insert and drives newest-first ordering.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed by every update.
	UpdatedAt time.Time `json:"updated_at"`

	// DeletedAt is non-nil for soft-deleted clips.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the clip has not been soft-deleted.
func (c Clip) Active() bool {
	return c.DeletedAt == nil
}

// NewClip contains the data needed to create a clip.
type NewClip struct {
	Content string
	Source  string
}
