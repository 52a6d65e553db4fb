package sqlstore

import (
	"context"
	"fmt"

	"github.com/yiblet/clipkeep/internal/store"
	"github.com/yiblet/clipkeep/internal/store/dbstore"
	"github.com/yiblet/clipkeep/internal/store/record"
)

// ClipsTable is the name of the clip history table.
const ClipsTable = "clipboard"

// Clips is the clip history store.
type Clips struct {
	db    DB
	table *record.Table
}

var _ store.ClipStore = (*Clips)(nil)

// NewClips returns a clip store running on db.
func NewClips(db DB) *Clips {
	return &Clips{
		db: db,
		table: record.New(db, ClipsTable,
			record.Column{Name: "content", Decl: "TEXT NOT NULL"},
			record.Column{Name: "source", Decl: "TEXT"},
		),
	}
}

// CreateTable defines the clipboard table if it does not exist.
func (c *Clips) CreateTable(ctx context.Context) error {
	if err := c.table.CreateTable(ctx); err != nil {
		return fmt.Errorf("failed to create %s table: %w", ClipsTable, err)
	}
	return nil
}

// Create stores a new clip. Empty content is rejected.
func (c *Clips) Create(ctx context.Context, clip store.NewClip) (store.Clip, error) {
	if clip.Content == "" {
		return store.Clip{}, store.ErrEmptyContent
	}

	var source any
	if clip.Source != "" {
		source = clip.Source
	}

	row, err := c.table.Create(ctx, record.Values{"content": clip.Content, "source": source})
	if err != nil {
		return store.Clip{}, fmt.Errorf("failed to create clip: %w", err)
	}

	created := toClip(row)
	created.UpdatedAt = created.CreatedAt
	return created, nil
}

// FindByID returns the active clip with the given ID.
func (c *Clips) FindByID(ctx context.Context, id int64) (store.Clip, bool, error) {
	row, ok, err := c.table.FindByID(ctx, id)
	if err != nil || !ok {
		return store.Clip{}, false, err
	}
	return toClip(row), true, nil
}

// FindAll returns active clips, newest first.
func (c *Clips) FindAll(ctx context.Context) ([]store.Clip, error) {
	rows, err := c.table.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toClips(rows), nil
}

// FindLatest returns the most recently inserted active clip.
func (c *Clips) FindLatest(ctx context.Context) (store.Clip, bool, error) {
	row, ok, err := c.table.FindLatest(ctx)
	if err != nil || !ok {
		return store.Clip{}, false, err
	}
	return toClip(row), true, nil
}

// FindBySource returns active clips tagged with source, newest first.
func (c *Clips) FindBySource(ctx context.Context, source string) ([]store.Clip, error) {
	rows, err := c.table.FindWhere(ctx, "source = ?", source)
	if err != nil {
		return nil, err
	}
	return toClips(rows), nil
}

// Search returns active clips whose content contains query, ignoring case.
// Matching happens in Go so case folding covers non-ASCII text.
func (c *Clips) Search(ctx context.Context, query string) ([]store.Clip, error) {
	all, err := c.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]store.Clip, 0, len(all))
	for _, clip := range all {
		if store.MatchesQuery(clip.Content, query) {
			matches = append(matches, clip)
		}
	}
	return matches, nil
}

// SoftDelete marks the clip deleted.
func (c *Clips) SoftDelete(ctx context.Context, id int64) error {
	if _, err := c.table.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete clip %d: %w", id, err)
	}
	return nil
}

// SoftDeleteMany marks every clip in ids deleted inside one transaction.
func (c *Clips) SoftDeleteMany(ctx context.Context, ids []int64) error {
	return c.db.Transaction(ctx, func(ctx context.Context, tx dbstore.Executor) error {
		table := c.table.With(tx)
		for _, id := range ids {
			_, ok, err := table.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("clip %d: %w", id, store.ErrNotFound)
			}
			if _, err := table.SoftDelete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Restore reverts a soft delete.
func (c *Clips) Restore(ctx context.Context, id int64) error {
	n, err := c.table.Restore(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to restore clip %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleted clip %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// Count returns the number of clips, optionally including deleted ones.
func (c *Clips) Count(ctx context.Context, includeDeleted bool) (int64, error) {
	return c.table.Count(ctx, includeDeleted)
}

func toClip(row dbstore.Row) store.Clip {
	clip := store.Clip{ID: row.Int64("id")}
	clip.Content, _ = row.String("content")
	clip.Source, _ = row.String("source")
	clip.CreatedAt, _ = row.Time("created_at")
	clip.UpdatedAt, _ = row.Time("updated_at")
	if deletedAt, ok := row.Time("deleted_at"); ok {
		clip.DeletedAt = &deletedAt
	}
	return clip
}

func toClips(rows []dbstore.Row) []store.Clip {
	clips := make([]store.Clip, 0, len(rows))
	for _, row := range rows {
		clips = append(clips, toClip(row))
	}
	return clips
}
