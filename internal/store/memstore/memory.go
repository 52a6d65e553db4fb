// Package memstore provides an in-memory implementation of the store interfaces.
// This implementation is designed for fast unit testing and does not persist data.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yiblet/clipkeep/internal/store"
)

// MemoryStore is an in-memory implementation of store.Store.
// It is thread-safe via mutexes. Data exists only for the lifetime of the process.
type MemoryStore struct {
	clips    *memoryClipStore
	settings *memorySettingStore
}

var _ store.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store for testing.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clips:    &memoryClipStore{nextID: 1, now: time.Now},
		settings: &memorySettingStore{values: make(map[string]string)},
	}
}

// CreateTables is a no-op for the memory store.
func (m *MemoryStore) CreateTables(ctx context.Context) error {
	return nil
}

// Clips returns the clip store.
func (m *MemoryStore) Clips() store.ClipStore {
	return m.clips
}

// Settings returns the settings store.
func (m *MemoryStore) Settings() store.SettingStore {
	return m.settings
}

// FailWith makes every subsequent operation return err. Pass nil to recover.
func (m *MemoryStore) FailWith(err error) {
	m.clips.mu.Lock()
	m.clips.err = err
	m.clips.mu.Unlock()

	m.settings.mu.Lock()
	m.settings.err = err
	m.settings.mu.Unlock()
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

// memoryClipStore implements store.ClipStore. Deleted clips stay in the
// slice with DeletedAt set.
type memoryClipStore struct {
	mu     sync.RWMutex
	clips  []store.Clip
	nextID int64
	now    func() time.Time
	err    error
}

func (m *memoryClipStore) Create(ctx context.Context, input store.NewClip) (store.Clip, error) {
	if input.Content == "" {
		return store.Clip{}, store.ErrEmptyContent
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return store.Clip{}, m.err
	}

	now := m.now().UTC()
	clip := store.Clip{
		ID:        m.nextID,
		Content:   input.Content,
		Source:    input.Source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextID++
	m.clips = append(m.clips, clip)
	return clip, nil
}

func (m *memoryClipStore) FindByID(ctx context.Context, id int64) (store.Clip, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return store.Clip{}, false, m.err
	}

	for _, c := range m.clips {
		if c.ID == id && c.Active() {
			return c, true, nil
		}
	}
	return store.Clip{}, false, nil
}

// filter returns active clips accepted by keep, newest first.
func (m *memoryClipStore) filter(keep func(store.Clip) bool) ([]store.Clip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	result := make([]store.Clip, 0, len(m.clips))
	for _, c := range m.clips {
		if c.Active() && keep(c) {
			result = append(result, c)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (m *memoryClipStore) FindAll(ctx context.Context) ([]store.Clip, error) {
	return m.filter(func(store.Clip) bool { return true })
}

func (m *memoryClipStore) FindLatest(ctx context.Context) (store.Clip, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return store.Clip{}, false, m.err
	}

	for i := len(m.clips) - 1; i >= 0; i-- {
		if m.clips[i].Active() {
			return m.clips[i], true, nil
		}
	}
	return store.Clip{}, false, nil
}

func (m *memoryClipStore) FindBySource(ctx context.Context, source string) ([]store.Clip, error) {
	return m.filter(func(c store.Clip) bool { return c.Source == source })
}

func (m *memoryClipStore) Search(ctx context.Context, query string) ([]store.Clip, error) {
	return m.filter(func(c store.Clip) bool { return store.MatchesQuery(c.Content, query) })
}

func (m *memoryClipStore) SoftDelete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	now := m.now().UTC()
	for i := range m.clips {
		if m.clips[i].ID == id {
			m.clips[i].DeletedAt = &now
		}
	}
	return nil
}

func (m *memoryClipStore) SoftDeleteMany(ctx context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	index := make(map[int64]int, len(m.clips))
	for i, c := range m.clips {
		if c.Active() {
			index[c.ID] = i
		}
	}
	for _, id := range ids {
		if _, ok := index[id]; !ok {
			return fmt.Errorf("clip %d: %w", id, store.ErrNotFound)
		}
	}

	now := m.now().UTC()
	for _, id := range ids {
		m.clips[index[id]].DeletedAt = &now
	}
	return nil
}

func (m *memoryClipStore) Restore(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	for i := range m.clips {
		if m.clips[i].ID == id && !m.clips[i].Active() {
			m.clips[i].DeletedAt = nil
			m.clips[i].UpdatedAt = m.now().UTC()
			return nil
		}
	}
	return fmt.Errorf("deleted clip %d: %w", id, store.ErrNotFound)
}

func (m *memoryClipStore) Count(ctx context.Context, includeDeleted bool) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return 0, m.err
	}

	var n int64
	for _, c := range m.clips {
		if includeDeleted || c.Active() {
			n++
		}
	}
	return n, nil
}

// memorySettingStore implements store.SettingStore using a map.
type memorySettingStore struct {
	mu     sync.RWMutex
	values map[string]string
	err    error
}

func (m *memorySettingStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return "", false, m.err
	}
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memorySettingStore) Set(ctx context.Context, key, value string) error {
	if err := store.ValidateSetting(key, value); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *memorySettingStore) GetAll(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	result := make(map[string]string, len(m.values))
	for k, v := range m.values {
		result[k] = v
	}
	return result, nil
}

func (m *memorySettingStore) SeedDefaults(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	for k, v := range store.DefaultSettings {
		if _, ok := m.values[k]; !ok {
			m.values[k] = v
		}
	}
	return nil
}
