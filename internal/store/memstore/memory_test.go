package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yiblet/clipkeep/internal/store"
)

func TestMemoryStore_ClipLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	clips := s.Clips()

	for _, content := range []string{"one", "two", "three"} {
		_, err := clips.Create(ctx, store.NewClip{Content: content, Source: store.SourceSystem})
		require.NoError(t, err)
	}

	all, err := clips.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Content)
	assert.Equal(t, "one", all[2].Content)

	require.NoError(t, clips.SoftDelete(ctx, all[0].ID))
	_, ok, err := clips.FindByID(ctx, all[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	latest, ok, err := clips.FindLatest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", latest.Content)

	total, err := clips.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	require.NoError(t, clips.Restore(ctx, all[0].ID))
	assert.ErrorIs(t, clips.Restore(ctx, all[0].ID), store.ErrNotFound)
}

func TestMemoryStore_SoftDeleteManyIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.Clips().Create(ctx, store.NewClip{Content: "a"})
	require.NoError(t, err)

	err = s.Clips().SoftDeleteMany(ctx, []int64{a.ID, 42})
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.Clips().Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_Settings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	settings := s.Settings()

	require.NoError(t, settings.Set(ctx, store.KeyTheme, store.ThemeDark))
	require.NoError(t, settings.SeedDefaults(ctx))

	theme, ok, err := settings.Get(ctx, store.KeyTheme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, store.ThemeDark, theme)

	interval, _, err := settings.Get(ctx, store.KeyCheckInterval)
	require.NoError(t, err)
	assert.Equal(t, "1000", interval)

	assert.ErrorIs(t, settings.Set(ctx, store.KeyTheme, "blue"), store.ErrInvalidSetting)
}

func TestMemoryStore_FailWith(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")

	s.FailWith(boom)
	_, err := s.Clips().Create(ctx, store.NewClip{Content: "x"})
	assert.ErrorIs(t, err, boom)
	_, _, err = s.Settings().Get(ctx, store.KeyTheme)
	assert.ErrorIs(t, err, boom)

	s.FailWith(nil)
	_, err = s.Clips().Create(ctx, store.NewClip{Content: "x"})
	assert.NoError(t, err)
}
