package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiblet/clipkeep/internal/clipboard/mockboard"
	"github.com/yiblet/clipkeep/internal/export"
	"github.com/yiblet/clipkeep/internal/store"
	"github.com/yiblet/clipkeep/internal/store/dbstore"
	"github.com/yiblet/clipkeep/internal/store/memstore"
)

func newTestApp(t *testing.T) (*App, *memstore.MemoryStore, *mockboard.MockClipboard) {
	t.Helper()
	mem := memstore.NewMemoryStore()
	board := mockboard.New()
	a, err := Bootstrap(context.Background(), Options{Store: mem, Board: board})
	require.NoError(t, err)
	return a, mem, board
}

func TestBootstrap_SeedsDefaults(t *testing.T) {
	a, mem, _ := newTestApp(t)
	ctx := context.Background()

	all, err := mem.Settings().GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.ThemeLight, all[store.KeyTheme])
	assert.Equal(t, "1000", all[store.KeyCheckInterval])
	assert.Equal(t, time.Second, a.Interval())
	assert.False(t, a.HasLaunched(ctx))
}

func TestBootstrap_UsesPersistedSettings(t *testing.T) {
	ctx := context.Background()
	mem := memstore.NewMemoryStore()
	require.NoError(t, mem.Settings().Set(ctx, store.KeyCheckInterval, "250"))
	require.NoError(t, mem.Settings().Set(ctx, store.KeyTheme, store.ThemeDark))

	a, err := Bootstrap(ctx, Options{Store: mem, Board: mockboard.New()})
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, a.Interval())
	assert.True(t, a.Theme().IsDark())
}

func TestBootstrap_SettingsFailureIsNotFatal(t *testing.T) {
	mem := memstore.NewMemoryStore()
	mem.FailWith(errors.New("disk full"))

	a, err := Bootstrap(context.Background(), Options{Store: mem, Board: mockboard.New()})
	require.NoError(t, err)
	assert.Equal(t, time.Second, a.Interval())
}

func TestBootstrap_RequiresBoard(t *testing.T) {
	_, err := Bootstrap(context.Background(), Options{Store: memstore.NewMemoryStore()})
	assert.Error(t, err)
}

func TestBootstrap_SeedsWatcherWithLatestClip(t *testing.T) {
	ctx := context.Background()
	mem := memstore.NewMemoryStore()
	_, err := mem.Clips().Create(ctx, store.NewClip{Content: "persisted"})
	require.NoError(t, err)

	board := mockboard.New()
	a, err := Bootstrap(ctx, Options{Store: mem, Board: board})
	require.NoError(t, err)

	board.SetText("persisted")
	assert.False(t, a.Watcher().Tick(ctx))

	count, err := mem.Clips().Count(ctx, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestBootstrap_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "clips.db")
	board := mockboard.New()

	a, err := Bootstrap(ctx, Options{DatabasePath: path, Board: board})
	require.NoError(t, err)
	defer a.Close()

	board.SetText("hello")
	require.True(t, a.Watcher().Tick(ctx))

	clips, err := a.Clips().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, "hello", clips[0].Content)
	assert.Equal(t, store.SourceSystem, clips[0].Source)
}

func TestOpenStore_ReusesOpenGateway(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	gw := dbstore.NewGateway()
	defer gw.Close()

	_, err := OpenStore(ctx, gw, filepath.Join(dir, "a.db"), nil)
	require.NoError(t, err)
	_, err = OpenStore(ctx, gw, filepath.Join(dir, "b.db"), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.db"), gw.Name())
}

func TestSaveClip_SkipsLatestDuplicate(t *testing.T) {
	a, mem, _ := newTestApp(t)
	ctx := context.Background()

	var notified []string
	a.OnClipSaved(func(c store.Clip) { notified = append(notified, c.Content) })

	_, created, err := a.SaveClip(ctx, store.NewClip{Content: "one"})
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = a.SaveClip(ctx, store.NewClip{Content: "one"})
	require.NoError(t, err)
	assert.False(t, created)

	_, created, err = a.SaveClip(ctx, store.NewClip{Content: "two"})
	require.NoError(t, err)
	assert.True(t, created)

	count, err := mem.Clips().Count(ctx, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Equal(t, []string{"one", "two"}, notified)
}

func TestSaveClip_Unsubscribe(t *testing.T) {
	a, _, _ := newTestApp(t)
	calls := 0
	unsubscribe := a.OnClipSaved(func(store.Clip) { calls++ })
	unsubscribe()

	_, _, err := a.SaveClip(context.Background(), store.NewClip{Content: "x"})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestSaveClip_StoreFailure(t *testing.T) {
	a, mem, _ := newTestApp(t)
	mem.FailWith(errors.New("locked"))

	_, created, err := a.SaveClip(context.Background(), store.NewClip{Content: "x"})
	assert.Error(t, err)
	assert.False(t, created)
}

func TestSetInterval(t *testing.T) {
	a, mem, _ := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.SetInterval(ctx, 300))
	assert.Equal(t, 300*time.Millisecond, a.Interval())
	value, _, err := mem.Settings().Get(ctx, store.KeyCheckInterval)
	require.NoError(t, err)
	assert.Equal(t, "300", value)

	err = a.SetInterval(ctx, 50)
	assert.ErrorIs(t, err, store.ErrInvalidSetting)
	assert.Equal(t, 300*time.Millisecond, a.Interval())
}

func TestCopy_DoesNotRecordAgain(t *testing.T) {
	a, mem, board := newTestApp(t)
	ctx := context.Background()

	clip, _, err := a.SaveClip(ctx, store.NewClip{Content: "old"})
	require.NoError(t, err)
	_, _, err = a.SaveClip(ctx, store.NewClip{Content: "new"})
	require.NoError(t, err)

	require.NoError(t, a.Copy(ctx, clip))
	assert.Equal(t, "old", board.Text())
	assert.True(t, a.Watcher().IsCopied())
	assert.False(t, a.Watcher().Tick(ctx))

	count, err := mem.Clips().Count(ctx, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestDeleteAndRestore(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	clip, _, err := a.SaveClip(ctx, store.NewClip{Content: "x"})
	require.NoError(t, err)

	require.NoError(t, a.Delete(ctx, clip.ID))
	_, ok, err := a.Clips().FindByID(ctx, clip.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Restore(ctx, clip.ID))
	_, ok, err = a.Clips().FindByID(ctx, clip.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, a.Restore(ctx, clip.ID), store.ErrNotFound)
}

func TestExport(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	for _, s := range []string{"a", `say "hi"`} {
		_, _, err := a.SaveClip(ctx, store.NewClip{Content: s})
		require.NoError(t, err)
	}

	dir := t.TempDir()
	path, err := a.Export(ctx, export.FormatCSV, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, export.CSVHeader, lines[0])
	assert.Contains(t, string(data), `"say ""hi"""`)
}

func TestMarkLaunched(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.MarkLaunched(ctx))
	assert.True(t, a.HasLaunched(ctx))
}

func TestRun_SavesNewClips(t *testing.T) {
	a, _, board := newTestApp(t)
	require.NoError(t, a.SetInterval(context.Background(), 100))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	board.SetText("from another app")
	require.Eventually(t, func() bool {
		clips, err := a.Clips().FindAll(context.Background())
		return err == nil && len(clips) == 1
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
