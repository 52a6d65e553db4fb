// Package app wires the store, the clipboard watcher and the theme into
// the running clipboard-history application. Both the TUI and the CLI
// drive it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/yiblet/clipkeep/internal/clipboard"
	"github.com/yiblet/clipkeep/internal/export"
	"github.com/yiblet/clipkeep/internal/store"
	"github.com/yiblet/clipkeep/internal/store/dbstore"
	"github.com/yiblet/clipkeep/internal/store/sqlstore"
	"github.com/yiblet/clipkeep/internal/theme"
	"github.com/yiblet/clipkeep/internal/watcher"
)

// Options configures Bootstrap. Either Store or DatabasePath must be set.
type Options struct {
	// Store is used as is when non-nil. Otherwise a SQLite store is opened
	// at DatabasePath through Gateway.
	Store        store.Store
	Gateway      *dbstore.Gateway
	DatabasePath string

	Board         clipboard.Clipboard
	Logger        *slog.Logger
	CopiedTimeout time.Duration
}

// App is an initialized clipboard-history application.
type App struct {
	store   store.Store
	watcher *watcher.Watcher
	theme   *theme.Store
	logger  *slog.Logger

	// saveMu serializes the dedupe check with the insert.
	saveMu sync.Mutex

	mu      sync.Mutex
	subs    map[int]func(store.Clip)
	nextSub int
}

// OpenStore initializes gw at path and returns a SQLite store over it. A
// gateway that is already open on another database is reused.
func OpenStore(ctx context.Context, gw *dbstore.Gateway, path string, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	err := gw.Initialize(ctx, path)
	if errors.Is(err, dbstore.ErrAlreadyOpen) {
		logger.Warn("database already open, reusing connection", "open", gw.Name(), "requested", path)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return sqlstore.New(gw, logger), nil
}

// Bootstrap opens the store, creates tables, seeds defaults and primes the
// watcher with the persisted interval and latest clip. Only failures to
// open the database or create its tables are fatal.
func Bootstrap(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Board == nil {
		return nil, errors.New("no clipboard configured")
	}

	st := opts.Store
	if st == nil {
		gw := opts.Gateway
		if gw == nil {
			gw = dbstore.NewGateway(dbstore.WithLogger(logger))
		}
		var err error
		if st, err = OpenStore(ctx, gw, opts.DatabasePath, logger); err != nil {
			return nil, err
		}
	}

	if err := st.CreateTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := st.Settings().SeedDefaults(ctx); err != nil {
		logger.Warn("failed to seed default settings", "error", err)
	}

	a := &App{
		store:  st,
		theme:  theme.NewStore(st.Settings(), logger),
		logger: logger,
		subs:   make(map[int]func(store.Clip)),
	}

	watchOpts := []watcher.Option{
		watcher.WithInterval(a.loadInterval(ctx)),
		watcher.WithHandler(a.handleClip),
		watcher.WithLogger(logger),
	}
	if opts.CopiedTimeout > 0 {
		watchOpts = append(watchOpts, watcher.WithCopiedTimeout(opts.CopiedTimeout))
	}
	a.watcher = watcher.New(opts.Board, watchOpts...)

	latest, ok, err := st.Clips().FindLatest(ctx)
	switch {
	case err != nil:
		logger.Warn("failed to load latest clip", "error", err)
	case ok:
		a.watcher.SetInitialLastClip(latest.Content)
	}

	a.theme.Load(ctx)
	return a, nil
}

func (a *App) loadInterval(ctx context.Context) time.Duration {
	fallback, _ := store.ParseInterval(store.DefaultSettings[store.KeyCheckInterval])

	value, ok, err := a.store.Settings().Get(ctx, store.KeyCheckInterval)
	if err != nil {
		a.logger.Warn("failed to load poll interval, using default", "error", err)
		return fallback
	}
	if !ok {
		return fallback
	}
	d, err := store.ParseInterval(value)
	if err != nil {
		a.logger.Warn("ignoring invalid poll interval", "value", value, "error", err)
		return fallback
	}
	return d
}

// Store returns the underlying store.
func (a *App) Store() store.Store { return a.store }

// Clips returns the clip store.
func (a *App) Clips() store.ClipStore { return a.store.Clips() }

// Settings returns the settings store.
func (a *App) Settings() store.SettingStore { return a.store.Settings() }

// Watcher returns the clipboard watcher.
func (a *App) Watcher() *watcher.Watcher { return a.watcher }

// Theme returns the theme store.
func (a *App) Theme() *theme.Store { return a.theme }

func (a *App) handleClip(ctx context.Context, clip store.NewClip) error {
	_, _, err := a.SaveClip(ctx, clip)
	return err
}

// SaveClip persists clip unless it matches the latest stored clip. It
// reports whether a row was created; subscribers are notified only then.
func (a *App) SaveClip(ctx context.Context, clip store.NewClip) (store.Clip, bool, error) {
	a.saveMu.Lock()
	latest, ok, err := a.store.Clips().FindLatest(ctx)
	if err != nil {
		a.saveMu.Unlock()
		return store.Clip{}, false, fmt.Errorf("failed to load latest clip: %w", err)
	}
	if ok && latest.Content == clip.Content {
		a.saveMu.Unlock()
		a.logger.Debug("skipping duplicate clip", "id", latest.ID)
		return latest, false, nil
	}
	saved, err := a.store.Clips().Create(ctx, clip)
	a.saveMu.Unlock()
	if err != nil {
		return store.Clip{}, false, fmt.Errorf("failed to save clip: %w", err)
	}

	a.logger.Info("clip saved", "id", saved.ID, "source", saved.Source, "bytes", len(saved.Content))
	a.notify(saved)
	return saved, true, nil
}

// OnClipSaved registers fn to run after each clip SaveClip creates. It
// returns a function that removes the subscription.
func (a *App) OnClipSaved(fn func(store.Clip)) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

func (a *App) notify(clip store.Clip) {
	a.mu.Lock()
	subs := make([]func(store.Clip), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	for _, fn := range subs {
		fn(clip)
	}
}

// Interval returns the current poll interval.
func (a *App) Interval() time.Duration {
	return a.watcher.Interval()
}

// SetInterval validates and persists a poll interval in milliseconds, then
// applies it to the running watcher.
func (a *App) SetInterval(ctx context.Context, ms int) error {
	value := strconv.Itoa(ms)
	d, err := store.ParseInterval(value)
	if err != nil {
		return err
	}
	if err := a.store.Settings().Set(ctx, store.KeyCheckInterval, value); err != nil {
		return fmt.Errorf("failed to save poll interval: %w", err)
	}
	return a.watcher.SetInterval(d)
}

// Copy puts clip's content on the clipboard without recording it again.
func (a *App) Copy(ctx context.Context, clip store.Clip) error {
	return a.watcher.WriteText(ctx, clip.Content)
}

// Delete soft-deletes the clip with id.
func (a *App) Delete(ctx context.Context, id int64) error {
	if err := a.store.Clips().SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete clip %d: %w", id, err)
	}
	a.logger.Info("clip deleted", "id", id)
	return nil
}

// Restore undoes a soft delete.
func (a *App) Restore(ctx context.Context, id int64) error {
	if err := a.store.Clips().Restore(ctx, id); err != nil {
		return fmt.Errorf("failed to restore clip %d: %w", id, err)
	}
	a.logger.Info("clip restored", "id", id)
	return nil
}

// Export writes every active clip to dir in format and returns the file
// path.
func (a *App) Export(ctx context.Context, format export.Format, dir string) (string, error) {
	clips, err := a.store.Clips().FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load clips: %w", err)
	}
	path, err := export.ToFile(dir, format, clips, time.Now())
	if err != nil {
		return "", err
	}
	a.logger.Info("clips exported", "path", path, "format", format, "count", len(clips))
	return path, nil
}

// HasLaunched reports whether the welcome screen has been shown before.
// Read failures count as launched so the user is not stuck on welcome.
func (a *App) HasLaunched(ctx context.Context) bool {
	value, ok, err := a.store.Settings().Get(ctx, store.KeyHasLaunched)
	if err != nil {
		a.logger.Warn("failed to read launch flag", "error", err)
		return true
	}
	return ok && value == "1"
}

// MarkLaunched records that the welcome screen was shown.
func (a *App) MarkLaunched(ctx context.Context) error {
	return a.store.Settings().Set(ctx, store.KeyHasLaunched, "1")
}

// Run polls the clipboard until ctx is done.
func (a *App) Run(ctx context.Context) error {
	return a.watcher.Run(ctx)
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}
