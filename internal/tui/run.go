package tui

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yiblet/clipkeep/internal/app"
	"github.com/yiblet/clipkeep/internal/store"
)

// Run shows the interface until the user quits or ctx is cancelled. The
// clipboard watcher runs for as long as the interface is open, and the
// application is closed on return.
func Run(ctx context.Context, opts Options, programOpts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		p       *tea.Program
		wg      sync.WaitGroup
		cleanup []func()
	)
	onReady := opts.OnReady
	opts.OnReady = func(a *app.App) {
		cleanup = append(cleanup,
			a.OnClipSaved(func(clip store.Clip) { p.Send(ClipSavedMsg{Clip: clip}) }),
			// Toggle runs inside Update, so sending inline would block the loop.
			a.Theme().Subscribe(func(name string) { go p.Send(ThemeChangedMsg{Name: name}) }),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.Run(ctx); err != nil {
				slog.Error("clipboard watcher stopped", "error", err)
			}
		}()
		if onReady != nil {
			onReady(a)
		}
	}

	model := NewAppModel(ctx, opts)
	programOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, programOpts...)
	p = tea.NewProgram(model, programOpts...)

	_, err := p.Run()
	cancel()
	wg.Wait()
	for _, fn := range cleanup {
		fn()
	}

	if a := model.App(); a != nil {
		if cerr := a.Close(); cerr != nil {
			slog.Error("failed to close database", "error", cerr)
		}
	}

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	if model.Err != nil {
		return model.Err
	}
	return err
}
