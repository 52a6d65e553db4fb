// Package watcher polls the system clipboard and reports each distinct new
// value exactly once.
//
// The same value read on consecutive polls never produces more than one
// event. Values written through WriteText are cached first, so the watcher
// does not report its own writes. Delivery is at-most-once: the cache
// advances before the handler runs, and a failing handler is not retried.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yiblet/clipkeep/internal/clipboard"
	"github.com/yiblet/clipkeep/internal/store"
)

const (
	// DefaultInterval is the poll interval when no setting overrides it.
	DefaultInterval = 500 * time.Millisecond

	// DefaultCopiedTimeout is how long IsCopied stays true after WriteText.
	DefaultCopiedTimeout = 1500 * time.Millisecond
)

// Handler receives each newly detected clip.
type Handler func(ctx context.Context, clip store.NewClip) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the initial poll interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithCopiedTimeout sets how long the copied flag stays raised.
func WithCopiedTimeout(d time.Duration) Option {
	return func(w *Watcher) {
		w.copiedTimeout = d
	}
}

// WithHandler registers the new-clip handler.
func WithHandler(h Handler) Option {
	return func(w *Watcher) {
		w.handler = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watcher polls a clipboard for changes.
type Watcher struct {
	board         clipboard.Clipboard
	handler       Handler
	logger        *slog.Logger
	copiedTimeout time.Duration

	mu         sync.Mutex
	last       string
	hasLast    bool
	interval   time.Duration
	copiedGen  uint64
	copiedStop func() bool

	writeSeq   atomic.Uint64
	writing    atomic.Int32
	hasContent atomic.Bool
	copied     atomic.Bool
	ticking    atomic.Bool
	restart    chan time.Duration
}

// New creates a watcher over board. Polling starts with Run.
func New(board clipboard.Clipboard, opts ...Option) *Watcher {
	w := &Watcher{
		board:         board,
		logger:        slog.Default(),
		copiedTimeout: DefaultCopiedTimeout,
		interval:      DefaultInterval,
		restart:       make(chan time.Duration, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run reads the clipboard once to initialize HasContent, then polls until
// ctx is done. The initial read is never reported as a new clip. Run waits
// for an in-flight tick before returning; that tick's result is discarded.
func (w *Watcher) Run(ctx context.Context) error {
	w.refresh(ctx)

	interval := w.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	w.logger.Info("clipboard watcher started", "backend", w.board.Name(), "interval", interval)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("clipboard watcher stopped")
			return nil
		case d := <-w.restart:
			ticker.Reset(d)
			w.logger.Info("clipboard poll interval changed", "interval", d)
		case <-ticker.C:
			if w.ticking.Load() {
				w.logger.Debug("previous poll still running, skipping tick")
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.Tick(ctx)
			}()
		}
	}
}

// refresh updates HasContent from a single read.
func (w *Watcher) refresh(ctx context.Context) {
	text, err := w.board.ReadText(ctx)
	if err != nil {
		w.readFailed(err)
		return
	}
	w.hasContent.Store(text != "")
}

// Tick polls the clipboard once and reports whether a new clip was emitted.
// A tick that starts while another is running is skipped.
func (w *Watcher) Tick(ctx context.Context) bool {
	if !w.ticking.CompareAndSwap(false, true) {
		w.logger.Debug("previous poll still running, skipping tick")
		return false
	}
	defer w.ticking.Store(false)

	seq := w.writeSeq.Load()
	text, err := w.board.ReadText(ctx)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		w.readFailed(err)
		return false
	}
	if text == "" {
		w.hasContent.Store(false)
		return false
	}
	w.hasContent.Store(true)

	w.mu.Lock()
	// A WriteText during or overlapping the read makes the value stale.
	if w.writing.Load() > 0 || w.writeSeq.Load() != seq || (w.hasLast && text == w.last) {
		w.mu.Unlock()
		return false
	}
	w.last, w.hasLast = text, true
	w.mu.Unlock()

	w.logger.Debug("new clipboard content", "bytes", len(text))
	if w.handler != nil {
		clip := store.NewClip{Content: text, Source: store.SourceSystem}
		if err := w.handler(ctx, clip); err != nil {
			w.logger.Error("failed to handle new clip", "error", err)
		}
	}
	return true
}

func (w *Watcher) readFailed(err error) {
	w.hasContent.Store(false)
	var aerr *clipboard.AccessError
	if !errors.As(err, &aerr) {
		aerr = &clipboard.AccessError{Op: "read", Backend: w.board.Name(), Err: err}
	}
	w.logger.Warn("failed to read clipboard", "error", aerr)
}

// WriteText sets the clipboard and caches the value so the next poll does
// not report it. It also raises the copied flag. The board write runs
// without holding the lock, since command backends spawn a process.
func (w *Watcher) WriteText(ctx context.Context, text string) error {
	w.writing.Add(1)
	defer w.writing.Add(-1)

	if err := w.board.WriteText(ctx, text); err != nil {
		aerr := &clipboard.AccessError{Op: "write", Backend: w.board.Name(), Err: err}
		w.logger.Warn("failed to write clipboard", "error", aerr)
		return aerr
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.writeSeq.Add(1)
	w.last, w.hasLast = text, text != ""
	w.hasContent.Store(text != "")
	w.markCopiedLocked()
	return nil
}

func (w *Watcher) markCopiedLocked() {
	if w.copiedStop != nil {
		w.copiedStop()
	}
	w.copiedGen++
	gen := w.copiedGen
	w.copied.Store(true)

	timer := time.AfterFunc(w.copiedTimeout, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.copiedGen == gen {
			w.copied.Store(false)
		}
	})
	w.copiedStop = timer.Stop
}

// SetInitialLastClip seeds the cache, typically with the latest persisted
// clip, so it is not reported again after a restart. An empty value clears
// the cache.
func (w *Watcher) SetInitialLastClip(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last, w.hasLast = text, text != ""
}

// SetInterval changes the poll interval. A running loop restarts its
// ticker with the new value.
func (w *Watcher) SetInterval(d time.Duration) error {
	if d <= 0 {
		return errors.New("poll interval must be positive")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = d

	// Replace any restart the loop has not picked up yet.
	select {
	case <-w.restart:
	default:
	}
	w.restart <- d
	return nil
}

// Interval returns the current poll interval.
func (w *Watcher) Interval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.interval
}

// HasContent reports whether the last read found non-empty text.
func (w *Watcher) HasContent() bool {
	return w.hasContent.Load()
}

// IsCopied reports whether WriteText succeeded recently.
func (w *Watcher) IsCopied() bool {
	return w.copied.Load()
}

// LastCachedClip returns the cached clipboard value.
func (w *Watcher) LastCachedClip() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.hasLast
}
