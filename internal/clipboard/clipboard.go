// Package clipboard abstracts the system clipboard as plain text.
// Backends live in subpackages: nativeboard talks to the OS directly,
// sysboard shells out to platform tools and mockboard is a test double.
package clipboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yiblet/clipkeep/internal/clipboard/nativeboard"
	"github.com/yiblet/clipkeep/internal/clipboard/sysboard"
)

// Clipboard reads and writes clipboard text.
type Clipboard interface {
	Name() string
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// Kind selects a clipboard backend.
type Kind string

const (
	KindAuto    Kind = "auto"
	KindNative  Kind = "native"
	KindCommand Kind = "command"
)

// ParseKind validates a backend name. Empty means auto.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindAuto:
		return KindAuto, nil
	case KindNative, KindCommand:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown clipboard backend %q (must be auto, native or command)", s)
	}
}

// AccessError reports a failed clipboard read or write.
type AccessError struct {
	Op      string
	Backend string
	Err     error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("clipboard %s via %s: %v", e.Op, e.Backend, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// New returns the backend for kind. Auto prefers the native backend and
// falls back to platform commands; it never fails, so a machine without
// any clipboard still runs with reads reporting errors.
func New(kind Kind, logger *slog.Logger) (Clipboard, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch kind {
	case KindNative:
		board, err := nativeboard.New()
		if err != nil {
			return nil, fmt.Errorf("native clipboard unavailable: %w", err)
		}
		return board, nil
	case KindCommand:
		board := sysboard.New()
		if !board.IsSupported() {
			return nil, fmt.Errorf("no clipboard command found (tried %s)", board.Candidates())
		}
		return board, nil
	}

	native, err := nativeboard.New()
	if err == nil {
		logger.Debug("using native clipboard")
		return native, nil
	}

	board := sysboard.New()
	if board.IsSupported() {
		logger.Info("native clipboard unavailable, using clipboard commands", "error", err)
	} else {
		logger.Warn("no clipboard backend available", "native_error", err, "tried", board.Candidates())
	}
	return board, nil
}
