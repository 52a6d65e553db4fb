//go:build cgo || windows

// Package nativeboard implements clipboard access through the OS clipboard
// API (golang.design/x/clipboard). On Linux this needs cgo and an X11 display.
package nativeboard

import (
	"context"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// Board is the native clipboard. Only text is supported.
type Board struct{}

// New initializes the native clipboard once per process.
func New() (*Board, error) {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	if initErr != nil {
		return nil, initErr
	}
	return &Board{}, nil
}

// Name identifies the backend in logs.
func (b *Board) Name() string {
	return "native"
}

// ReadText returns the clipboard text. A clipboard holding no text reads as "".
func (b *Board) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// WriteText replaces the clipboard text.
func (b *Board) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
