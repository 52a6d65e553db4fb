//go:build !cgo && !windows

package nativeboard

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by New in builds without cgo.
var ErrUnavailable = errors.New("native clipboard requires cgo")

// Board is unavailable in this build.
type Board struct{}

// New always fails without cgo.
func New() (*Board, error) {
	return nil, ErrUnavailable
}

func (b *Board) Name() string { return "native" }

func (b *Board) ReadText(ctx context.Context) (string, error) { return "", ErrUnavailable }

func (b *Board) WriteText(ctx context.Context, text string) error { return ErrUnavailable }
