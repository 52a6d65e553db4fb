package sysboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeBoard(goos string, env map[string]string, installed ...string) *SystemClipboard {
	return &SystemClipboard{
		goos:   goos,
		getenv: func(k string) string { return env[k] },
		lookPath: func(name string) (string, error) {
			for _, n := range installed {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		},
	}
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		goos string
		env  map[string]string
		want string
	}{
		{"macOS", "darwin", nil, "pbcopy"},
		{"X11", "linux", nil, "xclip, xsel, wl-copy"},
		{"Wayland", "linux", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, "wl-copy, xclip, xsel"},
		{"unsupported", "plan9", nil, "none on plan9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fakeBoard(tt.goos, tt.env).Candidates())
		})
	}
}

func TestIsSupported(t *testing.T) {
	assert.False(t, fakeBoard("linux", nil).IsSupported())
	assert.False(t, fakeBoard("linux", nil, "wl-paste").IsSupported(), "needs both read and write tools")
	assert.True(t, fakeBoard("linux", nil, "wl-paste", "wl-copy").IsSupported())
	assert.True(t, fakeBoard("linux", nil, "xsel").IsSupported())
	assert.False(t, fakeBoard("windows", nil, "xclip").IsSupported())
}

func TestUnsupportedReturnsErrors(t *testing.T) {
	board := fakeBoard("linux", nil)

	_, err := board.ReadText(context.Background())
	assert.Error(t, err)
	assert.Error(t, board.WriteText(context.Background(), "x"))
	assert.Equal(t, "command", board.Name())
}
