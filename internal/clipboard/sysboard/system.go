// Package sysboard implements system clipboard operations using platform-specific commands.
// On macOS it uses pbcopy/pbpaste, on Linux it uses wl-clipboard under Wayland
// and xclip or xsel under X11.
package sysboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// command is one clipboard tool with its read and write invocations.
type command struct {
	read  []string
	write []string
}

var (
	pbcopy = command{read: []string{"pbpaste"}, write: []string{"pbcopy"}}
	wlCopy = command{read: []string{"wl-paste", "--no-newline"}, write: []string{"wl-copy"}}
	xclip  = command{read: []string{"xclip", "-selection", "clipboard", "-o"}, write: []string{"xclip", "-selection", "clipboard"}}
	xsel   = command{read: []string{"xsel", "--clipboard", "--output"}, write: []string{"xsel", "--clipboard", "--input"}}
)

// SystemClipboard implements clipboard access using system commands.
type SystemClipboard struct {
	goos     string
	getenv   func(string) string
	lookPath func(string) (string, error)
}

// New creates a new SystemClipboard instance
func New() *SystemClipboard {
	return &SystemClipboard{
		goos:     runtime.GOOS,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
	}
}

// Name identifies the backend in logs.
func (s *SystemClipboard) Name() string {
	return "command"
}

// candidates lists the tools to try, in order, for this platform.
func (s *SystemClipboard) candidates() []command {
	switch s.goos {
	case "darwin":
		return []command{pbcopy}
	case "linux", "freebsd", "openbsd", "netbsd":
		if s.getenv("WAYLAND_DISPLAY") != "" {
			return []command{wlCopy, xclip, xsel}
		}
		return []command{xclip, xsel, wlCopy}
	default:
		return nil
	}
}

// Candidates returns the tool names tried on this platform.
func (s *SystemClipboard) Candidates() string {
	names := make([]string, 0, 3)
	for _, c := range s.candidates() {
		names = append(names, c.write[0])
	}
	if len(names) == 0 {
		return "none on " + s.goos
	}
	return strings.Join(names, ", ")
}

// available returns the candidates installed on this system.
func (s *SystemClipboard) available() []command {
	var found []command
	for _, c := range s.candidates() {
		if _, err := s.lookPath(c.read[0]); err != nil {
			continue
		}
		if _, err := s.lookPath(c.write[0]); err != nil {
			continue
		}
		found = append(found, c)
	}
	return found
}

// IsSupported returns true if at least one clipboard tool is installed.
func (s *SystemClipboard) IsSupported() bool {
	return len(s.available()) > 0
}

// ReadText returns the clipboard text from the first tool that succeeds.
func (s *SystemClipboard) ReadText(ctx context.Context) (string, error) {
	tools := s.available()
	if len(tools) == 0 {
		return "", fmt.Errorf("clipboard operations not supported on %s (tried %s)", s.goos, s.Candidates())
	}

	var errs []error
	for _, c := range tools {
		out, err := readWithCommand(ctx, c.read[0], c.read[1:]...)
		if err == nil {
			return out, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.read[0], err))
	}
	return "", fmt.Errorf("failed to read clipboard: %w", errors.Join(errs...))
}

// WriteText replaces the clipboard text using the first tool that succeeds.
func (s *SystemClipboard) WriteText(ctx context.Context, text string) error {
	tools := s.available()
	if len(tools) == 0 {
		return fmt.Errorf("clipboard operations not supported on %s (tried %s)", s.goos, s.Candidates())
	}

	var errs []error
	for _, c := range tools {
		err := writeWithCommand(ctx, text, c.write[0], c.write[1:]...)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.write[0], err))
	}
	return fmt.Errorf("failed to write clipboard: %w", errors.Join(errs...))
}

// readWithCommand executes a command and returns its output
func readWithCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return out.String(), nil
}

// writeWithCommand executes a command with text as stdin
func writeWithCommand(ctx context.Context, text, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
