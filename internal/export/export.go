// Package export writes clip history as CSV or JSON files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/yiblet/clipkeep/internal/store"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// CSVHeader is the first line of every CSV export.
const CSVHeader = "ID,Content,Source,Created At,Updated At"

// ParseFormat validates a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (must be json or csv)", s)
	}
}

// Filename returns clipboard_history_<date>.<format> for now.
func Filename(format Format, now time.Time) string {
	return fmt.Sprintf("clipboard_history_%s.%s", now.Format("2006-01-02"), format)
}

// DefaultDir is the user's download directory.
func DefaultDir() string {
	if xdg.UserDirs.Download != "" {
		return xdg.UserDirs.Download
	}
	return xdg.Home
}

// Write encodes clips to w in the given format.
func Write(w io.Writer, format Format, clips []store.Clip) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, clips)
	case FormatCSV:
		return WriteCSV(w, clips)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteJSON writes clips as a pretty-printed JSON array.
func WriteJSON(w io.Writer, clips []store.Clip) error {
	if clips == nil {
		clips = []store.Clip{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(clips); err != nil {
		return fmt.Errorf("failed to encode clips: %w", err)
	}
	return nil
}

// WriteCSV writes a header line and one line per clip. Every value is
// quoted and embedded quotes are doubled.
func WriteCSV(w io.Writer, clips []store.Clip) error {
	var b strings.Builder
	b.WriteString(CSVHeader)
	for _, c := range clips {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			quote(strconv.FormatInt(c.ID, 10)),
			quote(c.Content),
			quote(c.Source),
			quote(formatTime(c.CreatedAt)),
			quote(formatTime(c.UpdatedAt)),
		}, ","))
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ToFile writes clips into dir under Filename and returns the full path.
func ToFile(dir string, format Format, clips []store.Clip, now time.Time) (string, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, Filename(format, now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Write(f, format, clips); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}
