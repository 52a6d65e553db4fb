package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/yiblet/clipkeep/internal/export"
	"github.com/yiblet/clipkeep/internal/store"
)

// Rows on the settings screen.
const (
	ThemeRow = iota
	IntervalRow
	settingsRows
)

// SettingsModel is the settings screen state. Input edits the poll interval.
type SettingsModel struct {
	Cursor int
	Input  textinput.Model
}

func NewSettingsModel() SettingsModel {
	input := textinput.New()
	input.Placeholder = "milliseconds"
	input.CharLimit = 7
	input.Width = 10
	input.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return fmt.Errorf("digits only")
			}
		}
		return nil
	}
	return SettingsModel{Input: input}
}

// SettingsView renders the theme and interval rows.
func SettingsView(model SettingsModel, styles Styles, themeName string, interval time.Duration, editing bool) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Settings") + "\n\n")

	rows := []struct {
		label string
		value string
	}{
		{"Theme", themeName},
		{"Clipboard check interval", fmt.Sprintf("%d ms", interval.Milliseconds())},
	}
	for i, row := range rows {
		value := row.value
		if i == IntervalRow && editing {
			value = model.Input.View()
		}
		line := fmt.Sprintf("%-26s %s", row.label, value)
		if i == model.Cursor && !editing {
			line = styles.Selected.Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + styles.Muted.Render(fmt.Sprintf("The interval must be at least %d ms.", store.MinCheckInterval.Milliseconds())))
	return b.String()
}

// Export formats in the order shown.
var exportFormats = []export.Format{export.FormatJSON, export.FormatCSV}

// ExportView renders the format choice and the target directory.
func ExportView(cursor int, styles Styles, dir string, count int) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Export history") + "\n\n")
	b.WriteString(styles.Text.Render(fmt.Sprintf("%d clips will be written to %s", count, dir)) + "\n\n")
	for i, f := range exportFormats {
		line := fmt.Sprintf("  %s", strings.ToUpper(string(f)))
		if i == cursor {
			line = styles.Selected.Render(line + "  ")
		} else {
			line = styles.Text.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
