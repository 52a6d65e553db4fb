package tui

import (
	"fmt"
	"strings"
	"time"
)

// View renders the current screen.
func (m *AppModel) View() string {
	var body string
	switch m.Screen {
	case LoadingScreen:
		return m.Styles.Muted.Render("Loading clipboard history…")
	case ErrorScreen:
		return renderErrorView(m)
	case WelcomeScreen:
		body = renderWelcomeView(m)
	case DetailScreen:
		body = DetailView(m.Detail, m.DetailClip, m.DetailDeleted, m.Styles)
	case SettingsScreen:
		body = SettingsView(m.Settings, m.Styles, m.app.Theme().Current(), m.app.Interval(), m.CurrentMode == EditMode)
	case ExportScreen:
		body = ExportView(m.ExportCursor, m.Styles, m.opts.ExportDir, len(m.Clips))
	default:
		body = renderHomeView(m)
	}

	if m.CurrentMode == HelpMode {
		body = renderHelpView(m)
	}

	view := body + "\n\n" + renderStatusLine(m)
	if m.Modal.Active {
		return ModalView(m.Modal, m.Styles, view, m.Width, m.Height)
	}
	return view
}

func renderErrorView(m *AppModel) string {
	return m.Styles.Error.Render("clipkeep failed to start") + "\n\n" +
		m.Styles.Text.Render(fmt.Sprint(m.Err)) + "\n\n" +
		m.Styles.Muted.Render("Press q to quit.")
}

func renderWelcomeView(m *AppModel) string {
	lines := []string{
		m.Styles.Title.Render("Welcome to clipkeep"),
		"",
		m.Styles.Text.Render("clipkeep keeps a searchable history of everything you copy."),
		m.Styles.Text.Render("It runs in the background while this window is open,"),
		m.Styles.Text.Render("and every clip stays on this machine."),
		"",
		m.Styles.Muted.Render("Press enter to get started."),
	}
	return strings.Join(lines, "\n")
}

func renderHomeView(m *AppModel) string {
	var b strings.Builder

	header := m.Styles.Title.Render("clipkeep") + m.Styles.Muted.Render(fmt.Sprintf("  %d clips", len(m.Clips)))
	if m.app != nil {
		if m.app.Watcher().IsCopied() {
			header += "  " + m.Styles.Badge.Render("copied")
		} else if !m.app.Watcher().HasContent() {
			header += "  " + m.Styles.Muted.Render("clipboard empty")
		}
	}
	b.WriteString(header + "\n")

	if m.CurrentMode == SearchMode || m.Search.Value() != "" {
		b.WriteString(m.Search.View() + "\n")
	} else {
		b.WriteString(m.Styles.Muted.Render("Press / to search") + "\n")
	}
	b.WriteString("\n")
	b.WriteString(ListView(m.List, m.Visible, m.Styles, m.Search.Value(), time.Now()))
	return b.String()
}

// renderStatusLine shows the flash message if one is active, otherwise key
// hints for the current screen.
func renderStatusLine(m *AppModel) string {
	if m.FlashMessage != "" && time.Now().Before(m.FlashExpiry) {
		if m.FlashError {
			return m.Styles.Error.Render(m.FlashMessage)
		}
		return m.Styles.Success.Render(m.FlashMessage)
	}

	var hint string
	switch {
	case m.CurrentMode == HelpMode:
		hint = "z: close help"
	case m.CurrentMode == SearchMode:
		hint = "enter: keep filter  esc: clear"
	case m.CurrentMode == EditMode:
		hint = "enter: save  esc: cancel"
	case m.Screen == WelcomeScreen:
		hint = "enter: continue  q: quit"
	case m.Screen == DetailScreen:
		hint = "c: copy  d: delete  u: undo  esc: back  z: help"
	case m.Screen == SettingsScreen:
		hint = "enter: change  t: theme  esc: back"
	case m.Screen == ExportScreen:
		hint = "enter: export  esc: back"
	default:
		hint = "enter: open  c: copy  d: delete  s: settings  e: export  z: help  q: quit"
	}
	return m.Styles.Muted.Render(Truncate(hint, m.Width))
}

func renderHelpView(m *AppModel) string {
	help := `clipkeep - clipboard history

HOME
  j, k, ↑, ↓   Move selection
  g, G         First / last clip
  enter        Open clip
  /            Search (esc clears)
  c            Copy selected clip
  d            Delete selected clip
  u            Undo last delete
  s            Settings
  e            Export history
  t            Toggle light/dark theme
  r            Reload from database

CLIP
  j, k         Scroll
  ctrl+d/u     Half page down / up
  c            Copy
  d            Delete
  u            Restore
  esc          Back to the list

GLOBAL
  z, ?         Toggle this help
  q, ctrl+c    Quit`

	return m.Styles.Card.Width(max(m.Width-4, 10)).Render(m.Styles.Text.Render(help))
}
