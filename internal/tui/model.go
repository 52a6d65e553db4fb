// Package tui is the terminal interface for browsing and managing clipboard
// history. It is a bubbletea program over an app.App.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yiblet/clipkeep/internal/app"
	"github.com/yiblet/clipkeep/internal/export"
	"github.com/yiblet/clipkeep/internal/store"
	"github.com/yiblet/clipkeep/internal/theme"
)

// Screen is the top-level page being shown.
type Screen int

const (
	LoadingScreen Screen = iota
	ErrorScreen
	WelcomeScreen
	HomeScreen
	DetailScreen
	SettingsScreen
	ExportScreen
)

// UIMode is the modal state within a screen.
type UIMode int

const (
	NormalMode UIMode = iota
	SearchMode
	HelpMode
	DeleteMode
	EditMode
)

const (
	flashDuration   = 2 * time.Second
	refreshInterval = 500 * time.Millisecond
)

// ClipSavedMsg delivers a clip the watcher just persisted.
type ClipSavedMsg struct {
	Clip store.Clip
}

// ThemeChangedMsg is sent when the active theme changes.
type ThemeChangedMsg struct {
	Name string
}

type bootedMsg struct {
	app      *app.App
	clips    []store.Clip
	loadErr  error
	launched bool
}

type bootFailedMsg struct {
	err error
}

type flashExpiredMsg struct {
	id int
}

type refreshMsg struct{}

// BootFunc opens the application. It runs once, off the UI goroutine.
type BootFunc func(ctx context.Context) (*app.App, error)

// Options configures the model.
type Options struct {
	Bootstrap BootFunc
	ExportDir string
	// OnReady runs on the UI goroutine after a successful bootstrap.
	OnReady func(a *app.App)
}

// AppModel is the root bubbletea model.
type AppModel struct {
	ctx  context.Context
	opts Options
	app  *app.App

	Screen      Screen
	CurrentMode UIMode
	Width       int
	Height      int
	Styles      Styles
	Err         error

	// Clips holds every active clip, newest first. Visible is Clips
	// filtered by the search box.
	Clips   []store.Clip
	Visible []store.Clip
	List    ListModel
	Search  textinput.Model

	Detail        DetailModel
	DetailClip    store.Clip
	DetailDeleted bool
	LastDeleted   *store.Clip

	Settings     SettingsModel
	ExportCursor int
	Modal        ModalModel

	FlashMessage string
	FlashError   bool
	FlashExpiry  time.Time
	flashID      int
}

// NewAppModel creates a model in the loading screen.
func NewAppModel(ctx context.Context, opts Options) *AppModel {
	if opts.ExportDir == "" {
		opts.ExportDir = export.DefaultDir()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search clips"

	width, height := 80, 24
	m := &AppModel{
		ctx:      ctx,
		opts:     opts,
		Screen:   LoadingScreen,
		Width:    width,
		Height:   height,
		Styles:   NewStyles(theme.Light),
		Search:   search,
		Settings: NewSettingsModel(),
		Modal:    NewModalModel(),
	}
	m.resize(width, height)
	return m
}

// Init starts the bootstrap.
func (m *AppModel) Init() tea.Cmd {
	boot := m.opts.Bootstrap
	ctx := m.ctx
	return func() tea.Msg {
		if boot == nil {
			return bootFailedMsg{err: errors.New("no bootstrap configured")}
		}
		a, err := boot(ctx)
		if err != nil {
			return bootFailedMsg{err: err}
		}
		clips, loadErr := a.Clips().FindAll(ctx)
		return bootedMsg{app: a, clips: clips, loadErr: loadErr, launched: a.HasLaunched(ctx)}
	}
}

// App returns the application once bootstrapped, or nil.
func (m *AppModel) App() *app.App {
	return m.app
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case bootedMsg:
		return m, m.handleBooted(msg)
	case bootFailedMsg:
		m.Err = msg.err
		m.Screen = ErrorScreen
		return m, nil
	case ClipSavedMsg:
		m.insertClip(msg.Clip)
		return m, nil
	case ThemeChangedMsg:
		m.Styles = NewStyles(theme.PaletteFor(msg.Name))
		return m, nil
	case flashExpiredMsg:
		if msg.id == m.flashID {
			m.FlashMessage = ""
			m.FlashError = false
			m.FlashExpiry = time.Time{}
		}
		return m, nil
	case refreshMsg:
		return m, refreshCmd()
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	// Cursor blink and similar messages go to whichever input is focused.
	var cmd tea.Cmd
	switch {
	case m.Search.Focused():
		m.Search, cmd = m.Search.Update(msg)
	case m.Settings.Input.Focused():
		m.Settings.Input, cmd = m.Settings.Input.Update(msg)
	}
	return m, cmd
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m *AppModel) resize(width, height int) {
	m.Width = max(width, 30)
	m.Height = max(height, 10)
	// title, search box, blank line, status line
	m.List.Update(ResizeListMsg{Width: m.Width, Height: m.Height - 5})
	// title, metadata, card border, status line
	m.Detail.Update(ResizeDetailMsg{Width: m.Width, Height: m.Height - 6})
	m.Search.Width = m.Width - 4
}

func (m *AppModel) handleBooted(msg bootedMsg) tea.Cmd {
	m.app = msg.app
	m.Styles = NewStyles(msg.app.Theme().Palette())
	m.Clips = msg.clips
	m.applyFilter(0)

	if msg.launched {
		m.Screen = HomeScreen
	} else {
		m.Screen = WelcomeScreen
	}
	if m.opts.OnReady != nil {
		m.opts.OnReady(msg.app)
	}

	cmds := []tea.Cmd{refreshCmd()}
	if msg.loadErr != nil {
		cmds = append(cmds, m.setFlashError(fmt.Sprintf("Failed to load clips: %v", msg.loadErr)))
	}
	return tea.Batch(cmds...)
}

// handleKeyPress dispatches on screen first, then on mode.
func (m *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.Screen {
	case LoadingScreen, ErrorScreen:
		switch msg.String() {
		case "q", "esc", "enter":
			return m, tea.Quit
		}
		return m, nil
	case WelcomeScreen:
		return m.handleWelcomeKeys(msg.String())
	case DetailScreen:
		return m.handleDetailKeys(msg.String())
	case SettingsScreen:
		return m.handleSettingsKeys(msg)
	case ExportScreen:
		return m.handleExportKeys(msg.String())
	default:
		return m.handleHomeKeys(msg)
	}
}

func (m *AppModel) handleWelcomeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "enter", " ":
		m.Screen = HomeScreen
		if err := m.app.MarkLaunched(m.ctx); err != nil {
			return m, m.setFlashError(fmt.Sprintf("Failed to save launch state: %v", err))
		}
	}
	return m, nil
}

func (m *AppModel) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.CurrentMode {
	case SearchMode:
		return m.handleSearchModeKeys(msg)
	case HelpMode:
		switch key {
		case "z", "?", "esc", "q":
			m.CurrentMode = NormalMode
		}
		return m, nil
	case DeleteMode:
		return m.handleDeleteModeKeys(key)
	}

	maxIndex := len(m.Visible) - 1
	switch key {
	case "q":
		return m, tea.Quit
	case "esc":
		if m.Search.Value() != "" {
			m.Search.SetValue("")
			m.applyFilter(m.selectedID())
		}
		return m, nil
	case "/":
		m.CurrentMode = SearchMode
		return m, m.Search.Focus()
	case "z", "?":
		m.CurrentMode = HelpMode
		return m, nil
	case "up", "k":
		m.List.Update(NavigateUpMsg{})
	case "down", "j":
		m.List.Update(NavigateDownMsg{MaxIndex: maxIndex})
	case "g", "home":
		m.List.Update(GoToTopMsg{})
	case "G", "end":
		m.List.Update(GoToBottomMsg{MaxIndex: maxIndex})
	case "enter", "l", "right":
		if clip, ok := m.selected(); ok {
			m.openDetail(clip)
		}
	case "c":
		if clip, ok := m.selected(); ok {
			return m, m.copyClip(clip)
		}
		return m, m.setFlashError("No clip selected")
	case "d":
		if clip, ok := m.selected(); ok {
			m.CurrentMode = DeleteMode
			m.Modal.Update(ShowDeleteConfirmation(Preview(clip.Content, 40), clip.ID))
		}
	case "u":
		return m, m.undoDelete()
	case "s":
		m.Screen = SettingsScreen
		m.Settings.Cursor = ThemeRow
	case "e":
		m.Screen = ExportScreen
	case "t":
		return m, m.toggleTheme()
	case "r":
		return m, m.reload()
	}
	return m, nil
}

func (m *AppModel) handleSearchModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Search.SetValue("")
		m.Search.Blur()
		m.CurrentMode = NormalMode
		m.applyFilter(m.selectedID())
		return m, nil
	case "enter":
		m.Search.Blur()
		m.CurrentMode = NormalMode
		return m, nil
	case "up":
		m.List.Update(NavigateUpMsg{})
		return m, nil
	case "down":
		m.List.Update(NavigateDownMsg{MaxIndex: len(m.Visible) - 1})
		return m, nil
	}

	var cmd tea.Cmd
	before := m.Search.Value()
	m.Search, cmd = m.Search.Update(msg)
	if m.Search.Value() != before {
		m.List.Update(GoToTopMsg{})
		m.applyFilter(0)
	}
	return m, cmd
}

func (m *AppModel) handleDeleteModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.Modal.Update(HideModalMsg{})
		m.CurrentMode = NormalMode
		if clip, ok := m.selected(); ok {
			return m, m.deleteClip(clip)
		}
	case "n", "N", "esc":
		m.Modal.Update(HideModalMsg{})
		m.CurrentMode = NormalMode
	}
	return m, nil
}

func (m *AppModel) handleDetailKeys(key string) (tea.Model, tea.Cmd) {
	if m.CurrentMode == HelpMode {
		switch key {
		case "z", "?", "esc", "q":
			m.CurrentMode = NormalMode
		}
		return m, nil
	}

	maxScroll := m.Detail.MaxScroll()
	switch key {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "h", "left":
		m.goHome()
	case "z", "?":
		m.CurrentMode = HelpMode
	case "up", "k":
		m.Detail.Update(ScrollUpMsg{})
	case "down", "j":
		m.Detail.Update(ScrollDownMsg{MaxScroll: maxScroll})
	case "ctrl+u", "pgup":
		m.Detail.Update(PageUpMsg{})
	case "ctrl+d", "pgdown":
		m.Detail.Update(PageDownMsg{MaxScroll: maxScroll})
	case "g", "home":
		m.Detail.Update(ScrollToTopMsg{})
	case "G", "end":
		m.Detail.Update(ScrollToBottomMsg{MaxScroll: maxScroll})
	case "c":
		return m, m.copyClip(m.DetailClip)
	case "d":
		if m.DetailDeleted {
			return m, nil
		}
		cmd := m.deleteClip(m.DetailClip)
		m.DetailDeleted = m.LastDeleted != nil && m.LastDeleted.ID == m.DetailClip.ID
		return m, cmd
	case "u":
		if !m.DetailDeleted {
			return m, nil
		}
		cmd := m.undoDelete()
		m.DetailDeleted = m.LastDeleted != nil
		return m, cmd
	}
	return m, nil
}

func (m *AppModel) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.CurrentMode == EditMode {
		switch key {
		case "esc":
			m.Settings.Input.Blur()
			m.CurrentMode = NormalMode
			return m, nil
		case "enter":
			return m, m.saveInterval()
		}
		var cmd tea.Cmd
		m.Settings.Input, cmd = m.Settings.Input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "esc":
		m.goHome()
	case "up", "k":
		m.Settings.Cursor = max(m.Settings.Cursor-1, 0)
	case "down", "j":
		m.Settings.Cursor = min(m.Settings.Cursor+1, settingsRows-1)
	case "t":
		return m, m.toggleTheme()
	case "enter", " ":
		if m.Settings.Cursor == ThemeRow {
			return m, m.toggleTheme()
		}
		m.CurrentMode = EditMode
		m.Settings.Input.SetValue(store.FormatInterval(m.app.Interval()))
		m.Settings.Input.CursorEnd()
		return m, m.Settings.Input.Focus()
	}
	return m, nil
}

func (m *AppModel) handleExportKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "esc":
		m.goHome()
	case "up", "k":
		m.ExportCursor = max(m.ExportCursor-1, 0)
	case "down", "j":
		m.ExportCursor = min(m.ExportCursor+1, len(exportFormats)-1)
	case "enter":
		format := exportFormats[m.ExportCursor]
		path, err := m.app.Export(m.ctx, format, m.opts.ExportDir)
		if err != nil {
			return m, m.setFlashError(fmt.Sprintf("Export failed: %v", err))
		}
		return m, m.setFlashMessage("Exported to " + path)
	}
	return m, nil
}

func (m *AppModel) goHome() {
	m.Screen = HomeScreen
	m.CurrentMode = NormalMode
	m.Modal.Update(HideModalMsg{})
	m.Settings.Input.Blur()
}

func (m *AppModel) openDetail(clip store.Clip) {
	m.DetailClip = clip
	m.DetailDeleted = false
	m.Detail.Update(SetContentMsg{Content: clip.Content})
	m.Screen = DetailScreen
}

func (m *AppModel) selected() (store.Clip, bool) {
	if m.List.Cursor < 0 || m.List.Cursor >= len(m.Visible) {
		return store.Clip{}, false
	}
	return m.Visible[m.List.Cursor], true
}

func (m *AppModel) selectedID() int64 {
	if clip, ok := m.selected(); ok {
		return clip.ID
	}
	return 0
}

// applyFilter recomputes Visible from the search query and keeps keepID
// under the cursor when it is still visible.
func (m *AppModel) applyFilter(keepID int64) {
	query := m.Search.Value()
	m.Visible = m.Visible[:0]
	for _, clip := range m.Clips {
		if store.MatchesQuery(clip.Content, query) {
			m.Visible = append(m.Visible, clip)
		}
	}
	if keepID != 0 {
		if i := slices.IndexFunc(m.Visible, func(c store.Clip) bool { return c.ID == keepID }); i >= 0 {
			m.List.Cursor = i
		}
	}
	m.List.Clamp(len(m.Visible))
}

// insertClip adds clip in newest-first order unless it is already listed.
func (m *AppModel) insertClip(clip store.Clip) {
	if slices.ContainsFunc(m.Clips, func(c store.Clip) bool { return c.ID == clip.ID }) {
		return
	}
	keep := m.selectedID()
	i, _ := slices.BinarySearchFunc(m.Clips, clip, newestFirst)
	m.Clips = slices.Insert(m.Clips, i, clip)
	m.applyFilter(keep)
}

func newestFirst(a, b store.Clip) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}

func (m *AppModel) removeClip(id int64) {
	keep := m.selectedID()
	m.Clips = slices.DeleteFunc(m.Clips, func(c store.Clip) bool { return c.ID == id })
	if keep == id {
		keep = 0
	}
	m.applyFilter(keep)
}

func (m *AppModel) copyClip(clip store.Clip) tea.Cmd {
	if err := m.app.Copy(m.ctx, clip); err != nil {
		return m.setFlashError(fmt.Sprintf("Copy failed: %v", err))
	}
	return m.setFlashMessage(fmt.Sprintf("Copied %d bytes to clipboard", len(clip.Content)))
}

func (m *AppModel) deleteClip(clip store.Clip) tea.Cmd {
	if err := m.app.Delete(m.ctx, clip.ID); err != nil {
		return m.setFlashError(fmt.Sprintf("Delete failed: %v", err))
	}
	m.removeClip(clip.ID)
	m.LastDeleted = &clip
	return m.setFlashMessage(fmt.Sprintf("Clip #%d deleted. Press u to undo.", clip.ID))
}

func (m *AppModel) undoDelete() tea.Cmd {
	if m.LastDeleted == nil {
		return nil
	}
	clip := *m.LastDeleted
	if err := m.app.Restore(m.ctx, clip.ID); err != nil {
		return m.setFlashError(fmt.Sprintf("Restore failed: %v", err))
	}
	m.LastDeleted = nil
	clip.DeletedAt = nil
	m.insertClip(clip)
	return m.setFlashMessage(fmt.Sprintf("Clip #%d restored", clip.ID))
}

func (m *AppModel) toggleTheme() tea.Cmd {
	err := m.app.Theme().Toggle(m.ctx)
	m.Styles = NewStyles(m.app.Theme().Palette())
	if err != nil {
		return m.setFlashError(fmt.Sprintf("Theme not saved: %v", err))
	}
	return nil
}

func (m *AppModel) saveInterval() tea.Cmd {
	value := strings.TrimSpace(m.Settings.Input.Value())
	ms, err := strconv.Atoi(value)
	if err == nil {
		err = m.app.SetInterval(m.ctx, ms)
	}
	if err != nil {
		return m.setFlashError(fmt.Sprintf("Invalid interval: %v", err))
	}
	m.Settings.Input.Blur()
	m.CurrentMode = NormalMode
	return m.setFlashMessage(fmt.Sprintf("Clipboard check interval set to %d ms", ms))
}

func (m *AppModel) reload() tea.Cmd {
	clips, err := m.app.Clips().FindAll(m.ctx)
	if err != nil {
		return m.setFlashError(fmt.Sprintf("Failed to load clips: %v", err))
	}
	keep := m.selectedID()
	m.Clips = clips
	m.applyFilter(keep)
	return nil
}

// setFlashMessage shows message on the status line for flashDuration.
func (m *AppModel) setFlashMessage(message string) tea.Cmd {
	m.flashID++
	id := m.flashID
	m.FlashMessage = message
	m.FlashError = false
	m.FlashExpiry = time.Now().Add(flashDuration)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{id: id}
	})
}

func (m *AppModel) setFlashError(message string) tea.Cmd {
	cmd := m.setFlashMessage(message)
	m.FlashError = true
	return cmd
}
