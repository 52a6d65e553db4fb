// Package theme holds the light and dark color palettes and a small store
// that loads, toggles and persists the active theme.
package theme

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/clipkeep/internal/store"
)

// Palette is the set of colors used to render one theme.
type Palette struct {
	Primary       lipgloss.Color
	Danger        lipgloss.Color
	Success       lipgloss.Color
	IconSecondary lipgloss.Color
	Background    lipgloss.Color
	Card          lipgloss.Color
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	Border        lipgloss.Color
}

var (
	primary       = lipgloss.Color("#1E90FF")
	danger        = lipgloss.Color("#DC3545")
	success       = lipgloss.Color("#28A745")
	iconSecondary = lipgloss.Color("#6C757D")
)

// Light is the default palette.
var Light = Palette{
	Primary:       primary,
	Danger:        danger,
	Success:       success,
	IconSecondary: iconSecondary,
	Background:    lipgloss.Color("#F8F9FA"),
	Card:          lipgloss.Color("#FFFFFF"),
	TextPrimary:   lipgloss.Color("#212529"),
	TextSecondary: lipgloss.Color("#6C757D"),
	Border:        lipgloss.Color("#DEE2E6"),
}

// Dark is the dark palette.
var Dark = Palette{
	Primary:       primary,
	Danger:        danger,
	Success:       success,
	IconSecondary: iconSecondary,
	Background:    lipgloss.Color("#1A1A1A"),
	Card:          lipgloss.Color("#2C2C2C"),
	TextPrimary:   lipgloss.Color("#F8F9FA"),
	TextSecondary: lipgloss.Color("#ADB5BD"),
	Border:        lipgloss.Color("#495057"),
}

// PaletteFor returns the palette for a theme name, defaulting to Light.
func PaletteFor(name string) Palette {
	if name == store.ThemeDark {
		return Dark
	}
	return Light
}

// Store owns the active theme. Subscribers are notified on every change.
type Store struct {
	settings store.SettingStore
	logger   *slog.Logger

	mu      sync.Mutex
	current string
	loaded  bool
	subs    map[int]func(string)
	nextSub int
}

// NewStore returns a store holding the light theme until Load runs.
func NewStore(settings store.SettingStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		settings: settings,
		logger:   logger,
		current:  store.ThemeLight,
		subs:     make(map[int]func(string)),
	}
}

// Load reads the persisted theme. Missing, invalid or unreadable values
// keep the current theme.
func (s *Store) Load(ctx context.Context) {
	value, ok, err := s.settings.Get(ctx, store.KeyTheme)
	switch {
	case err != nil:
		s.logger.Warn("failed to load theme, using default", "error", err)
	case !ok:
	case store.ValidateSetting(store.KeyTheme, value) != nil:
		s.logger.Warn("ignoring invalid theme setting", "value", value)
	default:
		s.set(value)
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
}

// Loaded reports whether Load has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Current returns the active theme name.
func (s *Store) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IsDark reports whether the dark theme is active.
func (s *Store) IsDark() bool {
	return s.Current() == store.ThemeDark
}

// Palette returns the active palette.
func (s *Store) Palette() Palette {
	return PaletteFor(s.Current())
}

// Toggle switches between light and dark and persists the choice. The
// switch takes effect even if persisting fails; the error is returned.
func (s *Store) Toggle(ctx context.Context) error {
	next := store.ThemeDark
	if s.IsDark() {
		next = store.ThemeLight
	}
	s.set(next)

	if err := s.settings.Set(ctx, store.KeyTheme, next); err != nil {
		s.logger.Error("failed to save theme", "theme", next, "error", err)
		return fmt.Errorf("failed to save theme: %w", err)
	}
	s.logger.Info("theme changed", "theme", next)
	return nil
}

func (s *Store) set(name string) {
	s.mu.Lock()
	if s.current == name {
		s.mu.Unlock()
		return
	}
	s.current = name
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(name)
	}
}

// Subscribe registers fn to be called with the new theme name after each
// change. It returns a function that removes the subscription.
func (s *Store) Subscribe(fn func(name string)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
