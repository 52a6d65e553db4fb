package store

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Setting keys.
const (
	KeyTheme         = "theme"
	KeyCheckInterval = "clipboard_check_interval"
	KeyHasLaunched   = "has_launched"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Bounds on the clipboard poll interval.
const (
	MinCheckInterval = 100 * time.Millisecond
	MaxCheckInterval = 24 * time.Hour
)

// ErrInvalidSetting is returned when a known setting is given a bad value.
var ErrInvalidSetting = errors.New("invalid setting")

// DefaultSettings are seeded on first startup.
var DefaultSettings = map[string]string{
	KeyTheme:         ThemeLight,
	KeyCheckInterval: "1000",
}

// ValidateSetting checks value against the rules for key.
// Unknown keys are accepted as is.
func ValidateSetting(key, value string) error {
	switch key {
	case KeyTheme:
		if value != ThemeLight && value != ThemeDark {
			return fmt.Errorf("%w: theme must be %q or %q, got %q", ErrInvalidSetting, ThemeLight, ThemeDark, value)
		}
	case KeyCheckInterval:
		if _, err := ParseInterval(value); err != nil {
			return err
		}
	}
	return nil
}

// ParseInterval parses a poll interval stored as integer milliseconds.
func ParseInterval(value string) (time.Duration, error) {
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: interval must be an integer number of milliseconds, got %q", ErrInvalidSetting, value)
	}
	return IntervalFromMillis(ms)
}

// IntervalFromMillis converts ms to a poll interval. The range is checked
// before converting so large values cannot overflow.
func IntervalFromMillis(ms int64) (time.Duration, error) {
	if ms < MinCheckInterval.Milliseconds() {
		return 0, fmt.Errorf("%w: interval must be at least %d ms, got %d", ErrInvalidSetting, MinCheckInterval.Milliseconds(), ms)
	}
	if ms > MaxCheckInterval.Milliseconds() {
		return 0, fmt.Errorf("%w: interval must be at most %d ms, got %d", ErrInvalidSetting, MaxCheckInterval.Milliseconds(), ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// FormatInterval renders d the way ParseInterval expects it.
func FormatInterval(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
