package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSetting(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"light theme", KeyTheme, "light", false},
		{"dark theme", KeyTheme, "dark", false},
		{"unknown theme", KeyTheme, "solarized", true},
		{"interval at minimum", KeyCheckInterval, "100", false},
		{"interval below minimum", KeyCheckInterval, "99", true},
		{"interval not a number", KeyCheckInterval, "fast", true},
		{"interval at maximum", KeyCheckInterval, "86400000", false},
		{"interval above maximum", KeyCheckInterval, "86400001", true},
		{"interval wrapping to 100ms", KeyCheckInterval, "18446744073810", true},
		{"interval wrapping negative", KeyCheckInterval, "9223372036855", true},
		{"interval beyond int64", KeyCheckInterval, "99999999999999999999", true},
		{"unknown key", "anything", "goes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSetting(tt.key, tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSetting)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseInterval(t *testing.T) {
	d, err := ParseInterval("1000")
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
	assert.Equal(t, "1000", FormatInterval(d))

	_, err = ParseInterval("-5")
	assert.ErrorIs(t, err, ErrInvalidSetting)

	_, err = ParseInterval("18446744073810")
	require.ErrorIs(t, err, ErrInvalidSetting)
	assert.Contains(t, err.Error(), "at most")
}

func TestIntervalFromMillis(t *testing.T) {
	d, err := IntervalFromMillis(250)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	_, err = IntervalFromMillis(MaxCheckInterval.Milliseconds() + 1)
	assert.ErrorIs(t, err, ErrInvalidSetting)
	_, err = IntervalFromMillis(99)
	assert.ErrorIs(t, err, ErrInvalidSetting)
}

func TestClipActive(t *testing.T) {
	c := Clip{ID: 1, Content: "x"}
	assert.True(t, c.Active())

	now := time.Now()
	c.DeletedAt = &now
	assert.False(t, c.Active())
}
