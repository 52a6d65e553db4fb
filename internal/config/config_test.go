package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "auto", config.Clipboard)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, DefaultDatabasePath(), config.DBPath())
	assert.Equal(t, DefaultLogFile(), config.LogFilePath())
}

func TestConfig_PathResolution(t *testing.T) {
	config := &Config{DatabasePath: "history.db", LogFile: "/var/log/clipkeep.log"}

	assert.Equal(t, filepath.Join(xdg.DataHome, AppName, "history.db"), config.DBPath())
	assert.Equal(t, "/var/log/clipkeep.log", config.LogFilePath())

	config.DatabasePath = "~/clips.db"
	assert.Equal(t, filepath.Join(xdg.Home, "clips.db"), config.DBPath())
}

func TestConfigManager_LoadNonExistent(t *testing.T) {
	cm := NewConfigManagerWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	config, err := cm.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	assert.False(t, cm.Exists())
}

func TestConfigManager_SaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	saved := &Config{
		DatabasePath: "/tmp/clips.db",
		Clipboard:    "command",
		LogLevel:     "debug",
		LogFormat:    "json",
	}
	require.NoError(t, cm.Save(saved))
	assert.True(t, cm.Exists())

	loaded, err := cm.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestConfigManager_LoadFillsMissingFields(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("database_path: /tmp/x.db\n"), 0o644))

	config, err := NewConfigManagerWithPath(configPath).Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", config.DatabasePath)
	assert.Equal(t, "auto", config.Clipboard)
	assert.Equal(t, "info", config.LogLevel)
}

func TestConfigManager_LoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "clipboard: [unclosed"},
		{"bad clipboard", "clipboard: telepathy\n"},
		{"bad level", "log_level: chatty\n"},
		{"bad format", "log_format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0o644))

			_, err := NewConfigManagerWithPath(configPath).Load()
			assert.Error(t, err)
		})
	}
}

func TestConfigManager_UpdateGetList(t *testing.T) {
	cm := NewConfigManagerWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	require.NoError(t, cm.Update("log-level", "warn"))
	require.NoError(t, cm.Update("database-path", "/data/clips.db"))

	level, err := cm.Get("log-level")
	require.NoError(t, err)
	assert.Equal(t, "warn", level)

	values, err := cm.List()
	require.NoError(t, err)
	assert.Equal(t, "/data/clips.db", values["database-path"])
	assert.Equal(t, []string{"clipboard", "database-path", "log-file", "log-format", "log-level"}, Keys(values))

	assert.Error(t, cm.Update("clipboard", "nope"))
	assert.Error(t, cm.Update("history-limit", "5"))
	_, err = cm.Get("history-limit")
	assert.Error(t, err)
}
