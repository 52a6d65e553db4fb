package cli

import (
	"fmt"

	"github.com/yiblet/clipkeep/internal/clipboard"
	"github.com/yiblet/clipkeep/internal/export"
	"github.com/yiblet/clipkeep/internal/logging"
	"github.com/yiblet/clipkeep/internal/store"
)

// Args represents the top-level command structure
type Args struct {
	DBPath     *string `arg:"--db,env:CLIPKEEP_DB" help:"database file (overrides config)"`
	ConfigPath *string `arg:"--config,env:CLIPKEEP_CONFIG" help:"config file path"`
	LogLevel   *string `arg:"--log-level,env:CLIPKEEP_LOG_LEVEL" help:"debug, info, warn or error"`
	Clipboard  *string `arg:"--clipboard,env:CLIPKEEP_CLIPBOARD" help:"clipboard backend: auto, native or command"`

	UI       *UICmd       `arg:"subcommand:ui" help:"Browse clipboard history (default)"`
	Watch    *WatchCmd    `arg:"subcommand:watch" help:"Record clipboard changes without a UI"`
	Add      *AddCmd      `arg:"subcommand:add" help:"Save text to the history"`
	List     *ListCmd     `arg:"subcommand:list" help:"List recent clips"`
	Search   *SearchCmd   `arg:"subcommand:search" help:"Find clips containing text"`
	Show     *ShowCmd     `arg:"subcommand:show" help:"Print a clip"`
	Copy     *CopyCmd     `arg:"subcommand:copy" help:"Put a clip back on the clipboard"`
	Delete   *DeleteCmd   `arg:"subcommand:delete" help:"Delete clips"`
	Restore  *RestoreCmd  `arg:"subcommand:restore" help:"Undo a delete"`
	Export   *ExportCmd   `arg:"subcommand:export" help:"Export history as JSON or CSV"`
	Settings *SettingsCmd `arg:"subcommand:settings" help:"Manage stored preferences"`
	Config   *ConfigCmd   `arg:"subcommand:config" help:"Manage the config file"`
}

type UICmd struct{}

type WatchCmd struct {
	Interval *int `arg:"-i,--interval" help:"poll interval in milliseconds for this run"`
}

type AddCmd struct {
	Text   []string `arg:"positional" help:"text to save (reads stdin when empty)"`
	Source string   `arg:"--source" default:"cli" help:"source label stored with the clip"`
}

type ListCmd struct {
	Limit  int     `arg:"-n,--limit" default:"20" help:"maximum clips to show (0 for all)"`
	Source *string `arg:"--source" help:"only clips from this source"`
	JSON   bool    `arg:"--json" help:"print as JSON"`
}

type SearchCmd struct {
	Query string `arg:"positional,required" help:"case-insensitive text to find"`
	Limit int    `arg:"-n,--limit" default:"20" help:"maximum clips to show (0 for all)"`
	JSON  bool   `arg:"--json" help:"print as JSON"`
}

type ShowCmd struct {
	ID int64 `arg:"positional,required" help:"clip id"`
}

type CopyCmd struct {
	ID int64 `arg:"positional,required" help:"clip id"`
}

type DeleteCmd struct {
	IDs []int64 `arg:"positional,required" help:"clip ids"`
}

type RestoreCmd struct {
	ID int64 `arg:"positional,required" help:"clip id"`
}

type ExportCmd struct {
	Format string  `arg:"-f,--format" default:"json" help:"json or csv"`
	Dir    *string `arg:"-d,--dir" help:"output directory (default: downloads)"`
}

type SettingsCmd struct {
	Get  *SettingsGetCmd  `arg:"subcommand:get" help:"Print a setting"`
	Set  *SettingsSetCmd  `arg:"subcommand:set" help:"Change a setting"`
	List *SettingsListCmd `arg:"subcommand:list" help:"Print all settings"`
}

type SettingsGetCmd struct {
	Key string `arg:"positional,required" help:"setting key"`
}

type SettingsSetCmd struct {
	Key   string `arg:"positional,required" help:"setting key"`
	Value string `arg:"positional,required" help:"new value"`
}

type SettingsListCmd struct{}

type ConfigCmd struct {
	Path *ConfigPathCmd `arg:"subcommand:path" help:"Print the config file path"`
	Init *ConfigInitCmd `arg:"subcommand:init" help:"Write a default config file"`
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Print a config value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Change a config value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"Print all config values"`
}

type ConfigPathCmd struct{}

type ConfigInitCmd struct {
	Force bool `arg:"-f,--force" help:"overwrite an existing file"`
}

type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"config key"`
}

type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"config key"`
	Value string `arg:"positional,required" help:"new value"`
}

type ConfigListCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "clipkeep - clipboard history that stays on your machine"
}

// Version returns the program version
func (Args) Version() string {
	return "clipkeep 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  clipkeep                         # Browse history and record new clips
  clipkeep watch                   # Record clips in the background
  clipkeep list -n 5               # Five most recent clips
  clipkeep search token            # Clips containing "token"
  clipkeep copy 42                 # Put clip 42 back on the clipboard
  clipkeep export -f csv           # Write clipboard_history_<date>.csv
  clipkeep settings set theme dark # Switch to the dark theme`
}

// Interactive reports whether the command takes over the terminal.
func (args *Args) Interactive() bool {
	return args.command() == nil
}

// command returns the selected subcommand, or nil for the UI.
func (args *Args) command() any {
	switch {
	case args.Watch != nil:
		return args.Watch
	case args.Add != nil:
		return args.Add
	case args.List != nil:
		return args.List
	case args.Search != nil:
		return args.Search
	case args.Show != nil:
		return args.Show
	case args.Copy != nil:
		return args.Copy
	case args.Delete != nil:
		return args.Delete
	case args.Restore != nil:
		return args.Restore
	case args.Export != nil:
		return args.Export
	case args.Settings != nil:
		return args.Settings
	case args.Config != nil:
		return args.Config
	}
	return nil
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.LogLevel != nil {
		if _, err := logging.ParseLevelStrict(*args.LogLevel); err != nil {
			return err
		}
	}
	if args.Clipboard != nil {
		if _, err := clipboard.ParseKind(*args.Clipboard); err != nil {
			return err
		}
	}

	switch {
	case args.Watch != nil:
		if i := args.Watch.Interval; i != nil {
			if _, err := store.IntervalFromMillis(int64(*i)); err != nil {
				return err
			}
		}
	case args.List != nil:
		if args.List.Limit < 0 {
			return fmt.Errorf("limit must be non-negative")
		}
	case args.Search != nil:
		if args.Search.Limit < 0 {
			return fmt.Errorf("limit must be non-negative")
		}
	case args.Export != nil:
		if _, err := export.ParseFormat(args.Export.Format); err != nil {
			return err
		}
	case args.Settings != nil:
		if args.Settings.Get == nil && args.Settings.Set == nil && args.Settings.List == nil {
			return fmt.Errorf("no settings subcommand specified")
		}
	case args.Config != nil:
		c := args.Config
		if c.Path == nil && c.Init == nil && c.Get == nil && c.Set == nil && c.List == nil {
			return fmt.Errorf("no config subcommand specified")
		}
	}
	return nil
}
