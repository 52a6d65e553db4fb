package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/yiblet/clipkeep/internal/app"
	"github.com/yiblet/clipkeep/internal/clipboard"
	"github.com/yiblet/clipkeep/internal/config"
	"github.com/yiblet/clipkeep/internal/export"
	"github.com/yiblet/clipkeep/internal/logging"
	"github.com/yiblet/clipkeep/internal/store"
	"github.com/yiblet/clipkeep/internal/tui"
)

// CLI handles the command-line interface
type CLI struct {
	out     io.Writer
	in      io.Reader
	configs *config.ConfigManager
	config  *config.Config
	logger  *slog.Logger
	store   store.Store
	board   clipboard.Clipboard
	app     *app.App
	closers []func() error
}

// Option configures a CLI.
type Option func(*CLI)

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(c *CLI) { c.out = w }
}

// WithInput reads piped content from r instead of stdin.
func WithInput(r io.Reader) Option {
	return func(c *CLI) { c.in = r }
}

// WithStore uses s instead of opening the configured database.
func WithStore(s store.Store) Option {
	return func(c *CLI) { c.store = s }
}

// WithClipboard uses b instead of the configured backend.
func WithClipboard(b clipboard.Clipboard) Option {
	return func(c *CLI) { c.board = b }
}

// WithLogger uses logger instead of configuring one from the config file.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) { c.logger = logger }
}

// New loads the config file and applies flag overrides. The database is
// opened lazily by the commands that need it.
func New(args *Args, opts ...Option) (*CLI, error) {
	c := &CLI{out: os.Stdout, in: os.Stdin}
	for _, opt := range opts {
		opt(c)
	}

	if args.ConfigPath != nil {
		c.configs = config.NewConfigManagerWithPath(*args.ConfigPath)
	} else {
		c.configs = config.NewConfigManager()
	}

	cfg, err := c.configs.Load()
	if err != nil {
		// A broken config file must not block the commands that repair it.
		if args.Config == nil {
			return nil, err
		}
		cfg = config.DefaultConfig()
	}
	if args.DBPath != nil {
		cfg.DatabasePath = *args.DBPath
	}
	if args.LogLevel != nil {
		cfg.LogLevel = *args.LogLevel
	}
	if args.Clipboard != nil {
		cfg.Clipboard = *args.Clipboard
	}
	c.config = cfg

	if c.logger == nil {
		if err := c.setupLogging(args.Interactive()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// setupLogging logs to stderr, or to the log file while the terminal UI
// owns the screen.
func (c *CLI) setupLogging(interactive bool) error {
	var w io.Writer = os.Stderr
	if interactive {
		f, err := logging.OpenFile(c.config.LogFilePath())
		if err != nil {
			return err
		}
		c.closers = append(c.closers, f.Close)
		w = f
	}
	c.logger = logging.Setup(w, logging.ParseFormat(c.config.LogFormat), logging.ParseLevel(c.config.LogLevel))
	return nil
}

// Close releases the database and the log file.
func (c *CLI) Close() error {
	var errs []error
	if c.app != nil {
		errs = append(errs, c.app.Close())
		c.app = nil
	}
	for _, fn := range c.closers {
		errs = append(errs, fn())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Watch != nil:
		return c.executeWatch(ctx, args.Watch)
	case args.Add != nil:
		return c.executeAdd(ctx, args.Add)
	case args.List != nil:
		return c.executeList(ctx, args.List)
	case args.Search != nil:
		return c.executeSearch(ctx, args.Search)
	case args.Show != nil:
		return c.executeShow(ctx, args.Show)
	case args.Copy != nil:
		return c.executeCopy(ctx, args.Copy)
	case args.Delete != nil:
		return c.executeDelete(ctx, args.Delete)
	case args.Restore != nil:
		return c.executeRestore(ctx, args.Restore)
	case args.Export != nil:
		return c.executeExport(ctx, args.Export)
	case args.Settings != nil:
		return c.executeSettings(ctx, args.Settings)
	default:
		return c.launchTUI(ctx)
	}
}

func (c *CLI) clipboard() (clipboard.Clipboard, error) {
	if c.board != nil {
		return c.board, nil
	}
	kind, err := clipboard.ParseKind(c.config.Clipboard)
	if err != nil {
		return nil, err
	}
	board, err := clipboard.New(kind, c.logger)
	if err != nil {
		return nil, err
	}
	c.board = board
	return board, nil
}

// openApp bootstraps the application once per CLI.
func (c *CLI) openApp(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	board, err := c.clipboard()
	if err != nil {
		return nil, err
	}
	a, err := app.Bootstrap(ctx, app.Options{
		Store:        c.store,
		DatabasePath: c.config.DBPath(),
		Board:        board,
		Logger:       c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clipboard history: %w", err)
	}
	c.app = a
	return a, nil
}

// launchTUI runs the interface. The UI owns the application it opens.
func (c *CLI) launchTUI(ctx context.Context) error {
	return tui.Run(ctx, tui.Options{
		Bootstrap: func(ctx context.Context) (*app.App, error) {
			board, err := c.clipboard()
			if err != nil {
				return nil, err
			}
			return app.Bootstrap(ctx, app.Options{
				Store:        c.store,
				DatabasePath: c.config.DBPath(),
				Board:        board,
				Logger:       c.logger,
			})
		},
		ExportDir: export.DefaultDir(),
	})
}

// executeWatch records clipboard changes until ctx is cancelled.
func (c *CLI) executeWatch(ctx context.Context, cmd *WatchCmd) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	if cmd.Interval != nil {
		d, err := store.IntervalFromMillis(int64(*cmd.Interval))
		if err != nil {
			return err
		}
		if err := a.Watcher().SetInterval(d); err != nil {
			return err
		}
	}

	unsubscribe := a.OnClipSaved(func(clip store.Clip) {
		fmt.Fprintf(c.out, "saved #%d %s\n", clip.ID, tui.Preview(clip.Content, 60))
	})
	defer unsubscribe()

	fmt.Fprintf(c.out, "Watching clipboard every %d ms. Press Ctrl+C to stop.\n", a.Interval().Milliseconds())
	return a.Run(ctx)
}

func (c *CLI) executeAdd(ctx context.Context, cmd *AddCmd) error {
	content := strings.Join(cmd.Text, " ")
	if len(cmd.Text) == 0 {
		data, err := io.ReadAll(c.in)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		content = string(data)
	}
	if content == "" {
		return store.ErrEmptyContent
	}

	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	clip, created, err := a.SaveClip(ctx, store.NewClip{Content: content, Source: cmd.Source})
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(c.out, "Already saved as #%d\n", clip.ID)
		return nil
	}
	fmt.Fprintf(c.out, "Saved #%d\n", clip.ID)
	return nil
}

func (c *CLI) executeList(ctx context.Context, cmd *ListCmd) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}

	var clips []store.Clip
	if cmd.Source != nil {
		clips, err = a.Clips().FindBySource(ctx, *cmd.Source)
	} else {
		clips, err = a.Clips().FindAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list clips: %w", err)
	}
	return c.printClips(limit(clips, cmd.Limit), cmd.JSON)
}

func (c *CLI) executeSearch(ctx context.Context, cmd *SearchCmd) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	clips, err := a.Clips().Search(ctx, cmd.Query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(clips) == 0 {
		return fmt.Errorf("no clips match %q", cmd.Query)
	}
	return c.printClips(limit(clips, cmd.Limit), cmd.JSON)
}

func limit(clips []store.Clip, n int) []store.Clip {
	if n > 0 && len(clips) > n {
		return clips[:n]
	}
	return clips
}

func (c *CLI) printClips(clips []store.Clip, asJSON bool) error {
	if asJSON {
		return export.WriteJSON(c.out, clips)
	}
	now := time.Now()
	for _, clip := range clips {
		source := clip.Source
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(c.out, "%6d  %-10s  %-8s  %s\n", clip.ID, tui.FormatAge(now, clip.CreatedAt), source, tui.Preview(clip.Content, 60))
	}
	return nil
}

func (c *CLI) findClip(ctx context.Context, a *app.App, id int64) (store.Clip, error) {
	clip, ok, err := a.Clips().FindByID(ctx, id)
	if err != nil {
		return store.Clip{}, fmt.Errorf("failed to load clip %d: %w", id, err)
	}
	if !ok {
		return store.Clip{}, fmt.Errorf("clip %d: %w", id, store.ErrNotFound)
	}
	return clip, nil
}

func (c *CLI) executeShow(ctx context.Context, cmd *ShowCmd) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	clip, err := c.findClip(ctx, a, cmd.ID)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, clip.Content)
	if !strings.HasSuffix(clip.Content, "\n") {
		fmt.Fprintln(c.out)
	}
	return nil
}

func (c *CLI) executeCopy(ctx context.Context, cmd *CopyCmd) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	clip, err := c.findClip(ctx, a, cmd.ID)
	if err != nil {
		return err
	}
	if err := a.Copy(ctx, clip); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Copied #%d to clipboard (%d bytes)\n", clip.ID, len(clip.Content))
	return nil
}

// executeDelete deletes every id or none of them.
func (c *CLI) executeDelete(ctx context.Context, cmd *DeleteCmd) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	if err := a.Clips().SoftDeleteMany(ctx, cmd.IDs); err != nil {
		return fmt.Errorf("failed to delete clips: %w", err)
	}
	fmt.Fprintf(c.out, "Deleted %d clip(s)\n", len(cmd.IDs))
	return nil
}

func (c *CLI) executeRestore(ctx context.Context, cmd *RestoreCmd) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	if err := a.Restore(ctx, cmd.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Restored #%d\n", cmd.ID)
	return nil
}

func (c *CLI) executeExport(ctx context.Context, cmd *ExportCmd) error {
	format, err := export.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}
	dir := export.DefaultDir()
	if cmd.Dir != nil {
		dir = *cmd.Dir
	}

	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	path, err := a.Export(ctx, format, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Exported to %s\n", path)
	return nil
}

func (c *CLI) executeSettings(ctx context.Context, cmd *SettingsCmd) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}

	switch {
	case cmd.Get != nil:
		value, ok, err := a.Settings().Get(ctx, cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get setting: %w", err)
		}
		if !ok {
			return fmt.Errorf("setting %q is not set", cmd.Get.Key)
		}
		fmt.Fprintln(c.out, value)
	case cmd.Set != nil:
		if err := a.Settings().Set(ctx, cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set setting: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
	case cmd.List != nil:
		values, err := a.Settings().GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list settings: %w", err)
		}
		for _, key := range config.Keys(values) {
			fmt.Fprintf(c.out, "%s = %s\n", key, values[key])
		}
	}
	return nil
}

func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Path != nil:
		fmt.Fprintln(c.out, c.configs.GetConfigPath())
	case cmd.Init != nil:
		if c.configs.Exists() && !cmd.Init.Force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", c.configs.GetConfigPath())
		}
		if err := c.configs.Save(config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Wrote %s\n", c.configs.GetConfigPath())
	case cmd.Get != nil:
		value, err := c.configs.Get(cmd.Get.Key)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, value)
	case cmd.Set != nil:
		if err := c.configs.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
	case cmd.List != nil:
		values, err := c.configs.List()
		if err != nil {
			return err
		}
		for _, key := range config.Keys(values) {
			fmt.Fprintf(c.out, "%s = %s\n", key, values[key])
		}
	}
	return nil
}
