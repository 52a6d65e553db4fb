// Command demo replays a scripted clipboard session against an in-memory
// store and prints what clipkeep records, the CSV export, and the home
// screen as the terminal UI would draw it.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yiblet/clipkeep/internal/app"
	"github.com/yiblet/clipkeep/internal/clipboard/mockboard"
	"github.com/yiblet/clipkeep/internal/export"
	"github.com/yiblet/clipkeep/internal/logging"
	"github.com/yiblet/clipkeep/internal/store"
	"github.com/yiblet/clipkeep/internal/store/memstore"
	"github.com/yiblet/clipkeep/internal/tui"
)

func main() {
	ctx := context.Background()
	logger := logging.Setup(os.Stderr, logging.FormatAuto, slog.LevelWarn)

	board := mockboard.New()
	mem := memstore.NewMemoryStore()
	a, err := app.Bootstrap(ctx, app.Options{Store: mem, Board: board, Logger: logger})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	a.OnClipSaved(func(clip store.Clip) {
		fmt.Printf("saved #%d  %s\n", clip.ID, tui.Preview(clip.Content, 60))
	})

	// The repeated values and the blank read are not recorded.
	board.Queue(
		"Hello, World! This is the first clip.",
		"Hello, World! This is the first clip.",
		"package main\n\nimport \"fmt\"\n\nfunc main() {\n    fmt.Println(\"Hello, Go!\")\n}",
		"",
		"SELECT * FROM users WHERE created_at > '2023-01-01' ORDER BY created_at DESC LIMIT 10;",
		`She said "copy that" and left.`,
	)
	fmt.Println("Polling the clipboard:")
	for i := 0; i < 6; i++ {
		a.Watcher().Tick(ctx)
	}

	clips, err := a.Clips().FindAll(ctx)
	if err != nil {
		log.Fatalf("Failed to list clips: %v", err)
	}
	fmt.Printf("\n%d clips recorded. CSV export:\n\n", len(clips))
	if err := export.WriteCSV(os.Stdout, clips); err != nil {
		log.Fatalf("Failed to export: %v", err)
	}

	if err := a.MarkLaunched(ctx); err != nil {
		log.Fatalf("Failed to save launch flag: %v", err)
	}
	model := tui.NewAppModel(ctx, tui.Options{
		Bootstrap: func(context.Context) (*app.App, error) { return a, nil },
	})
	model.Update(model.Init()())
	model.Update(tea.WindowSizeMsg{Width: 100, Height: 14})
	fmt.Printf("\nHome screen:\n\n%s\n", model.View())
}
