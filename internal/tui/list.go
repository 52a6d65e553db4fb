package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/yiblet/clipkeep/internal/store"
)

// ListMsg represents messages that the clip list handles
type ListMsg interface {
	isListMsg()
}

type NavigateUpMsg struct{}

func (NavigateUpMsg) isListMsg() {}

type NavigateDownMsg struct {
	MaxIndex int
}

func (NavigateDownMsg) isListMsg() {}

type GoToTopMsg struct{}

func (GoToTopMsg) isListMsg() {}

type GoToBottomMsg struct {
	MaxIndex int
}

func (GoToBottomMsg) isListMsg() {}

type JumpToIndexMsg struct {
	Index    int
	MaxIndex int
}

func (JumpToIndexMsg) isListMsg() {}

type ResizeListMsg struct {
	Width  int
	Height int
}

func (ResizeListMsg) isListMsg() {}

// ListModel is the cursor and scroll window over the visible clips.
type ListModel struct {
	Cursor int
	Offset int // first visible row
	Width  int
	Height int // rows available for clips
}

func NewListModel(width, height int) ListModel {
	return ListModel{Width: width, Height: height}
}

func (l *ListModel) Update(msg ListMsg) {
	switch m := msg.(type) {
	case NavigateUpMsg:
		if l.Cursor > 0 {
			l.Cursor--
		}
	case NavigateDownMsg:
		if l.Cursor < m.MaxIndex {
			l.Cursor++
		}
	case GoToTopMsg:
		l.Cursor = 0
	case GoToBottomMsg:
		l.Cursor = max(m.MaxIndex, 0)
	case JumpToIndexMsg:
		if m.Index >= 0 && m.Index <= m.MaxIndex {
			l.Cursor = m.Index
		}
	case ResizeListMsg:
		l.Width = m.Width
		l.Height = m.Height
	}
	l.scroll()
}

// scroll keeps the cursor inside the visible window.
func (l *ListModel) scroll() {
	rows := max(l.Height, 1)
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.Cursor >= l.Offset+rows {
		l.Offset = l.Cursor - rows + 1
	}
	if l.Offset < 0 {
		l.Offset = 0
	}
}

// ListView renders the visible window of clips.
func ListView(model ListModel, clips []store.Clip, styles Styles, query string, now time.Time) string {
	if len(clips) == 0 {
		if query != "" {
			return styles.Muted.Render(fmt.Sprintf("No clips match %q", query))
		}
		return styles.Muted.Render("No clips yet. Copy something to get started.")
	}

	var b strings.Builder
	end := min(model.Offset+max(model.Height, 1), len(clips))
	for i := model.Offset; i < end; i++ {
		clip := clips[i]
		age := FormatAge(now, clip.CreatedAt)
		prefix := fmt.Sprintf("%4d  ", clip.ID)
		avail := model.Width - len(prefix) - len(age) - 2
		text := prefix + padRight(Preview(clip.Content, avail), avail)

		var line string
		if i == model.Cursor {
			line = styles.Selected.Width(model.Width).Render(text + "  " + age)
		} else {
			line = styles.Text.Render(text) + "  " + styles.Muted.Render(age)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func padRight(s string, width int) string {
	if pad := width - stringWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// FormatAge renders how long ago t was, coarsely.
func FormatAge(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.Local().Format("2006-01-02")
	}
}

// Clamp keeps the cursor inside a list of n clips.
func (l *ListModel) Clamp(n int) {
	if l.Cursor >= n {
		l.Cursor = n - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Offset > l.Cursor {
		l.Offset = l.Cursor
	}
	l.scroll()
}
