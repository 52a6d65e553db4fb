package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/yiblet/clipkeep/internal/store"
)

// DetailMsg represents messages that the detail view handles
type DetailMsg interface {
	isDetailMsg()
}

type ScrollUpMsg struct{}

func (ScrollUpMsg) isDetailMsg() {}

type ScrollDownMsg struct {
	MaxScroll int
}

func (ScrollDownMsg) isDetailMsg() {}

type ScrollToTopMsg struct{}

func (ScrollToTopMsg) isDetailMsg() {}

type ScrollToBottomMsg struct {
	MaxScroll int
}

func (ScrollToBottomMsg) isDetailMsg() {}

type PageUpMsg struct{}

func (PageUpMsg) isDetailMsg() {}

type PageDownMsg struct {
	MaxScroll int
}

func (PageDownMsg) isDetailMsg() {}

type ResizeDetailMsg struct {
	Width  int
	Height int
}

func (ResizeDetailMsg) isDetailMsg() {}

// SetContentMsg replaces the shown clip and resets scrolling.
type SetContentMsg struct {
	Content string
}

func (SetContentMsg) isDetailMsg() {}

// DetailModel holds the wrapped content of one clip and the scroll position.
type DetailModel struct {
	Width   int
	Height  int // rows available for content
	ViewPos int
	Content string
	Lines   []string
}

func NewDetailModel(width, height int) DetailModel {
	return DetailModel{Width: width, Height: height}
}

func (d *DetailModel) Update(msg DetailMsg) {
	switch m := msg.(type) {
	case ScrollUpMsg:
		if d.ViewPos > 0 {
			d.ViewPos--
		}
	case ScrollDownMsg:
		if d.ViewPos < m.MaxScroll {
			d.ViewPos++
		}
	case ScrollToTopMsg:
		d.ViewPos = 0
	case ScrollToBottomMsg:
		d.ViewPos = m.MaxScroll
	case PageUpMsg:
		d.ViewPos = max(d.ViewPos-d.pageSize(), 0)
	case PageDownMsg:
		d.ViewPos = min(d.ViewPos+d.pageSize(), m.MaxScroll)
	case ResizeDetailMsg:
		d.Width = m.Width
		d.Height = m.Height
		d.rewrap()
		d.ViewPos = min(d.ViewPos, d.MaxScroll())
	case SetContentMsg:
		d.Content = m.Content
		d.ViewPos = 0
		d.rewrap()
	}
}

func (d *DetailModel) pageSize() int {
	return max(d.Height/2, 1)
}

func (d *DetailModel) rewrap() {
	d.Lines = WrapText(d.Content, max(d.Width-4, 1))
}

// MaxScroll is the largest ViewPos that still fills the view.
func (d *DetailModel) MaxScroll() int {
	return max(len(d.Lines)-max(d.Height, 1), 0)
}

// DetailView renders clip with its metadata above the scrolled content.
func DetailView(model DetailModel, clip store.Clip, deleted bool, styles Styles) string {
	var b strings.Builder

	title := fmt.Sprintf("Clip #%d", clip.ID)
	if deleted {
		title += " " + styles.Error.Render("(deleted)")
	}
	b.WriteString(styles.Title.Render(title) + "\n")

	meta := fmt.Sprintf("%d bytes · copied %s", len(clip.Content), clip.CreatedAt.Local().Format(time.DateTime))
	if clip.Source != "" {
		meta += " · from " + clip.Source
	}
	if total := len(model.Lines); total > model.Height {
		meta += fmt.Sprintf(" · lines %d-%d/%d", model.ViewPos+1, min(model.ViewPos+model.Height, total), total)
	}
	b.WriteString(styles.Muted.Render(meta) + "\n")

	end := min(model.ViewPos+max(model.Height, 1), len(model.Lines))
	visible := model.Lines[min(model.ViewPos, end):end]
	b.WriteString(styles.Card.Width(max(model.Width-2, 1)).Render(styles.Text.Render(strings.Join(visible, "\n"))))
	return b.String()
}
