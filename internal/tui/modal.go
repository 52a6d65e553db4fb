package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the state for modal dialogs
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
}

func NewModalModel() ModalModel {
	return ModalModel{Width: 56}
}

func (m *ModalModel) Update(msg ModalMsg) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		m.Active = false
		m.Title = ""
		m.Content = ""
		m.Options = ""
	}
}

// ModalView centers the modal in the window. The background is replaced
// while the modal is open.
func ModalView(model ModalModel, styles Styles, background string, windowWidth, windowHeight int) string {
	if !model.Active {
		return background
	}

	body := styles.Title.Render(model.Title)
	if model.Content != "" {
		body += "\n\n" + styles.Text.Render(model.Content)
	}
	if model.Options != "" {
		body += "\n\n" + styles.Muted.Render(model.Options)
	}

	width := min(model.Width, max(windowWidth-4, 10))
	modal := styles.Modal.Width(width).Render(body)
	return lipgloss.Place(windowWidth, windowHeight, lipgloss.Center, lipgloss.Center, modal)
}

// ShowDeleteConfirmation asks before deleting the clip with id.
func ShowDeleteConfirmation(preview string, id int64) ShowModalMsg {
	return ShowModalMsg{
		Title:   "Delete clip?",
		Content: fmt.Sprintf("#%d %s", id, preview),
		Options: "[y] delete    [n] cancel",
	}
}
