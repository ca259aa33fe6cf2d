package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Session is shared by every view. The rate config is read once at startup
// and only replaced from the rate settings screen.
type Session struct {
	App   *app.App
	Scope string
	Rate  rate.Config
}

func (s *Session) DateLayout() string {
	if s.App.Config.App.DateLayout == "" {
		return "02/01/2006"
	}

	return s.App.Config.App.DateLayout
}
