package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/config"
	"github.com/MrJamesThe3rd/stoptracker/internal/logger"
)

type menuEntry struct {
	key   string
	label string
	open  func(*view.Session) view.View
}

var menu = []menuEntry{
	{"1", "Log Workday", func(s *view.Session) view.View { return view.NewLogDayModel(s) }},
	{"2", "Workdays", func(s *view.Session) view.View { return view.NewListModel(s) }},
	{"3", "Summary", func(s *view.Session) view.View { return view.NewSummaryModel(s) }},
	{"4", "Reconcile", func(s *view.Session) view.View { return view.NewReconcileModel(s) }},
	{"5", "Expenses", func(s *view.Session) view.View { return view.NewExpensesModel(s) }},
	{"6", "Import Workdays", func(s *view.Session) view.View { return view.NewImportModel(s) }},
	{"7", "Export", func(s *view.Session) view.View { return view.NewExportModel(s) }},
	{"8", "Rate Settings", func(s *view.Session) view.View { return view.NewRateModel(s) }},
}

type model struct {
	session *view.Session
	current view.View
	size    tea.WindowSizeMsg
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.current == nil {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.current = nil
		return m, nil
	}

	if m.current == nil {
		return m, nil
	}

	next, cmd := m.current.Update(msg)
	if v, ok := next.(view.View); ok {
		m.current = v
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return m, tea.Quit
	}

	for _, e := range menu {
		if msg.String() != e.key {
			continue
		}

		m.current = e.open(m.session)

		init := m.current.Init()
		if m.size.Width > 0 {
			size := m.size
			return m, tea.Batch(init, func() tea.Msg { return size })
		}

		return m, init
	}

	return m, nil
}

func (m model) View() string {
	if m.current != nil {
		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render(m.current.Title())
		return header + "\n" + m.current.View()
	}

	var b strings.Builder

	b.WriteString("Stop Tracker\n\n")

	for _, e := range menu {
		fmt.Fprintf(&b, "%s. %s\n", e.key, e.label)
	}

	b.WriteString("\nq. Quit\n\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf(
		"Rate: %s up to %d stops, %s after • scope %s",
		view.FormatMoney(m.session.Rate.RateBeforeCutoff),
		m.session.Rate.CutoffPoint,
		view.FormatMoney(m.session.Rate.RateAfterCutoff),
		m.session.Scope,
	)))

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.ToFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", zap.Error(err))
		return err
	}
	defer a.Close()

	// Read once; the rate screen updates the session copy when it saves.
	rateCfg, err := a.Settings.Get(ctx, cfg.App.Scope)
	if err != nil {
		log.Error("failed to load rate config", zap.Error(err))
		return err
	}

	session := &view.Session{App: a, Scope: cfg.App.Scope, Rate: rateCfg}

	if _, err := tea.NewProgram(model{session: session}, tea.WithAltScreen()).Run(); err != nil {
		log.Error("failed to run TUI", zap.Error(err))
		return err
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
