package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/stoptracker/internal/export"
)

const exportTimeout = 2 * time.Minute

type exportState int

const (
	exportStateTimeframe exportState = iota
	exportStatePath
	exportStateExporting
	exportStateResult
)

const (
	exportKindCSV    = "csv"
	exportKindBundle = "bundle"
)

type exportTarget struct {
	kind string
	path string
}

type ExportModel struct {
	CommonModel
	session *Session

	state           exportState
	err             error
	timeframePicker TimeframePicker
	timeframe       TimeframeSelectedMsg

	form    *huh.Form
	target  *exportTarget
	spinner spinner.Model
	written []string
}

func NewExportModel(session *Session) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return ExportModel{
		session:         session,
		state:           exportStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisWeek, session.DateLayout()),
		target:          &exportTarget{kind: exportKindCSV, path: "./exports"},
		spinner:         s,
	}
}

func (m ExportModel) Title() string { return "Export" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tf, ok := msg.(TimeframeSelectedMsg); ok {
		m.timeframe = tf
		m.form = m.buildForm()
		m.state = exportStatePath

		return m, m.form.Init()
	}

	switch m.state {
	case exportStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd
	case exportStatePath:
		return m.updatePath(msg)
	case exportStateExporting:
		if result, ok := msg.(exportResultMsg); ok {
			m.state = exportStateResult
			m.err = result.err
			m.written = result.paths

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case exportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = exportStateTimeframe
		m.timeframePicker.Reset()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd())
}

func (m ExportModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What to export").
				Options(
					huh.NewOption("Workday and expense CSVs", exportKindCSV),
					huh.NewOption("Zip bundle with backup (all time)", exportKindBundle),
				).
				Value(&m.target.kind),
			huh.NewInput().
				Title("Output directory").
				Description("Created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.target.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case exportStateTimeframe:
		return style.Render(m.timeframePicker.View())
	case exportStatePath:
		return style.Render(
			fmt.Sprintf("Exporting %s\n\n%s", m.timeframe.Describe(m.session.DateLayout()), m.form.View()),
		)
	case exportStateExporting:
		return style.Render(fmt.Sprintf("%s Writing files...", m.spinner.View()))
	case exportStateResult:
		if m.err != nil {
			return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return style.Render(lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Bold(true).Render("Export complete"),
			"",
			strings.Join(m.written, "\n"),
		))
	}

	return ""
}

type exportResultMsg struct {
	paths []string
	err   error
}

func (m ExportModel) runExportCmd() tea.Cmd {
	kind, dir, tf := m.target.kind, m.target.path, m.timeframe
	svc, scope := m.session.App.Exports, m.session.Scope

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		now := time.Now()

		if kind == exportKindBundle {
			path, err := writeBundle(ctx, svc, scope, dir, now)
			if err != nil {
				return exportResultMsg{err: err}
			}

			return exportResultMsg{paths: []string{path}}
		}

		var opts []export.DirOption
		if !tf.All {
			opts = append(opts, export.Between(tf.Start, tf.End))
		}

		paths, err := svc.ToDir(ctx, scope, dir, now, opts...)

		return exportResultMsg{paths: paths, err: err}
	}
}

func writeBundle(ctx context.Context, svc *export.Service, scope, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, "stoptracker-"+now.Format("20060102")+".zip")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := svc.WriteBundle(ctx, f, scope); err != nil {
		return "", err
	}

	return path, f.Close()
}
