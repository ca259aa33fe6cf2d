package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

const listPerPage = 15

type listState int

const (
	listStateBrowse listState = iota
	listStateConfirmDelete
)

var sortCycle = []struct {
	field workday.SortField
	order workday.Order
	label string
}{
	{workday.SortByDate, workday.OrderDesc, "Newest first"},
	{workday.SortByDate, workday.OrderAsc, "Oldest first"},
	{workday.SortByStops, workday.OrderDesc, "Most stops"},
	{workday.SortByTotal, workday.OrderDesc, "Highest pay"},
}

// ListModel shows the saved workdays, one page at a time.
type ListModel struct {
	CommonModel
	session *Session

	state   listState
	table   table.Model
	page    *workday.Page
	form    *huh.Form
	confirm *bool

	sortIdx int
	pageNum int

	changes     chan struct{}
	unsubscribe func()

	loading bool
	err     error
	status  string
}

func NewListModel(session *Session) ListModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Stops", Width: 7},
			{Title: "Extra", Width: 9},
			{Title: "Total", Width: 10},
			{Title: "Notes", Width: 30},
		}),
		table.WithFocused(true),
		table.WithHeight(listPerPage),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		session: session,
		table:   t,
		pageNum: 1,
		loading: true,
	}
}

func (m ListModel) Title() string { return "Workdays" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateConfirmDelete {
		return "Confirm deletion | Esc: cancel"
	}

	return "Esc: back | s: sort | ←/→: page | x: delete | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.subscribeCmd())
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.page = msg.page
		m.pageNum = msg.page.Page
		m.refreshTable()

		return m, nil

	case subscribedMsg:
		m.changes = msg.changes
		m.unsubscribe = msg.unsubscribe

		return m, waitForChange(m.changes)

	case dayLogChangedMsg:
		m.status = "Updated from remote"
		return m, tea.Batch(m.loadCmd(), waitForChange(m.changes))

	case listDeleteMsg:
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error deleting: %v", msg.err)
			return m, nil
		}

		m.status = "Workday deleted"

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(5, min(listPerPage, msg.Height-10)))

		return m, nil
	}

	if m.state == listStateConfirmDelete {
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			if m.unsubscribe != nil {
				m.unsubscribe()
			}

			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.sortIdx = (m.sortIdx + 1) % len(sortCycle)
			m.pageNum = 1

			return m, m.loadCmd()
		case "right", "l":
			if m.page != nil && m.pageNum < m.page.TotalPages {
				m.pageNum++
				return m, m.loadCmd()
			}
		case "left", "h":
			if m.pageNum > 1 {
				m.pageNum--
				return m, m.loadCmd()
			}
		case "x", "delete":
			return m.enterConfirm()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selectedRecord() (workday.Record, bool) {
	idx := m.table.Cursor()
	if m.page == nil || idx < 0 || idx >= len(m.page.Records) {
		return workday.Record{}, false
	}

	return m.page.Records[idx], true
}

func (m ListModel) enterConfirm() (tea.Model, tea.Cmd) {
	rec, ok := m.selectedRecord()
	if !ok {
		return m, nil
	}

	m.confirm = new(bool)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s (%d stops)?", FormatDate(rec.Date, m.session.DateLayout()), rec.Stops)).
				Affirmative("Delete").
				Negative("Keep").
				Value(m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateConfirmDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirm {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	rec, _ := m.selectedRecord()

	return m, m.deleteCmd(rec)
}

func (m ListModel) View() string {
	if m.loading && m.page == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading workdays...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Sort: [s] %s", activeStyle(sortCycle[m.sortIdx].label))
	if m.page != nil {
		header += fmt.Sprintf(" | Page %d/%d | %d days", m.page.Page, max(1, m.page.TotalPages), m.page.Total)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateConfirmDelete && m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	if m.status != "" {
		content = mutedStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n" + mutedStyle.Render(m.ShortHelp()))
}

func (m *ListModel) refreshTable() {
	layout := m.session.DateLayout()

	rows := make([]table.Row, 0, len(m.page.Records))
	for _, rec := range m.page.Records {
		rows = append(rows, table.Row{
			FormatDate(rec.Date, layout),
			strconv.Itoa(rec.Stops),
			FormatMoney(rec.Extra),
			FormatMoney(rec.Total),
			rec.Notes,
		})
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

type loadListMsg struct {
	page *workday.Page
	err  error
}

func (m ListModel) loadCmd() tea.Cmd {
	opts := workday.ListOptions{
		SortBy:  sortCycle[m.sortIdx].field,
		Order:   sortCycle[m.sortIdx].order,
		Page:    m.pageNum,
		PerPage: listPerPage,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.session.App.Workdays.List(ctx, m.session.Scope, opts)

		return loadListMsg{page: page, err: err}
	}
}

type listDeleteMsg struct {
	err error
}

func (m ListModel) deleteCmd(rec workday.Record) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return listDeleteMsg{err: m.session.App.Workdays.Delete(ctx, m.session.Scope, rec.ID)}
	}
}

type subscribedMsg struct {
	changes     chan struct{}
	unsubscribe func()
}

type dayLogChangedMsg struct{}

// subscribeCmd listens for remote pushes to the day log. Backends without a
// watcher are silently skipped; the list still refreshes on r.
func (m ListModel) subscribeCmd() tea.Cmd {
	return func() tea.Msg {
		changes := make(chan struct{}, 1)

		stop, err := m.session.App.DayLog.Subscribe(context.Background(), m.session.Scope, func([]workday.Record) {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		if err != nil {
			if !errors.Is(err, storage.ErrWatchUnsupported) {
				m.session.App.Logger.Warn("failed to subscribe to workdays", zap.Error(err))
			}

			return nil
		}

		unsubscribe := func() {
			stop()
			close(changes)
		}

		return subscribedMsg{changes: changes, unsubscribe: unsubscribe}
	}
}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}

		return dayLogChangedMsg{}
	}
}
