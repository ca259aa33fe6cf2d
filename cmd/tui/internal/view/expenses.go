package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
)

type expensesState int

const (
	expensesStateBrowse expensesState = iota
	expensesStateAdd
)

type expenseFields struct {
	date        string
	category    expense.Category
	amount      string
	description string
}

// ExpensesModel lists work expenses and lets the user add or remove them.
type ExpensesModel struct {
	CommonModel
	session *Session

	state   expensesState
	table   table.Model
	records []expense.Record
	form    *huh.Form
	fields  *expenseFields

	status string
	err    error
}

func NewExpensesModel(session *Session) ExpensesModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Category", Width: 20},
			{Title: "Amount", Width: 10},
			{Title: "Description", Width: 30},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ExpensesModel{session: session, table: t}
}

func (m ExpensesModel) Title() string { return "Expenses" }

func (m ExpensesModel) ShortHelp() string {
	if m.state == expensesStateAdd {
		return "Enter: next | Esc: cancel"
	}

	return "a: add | x: delete | r: refresh | Esc: back"
}

func (m ExpensesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ExpensesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case expensesLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.records = msg.records
			m.refreshTable()
		}

		return m, nil

	case expenseChangedMsg:
		m.state = expensesStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.status = successStyle.Render(msg.status)

		return m, m.loadCmd()
	}

	if m.state == expensesStateAdd {
		return m.updateAdd(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "a":
			m.fields = &expenseFields{
				date:     FormatDate(civil.DateOf(time.Now()), m.session.DateLayout()),
				category: expense.CategoryFuel,
			}
			m.form = m.buildForm()
			m.state = expensesStateAdd
			m.table.Blur()

			return m, m.form.Init()
		case "x", "delete":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.records) {
				return m, nil
			}

			return m, m.deleteCmd(m.records[idx])
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ExpensesModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = expensesStateBrowse
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

	f := *m.fields
	m.form = nil

	return m, m.addCmd(f)
}

func (m ExpensesModel) buildForm() *huh.Form {
	layout := m.session.DateLayout()

	options := make([]huh.Option[expense.Category], 0, len(expense.Categories()))
	for _, c := range expense.Categories() {
		options = append(options, huh.NewOption(string(c), c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Value(&m.fields.date).
				Validate(func(s string) error {
					if _, err := ParseDate(strings.TrimSpace(s), layout); err != nil {
						return fmt.Errorf("use %s", layout)
					}
					return nil
				}),
			huh.NewSelect[expense.Category]().
				Title("Category").
				Options(options...).
				Value(&m.fields.category),
			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&m.fields.amount).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return expense.ErrMissingAmount
					}
					if _, err := parseMoney(s); err != nil {
						return expense.ErrInvalidAmount
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&m.fields.description),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m ExpensesModel) View() string {
	summary := expense.Summarize(m.records)

	lines := make([]string, 0, len(summary.Categories)+1)
	for _, ct := range summary.Categories {
		lines = append(lines, fmt.Sprintf("%-20s %10s  (%d)", ct.Category, FormatMoney(ct.Total), ct.Count))
	}

	lines = append(lines, fmt.Sprintf("%-20s %10s", "Total", activeStyle(FormatMoney(summary.Total))))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
		"",
		strings.Join(lines, "\n"),
	)

	if m.state == expensesStateAdd && m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render("New expense\n\n"+m.form.View()))
	}

	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" + content
	} else if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n" + mutedStyle.Render(m.ShortHelp()))
}

// refreshTable shows the newest expenses first.
func (m *ExpensesModel) refreshTable() {
	slices.SortStableFunc(m.records, func(a, b expense.Record) int {
		return cmp.Or(b.Date.Compare(a.Date), b.CreatedAt.Compare(a.CreatedAt))
	})

	layout := m.session.DateLayout()

	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		rows = append(rows, table.Row{
			FormatDate(r.Date, layout),
			string(r.Category),
			FormatMoney(r.Amount),
			r.Description,
		})
	}

	m.table.SetRows(rows)
}

type expensesLoadedMsg struct {
	records []expense.Record
	err     error
}

type expenseChangedMsg struct {
	status string
	err    error
}

func (m ExpensesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		records, err := m.session.App.Expenses.All(ctx, m.session.Scope)

		return expensesLoadedMsg{records: records, err: err}
	}
}

func (m ExpensesModel) addCmd(f expenseFields) tea.Cmd {
	layout := m.session.DateLayout()

	return func() tea.Msg {
		date, err := ParseDate(strings.TrimSpace(f.date), layout)
		if err != nil {
			return expenseChangedMsg{err: err}
		}

		amount, err := parseMoney(f.amount)
		if err != nil {
			return expenseChangedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		rec, err := m.session.App.Expenses.Add(ctx, m.session.Scope, expense.CreateParams{
			Date:        date,
			Category:    f.category,
			Amount:      &amount,
			Description: strings.TrimSpace(f.description),
		})
		if err != nil {
			return expenseChangedMsg{err: err}
		}

		return expenseChangedMsg{status: fmt.Sprintf("Added %s %s", rec.Category, FormatMoney(rec.Amount))}
	}
}

func (m ExpensesModel) deleteCmd(rec expense.Record) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.session.App.Expenses.Delete(ctx, m.session.Scope, rec.ID); err != nil {
			return expenseChangedMsg{err: err}
		}

		return expenseChangedMsg{status: "Expense deleted"}
	}
}
