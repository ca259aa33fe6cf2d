package view

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/stoptracker/internal/reconcile"
)

type reconcileState int

const (
	reconcileStateTimeframe reconcileState = iota
	reconcileStateForm
	reconcileStateResult
)

type reconcileInput struct {
	external string
	invoice  string
}

// ReconcileModel compares logged stops with a count reported elsewhere.
type ReconcileModel struct {
	CommonModel
	session *Session

	state     reconcileState
	picker    TimeframePicker
	timeframe TimeframeSelectedMsg
	form      *huh.Form
	input     *reconcileInput

	result *reconcile.Comparison
	err    error
}

func NewReconcileModel(session *Session) ReconcileModel {
	return ReconcileModel{
		session: session,
		picker:  NewTimeframePicker(TimeframeThisWeek, session.DateLayout()),
		input:   &reconcileInput{},
	}
}

func (m ReconcileModel) Title() string { return "Reconcile" }

func (m ReconcileModel) ShortHelp() string {
	if m.state == reconcileStateResult {
		return "Esc: start over"
	}

	return "Esc: back | Enter: confirm"
}

func (m ReconcileModel) Init() tea.Cmd {
	return nil
}

func (m ReconcileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		if msg.All {
			m.picker.Reset()
			m.err = fmt.Errorf("pick a bounded range to reconcile")

			return m, nil
		}

		m.err = nil
		m.timeframe = msg
		m.input = &reconcileInput{}
		m.form = m.buildForm()
		m.state = reconcileStateForm

		return m, m.form.Init()

	case reconcileResultMsg:
		m.state = reconcileStateResult
		m.result, m.err = msg.result, msg.err

		return m, nil
	}

	switch m.state {
	case reconcileStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case reconcileStateForm:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = reconcileStateTimeframe
			m.picker.Reset()

			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.state = reconcileStateResult

		return m, m.reconcileCmd()

	case reconcileStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = reconcileStateTimeframe
			m.picker.Reset()
			m.result = nil
			m.err = nil
		}
	}

	return m, nil
}

func (m ReconcileModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Stops reported by the company").
				Value(&m.input.external).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
						return fmt.Errorf("enter a whole number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Invoice amount").
				Description("Optional").
				Placeholder("0.00").
				Value(&m.input.invoice).
				Validate(func(s string) error {
					_, err := parseMoney(s)
					return err
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ReconcileModel) View() string {
	style := lipgloss.NewStyle().Padding(1)
	layout := m.session.DateLayout()

	var body string

	switch m.state {
	case reconcileStateTimeframe:
		body = m.picker.View()
	case reconcileStateForm:
		body = fmt.Sprintf("Reconciling %s\n\n%s", m.timeframe.Describe(layout), m.form.View())
	case reconcileStateResult:
		body = m.viewResult(layout)
	}

	if m.err != nil {
		body += "\n\n" + errorStyle.Render("Error: "+m.err.Error())
	}

	return style.Render(body)
}

func (m ReconcileModel) viewResult(layout string) string {
	if m.result == nil {
		if m.err != nil {
			return ""
		}

		return "Comparing..."
	}

	c := m.result

	status := map[reconcile.Status]string{
		reconcile.StatusMatch: successStyle.Render("Match"),
		reconcile.StatusOver:  accentStyle.Render("You logged more stops than reported"),
		reconcile.StatusUnder: errorStyle.Render("You logged fewer stops than reported"),
	}[c.Status]

	accuracy := "-"
	if c.Accuracy != nil {
		accuracy = strconv.FormatFloat(*c.Accuracy, 'f', 1, 64) + "%"
	}

	lines := []string{
		fmt.Sprintf("%s to %s", FormatDate(c.Start, layout), FormatDate(c.End, layout)),
		"",
		status,
		"",
		fmt.Sprintf("Reported: %d", c.ExternalTotal),
		fmt.Sprintf("Logged:   %d", c.AppTotal),
		fmt.Sprintf("Diff:     %+d", c.Difference),
		fmt.Sprintf("Accuracy: %s", accuracy),
		fmt.Sprintf("Earnings: %s", FormatMoney(c.AppEarnings)),
	}

	if c.InvoiceAmount != nil && c.EarningsDifference != nil {
		lines = append(lines,
			fmt.Sprintf("Invoice:  %s", FormatMoney(*c.InvoiceAmount)),
			fmt.Sprintf("Pay diff: %s", FormatMoney(*c.EarningsDifference)),
		)
	}

	t := newTable("Date", "Stops")
	for _, d := range c.Daily {
		t.Row(FormatDate(d.Date, layout), strconv.Itoa(d.Stops))
	}

	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines, "\n"), "", t.Render())
}

type reconcileResultMsg struct {
	result *reconcile.Comparison
	err    error
}

func (m ReconcileModel) reconcileCmd() tea.Cmd {
	tf, in := m.timeframe, *m.input

	return func() tea.Msg {
		external, err := strconv.Atoi(strings.TrimSpace(in.external))
		if err != nil {
			return reconcileResultMsg{err: err}
		}

		var opts []reconcile.Option

		if strings.TrimSpace(in.invoice) != "" {
			amount, err := parseMoney(in.invoice)
			if err != nil {
				return reconcileResultMsg{err: err}
			}

			opts = append(opts, reconcile.WithInvoiceAmount(amount))
		}

		ctx, cancel := DbCtx()
		defer cancel()

		records, err := m.session.App.Workdays.All(ctx, m.session.Scope)
		if err != nil {
			return reconcileResultMsg{err: err}
		}

		c := reconcile.Reconcile(records, tf.Start, tf.End, external, opts...)

		return reconcileResultMsg{result: &c}
	}
}
