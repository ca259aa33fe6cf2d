package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

// dayFields outlives model copies so the form can write into it.
type dayFields struct {
	date  string
	stops string
	extra string
	notes string
}

// LogDayModel records a single workday.
type LogDayModel struct {
	CommonModel
	session *Session

	form   *huh.Form
	fields *dayFields

	saving bool
	last   *workday.Record
	err    error
}

func NewLogDayModel(session *Session) LogDayModel {
	m := LogDayModel{session: session}
	m.reset()

	return m
}

func (m *LogDayModel) reset() {
	m.fields = &dayFields{date: FormatDate(civil.DateOf(time.Now()), m.session.DateLayout())}
	m.form = m.buildForm()
}

func (m *LogDayModel) buildForm() *huh.Form {
	layout := m.session.DateLayout()

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
			huh.NewInput().
				Title("Stops").
				Placeholder("0").
				Value(&m.fields.stops).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return workday.ErrMissingStops
					}
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
						return workday.ErrInvalidStops
					}
					return nil
				}),
			huh.NewInput().
				Title("Extra pay").
				Placeholder("0.00").
				Value(&m.fields.extra).
				Validate(func(s string) error {
					if _, err := parseMoney(s); err != nil {
						return err
					}
					return nil
				}),
			huh.NewText().
				Title("Notes").
				CharLimit(200).
				Lines(2).
				Value(&m.fields.notes),
		),
	).WithWidth(50).WithShowHelp(false)
}

// parseMoney accepts blank as zero and either decimal separator.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number")
	}

	if d.IsNegative() {
		return decimal.Zero, workday.ErrInvalidExtra
	}

	return d, nil
}

func (m LogDayModel) Title() string     { return "Log Workday" }
func (m LogDayModel) ShortHelp() string { return "Enter: next | Esc: back" }

func (m LogDayModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LogDayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

	case daySavedMsg:
		m.saving = false
		m.err = msg.err

		if msg.err == nil {
			m.last = msg.record
			m.reset()
		} else {
			m.form = m.buildForm()
		}

		return m, m.form.Init()
	}

	if m.saving {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.saving = true

	return m, m.saveCmd()
}

func (m LogDayModel) View() string {
	var b strings.Builder

	cfg := m.session.Rate
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Rate: %s up to %d stops, %s after",
		FormatMoney(cfg.RateBeforeCutoff), cfg.CutoffPoint, FormatMoney(cfg.RateAfterCutoff))))
	b.WriteString("\n\n")

	if n, err := strconv.Atoi(strings.TrimSpace(m.fields.stops)); err == nil && n >= 0 {
		extra, _ := parseMoney(m.fields.extra)
		b.WriteString(fmt.Sprintf("Estimated total: %s\n\n", activeStyle(FormatMoney(rate.DayTotal(n, extra, cfg)))))
	}

	b.WriteString(m.form.View())

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render("Error: "+m.err.Error()))
	}

	if m.last != nil {
		b.WriteString("\n\n" + successStyle.Render(fmt.Sprintf("Saved %s: %d stops, total %s",
			FormatDate(m.last.Date, m.session.DateLayout()), m.last.Stops, FormatMoney(m.last.Total))))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

type daySavedMsg struct {
	record *workday.Record
	err    error
}

func (m LogDayModel) saveCmd() tea.Cmd {
	layout := m.session.DateLayout()
	f := *m.fields

	return func() tea.Msg {
		d, err := ParseDate(strings.TrimSpace(f.date), layout)
		if err != nil {
			return daySavedMsg{err: err}
		}

		n, err := strconv.Atoi(strings.TrimSpace(f.stops))
		if err != nil {
			return daySavedMsg{err: workday.ErrInvalidStops}
		}

		x, err := parseMoney(f.extra)
		if err != nil {
			return daySavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		rec, err := m.session.App.Workdays.Add(ctx, m.session.Scope, m.session.Rate, workday.CreateParams{
			Date:  d,
			Stops: &n,
			Extra: x,
			Notes: strings.TrimSpace(f.notes),
		})

		return daySavedMsg{record: rec, err: err}
	}
}
