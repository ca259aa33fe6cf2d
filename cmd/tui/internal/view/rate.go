package view

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
)

const customPreset = "custom"

type rateFields struct {
	preset string
	cutoff string
	before string
	after  string
}

// RateModel edits the pay rates. Saved changes apply to days logged from then
// on; existing totals keep the rate they were logged with.
type RateModel struct {
	CommonModel
	session *Session

	form   *huh.Form
	fields *rateFields
	custom bool
	saving bool

	status string
	err    error
}

func NewRateModel(session *Session) RateModel {
	m := RateModel{session: session}
	m.fields = &rateFields{preset: customPreset}

	for _, p := range rate.Presets() {
		if configEqual(p.Config, session.Rate) {
			m.fields.preset = p.Name
		}
	}

	m.form = m.presetForm()

	return m
}

func configEqual(a, b rate.Config) bool {
	return a.CutoffPoint == b.CutoffPoint &&
		a.RateBeforeCutoff.Equal(b.RateBeforeCutoff) &&
		a.RateAfterCutoff.Equal(b.RateAfterCutoff)
}

func (m RateModel) presetForm() *huh.Form {
	options := make([]huh.Option[string], 0, len(rate.Presets())+1)
	for _, p := range rate.Presets() {
		label := fmt.Sprintf("%s (%s up to %d, then %s)",
			p.Name, FormatMoney(p.Config.RateBeforeCutoff), p.Config.CutoffPoint, FormatMoney(p.Config.RateAfterCutoff))
		options = append(options, huh.NewOption(label, p.Name))
	}

	options = append(options, huh.NewOption("Custom rates", customPreset))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Rate preset").
				Options(options...).
				Value(&m.fields.preset),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m RateModel) customForm() *huh.Form {
	cfg := m.session.Rate
	m.fields.cutoff = strconv.Itoa(cfg.CutoffPoint)
	m.fields.before = cfg.RateBeforeCutoff.String()
	m.fields.after = cfg.RateAfterCutoff.String()

	rateValidator := func(s string) error {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil || d.IsNegative() {
			return fmt.Errorf("enter a non-negative amount")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cutoff (stops)").
				Value(&m.fields.cutoff).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
						return fmt.Errorf("enter a whole number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Rate up to cutoff").
				Value(&m.fields.before).
				Validate(rateValidator),
			huh.NewInput().
				Title("Rate after cutoff").
				Value(&m.fields.after).
				Validate(rateValidator),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m RateModel) Title() string     { return "Rate Settings" }
func (m RateModel) ShortHelp() string { return "Enter: confirm | Esc: back" }

func (m RateModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m RateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

	case rateSavedMsg:
		m.saving = false
		m.err = msg.err
		if msg.err == nil {
			m.session.Rate = msg.cfg
			m.status = "Saved. New days use these rates."
		}

		m.custom = false
		m.form = m.presetForm()

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

	if !m.custom && m.fields.preset == customPreset {
		m.custom = true
		m.form = m.customForm()

		return m, m.form.Init()
	}

	m.saving = true

	return m, m.saveCmd(*m.fields, m.custom)
}

func (m RateModel) View() string {
	cfg := m.session.Rate

	current := fmt.Sprintf("Current: %s per stop up to %d stops, %s per stop after",
		FormatMoney(cfg.RateBeforeCutoff), cfg.CutoffPoint, FormatMoney(cfg.RateAfterCutoff))

	examples := make([]string, 0, 3)
	for _, n := range []int{cfg.CutoffPoint - 10, cfg.CutoffPoint, cfg.CutoffPoint + 20} {
		if n < 0 {
			continue
		}

		examples = append(examples, fmt.Sprintf("%d stops = %s", n, FormatMoney(rate.ComputeTotal(n, cfg))))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		current,
		mutedStyle.Render(strings.Join(examples, " • ")),
		"",
		m.form.View(),
	)

	if m.err != nil {
		body += "\n\n" + errorStyle.Render("Error: "+m.err.Error())
	} else if m.status != "" {
		body += "\n\n" + successStyle.Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(body)
}

type rateSavedMsg struct {
	cfg rate.Config
	err error
}

func (m RateModel) saveCmd(f rateFields, custom bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if !custom {
			cfg, err := m.session.App.Settings.ApplyPreset(ctx, m.session.Scope, f.preset)
			return rateSavedMsg{cfg: cfg, err: err}
		}

		cutoff, err := strconv.Atoi(strings.TrimSpace(f.cutoff))
		if err != nil {
			return rateSavedMsg{err: err}
		}

		before, err := decimal.NewFromString(strings.TrimSpace(f.before))
		if err != nil {
			return rateSavedMsg{err: err}
		}

		after, err := decimal.NewFromString(strings.TrimSpace(f.after))
		if err != nil {
			return rateSavedMsg{err: err}
		}

		cfg := rate.Config{CutoffPoint: cutoff, RateBeforeCutoff: before, RateAfterCutoff: after}

		return rateSavedMsg{cfg: cfg, err: m.session.App.Settings.Save(ctx, m.session.Scope, cfg)}
	}
}
