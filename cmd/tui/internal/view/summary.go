package view

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MrJamesThe3rd/stoptracker/internal/aggregate"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

type summaryTab int

const (
	summaryTabOverview summaryTab = iota
	summaryTabWeek
	summaryTabMonth
	summaryTabWeekday
	summaryTabDistribution
	summaryTabCount
)

func (t summaryTab) String() string {
	return [...]string{"Overview", "Weekly", "Monthly", "By weekday", "Distribution"}[t]
}

// SummaryModel shows earnings and stop counts grouped in several ways.
type SummaryModel struct {
	CommonModel
	session *Session

	tab     summaryTab
	records []workday.Record
	loading bool
	err     error
}

func NewSummaryModel(session *Session) SummaryModel {
	return SummaryModel{session: session, loading: true}
}

func (m SummaryModel) Title() string     { return "Summary" }
func (m SummaryModel) ShortHelp() string { return "Tab/←/→: switch view | r: refresh | Esc: back" }

func (m SummaryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		m.loading = false
		m.records, m.err = msg.records, msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % summaryTabCount
		case "shift+tab", "left", "h":
			m.tab = (m.tab + summaryTabCount - 1) % summaryTabCount
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m SummaryModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.loading {
		return style.Render("Loading...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	tabs := make([]string, 0, summaryTabCount)
	for t := range summaryTabCount {
		if t == m.tab {
			tabs = append(tabs, activeStyle("["+t.String()+"]"))
		} else {
			tabs = append(tabs, mutedStyle.Render(" "+t.String()+" "))
		}
	}

	var body string

	switch {
	case len(m.records) == 0:
		body = mutedStyle.Render("No workdays logged yet.")
	case m.tab == summaryTabOverview:
		body = m.viewOverview()
	case m.tab == summaryTabDistribution:
		body = m.viewDistribution()
	default:
		body = m.viewPeriods()
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(tabs, " "),
		"",
		body,
		"",
		mutedStyle.Render(m.ShortHelp()),
	))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...)
}

func (m SummaryModel) viewOverview() string {
	layout := m.session.DateLayout()
	stats := aggregate.Overview(m.records)

	avgStops, avgPay := "-", "-"
	if stats.AverageStops != nil {
		avgStops = strconv.FormatFloat(*stats.AverageStops, 'f', 1, 64)
	}

	if stats.AveragePay != nil {
		avgPay = FormatMoney(*stats.AveragePay)
	}

	lines := []string{
		fmt.Sprintf("Total earnings:  %s", activeStyle(FormatMoney(stats.TotalEarnings))),
		fmt.Sprintf("Total stops:     %d", stats.TotalStops),
		fmt.Sprintf("Days worked:     %d", stats.TotalDays),
		fmt.Sprintf("Average stops:   %s", avgStops),
		fmt.Sprintf("Average pay:     %s", avgPay),
	}

	if stats.BestDay != nil {
		lines = append(lines, fmt.Sprintf("Best day:        %s (%s)",
			FormatDate(stats.BestDay.Date, layout), FormatMoney(stats.BestDay.Total)))
	}

	t := newTable("Date", "Stops", "Total")
	for _, r := range stats.Recent {
		t.Row(FormatDate(r.Date, layout), strconv.Itoa(r.Stops), FormatMoney(r.Total))
	}

	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines, "\n"), "", "Recent days:", t.Render())
}

func (m SummaryModel) viewPeriods() string {
	fn := map[summaryTab]aggregate.PeriodFunc{
		summaryTabWeek:    aggregate.ByWeek,
		summaryTabMonth:   aggregate.ByMonth,
		summaryTabWeekday: aggregate.ByWeekday,
	}[m.tab]

	t := newTable("Period", "Days", "Stops", "Avg stops", "Earnings")
	for _, s := range aggregate.Sorted(aggregate.GroupByPeriod(m.records, fn)) {
		t.Row(
			s.Label,
			strconv.Itoa(s.DaysWorked),
			strconv.Itoa(s.TotalStops),
			strconv.FormatFloat(s.AverageStops, 'f', 1, 64),
			FormatMoney(s.TotalEarnings),
		)
	}

	return t.Render()
}

func (m SummaryModel) viewDistribution() string {
	t := newTable("Stops", "Days", "Share", "")
	for _, b := range aggregate.Bucketize(m.records) {
		t.Row(
			b.Label,
			strconv.Itoa(b.Count),
			strconv.FormatFloat(b.Percentage, 'f', 1, 64)+"%",
			accentStyle.Render(strings.Repeat("█", int(b.Percentage/5))),
		)
	}

	return t.Render()
}

type summaryLoadedMsg struct {
	records []workday.Record
	err     error
}

func (m SummaryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		records, err := m.session.App.Workdays.All(ctx, m.session.Scope)

		return summaryLoadedMsg{records: records, err: err}
	}
}
