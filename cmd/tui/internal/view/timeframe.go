package view

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Timeframe is a predefined or custom range of workdays.
type Timeframe int

const (
	TimeframeThisWeek Timeframe = iota
	TimeframeLastWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisWeek:
		return "This Week"
	case TimeframeLastWeek:
		return "Last Week"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Range resolves t relative to today. Weeks start on Monday.
func (t Timeframe) Range(today civil.Date) (civil.Date, civil.Date) {
	monday := today.AddDays(-((int(today.In(time.UTC).Weekday()) + 6) % 7))
	first := civil.Date{Year: today.Year, Month: today.Month, Day: 1}

	switch t {
	case TimeframeThisWeek:
		return monday, today
	case TimeframeLastWeek:
		return monday.AddDays(-7), monday.AddDays(-1)
	case TimeframeThisMonth:
		return first, today
	case TimeframeLastMonth:
		prev := civil.DateOf(first.In(time.UTC).AddDate(0, -1, 0))
		return prev, first.AddDays(-1)
	}

	return civil.Date{}, civil.Date{}
}

// TimeframeSelectedMsg is emitted once a range has been chosen. Start and End
// are zero when All is set.
type TimeframeSelectedMsg struct {
	Start civil.Date
	End   civil.Date
	All   bool
}

// Contains reports whether d falls inside the selection.
func (m TimeframeSelectedMsg) Contains(d civil.Date) bool {
	if m.All {
		return true
	}

	return !d.Before(m.Start) && !d.After(m.End)
}

func (m TimeframeSelectedMsg) Describe(layout string) string {
	if m.All {
		return "all time"
	}

	return fmt.Sprintf("%s to %s", FormatDate(m.Start, layout), FormatDate(m.End, layout))
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker lets the user choose a date range from a short list or type
// one in.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	minFrame Timeframe
	layout   string
	today    func() civil.Date

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker(minFrame Timeframe, layout string) TimeframePicker {
	newInput := func(prompt string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = strings.NewReplacer("02", "DD", "01", "MM", "2006", "YYYY").Replace(layout)
		ti.CharLimit = len(layout)
		ti.Width = len(layout) + 2
		ti.Prompt = prompt
		return ti
	}

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   minFrame,
		minFrame:   minFrame,
		layout:     layout,
		today:      func() civil.Date { return civil.DateOf(time.Now()) },
		startInput: newInput("From: "),
		endInput:   newInput("To:   "),
	}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.state == timeframeStateSelect {
			return m.updateSelect(key)
		}

		switch key.String() {
		case "tab", "shift+tab", "enter", "esc":
			return m.updateCustom(key)
		}
	}

	if m.state != timeframeStateCustom {
		return m, nil
	}

	var c1, c2 tea.Cmd
	m.startInput, c1 = m.startInput.Update(msg)
	m.endInput, c2 = m.endInput.Update(msg)

	return m, tea.Batch(c1, c2)
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > m.minFrame {
			m.selected--
		}
	case "down", "j":
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case "enter":
		switch m.selected {
		case TimeframeCustom:
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()
			return m, textinput.Blink
		case TimeframeAll:
			return m, selected(TimeframeSelectedMsg{All: true})
		}

		start, end := m.selected.Range(m.today())
		return m, selected(TimeframeSelectedMsg{Start: start, End: end})
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink
	case "enter":
		start, err := ParseDate(m.startInput.Value(), m.layout)
		if err != nil {
			m.err = fmt.Errorf("invalid start date, use %s", m.startInput.Placeholder)
			return m, nil
		}

		end, err := ParseDate(m.endInput.Value(), m.layout)
		if err != nil {
			m.err = fmt.Errorf("invalid end date, use %s", m.endInput.Placeholder)
			return m, nil
		}

		m.err = nil
		return m, selected(TimeframeSelectedMsg{Start: start, End: end})
	case "esc":
		m.state = timeframeStateSelect
		m.err = nil
	}

	return m, nil
}

func selected(msg TimeframeSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m TimeframePicker) View() string {
	var b strings.Builder

	if m.state == timeframeStateCustom {
		b.WriteString("Enter a custom range:\n\n")
		b.WriteString(m.startInput.View() + "\n")
		b.WriteString(m.endInput.View() + "\n\n")
		b.WriteString(mutedStyle.Render("enter confirm • tab switch • esc back"))
	} else {
		b.WriteString("Select timeframe:\n\n")

		for tf := m.minFrame; tf <= TimeframeCustom; tf++ {
			if tf == m.selected {
				b.WriteString(activeStyle("> " + tf.String()))
			} else {
				b.WriteString("  " + tf.String())
			}

			b.WriteString("\n")
		}

		b.WriteString("\n" + mutedStyle.Render("enter select • esc back"))
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render("Error: "+m.err.Error()))
	}

	return b.String()
}

// IsSelecting is true while the list, not the custom inputs, has focus.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = m.minFrame
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
