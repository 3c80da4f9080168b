package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drew-simmons/fsweep/internal/scan"
)

// ErrAborted is returned when the user quits the selector without
// confirming; the caller must treat it as "change nothing".
var ErrAborted = errors.New("selection aborted")

// InteractiveSelector narrows a finding set through a full-screen
// checkbox list. It satisfies the planner's Selector interface.
type InteractiveSelector struct{}

// Select runs the selection screen and returns the chosen subset in
// scan order.
func (InteractiveSelector) Select(findings []scan.Finding) ([]scan.Finding, error) {
	if len(findings) == 0 {
		return nil, nil
	}

	final, err := tea.NewProgram(newSelectModel(findings), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	m := final.(selectModel)
	if m.aborted {
		return nil, ErrAborted
	}
	return m.chosen(), nil
}

// ─── Keymap ──────────────────────────────────────────────────────────────────

type selectKeymap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	None    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func (k selectKeymap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.All, k.None, k.Confirm, k.Quit}
}

func (k selectKeymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Toggle}, {k.All, k.None, k.Confirm, k.Quit}}
}

var selectKeys = selectKeymap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	None:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "select none")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "abort")),
}

// ─── Model ───────────────────────────────────────────────────────────────────

type selectModel struct {
	findings []scan.Finding
	selected []bool
	cursor   int
	offset   int
	width    int
	height   int
	help     help.Model
	done     bool
	aborted  bool
}

func newSelectModel(findings []scan.Finding) selectModel {
	selected := make([]bool, len(findings))
	for i := range selected {
		selected[i] = true
	}
	return selectModel{
		findings: findings,
		selected: selected,
		width:    80,
		height:   24,
		help:     help.New(),
	}
}

func (m selectModel) chosen() []scan.Finding {
	var out []scan.Finding
	for i, f := range m.findings {
		if m.selected[i] {
			out = append(out, f)
		}
	}
	return out
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, selectKeys.Quit):
			m.aborted = true
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, selectKeys.Confirm):
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, selectKeys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.ensureVisible()
			}

		case key.Matches(msg, selectKeys.Down):
			if m.cursor < len(m.findings)-1 {
				m.cursor++
				m.ensureVisible()
			}

		case key.Matches(msg, selectKeys.Toggle):
			m.selected[m.cursor] = !m.selected[m.cursor]

		case key.Matches(msg, selectKeys.All):
			for i := range m.selected {
				m.selected[i] = true
			}

		case key.Matches(msg, selectKeys.None):
			for i := range m.selected {
				m.selected[i] = false
			}
		}
	}

	return m, nil
}

func (m *selectModel) ensureVisible() {
	vh := m.viewportHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
}

func (m selectModel) viewportHeight() int {
	h := m.height - 6 // header + footer
	if h < 1 {
		h = 1
	}
	return h
}

// ─── View ────────────────────────────────────────────────────────────────────

func (m selectModel) View() string {
	if m.done {
		return ""
	}

	var s strings.Builder

	count := 0
	var total int64
	for i, f := range m.findings {
		if m.selected[i] {
			count++
			total += f.SizeBytes
		}
	}
	header := TitleStyle.Render("  Select folders to sweep") +
		MutedStyle.Render(fmt.Sprintf("   %d/%d selected, %s", count, len(m.findings), FormatSize(total)))
	s.WriteString(header)
	s.WriteString("\n\n")

	vh := m.viewportHeight()
	for i := m.offset; i < len(m.findings) && i < m.offset+vh; i++ {
		s.WriteString(m.renderRow(i))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString("  " + m.help.View(selectKeys))
	return s.String()
}

func (m selectModel) renderRow(i int) string {
	f := m.findings[i]

	checkbox := "[ ]"
	if m.selected[i] {
		checkbox = "[x]"
	}
	cursor := "  "
	if i == m.cursor {
		cursor = lipgloss.NewStyle().Foreground(ColorPrimary).Render("> ")
	}

	label := f.RelPath
	line := fmt.Sprintf("%s%s %-50s %10s", cursor, checkbox, label, FormatSize(f.SizeBytes))
	if i == m.cursor {
		return lipgloss.NewStyle().Bold(true).Render(line)
	}
	if !m.selected[i] {
		return MutedStyle.Render(line)
	}
	return line
}
