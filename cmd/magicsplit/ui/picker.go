// Package ui implements the interactive analysis flow: a strategy
// picker followed by a stock code prompt.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"magicsplitgpt/internal/config"
	"magicsplitgpt/internal/strategy"
)

type phase int

const (
	phaseStrategy phase = iota
	phaseCode
	phaseDone
)

// Selection is the result of the interactive flow.
type Selection struct {
	Strategy strategy.Strategy
	Code     string
	Quit     bool
}

// Model drives the two-step picker.
type Model struct {
	theme      Theme
	strategies []strategy.Strategy
	cursor     int
	phase      phase
	codeInput  textinput.Model
	errMsg     string
	result     Selection
}

// NewModel creates the picker model.
func NewModel() Model {
	ti := textinput.New()
	ti.Placeholder = "005930"
	ti.CharLimit = 6
	ti.Width = 10
	ti.Prompt = "종목코드 > "

	return Model{
		theme:      DefaultTheme(),
		strategies: strategy.All(),
		codeInput:  ti,
	}
}

// Result returns the selection after the program finishes.
func (m Model) Result() Selection { return m.result }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.phase {
	case phaseStrategy:
		return m.updateStrategy(key)
	case phaseCode:
		return m.updateCode(key)
	}
	return m, tea.Quit
}

func (m Model) updateStrategy(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.result.Quit = true
		m.phase = phaseDone
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.strategies)-1 {
			m.cursor++
		}
	case "enter":
		return m.chooseStrategy(m.strategies[m.cursor])
	default:
		for i, s := range m.strategies {
			if key.String() == s.MenuKey {
				m.cursor = i
				return m.chooseStrategy(s)
			}
		}
	}
	return m, nil
}

func (m Model) chooseStrategy(s strategy.Strategy) (tea.Model, tea.Cmd) {
	m.result.Strategy = s
	m.phase = phaseCode
	m.codeInput.Focus()
	return m, textinput.Blink
}

func (m Model) updateCode(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "esc":
		m.result.Quit = true
		m.phase = phaseDone
		return m, tea.Quit
	case "enter":
		code := strings.TrimSpace(m.codeInput.Value())
		if !config.ValidStockCode(code) {
			m.errMsg = "종목코드는 6자리 숫자입니다 (예: 005930)"
			return m, nil
		}
		m.result.Code = code
		m.phase = phaseDone
		return m, tea.Quit
	}

	m.errMsg = ""
	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(key)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	switch m.phase {
	case phaseStrategy:
		b.WriteString(m.theme.Title.Render("분석 전략을 선택하세요"))
		b.WriteString("\n")
		for i, s := range m.strategies {
			cursor := "  "
			style := m.theme.Item
			if i == m.cursor {
				cursor = m.theme.Cursor.Render("> ")
				style = m.theme.Selected
			}
			fmt.Fprintf(&b, "%s%s\n", cursor, style.Render(fmt.Sprintf("%s. %s", s.MenuKey, s.Title)))
			if i == m.cursor {
				b.WriteString(m.theme.Desc.Render(s.Description))
				b.WriteString("\n")
			}
		}
		b.WriteString(m.theme.Hint.Render("1-5 선택 · enter 확인 · q 종료"))
	case phaseCode:
		b.WriteString(m.theme.Title.Render(m.result.Strategy.Title))
		b.WriteString("\n")
		b.WriteString(m.codeInput.View())
		b.WriteString("\n")
		if m.errMsg != "" {
			b.WriteString(m.theme.Error.Render(m.errMsg))
			b.WriteString("\n")
		}
		b.WriteString(m.theme.Hint.Render("enter 확인 · esc 종료"))
	}
	b.WriteString("\n")
	return b.String()
}

// Run shows the picker and returns the user's selection.
func Run() (Selection, error) {
	p := tea.NewProgram(NewModel())
	final, err := p.Run()
	if err != nil {
		return Selection{}, fmt.Errorf("interactive picker: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Selection{Quit: true}, nil
	}
	return m.Result(), nil
}
