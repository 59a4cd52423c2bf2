package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// SearchModel is the one-line filter prompt shown under the panes.
type SearchModel struct {
	input string
}

func NewSearchModel(initial string) SearchModel {
	return SearchModel{input: initial}
}

func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		m.input = ""
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(keyMsg.Runes)
	}
	return m, nil
}

func (m SearchModel) Value() string {
	return m.input
}

func (m SearchModel) View() string {
	return m.input + "█"
}
