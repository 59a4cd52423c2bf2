package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/pedrocarmona/big-query-adapter/internal/tablename"
)

const maxVisibleTables = 20

// TableListModel is the left pane: logical table names with a fuzzy filter.
type TableListModel struct {
	keyMap     KeyMap
	tables     []string
	filtered   []string
	filter     string
	cursor     int
	viewOffset int
	// selected is set when the user presses enter on a table.
	selected bool
}

func NewTableListModel(keyMap KeyMap) TableListModel {
	return TableListModel{
		keyMap:   keyMap,
		tables:   make([]string, 0),
		filtered: make([]string, 0),
	}
}

func (m *TableListModel) SetTables(tables []string) {
	m.tables = tables
	m.applyFilter()
}

func (m *TableListModel) SetFilter(filter string) {
	m.filter = filter
	m.applyFilter()
}

// applyFilter fuzzy-matches the filter against the table names. Matches keep
// the ranking fuzzy.Find gives them.
func (m *TableListModel) applyFilter() {
	m.cursor = 0
	m.viewOffset = 0

	if m.filter == "" {
		m.filtered = m.tables
		return
	}

	matches := fuzzy.Find(m.filter, m.tables)
	m.filtered = make([]string, 0, len(matches))
	for _, match := range matches {
		m.filtered = append(m.filtered, m.tables[match.Index])
	}
}

// Current returns the table under the cursor.
func (m TableListModel) Current() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return "", false
	}
	return m.filtered[m.cursor], true
}

func (m TableListModel) Update(msg tea.Msg) (TableListModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.filtered) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keyMap.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keyMap.Top):
		m.cursor = 0

	case key.Matches(keyMsg, m.keyMap.Bottom):
		m.cursor = len(m.filtered) - 1

	case key.Matches(keyMsg, m.keyMap.PageUp):
		m.cursor = max(m.cursor-10, 0)

	case key.Matches(keyMsg, m.keyMap.PageDown):
		m.cursor = min(m.cursor+10, len(m.filtered)-1)

	case key.Matches(keyMsg, m.keyMap.Enter):
		m.selected = true
	}

	m.ensureCursorVisible()
	return m, nil
}

func (m *TableListModel) ensureCursorVisible() {
	if m.cursor < m.viewOffset {
		m.viewOffset = m.cursor
	}
	if m.cursor >= m.viewOffset+maxVisibleTables {
		m.viewOffset = m.cursor - maxVisibleTables + 1
	}
	m.viewOffset = max(m.viewOffset, 0)
}

func (m TableListModel) View() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("📋 Tables") + "\n\n")

	if m.filter != "" {
		content.WriteString(SubtleItemStyle.Render(fmt.Sprintf("Filter: %s", m.filter)) + "\n\n")
	}

	if len(m.filtered) == 0 {
		if len(m.tables) == 0 {
			content.WriteString(SubtleItemStyle.Render("No tables found"))
		} else {
			content.WriteString(SubtleItemStyle.Render("No tables match filter"))
		}
		return content.String()
	}

	end := min(m.viewOffset+maxVisibleTables, len(m.filtered))
	for i := m.viewOffset; i < end; i++ {
		name := m.filtered[i]
		style := ItemStyle
		prefix := "  🗂  "
		if tablename.IsWildcard(name) {
			style = WildcardItemStyle
			prefix = "  📅 "
		}
		if i == m.cursor {
			style = SelectedItemStyle
		}
		content.WriteString(style.Render(prefix+name) + "\n")
	}

	if len(m.filtered) > end {
		content.WriteString(SubtleItemStyle.Render(fmt.Sprintf("... and %d more", len(m.filtered)-end)) + "\n")
	}

	content.WriteString("\n" + SubtleItemStyle.Render(fmt.Sprintf("Tables: %d/%d", len(m.filtered), len(m.tables))))
	return content.String()
}
