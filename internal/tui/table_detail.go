package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pedrocarmona/big-query-adapter/pkg/adapter"
)

type TabType int

const (
	ColumnsTab TabType = iota
	PreviewTab
)

const (
	maxVisibleRows = 20
	previewColumns = 5
	cellWidth      = 18
)

// TableDetailModel is the right pane: the translated columns of the selected
// table and a sample of its rows.
type TableDetailModel struct {
	keyMap    KeyMap
	table     string
	columns   []adapter.Column
	preview   *adapter.Result
	activeTab TabType

	loadingColumns bool
	loadingPreview bool

	rowCursor int
	rowOffset int
	colCursor int
	colOffset int
}

func NewTableDetailModel(keyMap KeyMap) TableDetailModel {
	return TableDetailModel{
		keyMap:    keyMap,
		activeTab: ColumnsTab,
	}
}

// Reset clears the pane for a newly selected table.
func (m *TableDetailModel) Reset(table string) {
	m.table = table
	m.columns = nil
	m.preview = nil
	m.loadingColumns = true
	m.loadingPreview = true
	m.resetCursor()
}

func (m *TableDetailModel) resetCursor() {
	m.rowCursor, m.rowOffset = 0, 0
	m.colCursor, m.colOffset = 0, 0
}

func (m *TableDetailModel) SetColumns(table string, columns []adapter.Column) {
	if table != m.table {
		return
	}
	m.columns = columns
	m.loadingColumns = false
}

func (m *TableDetailModel) SetPreview(table string, preview *adapter.Result) {
	if table != m.table {
		return
	}
	m.preview = preview
	m.loadingPreview = false
}

// StopLoading marks both loads finished, used when one of them failed.
func (m *TableDetailModel) StopLoading() {
	m.loadingColumns = false
	m.loadingPreview = false
}

func (m TableDetailModel) rowCount() int {
	switch m.activeTab {
	case PreviewTab:
		if m.preview == nil {
			return 0
		}
		return len(m.preview.Rows)
	default:
		return len(m.columns)
	}
}

// CurrentColumn returns the column under the cursor on the columns tab.
func (m TableDetailModel) CurrentColumn() (adapter.Column, bool) {
	if m.activeTab != ColumnsTab || m.rowCursor >= len(m.columns) {
		return adapter.Column{}, false
	}
	return m.columns[m.rowCursor], true
}

// CurrentCell returns the preview value under the cursor.
func (m TableDetailModel) CurrentCell() (any, bool) {
	if m.activeTab != PreviewTab || m.preview == nil || m.rowCursor >= len(m.preview.Rows) {
		return nil, false
	}
	row := m.preview.Rows[m.rowCursor]
	if m.colCursor >= len(row) {
		return nil, false
	}
	return row[m.colCursor], true
}

func (m TableDetailModel) Update(msg tea.Msg) (TableDetailModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keyMap.Tab), key.Matches(keyMsg, m.keyMap.ShiftTab):
		if m.activeTab == ColumnsTab {
			m.activeTab = PreviewTab
		} else {
			m.activeTab = ColumnsTab
		}
		m.resetCursor()
		return m, nil

	case key.Matches(keyMsg, m.keyMap.Up):
		if m.rowCursor > 0 {
			m.rowCursor--
		}

	case key.Matches(keyMsg, m.keyMap.Down):
		if m.rowCursor < m.rowCount()-1 {
			m.rowCursor++
		}

	case key.Matches(keyMsg, m.keyMap.Top):
		m.rowCursor = 0

	case key.Matches(keyMsg, m.keyMap.Bottom):
		m.rowCursor = max(m.rowCount()-1, 0)

	case key.Matches(keyMsg, m.keyMap.Left):
		if m.activeTab == PreviewTab && m.colCursor > 0 {
			m.colCursor--
		}

	case key.Matches(keyMsg, m.keyMap.Right):
		if m.activeTab == PreviewTab && m.preview != nil && m.colCursor < len(m.preview.Columns)-1 {
			m.colCursor++
		}
	}

	m.ensureCursorVisible()
	return m, nil
}

func (m *TableDetailModel) ensureCursorVisible() {
	if m.rowCursor < m.rowOffset {
		m.rowOffset = m.rowCursor
	}
	if m.rowCursor >= m.rowOffset+maxVisibleRows {
		m.rowOffset = m.rowCursor - maxVisibleRows + 1
	}
	if m.colCursor < m.colOffset {
		m.colOffset = m.colCursor
	}
	if m.colCursor >= m.colOffset+previewColumns {
		m.colOffset = m.colCursor - previewColumns + 1
	}
}

func (m TableDetailModel) View() string {
	if m.table == "" {
		return SubtleItemStyle.Render("Select a table to view its columns.")
	}

	var content strings.Builder
	content.WriteString(m.renderTabs() + "\n\n")
	content.WriteString(SubtleItemStyle.Render("Table: "+m.table) + "\n\n")

	if m.activeTab == PreviewTab {
		content.WriteString(m.renderPreviewTab())
	} else {
		content.WriteString(m.renderColumnsTab())
	}
	return content.String()
}

func (m TableDetailModel) renderTabs() string {
	columnsText := "Columns"
	if m.loadingColumns {
		columnsText += " (Loading...)"
	}
	previewText := "Preview"
	if m.loadingPreview {
		previewText += " (Loading...)"
	}

	columnsStyle, previewStyle := TabActiveStyle, TabInactiveStyle
	if m.activeTab == PreviewTab {
		columnsStyle, previewStyle = TabInactiveStyle, TabActiveStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columnsStyle.Render(columnsText), previewStyle.Render(previewText))
}

func (m TableDetailModel) renderColumnsTab() string {
	if m.columns == nil {
		return SubtleItemStyle.Render("No columns loaded.")
	}
	if len(m.columns) == 0 {
		return SubtleItemStyle.Render("Table has no columns.")
	}

	var content strings.Builder
	content.WriteString(HeaderStyle.Render(fmt.Sprintf("%-28s %-12s %-12s %s", "Name", "Type", "Native", "Null")) + "\n")

	end := min(m.rowOffset+maxVisibleRows, len(m.columns))
	for i := m.rowOffset; i < end; i++ {
		line := renderColumn(m.columns[i])
		if i == m.rowCursor {
			line = SelectedItemStyle.Render(line)
		}
		content.WriteString(line + "\n")
	}
	if len(m.columns) > end {
		content.WriteString(SubtleItemStyle.Render(fmt.Sprintf("... and %d more columns", len(m.columns)-end)) + "\n")
	}
	return content.String()
}

func renderColumn(c adapter.Column) string {
	logical := DataTypeStyle.Render(fmt.Sprintf("%-12s", c.SQLType))
	if !c.Resolved() {
		logical = UnresolvedTypeStyle.Render(fmt.Sprintf("%-12s", "?"))
	}
	null := "NO"
	if c.Nullable {
		null = "YES"
	}
	return fmt.Sprintf("%-28s %s %-12s %s", truncate(c.Name, 28), logical, c.NativeType, null)
}

func (m TableDetailModel) renderPreviewTab() string {
	if m.preview == nil {
		return SubtleItemStyle.Render("No preview loaded.")
	}
	if m.preview.Empty() {
		return SubtleItemStyle.Render("Table has no rows.")
	}

	colEnd := min(m.colOffset+previewColumns, len(m.preview.Columns))

	var content strings.Builder
	header := make([]string, 0, colEnd-m.colOffset)
	for _, name := range m.preview.Columns[m.colOffset:colEnd] {
		header = append(header, fmt.Sprintf("%-*s", cellWidth, truncate(name, cellWidth)))
	}
	content.WriteString(HeaderStyle.Render(strings.Join(header, " ")) + "\n")

	rowEnd := min(m.rowOffset+maxVisibleRows, len(m.preview.Rows))
	for r := m.rowOffset; r < rowEnd; r++ {
		row := m.preview.Rows[r]
		cells := make([]string, 0, colEnd-m.colOffset)
		for c := m.colOffset; c < colEnd; c++ {
			var value any
			if c < len(row) {
				value = row[c]
			}
			cell := fmt.Sprintf("%-*s", cellWidth, truncate(formatValue(value), cellWidth))
			if r == m.rowCursor && c == m.colCursor {
				cell = SelectedItemStyle.Render(cell)
			}
			cells = append(cells, cell)
		}
		content.WriteString(strings.Join(cells, " ") + "\n")
	}

	content.WriteString("\n" + SubtleItemStyle.Render(fmt.Sprintf("Rows: %d • Columns %d-%d of %d",
		len(m.preview.Rows), m.colOffset+1, colEnd, len(m.preview.Columns))))
	return content.String()
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	if length <= 3 {
		return string(r[:length])
	}
	return string(r[:length-3]) + "..."
}
