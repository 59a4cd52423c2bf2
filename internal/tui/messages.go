package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pedrocarmona/big-query-adapter/pkg/adapter"
)

const previewLimit = 100

type TablesLoadedMsg struct {
	Tables []string
}

type ColumnsLoadedMsg struct {
	Table   string
	Columns []adapter.Column
}

type PreviewLoadedMsg struct {
	Table   string
	Preview *adapter.Result
}

type ErrorMsg struct {
	Error error
}

type CopySuccessMsg struct {
	Text string
}

func (m Model) loadTables() tea.Cmd {
	return func() tea.Msg {
		tables, err := m.browser.Tables(m.ctx)
		if err != nil {
			return ErrorMsg{Error: fmt.Errorf("failed to load tables: %w", err)}
		}
		return TablesLoadedMsg{Tables: tables}
	}
}

func (m Model) loadColumns(table string) tea.Cmd {
	return func() tea.Msg {
		columns, err := m.browser.Columns(m.ctx, table)
		if err != nil {
			return ErrorMsg{Error: fmt.Errorf("failed to load columns for %s: %w", table, err)}
		}
		return ColumnsLoadedMsg{Table: table, Columns: columns}
	}
}

func (m Model) loadPreview(table string) tea.Cmd {
	return func() tea.Msg {
		preview, err := m.browser.Preview(m.ctx, table, previewLimit)
		if err != nil {
			return ErrorMsg{Error: fmt.Errorf("failed to load preview for %s: %w", table, err)}
		}
		return PreviewLoadedMsg{Table: table, Preview: preview}
	}
}

func (m Model) copyText(text, label string) tea.Cmd {
	return func() tea.Msg {
		if err := m.copier.Copy(text); err != nil {
			return ErrorMsg{Error: fmt.Errorf("failed to copy: %w", err)}
		}
		return CopySuccessMsg{Text: label}
	}
}
