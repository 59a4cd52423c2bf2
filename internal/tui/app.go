// Package tui is an interactive browser over the adapter's view of a
// project: logical tables on the left, translated columns and a row preview
// on the right.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pedrocarmona/big-query-adapter/pkg/adapter"
	"github.com/pedrocarmona/big-query-adapter/pkg/clipboard"
)

// Browser is what the TUI needs from the adapter.
type Browser interface {
	CurrentDatabase() string
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, tableName string) ([]adapter.Column, error)
	Preview(ctx context.Context, table string, limit int) (*adapter.Result, error)
	QuoteTableName(name string) string
}

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	Search   key.Binding
	Copy     key.Binding
	Refresh  key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Escape   key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open table"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous tab"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter tables"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y", "ctrl+y"),
			key.WithHelp("y", "copy"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload tables"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/home", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "page down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back/clear filter"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Tab, k.Search, k.Copy, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Enter, k.Tab, k.ShiftTab, k.Search, k.Escape},
		{k.Copy, k.Refresh, k.Top, k.Bottom},
		{k.PageUp, k.PageDown, k.Quit, k.Help},
	}
}

type FocusState int

const (
	FocusTableList FocusState = iota
	FocusTableDetail
	FocusSearch
)

type Model struct {
	ctx     context.Context
	browser Browser
	copier  clipboard.Copier

	tableList   TableListModel
	tableDetail TableDetailModel
	search      SearchModel
	focus       FocusState
	keyMap      KeyMap

	showHelp      bool
	width         int
	height        int
	ready         bool
	err           error
	statusMessage string
}

// NewModel builds the browser. copier may be nil to use the system clipboard.
func NewModel(ctx context.Context, browser Browser, copier clipboard.Copier) Model {
	if copier == nil {
		copier = clipboard.System{}
	}
	keyMap := DefaultKeyMap()
	return Model{
		ctx:         ctx,
		browser:     browser,
		copier:      copier,
		tableList:   NewTableListModel(keyMap),
		tableDetail: NewTableDetailModel(keyMap),
		search:      NewSearchModel(""),
		focus:       FocusTableList,
		keyMap:      keyMap,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadTables()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		if m.focus == FocusSearch {
			return m.handleSearchInput(msg)
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Help):
			m.showHelp = true
			return m, nil

		case key.Matches(msg, m.keyMap.Escape):
			if m.focus == FocusTableDetail {
				m.focus = FocusTableList
			} else if m.tableList.filter != "" {
				m.tableList.SetFilter("")
			}
			return m, nil

		case key.Matches(msg, m.keyMap.Search):
			m.focus = FocusSearch
			m.search = NewSearchModel(m.tableList.filter)
			return m, nil

		case key.Matches(msg, m.keyMap.Refresh):
			m.statusMessage = "Reloading tables..."
			return m, m.loadTables()

		case key.Matches(msg, m.keyMap.Copy):
			return m, m.handleCopy()
		}

		return m.updateFocusedComponent(msg)

	case TablesLoadedMsg:
		m.err = nil
		m.tableList.SetTables(msg.Tables)
		m.statusMessage = fmt.Sprintf("Loaded %d tables from %s", len(msg.Tables), m.browser.CurrentDatabase())
		return m, nil

	case ColumnsLoadedMsg:
		if msg.Table != m.tableDetail.table {
			return m, nil
		}
		m.tableDetail.SetColumns(msg.Table, msg.Columns)
		m.statusMessage = fmt.Sprintf("Loaded %d columns for %s", len(msg.Columns), msg.Table)
		// The preview runs only after the columns arrived so the adapter
		// serves one request at a time.
		return m, m.loadPreview(msg.Table)

	case PreviewLoadedMsg:
		m.tableDetail.SetPreview(msg.Table, msg.Preview)
		m.statusMessage = fmt.Sprintf("Loaded preview for %s", msg.Table)
		return m, nil

	case ErrorMsg:
		m.err = msg.Error
		m.tableDetail.StopLoading()
		return m, nil

	case CopySuccessMsg:
		m.statusMessage = fmt.Sprintf("Copied: %s", msg.Text)
		return m, nil
	}

	return m, nil
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.focus = FocusTableList
		m.tableList.SetFilter(m.search.Value())
		return m, nil
	case tea.KeyEsc:
		m.focus = FocusTableList
		m.search = NewSearchModel("")
		m.tableList.SetFilter("")
		return m, nil
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.tableList.SetFilter(m.search.Value())
		return m, cmd
	}
}

func (m Model) updateFocusedComponent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focus {
	case FocusTableList:
		m.tableList, cmd = m.tableList.Update(msg)
		if !m.tableList.selected {
			return m, cmd
		}
		m.tableList.selected = false
		table, ok := m.tableList.Current()
		if !ok {
			return m, cmd
		}
		m.focus = FocusTableDetail
		m.err = nil
		m.tableDetail.Reset(table)
		return m, tea.Batch(cmd, m.loadColumns(table))

	case FocusTableDetail:
		m.tableDetail, cmd = m.tableDetail.Update(msg)
		return m, cmd
	}

	return m, cmd
}

// handleCopy copies the quoted table name from the list, the column name from
// the columns tab, or the cell value from the preview tab.
func (m Model) handleCopy() tea.Cmd {
	if m.focus == FocusTableList {
		table, ok := m.tableList.Current()
		if !ok {
			return nil
		}
		quoted := m.browser.QuoteTableName(table)
		return m.copyText(quoted, quoted)
	}

	if column, ok := m.tableDetail.CurrentColumn(); ok {
		return m.copyText(column.Name, "column "+column.Name)
	}
	if value, ok := m.tableDetail.CurrentCell(); ok {
		text := formatValue(value)
		return m.copyText(text, "cell "+text)
	}
	return nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	paneHeight := max(m.height-6, 1)
	leftWidth := m.width / 3
	rightWidth := max(m.width-leftWidth-4, 1)

	leftStyle := PaneStyle.Width(leftWidth).Height(paneHeight)
	rightStyle := PaneStyle.Width(rightWidth).Height(paneHeight)
	switch m.focus {
	case FocusTableList, FocusSearch:
		leftStyle = ActivePaneStyle.Width(leftWidth).Height(paneHeight)
	case FocusTableDetail:
		rightStyle = ActivePaneStyle.Width(rightWidth).Height(paneHeight)
	}

	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Render(m.tableList.View()),
		rightStyle.Render(m.tableDetail.View()),
	)

	searchBar := ""
	if m.focus == FocusSearch {
		searchBar = SearchBoxStyle.Render("Filter: " + m.search.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainView, searchBar, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	left := m.statusMessage
	if m.err != nil {
		left = ErrorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error()))
	}
	helpStyled := HelpStyle.Render("Press ? for help")

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(helpStyled) - 2
	if padding < 1 {
		return StatusBarStyle.Width(m.width).Render(left) + "\n" + StatusBarStyle.Width(m.width).Render(helpStyled)
	}
	return StatusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + helpStyled)
}

func (m Model) renderHelp() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("bqadapter browse") + "\n\n")
	for _, group := range m.keyMap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			content.WriteString(fmt.Sprintf("  %-14s %s\n", h.Key, h.Desc))
		}
		content.WriteString("\n")
	}
	content.WriteString(SubtleItemStyle.Render("Tables ending in _* group date-sharded tables; columns come from the first shard.") + "\n\n")
	content.WriteString(HelpStyle.Render("Press any key to close help"))

	return content.String()
}
