package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrocarmona/big-query-adapter/pkg/adapter"
	"github.com/pedrocarmona/big-query-adapter/pkg/clipboard"
)

type fakeBrowser struct {
	tables  []string
	columns map[string][]adapter.Column
	preview *adapter.Result
	err     error
}

func (f *fakeBrowser) CurrentDatabase() string { return "proj" }

func (f *fakeBrowser) Tables(context.Context) ([]string, error) {
	return f.tables, f.err
}

func (f *fakeBrowser) Columns(_ context.Context, table string) ([]adapter.Column, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.columns[table], nil
}

func (f *fakeBrowser) Preview(context.Context, string, int) (*adapter.Result, error) {
	return f.preview, f.err
}

func (f *fakeBrowser) QuoteTableName(name string) string {
	return adapter.Quoter{}.QuoteTableName(name)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func newLoadedModel(t *testing.T, browser *fakeBrowser, copier clipboard.Copier) Model {
	t.Helper()
	m := NewModel(context.Background(), browser, copier)
	msg := m.Init()()
	m, _ = update(t, m, msg)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func testBrowser() *fakeBrowser {
	return &fakeBrowser{
		tables: []string{"proj.analytics.events_*", "proj.analytics.users", "proj.staging.raw"},
		columns: map[string][]adapter.Column{
			"proj.analytics.events_*": {
				{Name: "event_id", SQLType: adapter.String, NativeType: "STRING"},
				{Name: "payload", NativeType: "RECORD", Nullable: true},
			},
		},
		preview: &adapter.Result{
			Columns: []string{"event_id", "payload"},
			Rows:    [][]any{{"e1", nil}, {"e2", "x"}},
		},
	}
}

func TestInitLoadsTables(t *testing.T) {
	m := newLoadedModel(t, testBrowser(), nil)

	current, ok := m.tableList.Current()
	require.True(t, ok)
	assert.Equal(t, "proj.analytics.events_*", current)
	assert.Contains(t, m.statusMessage, "3 tables")
	assert.Contains(t, m.View(), "proj.analytics.users")
}

func TestInitError(t *testing.T) {
	browser := testBrowser()
	browser.err = errors.New("403 denied")
	m := newLoadedModel(t, browser, nil)

	require.Error(t, m.err)
	assert.Contains(t, m.View(), "403 denied")
}

func TestSearchFiltersTables(t *testing.T) {
	m := newLoadedModel(t, testBrowser(), nil)

	m, _ = update(t, m, keyRunes("/"))
	assert.Equal(t, FocusSearch, m.focus)

	for _, r := range "users" {
		m, _ = update(t, m, keyRunes(string(r)))
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, FocusTableList, m.focus)
	assert.Equal(t, "users", m.tableList.filter)
	current, ok := m.tableList.Current()
	require.True(t, ok)
	assert.Equal(t, "proj.analytics.users", current)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.tableList.filter)
	assert.Len(t, m.tableList.filtered, 3)
}

func TestSearchNoMatch(t *testing.T) {
	m := newLoadedModel(t, testBrowser(), nil)

	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, keyRunes("zzz"))
	_, ok := m.tableList.Current()
	assert.False(t, ok)
	assert.Contains(t, m.tableList.View(), "No tables match filter")
}

func TestEnterLoadsColumnsAndPreview(t *testing.T) {
	m := newLoadedModel(t, testBrowser(), nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, FocusTableDetail, m.focus)
	assert.True(t, m.tableDetail.loadingColumns)

	var columnsMsg tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if loaded, ok := c().(ColumnsLoadedMsg); ok {
				columnsMsg = loaded
			}
		}
	case ColumnsLoadedMsg:
		columnsMsg = msg
	}
	require.NotNil(t, columnsMsg)

	m, next := update(t, m, columnsMsg)
	assert.False(t, m.tableDetail.loadingColumns)
	assert.True(t, m.tableDetail.loadingPreview, "preview waits for the columns")
	require.NotNil(t, next)

	previewMsg, ok := next().(PreviewLoadedMsg)
	require.True(t, ok)
	m, _ = update(t, m, previewMsg)
	assert.False(t, m.tableDetail.loadingPreview)
	require.Len(t, m.tableDetail.columns, 2)

	view := m.tableDetail.View()
	assert.Contains(t, view, "event_id")
	assert.Contains(t, view, "RECORD")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PreviewTab, m.tableDetail.activeTab)
	assert.Contains(t, m.tableDetail.View(), "NULL")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, FocusTableList, m.focus)
}

func TestStaleColumnsIgnored(t *testing.T) {
	m := newLoadedModel(t, testBrowser(), nil)
	m.tableDetail.Reset("proj.analytics.users")

	m, cmd := update(t, m, ColumnsLoadedMsg{Table: "proj.analytics.events_*", Columns: []adapter.Column{{Name: "x"}}})
	assert.Nil(t, cmd, "no preview for a table that is no longer shown")
	assert.Nil(t, m.tableDetail.columns)
	assert.True(t, m.tableDetail.loadingColumns)
}

func TestCopyQuotedTableName(t *testing.T) {
	var copied []string
	copier := clipboard.CopierFunc(func(text string) error {
		copied = append(copied, text)
		return nil
	})
	m := newLoadedModel(t, testBrowser(), copier)

	m, cmd := update(t, m, keyRunes("y"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, []string{"`proj.analytics.events_*`"}, copied)
	assert.Contains(t, m.statusMessage, "Copied")
}

func TestCopyColumnAndCell(t *testing.T) {
	var copied []string
	copier := clipboard.CopierFunc(func(text string) error {
		copied = append(copied, text)
		return nil
	})
	m := newLoadedModel(t, testBrowser(), copier)
	m.focus = FocusTableDetail
	m.tableDetail.Reset("proj.analytics.events_*")
	m.tableDetail.SetColumns("proj.analytics.events_*", testBrowser().columns["proj.analytics.events_*"])
	m.tableDetail.SetPreview("proj.analytics.events_*", testBrowser().preview)

	m, _ = update(t, m, keyRunes("j"))
	_, cmd := update(t, m, keyRunes("y"))
	require.NotNil(t, cmd)
	cmd()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, keyRunes("j"))
	_, cmd = update(t, m, keyRunes("y"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []string{"payload", "e2"}, copied)
}

func TestCopyFailure(t *testing.T) {
	copier := clipboard.CopierFunc(func(string) error { return errors.New("no clipboard") })
	m := newLoadedModel(t, testBrowser(), copier)

	_, cmd := update(t, m, keyRunes("y"))
	msg := cmd()
	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok)
	assert.Contains(t, errMsg.Error.Error(), "no clipboard")
}

func TestHelpToggle(t *testing.T) {
	m := newLoadedModel(t, testBrowser(), nil)

	m, _ = update(t, m, keyRunes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "date-sharded")

	m, _ = update(t, m, keyRunes("x"))
	assert.False(t, m.showHelp)
}

func TestQuit(t *testing.T) {
	m := newLoadedModel(t, testBrowser(), nil)

	_, cmd := update(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
