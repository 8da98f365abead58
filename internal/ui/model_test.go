package ui

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/lazyview/internal/lazyview"
	"github.com/oakwood-commons/lazyview/internal/render"
	"github.com/oakwood-commons/lazyview/internal/selection"
	"github.com/oakwood-commons/lazyview/internal/store"
	"github.com/oakwood-commons/lazyview/internal/store/storetest"
)

const contactTemplate = "{{.firstName}} {{.lastName}}"

func newTestModel(t *testing.T, p *storetest.Proxy, mode selection.Mode) *Model {
	t.Helper()
	st := store.New(p, store.Options{})
	tr, err := render.NewTemplate(contactTemplate, lazyview.DefaultItemSelector)
	require.NoError(t, err)
	res := selection.NewResolver(selection.ConfigForMode(mode), st, logr.Discard())
	v, err := lazyview.New(lazyview.Config{}, st, tr, res, logr.Discard())
	require.NoError(t, err)
	m, err := New(st, v, res, Options{Title: "contacts", NoColor: true, Static: true})
	require.NoError(t, err)
	return m
}

// startModel lays out a 10 row terminal: 7 list rows, so pages of 7.
func startModel(t *testing.T, total int, mode selection.Mode) (*Model, *storetest.Proxy) {
	t.Helper()
	p := storetest.NewProxy(total)
	m := newTestModel(t, p, mode)
	RenderSnapshot(m, SnapshotConfig{Width: 80, Height: 10})
	return m, p
}

func TestSnapshotLoadsFirstTwoPages(t *testing.T) {
	m := newTestModel(t, storetest.NewProxy(100), selection.Single)
	out := RenderSnapshot(m, SnapshotConfig{Width: 80, Height: 10})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "contacts", strings.TrimSpace(lines[0]))
	assert.Equal(t, "> First000 Last000", lines[1])
	assert.Equal(t, "  First006 Last006", lines[7])
	assert.Contains(t, lines[8], "1/14")
	assert.Contains(t, lines[8], "page 2")
	assert.Contains(t, lines[9], "quit")
	assert.Equal(t, 7, m.view.PageSize())
}

func TestDottedItemSelectorKeepsCursor(t *testing.T) {
	st := store.New(storetest.NewProxy(100), store.Options{})
	tr, err := render.NewTemplate(contactTemplate, ".contact")
	require.NoError(t, err)
	res := selection.NewResolver(selection.Config{}, st, logr.Discard())
	v, err := lazyview.New(lazyview.Config{ItemSelector: ".contact"}, st, tr, res, logr.Discard())
	require.NoError(t, err)
	m, err := New(st, v, res, Options{NoColor: true, Static: true})
	require.NoError(t, err)

	lines := strings.Split(RenderSnapshot(m, SnapshotConfig{Width: 80, Height: 10}), "\n")
	assert.Len(t, v.Items(), 14)
	assert.Equal(t, "> First000 Last000", lines[1])

	ApplyStartupKeys(m, []string{"<Down><CR>"})
	lines = strings.Split(m.Render(), "\n")
	assert.Equal(t, "  First000 Last000", lines[1])
	assert.Equal(t, ">*First001 Last001", lines[2])
}

func TestBottomLoadsMore(t *testing.T) {
	m, _ := startModel(t, 100, selection.Single)

	ApplyStartupKeys(m, []string{"G"})
	assert.Equal(t, 13, m.Cursor())
	assert.Equal(t, 21, m.store.Count())
	assert.Equal(t, 7, m.scroller.Offset())

	ApplyStartupKeys(m, []string{"G"})
	assert.Equal(t, 20, m.Cursor())
	assert.Equal(t, 28, m.store.Count())
}

func TestScrollingPastBarrierPrefetches(t *testing.T) {
	m, _ := startModel(t, 100, selection.Single)

	ApplyStartupKeys(m, []string{strings.Repeat("<Down>", 10)})
	assert.Equal(t, 10, m.Cursor())
	assert.Equal(t, 4, m.scroller.Offset())
	assert.Equal(t, 21, m.store.Count())
	assert.Equal(t, 3, m.store.CurrentPage())
}

func TestGotoUnloadedIndexReadsAhead(t *testing.T) {
	m, p := startModel(t, 100, selection.Single)

	ApplyStartupKeys(m, []string{":40<CR>"})

	op := p.LastOp()
	assert.Equal(t, 7, op.Page)
	assert.Equal(t, 14, op.Start)
	assert.Equal(t, 35, op.Limit)
	assert.Equal(t, 49, m.store.Count())
	assert.Equal(t, []int{40}, m.Selected())
	assert.Equal(t, 40, m.Cursor())
	assert.Empty(t, m.Status())
	assert.False(t, m.Prompting())
	assert.Contains(t, m.Render(), "> First040 Last040")
}

func TestGotoLoadedIndexMovesCursor(t *testing.T) {
	m, p := startModel(t, 100, selection.Single)
	reads := len(p.Ops)

	ApplyStartupKeys(m, []string{":3<CR>"})
	assert.Equal(t, 3, m.Cursor())
	assert.Equal(t, []int{3}, m.Selected())
	assert.Len(t, p.Ops, reads)
}

func TestGotoPastEndReportsOutOfRange(t *testing.T) {
	m, _ := startModel(t, 20, selection.Single)

	ApplyStartupKeys(m, []string{":100<CR>"})
	assert.Equal(t, 20, m.store.Count())
	assert.Empty(t, m.Selected())
	assert.Equal(t, "record 100 is out of range", m.Status())
}

func TestGotoTargetLoadedWithoutSelectEventTakesCursor(t *testing.T) {
	m, _ := startModel(t, 100, selection.Single)
	ApplyStartupKeys(m, []string{":5<CR>"})
	require.Equal(t, []int{5}, m.Selected())

	// a pending goto whose record was already selected gets no select event
	m.target = 9
	m.settle(m.store.NextPage())

	assert.Equal(t, 9, m.Cursor())
	assert.NotContains(t, m.Status(), "out of range")
	assert.Equal(t, []int{5}, m.Selected())
}

func TestGotoRejectsInvalidIndex(t *testing.T) {
	m, _ := startModel(t, 100, selection.Single)

	ApplyStartupKeys(m, []string{":abc<CR>"})
	assert.Equal(t, `invalid index "abc"`, m.Status())
	assert.Contains(t, m.Render(), `invalid index "abc"`)
}

func TestPromptEscape(t *testing.T) {
	m, _ := startModel(t, 100, selection.Single)

	ApplyStartupKeys(m, []string{":12"})
	assert.True(t, m.Prompting())
	assert.Contains(t, m.Render(), "select index: 12")

	ApplyStartupKeys(m, []string{"<Esc>"})
	assert.False(t, m.Prompting())
	assert.Empty(t, m.Selected())
}

func TestEscCancelsLookAhead(t *testing.T) {
	m, _ := startModel(t, 100, selection.Single)

	ApplyStartupKeys(m, []string{":40"})
	_, read := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.True(t, m.resolver.Pending())

	ApplyStartupKeys(m, []string{"<Esc>"})
	assert.Equal(t, "look-ahead cancelled", m.Status())

	m.settle(read)
	assert.Equal(t, 49, m.store.Count())
	assert.Empty(t, m.Selected())
	assert.Equal(t, 0, m.Cursor())
}

func TestSelectionKeys(t *testing.T) {
	t.Run("multi toggles", func(t *testing.T) {
		m, _ := startModel(t, 100, selection.Multi)
		ApplyStartupKeys(m, []string{"<Space><Down><Space>"})
		assert.Equal(t, []int{0, 1}, m.Selected())

		lines := strings.Split(m.Render(), "\n")
		assert.Equal(t, " *First000 Last000", lines[1])
		assert.Equal(t, ">*First001 Last001", lines[2])

		ApplyStartupKeys(m, []string{"<Space>"})
		assert.Equal(t, []int{0}, m.Selected())
	})
	t.Run("single replaces", func(t *testing.T) {
		m, _ := startModel(t, 100, selection.Single)
		ApplyStartupKeys(m, []string{"<CR><Down><CR>"})
		assert.Equal(t, []int{1}, m.Selected())
		assert.Contains(t, m.Render(), "1 selected")
	})
}

func TestReloadReplacesCollection(t *testing.T) {
	m, p := startModel(t, 100, selection.Single)
	ApplyStartupKeys(m, []string{"G<CR>"})
	require.Equal(t, []int{13}, m.Selected())

	ApplyStartupKeys(m, []string{"r"})
	assert.False(t, p.LastOp().AddRecords)
	assert.Equal(t, 7, m.store.Count())
	assert.Equal(t, 1, m.store.CurrentPage())
	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, 0, m.scroller.Offset())
	assert.Empty(t, m.Selected())
}

func TestLoadFailureShowsError(t *testing.T) {
	m, p := startModel(t, 100, selection.Single)
	p.Fail = true

	ApplyStartupKeys(m, []string{"G"})
	assert.Contains(t, m.Status(), storetest.ErrUnavailable.Error())
	assert.Equal(t, 14, m.store.Count())
	assert.False(t, m.store.IsLoading())
}

func TestMouseWheelKeepsCursorVisible(t *testing.T) {
	m, _ := startModel(t, 100, selection.Single)

	_, cmd := m.Update(tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	m.settle(cmd)
	assert.Equal(t, 1, m.scroller.Offset())
	assert.Equal(t, 1, m.Cursor())

	_, cmd = m.Update(tea.MouseWheelMsg{Button: tea.MouseWheelUp})
	m.settle(cmd)
	assert.Equal(t, 0, m.scroller.Offset())
	assert.Equal(t, 1, m.Cursor())
}

func TestHelpToggleShrinksList(t *testing.T) {
	m, _ := startModel(t, 100, selection.Single)
	short := m.listHeight()

	ApplyStartupKeys(m, []string{"?"})
	assert.Less(t, m.listHeight(), short)
	assert.Contains(t, m.Render(), "page down")
}

func TestQuit(t *testing.T) {
	m, _ := startModel(t, 100, selection.Single)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.Render())
}

func TestEmptyCollection(t *testing.T) {
	m := newTestModel(t, storetest.NewProxy(0), selection.Single)
	out := RenderSnapshot(m, SnapshotConfig{Width: 40, Height: 8})
	assert.Contains(t, out, "No records")
	assert.Contains(t, out, "0 records")
	assert.Contains(t, out, "(end)")
}

func TestNewReportsMountErrors(t *testing.T) {
	p := storetest.NewProxy(10)
	p.Fields = nil
	st := store.New(p, store.Options{})
	tr, err := render.NewTemplate(contactTemplate, lazyview.DefaultItemSelector)
	require.NoError(t, err)
	res := selection.NewResolver(selection.Config{}, st, logr.Discard())
	v, err := lazyview.New(lazyview.Config{}, st, tr, res, logr.Discard())
	require.NoError(t, err)

	_, err = New(st, v, res, Options{Static: true})
	var cfgErr *lazyview.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "schema", cfgErr.Component)
}
