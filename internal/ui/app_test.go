package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"tabula/internal/model"
	"tabula/internal/view"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	records []model.Record
	err     error
}

func (f fakeSource) FetchRows(ctx context.Context) ([]model.Record, error) {
	return f.records, f.err
}

func testRecords() []model.Record {
	day := func(m time.Month) time.Time { return time.Date(2024, m, 1, 10, 0, 0, 0, time.UTC) }
	return []model.Record{
		{ID: 3, Name: "Carol", Email: "carol@x.com", Role: "Dev", CreatedAt: day(time.March)},
		{ID: 1, Name: "Alice", Email: "alice@x.com", Role: "Dev", CreatedAt: day(time.January)},
		{ID: 2, Name: "bob", Email: "bob@x.com", Role: "Mgr", CreatedAt: day(time.February)},
	}
}

func newLoadedModel(t *testing.T, records []model.Record) Model {
	t.Helper()
	m := New(Options{
		Source:    fakeSource{records: records},
		PrefsPath: filepath.Join(t.TempDir(), PrefsFileName),
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return update(t, m, model.RowsLoadedMsg{Seq: 1, Records: records})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m = update(t, m, msg)
	}
	return m
}

func rowIDs(m Model) []int64 {
	out := make([]int64, 0, len(m.table.Rows()))
	for _, r := range m.table.Rows() {
		out = append(out, r.ID)
	}
	return out
}

func TestLoadedRowsKeepSourceOrder(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	assert.False(t, m.loading)
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(m))
	assert.Equal(t, view.ColumnID, m.table.ActiveColumn())
}

func TestSortKeyCyclesAndUndo(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "tab")
	require.Equal(t, view.ColumnName, m.table.ActiveColumn())

	m = press(t, m, "s")
	assert.Equal(t, []int64{1, 2, 3}, rowIDs(m), "names compare case-insensitively")
	assert.Equal(t, "Sorted NAME ascending", m.info)

	m = press(t, m, "s")
	assert.Equal(t, []int64{3, 2, 1}, rowIDs(m))

	m = press(t, m, "S")
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(m))

	m = press(t, m, "u")
	assert.Equal(t, []int64{3, 2, 1}, rowIDs(m))
	m = press(t, m, "u")
	assert.Equal(t, []int64{1, 2, 3}, rowIDs(m))
	m = press(t, m, "ctrl+r")
	assert.Equal(t, []int64{3, 2, 1}, rowIDs(m))
	assert.Equal(t, "Redid: sort", m.info)
}

func TestValuePopupToggleAndClear(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "tab", "tab", "tab")
	require.Equal(t, view.ColumnRole, m.table.ActiveColumn())

	m = press(t, m, "f")
	require.Equal(t, model.ModeFilter, m.mode)
	col, open := m.table.PopupOpen()
	require.True(t, open)
	assert.Equal(t, view.ColumnRole, col)
	assert.Equal(t, []string{"Dev", "Mgr"}, m.table.PopupValues())

	m = press(t, m, "x")
	assert.Equal(t, []int64{3, 1}, rowIDs(m))

	m = press(t, m, "j", "x")
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(m), "every value checked")
	assert.True(t, m.table.filters.Active(view.ColumnRole))

	m = press(t, m, "x")
	assert.Equal(t, []int64{3, 1}, rowIDs(m))

	m = press(t, m, "a")
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(m))
	assert.False(t, m.table.filters.Active(view.ColumnRole))

	m = press(t, m, "esc")
	assert.Equal(t, model.ModeNav, m.mode)
	_, open = m.table.PopupOpen()
	assert.False(t, open)
}

func TestClearingUnfilteredPopupRecordsNoUndo(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "tab", "tab", "tab", "f")
	require.Equal(t, model.ModeFilter, m.mode)

	m = press(t, m, "a", "a", "a")
	assert.Empty(t, m.undoStack)
	assert.Equal(t, "No filter on ROLE", m.info)

	m = press(t, m, "x", "a")
	assert.Len(t, m.undoStack, 2)
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(m))

	m = press(t, m, "esc", "u")
	assert.Equal(t, "Undid: clear filter", m.info)
	assert.Equal(t, []int64{3, 1}, rowIDs(m))
}

func TestTogglePopupValueWithoutValues(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "tab", "tab", "tab", "f")
	require.Equal(t, model.ModeFilter, m.mode)

	m.table.SetRecords(nil)
	m = press(t, m, "x")
	assert.Empty(t, m.undoStack)
}

func TestFilterKeyClosesPopup(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "tab", "tab", "tab", "f")
	require.Equal(t, model.ModeFilter, m.mode)

	m = press(t, m, "f")
	assert.Equal(t, model.ModeNav, m.mode)
	_, open := m.table.PopupOpen()
	assert.False(t, open)
}

func TestFilterPopupNeedsMoreThanOneValue(t *testing.T) {
	records := testRecords()
	for i := range records {
		records[i].Role = "Dev"
	}
	m := newLoadedModel(t, records)
	m = press(t, m, "tab", "tab", "tab", "f")

	assert.Equal(t, model.ModeNav, m.mode)
	_, open := m.table.PopupOpen()
	assert.False(t, open)
	assert.Equal(t, "Nothing to filter in ROLE", m.info)
}

func TestReapplyingFractionalRangeKeepsRows(t *testing.T) {
	records := testRecords()
	records[1].CreatedAt = time.Date(2024, 1, 1, 10, 0, 0, 300_000_000, time.UTC)
	m := newLoadedModel(t, records)
	m = press(t, m, "/", "5", "f")
	require.Equal(t, model.ModeInsert, m.mode)

	m.table.SetRangeInputs("", "2024-01-01T10:00:00.5Z")
	m = press(t, m, "enter")
	require.Empty(t, m.error)
	assert.Equal(t, []int64{1}, rowIDs(m))
	assert.Equal(t, "2024-01-01T10:00:00.5Z", m.table.rangeInputs[rangeEnd].Value())
	before := m.table.filters.State(view.ColumnCreatedAt).(view.DateRange)

	m = press(t, m, "enter")
	assert.Equal(t, []int64{1}, rowIDs(m))
	after := m.table.filters.State(view.ColumnCreatedAt).(view.DateRange)
	require.NotNil(t, after.End)
	assert.True(t, after.End.Equal(*before.End))
}

func TestRangePopupApply(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "/", "5")
	require.Equal(t, view.ColumnCreatedAt, m.table.ActiveColumn())

	m = press(t, m, "f")
	require.Equal(t, model.ModeInsert, m.mode)

	m.table.SetRangeInputs("2024-02-01", "")
	m = press(t, m, "enter")
	assert.Empty(t, m.error)
	assert.Equal(t, []int64{3, 2}, rowIDs(m))
	assert.Equal(t, "Showing 2 of 3 records", m.info)

	m.table.SetRangeInputs("2024-02-01", "2024-02-28")
	m = press(t, m, "enter")
	assert.Equal(t, []int64{2}, rowIDs(m))

	m.table.SetRangeInputs("2024-03-01", "2024-01-01")
	m = press(t, m, "enter")
	assert.Empty(t, rowIDs(m), "inverted range matches nothing")

	m = press(t, m, "esc", "u")
	assert.Equal(t, []int64{2}, rowIDs(m))
}

func TestRangePopupRejectsBadInput(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "/", "5", "f")

	m.table.SetRangeInputs("2024-02-01", "")
	m = press(t, m, "enter")
	require.Equal(t, []int64{3, 2}, rowIDs(m))

	m.table.SetRangeInputs("next week", "")
	m = press(t, m, "enter")
	assert.Contains(t, m.error, "start")
	assert.Equal(t, []int64{3, 2}, rowIDs(m), "a bad bound leaves the filter alone")

	m = press(t, m, "esc")
	assert.Equal(t, model.ModeNav, m.mode)
}

func TestRangePopupTabSwitchesField(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "/", "5", "f")
	assert.Equal(t, rangeStart, m.table.rangeFocus)

	m = press(t, m, "tab")
	assert.Equal(t, rangeEnd, m.table.rangeFocus)
	assert.True(t, m.table.rangeInputs[rangeEnd].Focused())
	assert.False(t, m.table.rangeInputs[rangeStart].Focused())
}

func TestFilterBySelectedValue(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "tab", "tab", "tab", "n")
	assert.Equal(t, []int64{3, 1}, rowIDs(m))

	m = press(t, m, "N")
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(m))
	assert.Equal(t, "Filter cleared", m.info)

	m = press(t, m, "N")
	assert.Equal(t, "No filter on this column", m.info)
}

func TestFilterBySelectedValueOnTimestamp(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "/", "5", "n")
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(m))
	assert.Equal(t, "Press f to filter timestamps by range", m.info)
	assert.Empty(t, m.undoStack)
}

func TestClearAllFilters(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "tab", "tab", "tab", "n")
	m = press(t, m, "tab", "f")
	m.table.SetRangeInputs("2024-02-01", "")
	m = press(t, m, "enter", "esc")
	require.Equal(t, []int64{3}, rowIDs(m))

	m = press(t, m, "X")
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(m))
	assert.Zero(t, m.table.filters.ActiveCount())
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "r", "r")
	require.Equal(t, 3, m.fetchSeq)
	assert.True(t, m.loading)

	newest := []model.Record{{ID: 9, Name: "Zed", Role: "Ops", CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}}
	m = update(t, m, model.RowsLoadedMsg{Seq: 3, Records: newest})
	assert.False(t, m.loading)
	assert.Equal(t, []int64{9}, rowIDs(m))

	m = update(t, m, model.RowsLoadedMsg{Seq: 2, Records: testRecords()})
	assert.Equal(t, []int64{9}, rowIDs(m))
}

func TestOlderFetchStillAppliesWhenNewer(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "r", "r")

	m = update(t, m, model.RowsLoadedMsg{Seq: 2, Records: testRecords()[:1]})
	assert.Equal(t, []int64{3}, rowIDs(m))
	assert.True(t, m.loading, "fetch 3 is still in flight")
}

func TestFetchFailureKeepsLastKnownGood(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "r")

	m = update(t, m, model.FetchFailedMsg{Seq: 2, Err: errors.New("connection refused")})
	assert.False(t, m.loading)
	assert.Equal(t, "fetch failed: connection refused", m.error)
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(m))

	m = press(t, m, "r")
	m = update(t, m, model.RowsLoadedMsg{Seq: 3, Records: testRecords()})
	assert.Empty(t, m.error)
}

func TestSupersededFailureIsDropped(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "r", "r")

	m = update(t, m, model.FetchFailedMsg{Seq: 2, Err: errors.New("timeout")})
	assert.Empty(t, m.error)
	assert.True(t, m.loading)
}

func TestFiltersSurviveRefetch(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "tab", "tab", "tab", "n", "r")

	records := append(testRecords(), model.Record{ID: 4, Name: "Dan", Role: "Dev", CreatedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)})
	m = update(t, m, model.RowsLoadedMsg{Seq: 2, Records: records})
	assert.Equal(t, []int64{3, 1, 4}, rowIDs(m))
}

func TestFetchRowsCmd(t *testing.T) {
	msg := fetchRowsCmd(fakeSource{records: testRecords()}, 7)()
	loaded, ok := msg.(model.RowsLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, 7, loaded.Seq)
	assert.Len(t, loaded.Records, 3)

	msg = fetchRowsCmd(fakeSource{err: errors.New("boom")}, 8)()
	failed, ok := msg.(model.FetchFailedMsg)
	require.True(t, ok)
	assert.Equal(t, 8, failed.Seq)
	assert.EqualError(t, failed.Err, "boom")
}

func TestInvariantViolationIsSurfaced(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	err := m.trackViewChange("bad", func() (bool, error) {
		return true, m.table.filters.ToggleValue(view.ColumnCreatedAt, "x", true)
	})
	require.ErrorIs(t, err, view.ErrInvariantViolation)

	assert.True(t, m.reportErr(err))
	assert.Contains(t, m.error, "filter invariant violation")
	assert.Empty(t, m.undoStack)
}

func TestRecordDetail(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "j", "enter")
	require.Equal(t, model.ScreenRecordDetail, m.screen)
	assert.Equal(t, int64(1), m.detail.record.ID)
	assert.Contains(t, m.View(), "alice@x.com")

	m = press(t, m, "esc")
	assert.Equal(t, model.ScreenTable, m.screen)
	assert.Nil(t, m.detail)
}

func TestNavigation(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "G")
	assert.Equal(t, 2, m.table.cursor)
	m = press(t, m, "g", "g")
	assert.Equal(t, 0, m.table.cursor)
	m = press(t, m, "j", "k", "j")
	assert.Equal(t, 1, m.table.cursor)
}

func TestHelpToggle(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "?")
	assert.True(t, m.showingHelp)
	assert.Contains(t, m.View(), "Help")

	m = press(t, m, "s")
	assert.Nil(t, m.table.sort, "keys are swallowed while help is shown")

	m = press(t, m, "esc")
	assert.False(t, m.showingHelp)
}

func TestViewRendersTable(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	out := m.View()
	assert.Contains(t, out, "tabula")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Carol")
	assert.Contains(t, out, "3 records")
}

func TestValueFilterSummaries(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "tab", "tab", "tab", "f", "x")
	assert.Contains(t, m.table.renderPopup(), "1 of 2 checked")
	assert.Contains(t, m.table.TableMeta(), "ROLE in Dev")

	m = press(t, m, "j", "x")
	assert.Contains(t, m.table.renderPopup(), "2 of 2 checked")
	assert.Contains(t, m.table.TableMeta(), "ROLE in Dev,Mgr")
}

func TestColumnPrefsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), PrefsFileName)
	m := New(Options{Source: fakeSource{}, PrefsPath: path})
	m = update(t, m, model.RowsLoadedMsg{Seq: 1, Records: testRecords()})
	m = press(t, m, "c")
	assert.Equal(t, "Column hidden", m.info)
	assert.Equal(t, view.ColumnName, m.table.ActiveColumn())

	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, TablePrefs{HiddenColumns: []string{"id"}, ActiveColumn: "name"}, loadUIPreferences(path).Table)

	reopened := New(Options{Source: fakeSource{}, PrefsPath: path})
	assert.True(t, reopened.table.columns[0].hidden)
	assert.Equal(t, view.ColumnName, reopened.table.ActiveColumn())
}

func TestCannotHideLastColumn(t *testing.T) {
	m := newLoadedModel(t, testRecords())
	m = press(t, m, "c", "c", "c", "c")
	assert.Len(t, m.table.visibleColumnIndexes(), 1)

	m = press(t, m, "c")
	assert.Equal(t, "Cannot hide last visible column", m.info)

	m = press(t, m, "C")
	assert.Len(t, m.table.visibleColumnIndexes(), 5)
}
