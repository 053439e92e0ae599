package ui

import (
	"fmt"
	"strings"
	"tabula/internal/model"
	"tabula/internal/util"
	"tabula/internal/view"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

const tableSeparator = "│"

type tableColumn struct {
	col    view.Column
	width  int
	hidden bool
}

// viewState is the part of the table that undo and redo restore.
type viewState struct {
	sort    *view.SortDirective
	filters *view.Filters
}

// TableModel represents the record table screen.
type TableModel struct {
	allRows []model.Record
	rows    []model.Record
	cursor  int
	offset  int

	viewportHeight int

	columns      []tableColumn
	activeColumn int
	sort         *view.SortDirective
	filters      *view.Filters

	popup       view.Popup
	valueCursor int
	rangeInputs [2]textinput.Model
	rangeFocus  int
}

// NewTableModel creates an empty table model.
func NewTableModel() *TableModel {
	return &TableModel{
		filters: view.NewFilters(),
		columns: []tableColumn{
			{col: view.ColumnID, width: 6},
			{col: view.ColumnName, width: 18},
			{col: view.ColumnEmail, width: 26},
			{col: view.ColumnRole, width: 12},
			{col: view.ColumnCreatedAt, width: 18},
		},
		rangeInputs: newRangeInputs(),
	}
}

// SetRecords replaces the record set. Sort and filter state survive.
func (m *TableModel) SetRecords(records []model.Record) {
	m.allRows = append([]model.Record(nil), records...)
	m.rebuild()
	m.clampValueCursor()
}

// Records returns the full record set.
func (m *TableModel) Records() []model.Record {
	return m.allRows
}

// Rows returns the derived rows in display order.
func (m *TableModel) Rows() []model.Record {
	return m.rows
}

func (m *TableModel) ApplyPrefs(prefs TablePrefs) {
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].col.String()]
	}
	if col, err := view.ParseColumn(prefs.ActiveColumn); err == nil {
		for i, c := range m.columns {
			if c.col == col {
				m.activeColumn = i
				break
			}
		}
	}
	m.ensureVisibleActiveColumn()
}

func (m *TableModel) Prefs() TablePrefs {
	var hidden []string
	for _, c := range m.columns {
		if c.hidden {
			hidden = append(hidden, c.col.String())
		}
	}
	return TablePrefs{
		HiddenColumns: hidden,
		ActiveColumn:  m.ActiveColumn().String(),
	}
}

func (m *TableModel) rebuild() {
	m.rows = view.Derive(view.Snapshot{
		Records: m.allRows,
		Sort:    m.sort,
		Filters: m.filters,
	})
	m.clampCursor()
}

func (m *TableModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// ActiveColumn returns the column under the column cursor.
func (m *TableModel) ActiveColumn() view.Column {
	return m.columns[m.activeColumn].col
}

// SelectedRecord returns the record under the row cursor.
func (m *TableModel) SelectedRecord() (model.Record, bool) {
	if len(m.rows) == 0 {
		return model.Record{}, false
	}
	return m.rows[m.cursor], true
}

func (m *TableModel) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *TableModel) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for i := range m.columns {
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

func (m *TableModel) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *TableModel) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *TableModel) JumpToColumn(number int) bool {
	if number < 1 || number > len(m.columns) {
		return false
	}
	idx := number - 1
	if m.columns[idx].hidden {
		return false
	}
	m.activeColumn = idx
	return true
}

func (m *TableModel) HideActiveColumn() bool {
	if len(m.visibleColumnIndexes()) <= 1 {
		return false
	}
	m.columns[m.activeColumn].hidden = true
	m.ensureVisibleActiveColumn()
	return true
}

func (m *TableModel) ShowAllColumns() {
	for i := range m.columns {
		m.columns[i].hidden = false
	}
}

// ToggleSortActiveColumn acts like a click on the active column's header.
func (m *TableModel) ToggleSortActiveColumn() string {
	m.sort = view.NextDirective(m.sort, m.ActiveColumn())
	m.rebuild()
	order := "ascending"
	if m.sort.Direction == view.Descending {
		order = "descending"
	}
	return fmt.Sprintf("Sorted %s %s", strings.ToUpper(m.sort.Column.Label()), order)
}

func (m *TableModel) ClearSort() bool {
	if m.sort == nil {
		return false
	}
	m.sort = nil
	m.rebuild()
	return true
}

// CanFilterActiveColumn reports whether the active column offers a filter.
func (m *TableModel) CanFilterActiveColumn() bool {
	return view.Filterable(m.allRows, m.ActiveColumn())
}

// FilterBySelectedValue adds the selected cell's value to the active
// column's accepted set. It reports whether the filter changed.
func (m *TableModel) FilterBySelectedValue() (string, bool, error) {
	rec, ok := m.SelectedRecord()
	if !ok {
		return "No rows to filter", false, nil
	}
	col := m.ActiveColumn()
	if col.Kind() == view.KindDateRange {
		return "Press f to filter timestamps by range", false, nil
	}
	value := col.Value(rec)
	if set, _ := m.filters.State(col).(view.ValueSet); set.Contains(value) {
		return fmt.Sprintf("Filter %s already includes %q", strings.ToUpper(col.Label()), value), false, nil
	}
	if err := m.filters.ToggleValue(col, value, true); err != nil {
		return "", false, err
	}
	m.rebuild()
	return fmt.Sprintf("Filter %s includes %q", strings.ToUpper(col.Label()), value), true, nil
}

func (m *TableModel) ClearFilter() bool {
	col := m.ActiveColumn()
	if !m.filters.Active(col) {
		return false
	}
	m.filters.Clear(col)
	m.rebuild()
	m.syncRangeInputs()
	return true
}

func (m *TableModel) ClearAllFilters() bool {
	if m.filters.ActiveCount() == 0 {
		return false
	}
	m.filters.ClearAll()
	m.rebuild()
	m.syncRangeInputs()
	return true
}

func (m *TableModel) viewState() viewState {
	var s *view.SortDirective
	if m.sort != nil {
		d := *m.sort
		s = &d
	}
	return viewState{sort: s, filters: m.filters.Clone()}
}

func (m *TableModel) restoreViewState(s viewState) {
	m.sort = nil
	if s.sort != nil {
		d := *s.sort
		m.sort = &d
	}
	m.filters = s.filters.Clone()
	m.rebuild()
	m.syncRangeInputs()
}

func (m *TableModel) TableMeta() string {
	parts := []string{fmt.Sprintf("col %s", strings.ToUpper(m.ActiveColumn().Label()))}
	if m.sort != nil {
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(m.sort.Column.Label()), m.sort.Direction))
	}
	if n := m.filters.ActiveCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d filter(s)", n))
	}
	for _, c := range m.columns {
		if set, ok := m.filters.State(c.col).(view.ValueSet); ok && !set.Empty() {
			in := util.TruncateString(strings.Join(set.Values(), ","), 24)
			parts = append(parts, strings.ToUpper(c.col.Label())+" in "+in)
		}
	}
	return strings.Join(parts, "  ·  ")
}

func (m *TableModel) cellValue(row model.Record, c tableColumn) string {
	switch c.col {
	case view.ColumnCreatedAt:
		return util.FormatTimestamp(row.CreatedAt)
	case view.ColumnID:
		return c.col.Value(row)
	default:
		return util.TruncateString(c.col.Value(row), c.width)
	}
}

func (m *TableModel) headerLabel(idx int) string {
	c := m.columns[idx]
	label := formatHeaderLabel(c.col.Label())
	if idx == m.activeColumn {
		label = renderActiveHeaderLabel(label)
	}
	if m.sort != nil && m.sort.Column == c.col {
		if m.sort.Direction == view.Descending {
			label += " ▼"
		} else {
			label += " ▲"
		}
	}
	if view.Filterable(m.allRows, c.col) {
		if m.filters.Active(c.col) {
			label += " " + FilterActiveMarkStyle.Render("⚲")
		} else {
			label += " " + FilterMarkStyle.Render("⚲")
		}
	}
	return label
}

// View renders the table, with the open filter popup beside it.
func (m *TableModel) View(width, height int) string {
	popup := m.renderPopup()
	tableWidth := width
	if popup != "" {
		tableWidth = max(20, width-lipgloss.Width(popup)-1)
	}
	table := m.renderTable(tableWidth, height)
	if popup == "" {
		return table
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, table, " ", popup)
}

func (m *TableModel) renderTable(width, height int) string {
	if len(m.allRows) == 0 {
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render("    No records.\n    Press  r  to fetch again.")
	}

	visible := m.visibleColumnIndexes()
	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		label := m.headerLabel(idx)
		cellWidth := max(m.columns[idx].width+2, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if len(widths) > 0 {
		sepTotal := (len(widths) - 1) * tableSeparatorWidth()
		extra := width - totalFixed - sepTotal - 2
		if extra > 0 {
			widths[len(widths)-1] += extra
		}
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	visibleHeight := max(1, height-3)
	m.viewportHeight = visibleHeight

	var rows []string
	if len(m.rows) == 0 {
		rows = append(rows, EmptyStateStyle.Render("No rows match the current filters. Press X to clear them."))
	}
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		row := m.rows[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			cells = append(cells, m.cellValue(row, m.columns[idx]))
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	filterInfo := ""
	if len(m.rows) != len(m.allRows) {
		filterInfo = fmt.Sprintf("  ·  shown %d/%d", len(m.rows), len(m.allRows))
	}
	rowPos := ""
	if len(m.rows) > 0 {
		rowPos = fmt.Sprintf("  ·  row %d/%d", m.cursor+1, len(m.rows))
	}
	status := StatusBarStyle.Render(fmt.Sprintf("%d records%s%s  ·  %s", len(m.allRows), rowPos, filterInfo, m.TableMeta()))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		spacer,
		status,
	)
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return lipgloss.NewStyle().Underline(true).Foreground(ColorText).Render(label)
}

func tableSeparatorWidth() int {
	return lipgloss.Width(tableSeparator)
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = style.Width(widths[i]).MaxWidth(widths[i]).Render(cell)
	}
	sep := style.UnsetPadding().Foreground(ColorMuted).Render(tableSeparator)
	return strings.Join(parts, sep)
}

func renderTableDivider(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Join(parts, "┼"))
}

// MoveDown moves the cursor down.
func (m *TableModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		vh := m.viewportHeight
		if vh == 0 {
			vh = 10
		}
		if m.cursor >= m.offset+vh {
			m.offset++
		}
	}
}

// MoveUp moves the cursor up.
func (m *TableModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		if m.cursor < m.offset {
			m.offset--
		}
	}
}

// JumpToTop jumps to the first row.
func (m *TableModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last row.
func (m *TableModel) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
		vh := m.viewportHeight
		if vh == 0 {
			vh = 10
		}
		if m.cursor >= vh {
			m.offset = m.cursor - vh + 1
		}
	}
}

// HalfPageDown moves down half a page.
func (m *TableModel) HalfPageDown(pageSize int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += pageSize / 2
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	vh := m.viewportHeight
	if vh == 0 {
		vh = 10
	}
	if m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
}

// HalfPageUp moves up half a page.
func (m *TableModel) HalfPageUp(pageSize int) {
	m.cursor -= pageSize / 2
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}
