package ui

import (
	"fmt"
	"strings"
	"tabula/internal/util"
	"tabula/internal/view"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	rangeStart = iota
	rangeEnd
)

const popupMaxValues = 12

func newRangeInputs() [2]textinput.Model {
	var inputs [2]textinput.Model
	for i, placeholder := range []string{"start (YYYY-MM-DD)", "end (YYYY-MM-DD)"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = ""
		ti.CharLimit = 35
		ti.Width = 24
		inputs[i] = ti
	}
	return inputs
}

// ToggleFilterPopup opens the active column's popup, or closes it if it is
// already open. It reports whether a popup is open afterwards.
func (m *TableModel) ToggleFilterPopup() bool {
	col := m.ActiveColumn()
	m.popup.Toggle(col)
	if !m.popup.IsOpen(col) {
		m.blurRangeInputs()
		return false
	}
	m.valueCursor = 0
	if col.Kind() == view.KindDateRange {
		m.syncRangeInputs()
		m.focusRangeInput(rangeStart)
	}
	return true
}

// ClosePopup closes whichever popup is open.
func (m *TableModel) ClosePopup() {
	if col, ok := m.popup.Open(); ok {
		m.popup.Toggle(col)
	}
	m.blurRangeInputs()
}

// PopupOpen returns the column whose popup is open.
func (m *TableModel) PopupOpen() (view.Column, bool) {
	return m.popup.Open()
}

// PopupValues returns the checklist of the open value popup.
func (m *TableModel) PopupValues() []string {
	col, ok := m.popup.Open()
	if !ok || col.Kind() != view.KindValueSet {
		return nil
	}
	return view.UniqueValues(m.allRows, col)
}

func (m *TableModel) PopupMoveDown() {
	if m.valueCursor < len(m.PopupValues())-1 {
		m.valueCursor++
	}
}

func (m *TableModel) PopupMoveUp() {
	if m.valueCursor > 0 {
		m.valueCursor--
	}
}

func (m *TableModel) clampValueCursor() {
	n := len(m.PopupValues())
	if m.valueCursor >= n {
		m.valueCursor = n - 1
	}
	if m.valueCursor < 0 {
		m.valueCursor = 0
	}
}

// TogglePopupValue flips the value under the popup cursor in or out of the
// column's accepted set. It reports whether a value was toggled.
func (m *TableModel) TogglePopupValue() (bool, error) {
	col, ok := m.popup.Open()
	if !ok {
		return false, nil
	}
	values := m.PopupValues()
	if m.valueCursor >= len(values) {
		return false, nil
	}
	value := values[m.valueCursor]
	set, _ := m.filters.State(col).(view.ValueSet)
	if err := m.filters.ToggleValue(col, value, !set.Contains(value)); err != nil {
		return false, err
	}
	m.rebuild()
	return true, nil
}

// ClearPopupFilter resets the filter of the open popup's column. It reports
// whether there was anything to clear.
func (m *TableModel) ClearPopupFilter() bool {
	col, ok := m.popup.Open()
	if !ok || !m.filters.Active(col) {
		return false
	}
	m.filters.Clear(col)
	m.rebuild()
	m.syncRangeInputs()
	return true
}

func (m *TableModel) focusRangeInput(idx int) tea.Cmd {
	m.rangeFocus = idx
	m.rangeInputs[1-idx].Blur()
	return m.rangeInputs[idx].Focus()
}

func (m *TableModel) blurRangeInputs() {
	for i := range m.rangeInputs {
		m.rangeInputs[i].Blur()
	}
}

// FocusNextRangeInput switches between the start and end inputs.
func (m *TableModel) FocusNextRangeInput() tea.Cmd {
	return m.focusRangeInput(1 - m.rangeFocus)
}

// UpdateRangeInput forwards msg to the focused range input.
func (m *TableModel) UpdateRangeInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.rangeInputs[m.rangeFocus], cmd = m.rangeInputs[m.rangeFocus].Update(msg)
	return cmd
}

// SetRangeInputs fills the start and end inputs.
func (m *TableModel) SetRangeInputs(start, end string) {
	m.rangeInputs[rangeStart].SetValue(start)
	m.rangeInputs[rangeEnd].SetValue(end)
}

// ApplyRange parses both range inputs and stores them as the bounds of the
// open range popup's column. Nothing is stored unless both parse.
func (m *TableModel) ApplyRange() error {
	col, ok := m.popup.Open()
	if !ok {
		return nil
	}
	start, err := util.ParseTimestampInput(m.rangeInputs[rangeStart].Value())
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := util.ParseTimestampInput(m.rangeInputs[rangeEnd].Value())
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if err := m.filters.SetRangeStart(col, start); err != nil {
		return err
	}
	if err := m.filters.SetRangeEnd(col, end); err != nil {
		return err
	}
	m.rebuild()
	m.syncRangeInputs()
	return nil
}

func (m *TableModel) syncRangeInputs() {
	r, ok := m.filters.State(view.ColumnCreatedAt).(view.DateRange)
	if !ok {
		return
	}
	m.SetRangeInputs(util.FormatTimestampInput(r.Start), util.FormatTimestampInput(r.End))
}

func (m *TableModel) renderPopup() string {
	col, ok := m.popup.Open()
	if !ok {
		return ""
	}
	title := LabelStyle.Render("Filter " + col.Label())
	if col.Kind() == view.KindDateRange {
		return PopupStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.renderRangeInputs()))
	}
	return PopupStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.renderValueList(col)))
}

func (m *TableModel) renderValueList(col view.Column) string {
	values := m.PopupValues()
	set, _ := m.filters.State(col).(view.ValueSet)

	start := 0
	if m.valueCursor >= popupMaxValues {
		start = m.valueCursor - popupMaxValues + 1
	}
	var lines []string
	for i := start; i < len(values) && i < start+popupMaxValues; i++ {
		box := "[ ]"
		if set.Contains(values[i]) {
			box = "[x]"
		}
		line := box + " " + util.TruncateString(values[i], 28)
		if i == m.valueCursor {
			line = PopupCursorStyle.Render(line)
		} else {
			line = NormalRowStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(values) > popupMaxValues {
		lines = append(lines, HelpDescStyle.Render(fmt.Sprintf("%d/%d", m.valueCursor+1, len(values))))
	}
	if set.Empty() {
		lines = append(lines, HelpDescStyle.Render("none checked: all rows shown"))
	} else {
		lines = append(lines, HelpDescStyle.Render(fmt.Sprintf("%d of %d checked", set.Len(), len(values))))
	}
	return strings.Join(lines, "\n")
}

func (m *TableModel) renderRangeInputs() string {
	fields := make([]string, 0, 2)
	for i, label := range []string{"From", "To"} {
		box := BorderStyle
		if m.rangeFocus == i && m.rangeInputs[i].Focused() {
			box = ActiveBorderStyle
		}
		fields = append(fields, LabelStyle.Render(label)+"\n"+box.Padding(0, 1).Render(m.rangeInputs[i].View()))
	}
	fields = append(fields, HelpDescStyle.Render("empty = unbounded"))
	return strings.Join(fields, "\n")
}
