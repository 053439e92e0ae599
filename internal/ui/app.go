package ui

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"tabula/internal/model"
	"tabula/internal/view"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RowSource fetches the full record set.
type RowSource interface {
	FetchRows(ctx context.Context) ([]model.Record, error)
}

// Options configures the root model.
type Options struct {
	Source RowSource
	// Endpoint is shown in the header.
	Endpoint string
	// PrefsPath is where column layout is persisted. Empty disables it.
	PrefsPath string
}

// Model is the root Bubble Tea model.
type Model struct {
	source   RowSource
	endpoint string
	screen   model.Screen
	mode     model.Mode
	gState   GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool
	columnJump  bool

	table  *TableModel
	detail *RecordDetailModel

	loading    bool
	spinner    spinner.Model
	fetchSeq   int
	appliedSeq int

	keys      KeyMap
	popupKeys PopupKeyMap
	prefs     UIPreferences
	prefsPath string
	undoStack []undoAction
	redoStack []undoAction
}

// New creates a new root model. The first fetch starts from Init.
func New(opts Options) Model {
	prefs := loadUIPreferences(opts.PrefsPath)
	table := NewTableModel()
	table.ApplyPrefs(prefs.Table)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	return Model{
		source:    opts.Source,
		endpoint:  opts.Endpoint,
		screen:    model.ScreenTable,
		mode:      model.ModeNav,
		gState:    GStateIdle,
		table:     table,
		loading:   true,
		spinner:   s,
		fetchSeq:  1,
		keys:      DefaultKeyMap(),
		popupKeys: DefaultPopupKeyMap(),
		prefs:     prefs,
		prefsPath: opts.PrefsPath,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchRowsCmd(m.source, m.fetchSeq), m.spinner.Tick)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.mode == model.ModeNav && m.columnJump {
			switch msg.String() {
			case "esc":
				m.columnJump = false
				m.info = ""
				return m, nil
			}
			if n, err := strconv.Atoi(msg.String()); err == nil {
				if m.table.JumpToColumn(n) {
					m.columnJump = false
					m.info = fmt.Sprintf("Jumped to column %d", n)
					m.persistTablePrefs()
					return m, nil
				}
				m.info = fmt.Sprintf("Column %d unavailable", n)
				return m, nil
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.mode {
		case model.ModeFilter:
			return m.handleValuePopup(msg)
		case model.ModeInsert:
			return m.handleRangePopup(msg)
		}

		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		return m.handleNavMode(msg)

	case model.RowsLoadedMsg:
		if msg.Seq <= m.appliedSeq {
			log.Printf("discarding stale fetch %d (applied %d)", msg.Seq, m.appliedSeq)
			return m, nil
		}
		m.appliedSeq = msg.Seq
		if msg.Seq >= m.fetchSeq {
			m.loading = false
		}
		m.table.SetRecords(msg.Records)
		m.error = ""
		m.info = fmt.Sprintf("Loaded %d records", len(msg.Records))
		return m, nil

	case model.FetchFailedMsg:
		if msg.Seq < m.fetchSeq || msg.Seq <= m.appliedSeq {
			log.Printf("dropping failure of superseded fetch %d: %v", msg.Seq, msg.Err)
			return m, nil
		}
		m.loading = false
		m.error = "fetch failed: " + msg.Err.Error()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		// Cursor blink and similar messages belong to the range inputs.
		if m.mode == model.ModeInsert {
			return m, m.table.UpdateRangeInput(msg)
		}
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	var banners []string
	if m.error != "" {
		banners = append(banners, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		banners = append(banners, SuccessStyle.Width(m.width).Render(m.info))
	}

	// Header and footer take two lines each.
	contentHeight := max(1, m.height-4-len(banners))

	switch m.screen {
	case model.ScreenTable:
		breadcrumbParts = []string{"Records"}
		content = m.table.View(m.width, contentHeight)
	case model.ScreenRecordDetail:
		breadcrumbParts = []string{"Records", "Detail"}
		if m.detail != nil {
			breadcrumbParts = []string{"Records", m.detail.record.Name}
			content = m.detail.View(m.width, contentHeight)
		}
	}

	header := m.renderHeader(breadcrumbParts)
	footer := RenderHelp(m.screen, m.mode, m.width)

	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	parts := append([]string{header}, banners...)
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(breadcrumbParts []string) string {
	title := HeaderStyle.Render("tabula")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	if m.endpoint != "" {
		right = BreadcrumbStyle.Render(m.endpoint) + "  " + right
	}
	if m.loading {
		right = m.spinner.View() + " " + BreadcrumbStyle.Render("loading") + "  " + right
	}

	padding := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == model.ScreenRecordDetail {
		return m.handleRecordDetailNav(msg)
	}

	if next, cmd, ok := m.handleTableControls(msg); ok {
		return next, cmd
	}

	// Handle "gg" state machine
	if msg.String() == "g" {
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		m.table.JumpToTop()
		return m, nil
	}
	m.gState = GStateIdle

	return m.handleTableNav(msg)
}

func (m Model) handleTableControls(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	t := m.currentTable()
	if t == nil {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.NextColumn):
		t.NextColumn()
		m.persistTablePrefs()
	case key.Matches(msg, m.keys.PrevColumn):
		t.PrevColumn()
		m.persistTablePrefs()
	case key.Matches(msg, m.keys.ColumnJump):
		m.columnJump = true
		m.info = "Jump to column: press 1-5 (esc to cancel)"
	case key.Matches(msg, m.keys.Sort):
		var info string
		m.reportErr(m.trackViewChange("sort", func() (bool, error) {
			info = t.ToggleSortActiveColumn()
			return true, nil
		}))
		m.info = info
	case key.Matches(msg, m.keys.ClearSort):
		m.reportErr(m.trackViewChange("clear sort", func() (bool, error) {
			if t.ClearSort() {
				m.info = "Sorting cleared"
				return true, nil
			}
			m.info = "Not sorted"
			return false, nil
		}))
	case key.Matches(msg, m.keys.FilterPopup):
		m.openFilterPopup()
	case key.Matches(msg, m.keys.FilterValue):
		var info string
		err := m.trackViewChange("filter", func() (bool, error) {
			var changed bool
			var err error
			info, changed, err = t.FilterBySelectedValue()
			return changed, err
		})
		if !m.reportErr(err) {
			m.info = info
		}
	case key.Matches(msg, m.keys.ClearFilter):
		m.reportErr(m.trackViewChange("clear filter", func() (bool, error) {
			if t.ClearFilter() {
				m.info = "Filter cleared"
				return true, nil
			}
			m.info = "No filter on this column"
			return false, nil
		}))
	case key.Matches(msg, m.keys.ClearAll):
		m.reportErr(m.trackViewChange("clear all filters", func() (bool, error) {
			if t.ClearAllFilters() {
				m.info = "All filters cleared"
				return true, nil
			}
			m.info = "No filters active"
			return false, nil
		}))
	case key.Matches(msg, m.keys.HideColumn):
		if t.HideActiveColumn() {
			m.info = "Column hidden"
			m.persistTablePrefs()
		} else {
			m.info = "Cannot hide last visible column"
		}
	case key.Matches(msg, m.keys.ShowColumns):
		t.ShowAllColumns()
		m.info = "All columns shown"
		m.persistTablePrefs()
	case key.Matches(msg, m.keys.Undo):
		m.undo()
	case key.Matches(msg, m.keys.Redo):
		m.redo()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.startFetch(), true
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m *Model) openFilterPopup() {
	t := m.table
	col := t.ActiveColumn()
	if !t.CanFilterActiveColumn() {
		m.info = fmt.Sprintf("Nothing to filter in %s", strings.ToUpper(col.Label()))
		return
	}
	if !t.ToggleFilterPopup() {
		m.mode = model.ModeNav
		return
	}
	m.info = ""
	if col.Kind() == view.KindDateRange {
		m.mode = model.ModeInsert
	} else {
		m.mode = model.ModeFilter
	}
}

func (m *Model) closeFilterPopup() {
	m.table.ClosePopup()
	m.mode = model.ModeNav
}

func (m Model) handleValuePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.table
	switch {
	case key.Matches(msg, m.popupKeys.Close):
		m.closeFilterPopup()
	case key.Matches(msg, m.popupKeys.Down):
		t.PopupMoveDown()
	case key.Matches(msg, m.popupKeys.Up):
		t.PopupMoveUp()
	case key.Matches(msg, m.popupKeys.Toggle):
		m.reportErr(m.trackViewChange("filter", t.TogglePopupValue))
	case key.Matches(msg, m.popupKeys.ClearSet):
		cleared := false
		m.reportErr(m.trackViewChange("clear filter", func() (bool, error) {
			cleared = t.ClearPopupFilter()
			return cleared, nil
		}))
		if !cleared {
			m.info = "No filter on " + strings.ToUpper(t.ActiveColumn().Label())
		}
	}
	return m, nil
}

func (m Model) handleRangePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.table
	switch {
	case msg.Type == tea.KeyEsc:
		m.closeFilterPopup()
		return m, nil
	case key.Matches(msg, m.popupKeys.NextField):
		return m, t.FocusNextRangeInput()
	case key.Matches(msg, m.popupKeys.Apply):
		err := m.trackViewChange("date range", func() (bool, error) {
			err := t.ApplyRange()
			return err == nil, err
		})
		if !m.reportErr(err) {
			m.info = fmt.Sprintf("Showing %d of %d records", len(t.Rows()), len(t.Records()))
		}
		return m, nil
	}
	return m, t.UpdateRangeInput(msg)
}

func (m Model) handleTableNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.table
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Select):
		if rec, ok := t.SelectedRecord(); ok {
			m.detail = NewRecordDetailModel(rec)
			m.screen = model.ScreenRecordDetail
		}
	case key.Matches(msg, m.keys.Down):
		t.MoveDown()
	case key.Matches(msg, m.keys.Up):
		t.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		t.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		t.HalfPageDown(m.height / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		t.HalfPageUp(m.height / 2)
	}
	return m, nil
}

func (m Model) handleRecordDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenTable
		m.detail = nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) currentTable() tableController {
	if m.screen != model.ScreenTable || m.table == nil {
		return nil
	}
	return m.table
}

// reportErr shows err in the error banner and reports whether there was
// one.
func (m *Model) reportErr(err error) bool {
	if err == nil {
		return false
	}
	log.Printf("view state: %v", err)
	m.error = err.Error()
	m.info = ""
	return true
}

func (m *Model) persistTablePrefs() {
	m.prefs.Table = m.table.Prefs()
	if err := saveUIPreferences(m.prefsPath, m.prefs); err != nil {
		log.Printf("saving prefs: %v", err)
	}
}

// startFetch issues a fetch that supersedes any in flight.
func (m *Model) startFetch() tea.Cmd {
	m.fetchSeq++
	m.info = "Refreshing..."
	cmd := fetchRowsCmd(m.source, m.fetchSeq)
	if m.loading {
		return cmd
	}
	m.loading = true
	return tea.Batch(cmd, m.spinner.Tick)
}

// Commands

func fetchRowsCmd(src RowSource, seq int) tea.Cmd {
	return func() tea.Msg {
		records, err := src.FetchRows(context.Background())
		if err != nil {
			log.Printf("fetch %d failed: %v", seq, err)
			return model.FetchFailedMsg{Seq: seq, Err: err}
		}
		log.Printf("fetch %d returned %d records", seq, len(records))
		return model.RowsLoadedMsg{Seq: seq, Records: records}
	}
}
