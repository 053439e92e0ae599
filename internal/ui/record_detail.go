package ui

import (
	"strconv"
	"strings"
	"tabula/internal/model"
	"tabula/internal/util"
	"tabula/internal/view"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RecordDetailModel represents the record detail screen.
type RecordDetailModel struct {
	record model.Record
	now    func() time.Time
}

// NewRecordDetailModel creates a new record detail model.
func NewRecordDetailModel(record model.Record) *RecordDetailModel {
	return &RecordDetailModel{
		record: record,
		now:    time.Now,
	}
}

// View renders the record detail.
func (m *RecordDetailModel) View(width, height int) string {
	r := m.record

	shortcuts := HelpDescStyle.Render("h back")
	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(shortcuts)

	var fields []string
	fields = append(fields, renderField("ID", strconv.FormatInt(r.ID, 10)))
	fields = append(fields, renderField("Name", r.Name))
	fields = append(fields, renderField("Email", r.Email))
	fields = append(fields, renderField("Role", r.Role))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))

	created := []string{
		renderField("Created", util.FormatTimestamp(r.CreatedAt)),
		renderField("Relative", util.FormatTimestampHuman(r.CreatedAt, m.now())),
		renderField("RFC 3339", view.FormatTimestamp(r.CreatedAt)),
	}

	info := PanelStyle.
		Width(width - 4).
		Render(strings.Join([]string{strings.Join(fields, "\n"), divider, strings.Join(created, "\n")}, "\n\n"))

	return lipgloss.JoinVertical(lipgloss.Left, header, info)
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
