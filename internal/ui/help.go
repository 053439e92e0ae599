package ui

import (
	"strings"
	"tabula/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	switch mode {
	case model.ModeFilter:
		return renderValuePopupHelp(width)
	case model.ModeInsert:
		return renderRangePopupHelp(width)
	}

	switch screen {
	case model.ScreenTable:
		return renderTableHelp(width)
	case model.ScreenRecordDetail:
		return renderRecordDetailHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderTableHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("tab", "next col"),
		helpKey("s", "sort"),
		helpKey("f", "filter"),
		helpKey("n/N", "filter value/clear"),
		helpKey("c/C", "hide/show col"),
		helpKey("r", "refresh"),
		helpKey("u/ctrl+r", "undo/redo"),
		helpKey("enter", "details"),
		helpKey("?", "help"),
	}
	return renderHelpLine(keys, width)
}

func renderRecordDetailHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderValuePopupHelp(width int) string {
	keys := []string{
		helpKey("j/k", "move"),
		helpKey("space/x", "toggle"),
		helpKey("a", "clear"),
		helpKey("esc/f", "close"),
	}
	return renderHelpLine(keys, width)
}

func renderRangePopupHelp(width int) string {
	keys := []string{
		helpKey("tab", "start/end"),
		helpKey("enter", "apply"),
		helpKey("esc", "close"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/l", "back/select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"ctrl+d", "Half page down"},
			{"ctrl+u", "Half page up"},
			{"tab / shift+tab", "Cycle active column"},
			{"/ then 1-5", "Jump to column"},
			{"l / enter", "Open record detail"},
			{"h / esc", "Back"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Sorting and Filtering"),
		helpSection([]helpItem{
			{"s", "Sort by active column (again to flip)"},
			{"S", "Clear sort"},
			{"f", "Open / close the active column's filter"},
			{"n", "Filter active column by selected value"},
			{"N", "Clear active column's filter"},
			{"X", "Clear all filters"},
			{"u / ctrl+r", "Undo / redo sort and filter changes"},
		}),
		titleSection("Columns and Data"),
		helpSection([]helpItem{
			{"c / C", "Hide active column / show all"},
			{"r", "Fetch the table again"},
		}),
		titleSection("Value Filter"),
		helpSection([]helpItem{
			{"j / k", "Move"},
			{"space / x", "Check / uncheck value"},
			{"a", "Uncheck everything (show all rows)"},
			{"esc / f", "Close"},
		}),
		titleSection("Timestamp Filter"),
		helpSection([]helpItem{
			{"tab", "Switch between start and end"},
			{"enter", "Apply (YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC 3339)"},
			{"esc", "Close"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
