package ui

import "github.com/charmbracelet/lipgloss"

// Palette. Exported colors are used outside this file when building
// one-off styles.
var (
	ColorMuted  = lipgloss.Color("#7E8C80")
	ColorText   = lipgloss.Color("#D6E0D3")
	ColorAccent = lipgloss.Color("#8FA082")

	colorCursor   = lipgloss.Color("#1D221E")
	colorHeaderBg = lipgloss.Color("#2A332C")
	colorOK       = lipgloss.Color("#a6e3a1")
	colorErr      = lipgloss.Color("#f38ba8")
	colorFiltered = lipgloss.Color("#f9e2af")
)

func bordered(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(color).
		Padding(1, 2)
}

// Screen chrome.
var (
	HeaderStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Padding(0, 1)

	TitleStyle = HeaderStyle.
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(ColorMuted)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(ColorMuted)

	BreadcrumbStyle       = lipgloss.NewStyle().Foreground(ColorMuted)
	BreadcrumbActiveStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	StatusBarStyle        = lipgloss.NewStyle().Foreground(ColorMuted).Padding(0, 1)

	HelpKeyStyle  = lipgloss.NewStyle().Foreground(ColorAccent)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	BorderStyle       = bordered(ColorMuted)
	ActiveBorderStyle = bordered(ColorAccent)
	PanelStyle        = bordered(ColorMuted)
)

// Banners.
var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorErr).Padding(0, 1)
	SuccessStyle = lipgloss.NewStyle().Foreground(colorOK).Padding(0, 1)
)

// Table.
var (
	TableHeaderStyle = HeaderStyle.Background(colorHeaderBg)
	SelectedRowStyle = lipgloss.NewStyle().Foreground(colorCursor).Background(ColorAccent)
	NormalRowStyle   = lipgloss.NewStyle().Foreground(ColorText)
	EmptyStateStyle  = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true).Padding(2, 4)

	// Header marks for filterable columns; the active mark means the
	// column is currently restricting rows.
	FilterMarkStyle       = lipgloss.NewStyle().Foreground(ColorMuted)
	FilterActiveMarkStyle = lipgloss.NewStyle().Foreground(colorFiltered).Bold(true)
)

// Filter popups.
var (
	PopupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)

	PopupCursorStyle = lipgloss.NewStyle().Foreground(colorCursor).Background(ColorAccent)
)
