// Package styles holds the lipgloss styles of the terminal editor.
package styles

import "github.com/charmbracelet/lipgloss"

const (
	purple = lipgloss.Color("#A78BFA")
	green  = lipgloss.Color("#10B981")
	red    = lipgloss.Color("#F87171")
	gray   = lipgloss.Color("#9CA3AF")
	white  = lipgloss.Color("#F9FAFB")
	slate  = lipgloss.Color("#6B7280")
)

// Foreground styles.
var (
	Primary   = lipgloss.NewStyle().Foreground(purple)
	Secondary = lipgloss.NewStyle().Foreground(green)
	Muted     = lipgloss.NewStyle().Foreground(gray)
	Text      = lipgloss.NewStyle().Foreground(white)

	ErrorMsg   = lipgloss.NewStyle().Foreground(red).Bold(true)
	SuccessMsg = Secondary.Bold(true)

	HelpBar = Muted.MarginTop(1)
	HelpKey = Secondary.Bold(true)

	DropdownItem         = Text.Padding(0, 1)
	DropdownItemSelected = DropdownItem.Background(purple).Bold(true)
)

// Header underlines a screen title.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(purple).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(slate).
	MarginBottom(1)

// EditBox frames the editor of the selected field.
var EditBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(purple).
	Padding(1, 2).
	Width(50)
