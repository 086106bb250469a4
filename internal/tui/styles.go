package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/polysumm/internal/session"
)

// palette holds every style that changes with the theme.
type palette struct {
	title      lipgloss.Style
	tagline    lipgloss.Style
	section    lipgloss.Style
	helper     lipgloss.Style
	errorText  lipgloss.Style
	errorBox   lipgloss.Style
	userLabel  lipgloss.Style
	botLabel   lipgloss.Style
	sysLabel   lipgloss.Style
	body       lipgloss.Style
	selected   lipgloss.Style
	cursor     lipgloss.Style
	statusBar  lipgloss.Style
	summaryBox lipgloss.Style
	key        lipgloss.Style
}

var (
	lightAccentColor = lipgloss.Color("#3d5a80")
	lightTextColor   = lipgloss.Color("#1b1b1b")
	lightMutedColor  = lipgloss.Color("244")
	darkAccentColor  = lipgloss.Color("#ff9f1c")
	darkTextColor    = lipgloss.Color("#f4f1de")
	darkMutedColor   = lipgloss.Color("246")
)

func newPalette(theme session.Theme) palette {
	accent, text, muted := lightAccentColor, lightTextColor, lightMutedColor
	userColor, botColor := lipgloss.Color("26"), lipgloss.Color("29")
	if theme == session.ThemeDark {
		accent, text, muted = darkAccentColor, darkTextColor, darkMutedColor
		userColor, botColor = lipgloss.Color("81"), lipgloss.Color("150")
	}
	return palette{
		title:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		tagline:    lipgloss.NewStyle().Foreground(muted).Italic(true),
		section:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		helper:     lipgloss.NewStyle().Foreground(muted),
		errorText:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		errorBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Foreground(lipgloss.Color("9")).Padding(0, 1),
		userLabel:  lipgloss.NewStyle().Bold(true).Foreground(userColor),
		botLabel:   lipgloss.NewStyle().Bold(true).Foreground(botColor),
		sysLabel:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		body:       lipgloss.NewStyle().Foreground(text),
		selected:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(accent),
		cursor:     lipgloss.NewStyle().Foreground(accent),
		statusBar:  lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1),
		summaryBox: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		key:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1),
	}
}
