package tui

import "github.com/charmbracelet/lipgloss"

// Message styles
var (
	userMsgStyle      lipgloss.Style
	assistantMsgStyle lipgloss.Style
	pendingMsgStyle   lipgloss.Style
	inputPromptStyle  lipgloss.Style
	aiPromptStyle     lipgloss.Style
	separatorStyle    lipgloss.Style
	thinkingStyle     lipgloss.Style
	errorBannerStyle  lipgloss.Style
	toolHintStyle     lipgloss.Style
)

// Panel styles
var (
	panelBorderStyle   lipgloss.Style
	panelHeaderStyle   lipgloss.Style
	panelSelectedStyle lipgloss.Style
	panelEntryStyle    lipgloss.Style
	panelHintStyle     lipgloss.Style
)

// Todo styles
var (
	todoOpenStyle lipgloss.Style
	todoDoneStyle lipgloss.Style
)

func init() {
	userMsgStyle = lipgloss.NewStyle()
	assistantMsgStyle = lipgloss.NewStyle()

	pendingMsgStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Muted)

	inputPromptStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Primary).
		Bold(true)

	aiPromptStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.AI).
		Bold(true)

	separatorStyle = lipgloss.NewStyle().
		Faint(true).
		Foreground(CurrentTheme.Separator)

	thinkingStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Accent)

	errorBannerStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Error).
		Bold(true)

	toolHintStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Accent).
		Italic(true)

	panelBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Primary).
		Padding(0, 1)

	panelHeaderStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Primary).
		Bold(true)

	panelSelectedStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.TextBright).
		Background(CurrentTheme.Primary).
		Bold(true)

	panelEntryStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Text)

	panelHintStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Muted)

	todoOpenStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Text)

	todoDoneStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.TextDisabled).
		Strikethrough(true)
}
