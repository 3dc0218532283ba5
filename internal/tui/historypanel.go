package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/SyedSaudAli-gh/todochat/internal/history"
)

// HistoryPanel is the full-screen conversation list overlay.
type HistoryPanel struct {
	state    history.State
	selected int
	open     bool
	width    int
	height   int
}

// NewHistoryPanel creates a closed history panel.
func NewHistoryPanel() *HistoryPanel {
	return &HistoryPanel{width: defaultWidth, height: 24}
}

func (p *HistoryPanel) Open()        { p.open = true }
func (p *HistoryPanel) Close()       { p.open = false }
func (p *HistoryPanel) IsOpen() bool { return p.open }

// SetSize updates the panel dimensions.
func (p *HistoryPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Update replaces the panel's view of the conversation list and clamps
// the selection to the new bounds.
func (p *HistoryPanel) Update(state history.State) {
	p.state = state
	if p.selected >= len(state.Conversations) {
		p.selected = len(state.Conversations) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

func (p *HistoryPanel) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

func (p *HistoryPanel) MoveDown() {
	if p.selected < len(p.state.Conversations)-1 {
		p.selected++
	}
}

// NearEnd reports whether the selection is close enough to the bottom
// that the next page should be fetched.
func (p *HistoryPanel) NearEnd() bool {
	return p.selected >= len(p.state.Conversations)-3
}

// SelectedID returns the conversation id under the cursor, or "".
func (p *HistoryPanel) SelectedID() string {
	if p.selected < 0 || p.selected >= len(p.state.Conversations) {
		return ""
	}
	return p.state.Conversations[p.selected].ConversationID
}

// Render draws the panel as a full-screen view.
func (p *HistoryPanel) Render() string {
	var sb strings.Builder

	sb.WriteString("\n  " + panelHeaderStyle.Render("Conversations"))
	if p.state.Total > 0 {
		sb.WriteString(panelHintStyle.Render(fmt.Sprintf("  (%d)", p.state.Total)))
	}
	sb.WriteString("\n\n")

	if p.state.Err != "" {
		sb.WriteString("  " + errorBannerStyle.Render(p.state.Err) + "\n\n")
	}

	if len(p.state.Conversations) == 0 {
		if p.state.Loading {
			sb.WriteString("  " + panelHintStyle.Render("Loading...") + "\n")
		} else {
			sb.WriteString("  " + panelHintStyle.Render("No conversations yet.") + "\n")
		}
	}

	visible := p.height - 8
	if visible < 3 {
		visible = 3
	}
	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}

	for i := start; i < len(p.state.Conversations) && i < start+visible; i++ {
		c := p.state.Conversations[i]

		preview := c.Preview
		if preview == "" {
			preview = "(empty conversation)"
		}
		preview = runewidth.Truncate(preview, previewWidth, "...")

		line := fmt.Sprintf("%s  %s · %d messages",
			c.UpdatedAt.Local().Format("Jan 02 15:04"), preview, c.MessageCount)

		if i == p.selected {
			sb.WriteString("  " + panelSelectedStyle.Render("▸ "+line) + "\n")
		} else {
			sb.WriteString("    " + panelEntryStyle.Render(line) + "\n")
		}
	}

	sb.WriteString("\n  " + panelHintStyle.Render("enter open · d delete · esc close"))
	return sb.String()
}
