package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SyedSaudAli-gh/todochat/internal/chat"
	"github.com/SyedSaudAli-gh/todochat/internal/session"
)

func (m model) renderMessages() string {
	s := m.session.Snapshot()
	if len(s.Messages) == 0 {
		return m.renderWelcome()
	}

	wrapWidth := m.width - 4
	if wrapWidth < minWrapWidth {
		wrapWidth = minWrapWidth
	}
	bodyStyle := lipgloss.NewStyle().Width(wrapWidth)

	var sb strings.Builder
	for _, msg := range s.Messages {
		sb.WriteString("\n")
		sb.WriteString(renderMessage(msg, bodyStyle))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderMessage(msg session.Message, bodyStyle lipgloss.Style) string {
	switch msg.Role {
	case chat.RoleUser:
		prompt := inputPromptStyle.Render("❯ ")
		body := userMsgStyle.Render(msg.Content)
		if msg.Pending {
			body = pendingMsgStyle.Render(msg.Content)
		}
		return prompt + bodyStyle.Render(body)
	case chat.RoleAssistant:
		prompt := aiPromptStyle.Render("⏺ ")
		out := prompt + bodyStyle.Render(assistantMsgStyle.Render(msg.Content))
		if len(msg.ToolCalls) > 0 {
			out += "\n" + renderToolCalls(msg.ToolCalls)
		}
		return out
	default:
		return bodyStyle.Render(pendingMsgStyle.Render(msg.Content))
	}
}

func renderToolCalls(calls []chat.ToolCall) string {
	var sb strings.Builder
	for i, call := range calls {
		if i > 0 {
			sb.WriteString("\n")
		}
		label := toolLabel(call.ToolName)
		sb.WriteString("  " + toolHintStyle.Render("⚙ "+label))
	}
	return sb.String()
}

// toolLabel turns a backend tool name into a short past-tense label.
func toolLabel(name string) string {
	switch name {
	case "create_task":
		return "created a task"
	case "update_task":
		return "updated a task"
	case "delete_task":
		return "deleted a task"
	case "list_tasks":
		return "listed tasks"
	case "get_task":
		return "looked up a task"
	default:
		return name
	}
}

func (m model) renderWelcome() string {
	subtitleStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	hintStyle := lipgloss.NewStyle().Foreground(CurrentTheme.TextDisabled)
	titleStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("   " + titleStyle.Render("todochat") + "\n")
	sb.WriteString("\n")
	sb.WriteString("   " + subtitleStyle.Render("Chat with the assistant about your tasks.") + "\n")
	sb.WriteString("   " + subtitleStyle.Render("Try: \"add buy milk to my list\" or \"what's due today?\"") + "\n")
	sb.WriteString("\n")
	sb.WriteString("   " + hintStyle.Render("Enter to send · Ctrl+H history · Ctrl+T tasks · Ctrl+C exit") + "\n")
	return sb.String()
}
