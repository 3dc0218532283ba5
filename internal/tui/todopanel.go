package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/SyedSaudAli-gh/todochat/internal/todo"
)

// TodoPanel displays the current task list alongside the chat. It is
// refreshed whenever the assistant reports a task mutation.
type TodoPanel struct {
	todos   []todo.Todo
	visible bool
	width   int
}

// NewTodoPanel creates a hidden TodoPanel.
func NewTodoPanel() *TodoPanel {
	return &TodoPanel{width: 60}
}

// SetWidth sets the panel width.
func (p *TodoPanel) SetWidth(width int) {
	p.width = width
	if p.width < 30 {
		p.width = 30
	}
	if p.width > 80 {
		p.width = 80
	}
}

// Toggle flips the panel's visibility.
func (p *TodoPanel) Toggle() {
	p.visible = !p.visible
}

// Update replaces the task list.
func (p *TodoPanel) Update(todos []todo.Todo) {
	p.todos = todos
}

// IsVisible reports whether the panel should be drawn.
func (p *TodoPanel) IsVisible() bool {
	return p.visible
}

// Render renders the bordered task list.
func (p *TodoPanel) Render() string {
	var sb strings.Builder

	contentWidth := p.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	stats := todo.Tally(p.todos)
	header := panelHeaderStyle.Render("Tasks") +
		panelHintStyle.Render(fmt.Sprintf("  %d/%d done", stats.Completed, stats.Total))
	sb.WriteString(header)
	sb.WriteString("\n")

	if len(p.todos) == 0 {
		sb.WriteString(panelHintStyle.Render("Nothing here yet. Ask the assistant to add a task."))
	}

	for _, t := range p.todos {
		mark := "[ ]"
		style := todoOpenStyle
		if t.Completed {
			mark = "[x]"
			style = todoDoneStyle
		}
		title := runewidth.Truncate(t.Title, contentWidth-4, "...")
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, style.Render(title)))
	}

	content := strings.TrimSuffix(sb.String(), "\n")
	return panelBorderStyle.Width(p.width).Render(content)
}

// RenderCompact renders a one-line completion summary for the status
// bar, or "" when the list is empty.
func (p *TodoPanel) RenderCompact() string {
	if len(p.todos) == 0 {
		return ""
	}
	stats := todo.Tally(p.todos)
	return panelHintStyle.Render(fmt.Sprintf("tasks %d/%d", stats.Completed, stats.Total))
}
