package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SyedSaudAli-gh/todochat/internal/chat"
	"github.com/SyedSaudAli-gh/todochat/internal/history"
	"github.com/SyedSaudAli-gh/todochat/internal/todo"
)

func TestHistoryPanelSelectionClamps(t *testing.T) {
	p := NewHistoryPanel()
	p.Update(history.State{Conversations: []chat.ConversationSummary{
		{ConversationID: "a"}, {ConversationID: "b"}, {ConversationID: "c"},
	}})

	p.MoveDown()
	p.MoveDown()
	p.MoveDown()
	p.MoveDown()
	assert.Equal(t, "c", p.SelectedID())

	// The list shrank under the cursor after a delete.
	p.Update(history.State{Conversations: []chat.ConversationSummary{
		{ConversationID: "a"},
	}})
	assert.Equal(t, "a", p.SelectedID())

	p.Update(history.State{})
	assert.Empty(t, p.SelectedID())
}

func TestHistoryPanelMoveUpStopsAtTop(t *testing.T) {
	p := NewHistoryPanel()
	p.Update(history.State{Conversations: []chat.ConversationSummary{
		{ConversationID: "a"}, {ConversationID: "b"},
	}})

	p.MoveUp()
	assert.Equal(t, "a", p.SelectedID())
	p.MoveDown()
	p.MoveUp()
	assert.Equal(t, "a", p.SelectedID())
}

func TestHistoryPanelRenderShowsError(t *testing.T) {
	p := NewHistoryPanel()
	p.Update(history.State{Err: "Failed to delete conversation. Please try again."})

	out := p.Render()
	assert.Contains(t, out, "Failed to delete conversation")
}

func TestTodoPanelCompactSummary(t *testing.T) {
	p := NewTodoPanel()
	assert.Empty(t, p.RenderCompact())

	p.Update([]todo.Todo{
		{ID: 1, Title: "buy milk", Completed: true},
		{ID: 2, Title: "walk dog"},
	})
	assert.Contains(t, p.RenderCompact(), "1/2")
}

func TestTodoPanelRenderMarksCompleted(t *testing.T) {
	p := NewTodoPanel()
	p.Toggle()
	p.Update([]todo.Todo{
		{ID: 1, Title: "buy milk", Completed: true},
		{ID: 2, Title: "walk dog"},
	})

	out := p.Render()
	assert.True(t, strings.Contains(out, "[x]"))
	assert.True(t, strings.Contains(out, "[ ]"))
}

func TestToolLabel(t *testing.T) {
	assert.Equal(t, "created a task", toolLabel("create_task"))
	assert.Equal(t, "listed tasks", toolLabel("list_tasks"))
	assert.Equal(t, "summarize_week", toolLabel("summarize_week"))
}
