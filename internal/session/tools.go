package session

import "github.com/SyedSaudAli-gh/todochat/internal/chat"

// toolStatusHints maps backend tool names to the short status line shown
// while the assistant acts on tasks. Names are matched exactly; substring
// heuristics drift too easily as tools are added.
var toolStatusHints = map[string]string{
	"create_task": "Creating task...",
	"update_task": "Updating task...",
	"delete_task": "Deleting task...",
	"list_tasks":  "Loading tasks...",
	"get_task":    "Fetching task...",
}

// mutatingTools are the tool calls that change task data and therefore
// require unrelated task views to re-fetch.
var mutatingTools = map[string]bool{
	"create_task": true,
	"update_task": true,
	"delete_task": true,
}

// statusHint derives a status line from the first tool call, or "" when
// the response carried none.
func statusHint(calls []chat.ToolCall) string {
	if len(calls) == 0 {
		return ""
	}
	if hint, ok := toolStatusHints[calls[0].ToolName]; ok {
		return hint
	}
	return "Processing..."
}

// mutatesTasks reports whether any tool call changed task data.
func mutatesTasks(calls []chat.ToolCall) bool {
	for _, call := range calls {
		if mutatingTools[call.ToolName] {
			return true
		}
	}
	return false
}
