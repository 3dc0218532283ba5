// Package chat defines the conversation types and the typed API surface
// for the Todos chat backend. All packages import their message types from
// here to avoid circular dependencies.
package chat

import "time"

// Role represents the role of a message participant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a chat message exchanged between user and assistant.
type Message struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall records an action the backend performed on the user's behalf.
// Tool calls are produced by the backend and never constructed locally.
type ToolCall struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
	Result    any            `json:"result"`
}

// SendMessageRequest is the body of POST /api/v1/chat.
type SendMessageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// SendMessageResponse is the reply to POST /api/v1/chat.
type SendMessageResponse struct {
	ConversationID string     `json:"conversation_id"`
	Response       string     `json:"response"`
	ToolCalls      []ToolCall `json:"tool_calls"`
	Timestamp      time.Time  `json:"timestamp"`
}

// ConversationHistoryResponse is the full history of one conversation.
type ConversationHistoryResponse struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConversationSummary is a single entry in the conversation list.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	MessageCount   int       `json:"message_count"`
	Preview        string    `json:"preview"`
}

// ConversationListResponse is a page of conversation summaries.
type ConversationListResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
	Total         int                   `json:"total"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
}

// MessageRecord is the compact message shape returned by the paged
// /conversations/{id}/messages endpoint.
type MessageRecord struct {
	MessageID   string    `json:"message_id"`
	Role        Role      `json:"role"`
	MessageText string    `json:"message_text"`
	Timestamp   time.Time `json:"timestamp"`
}

// MessageListResponse is a page of messages for one conversation.
type MessageListResponse struct {
	ConversationID string          `json:"conversation_id"`
	Messages       []MessageRecord `json:"messages"`
	Total          int             `json:"total"`
	Limit          int             `json:"limit"`
	Offset         int             `json:"offset"`
}

// CreateConversationResponse is the reply to POST /api/v1/conversations.
type CreateConversationResponse struct {
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserMessage creates a user message with the given id and text.
func UserMessage(id, text string, at time.Time) Message {
	return Message{
		ID:        id,
		Role:      RoleUser,
		Content:   text,
		Timestamp: at,
	}
}

// AssistantMessage converts a send response into an assistant message.
func AssistantMessage(id string, resp SendMessageResponse) Message {
	return Message{
		ID:        id,
		Role:      RoleAssistant,
		Content:   resp.Response,
		Timestamp: resp.Timestamp,
		ToolCalls: resp.ToolCalls,
	}
}

// Message converts a paged MessageRecord to a Message.
func (r MessageRecord) Message() Message {
	return Message{
		ID:        r.MessageID,
		Role:      r.Role,
		Content:   r.MessageText,
		Timestamp: r.Timestamp,
	}
}
