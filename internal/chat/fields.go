package chat

import (
	"encoding/json"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// messageMarshaler wraps a Message for zap logging
type messageMarshaler Message

func (m messageMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", m.ID)
	enc.AddString("role", string(m.Role))
	enc.AddString("content", m.Content)
	if len(m.ToolCalls) > 0 {
		_ = enc.AddArray("tool_calls", toolCallsMarshaler(m.ToolCalls))
	}
	return nil
}

// messagesMarshaler wraps a slice of Messages for zap logging
type messagesMarshaler []Message

func (m messagesMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, msg := range m {
		_ = enc.AppendObject(messageMarshaler(msg))
	}
	return nil
}

// MessagesField creates a zap field for messages
func MessagesField(messages []Message) zap.Field {
	return zap.Array("messages", messagesMarshaler(messages))
}

// toolCallMarshaler wraps a ToolCall for zap logging
type toolCallMarshaler ToolCall

func (tc toolCallMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("tool_name", tc.ToolName)
	// Marshal arguments as a JSON string for readability
	if tc.Arguments != nil {
		argsJSON, err := json.Marshal(tc.Arguments)
		if err == nil {
			enc.AddString("arguments", string(argsJSON))
		}
	}
	return nil
}

// toolCallsMarshaler wraps a slice of ToolCalls for zap logging
type toolCallsMarshaler []ToolCall

func (tc toolCallsMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, call := range tc {
		_ = enc.AppendObject(toolCallMarshaler(call))
	}
	return nil
}

// ToolCallsField creates a zap field for tool calls
func ToolCallsField(toolCalls []ToolCall) zap.Field {
	return zap.Array("tool_calls", toolCallsMarshaler(toolCalls))
}

// summaryMarshaler wraps a ConversationSummary for zap logging
type summaryMarshaler ConversationSummary

func (s summaryMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("conversation_id", s.ConversationID)
	enc.AddInt("message_count", s.MessageCount)
	enc.AddTime("updated_at", s.UpdatedAt)
	return nil
}

// SummaryField creates a zap field for a conversation summary
func SummaryField(summary ConversationSummary) zap.Field {
	return zap.Object("conversation", summaryMarshaler(summary))
}
