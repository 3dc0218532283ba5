package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedSaudAli-gh/todochat/internal/api"
	"github.com/SyedSaudAli-gh/todochat/internal/token"
)

func newTestFacade(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(api.NewClient(srv.URL, token.New(&token.FakeMinter{})))
}

func TestSendMessageValidation(t *testing.T) {
	facade := newTestFacade(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("validation failures must not reach the network")
	}))

	_, err := facade.SendMessage(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = facade.SendMessage(context.Background(), strings.Repeat("x", MaxMessageLength+1), "")
	assert.ErrorIs(t, err, ErrMessageTooLong)

	_, err = facade.SendMessage(context.Background(), strings.Repeat("日", MaxMessageLength+1), "")
	assert.ErrorIs(t, err, ErrMessageTooLong)

	_, err = facade.GetConversation(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingConversationID)

	_, err = facade.GetConversationMessages(context.Background(), "", 10, 0)
	assert.ErrorIs(t, err, ErrMissingConversationID)

	assert.ErrorIs(t, facade.DeleteConversation(context.Background(), ""), ErrMissingConversationID)
}

func TestSendMessage(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	facade := newTestFacade(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/chat", r.URL.Path)

		var req SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "add milk to my list", req.Message)
		assert.Equal(t, "conv-1", req.ConversationID)

		_ = json.NewEncoder(w).Encode(SendMessageResponse{
			ConversationID: "conv-1",
			Response:       "Added milk.",
			ToolCalls: []ToolCall{
				{ToolName: "create_task", Arguments: map[string]any{"title": "milk"}},
			},
			Timestamp: now,
		})
	}))

	resp, err := facade.SendMessage(context.Background(), "  add milk to my list  ", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, "Added milk.", resp.Response)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "create_task", resp.ToolCalls[0].ToolName)
	assert.True(t, resp.Timestamp.Equal(now))
}

func TestSendMessageLengthCountsCharacters(t *testing.T) {
	// 5000 three-byte runes is 15000 bytes but exactly at the cap.
	message := strings.Repeat("日", MaxMessageLength)
	facade := newTestFacade(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, message, req.Message)
		_ = json.NewEncoder(w).Encode(SendMessageResponse{ConversationID: "conv-1", Response: "ok"})
	}))

	_, err := facade.SendMessage(context.Background(), message, "")
	require.NoError(t, err)
}

func TestListConversationsPagination(t *testing.T) {
	facade := newTestFacade(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/conversations", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		_ = json.NewEncoder(w).Encode(ConversationListResponse{
			Conversations: []ConversationSummary{{ConversationID: "conv-1", MessageCount: 4}},
			Total:         1,
			Limit:         50,
			Offset:        10,
		})
	}))

	resp, err := facade.ListConversations(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, resp.Conversations, 1)
	assert.Equal(t, "conv-1", resp.Conversations[0].ConversationID)
}

func TestGetConversationMessages(t *testing.T) {
	facade := newTestFacade(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/conversations/conv-9/messages", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(MessageListResponse{
			ConversationID: "conv-9",
			Messages: []MessageRecord{
				{MessageID: "m1", Role: RoleUser, MessageText: "hi"},
				{MessageID: "m2", Role: RoleAssistant, MessageText: "hello"},
			},
			Total: 2,
		})
	}))

	resp, err := facade.GetConversationMessages(context.Background(), "conv-9", 0, 0)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 2)

	msg := resp.Messages[0].Message()
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hi", msg.Content)
}

func TestDeleteConversation(t *testing.T) {
	facade := newTestFacade(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/conversations/conv-2", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, facade.DeleteConversation(context.Background(), "conv-2"))
}

func TestUserErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", ErrEmptyMessage, "message cannot be empty"},
		{"bad request keeps backend text", &api.Error{Status: 400, Message: "title is required"}, "title is required"},
		{"unauthenticated", &api.Error{Status: 401}, "Authentication error. Please log in again."},
		{"forbidden", &api.Error{Status: 403}, "You do not have permission to access this conversation."},
		{"not found", &api.Error{Status: 404}, "Conversation not found. Starting a new conversation."},
		{"server error", &api.Error{Status: 500}, "Server error occurred. Please try again."},
		{"unavailable", &api.Error{Status: 503}, "Service temporarily unavailable. Please try again shortly."},
		{"network", &api.Error{Status: 0}, "Unable to connect to the server. Please check your internet connection and try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UserErrorMessage(tc.err))
		})
	}
}
