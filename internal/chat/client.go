package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/SyedSaudAli-gh/todochat/internal/api"
)

const (
	// MaxMessageLength caps outgoing message size, matching the backend.
	MaxMessageLength = 5000

	// DefaultPageLimit is the page size for conversation listings.
	DefaultPageLimit = 50

	// MessagesPageLimit is the page size for per-conversation messages.
	MessagesPageLimit = 100
)

// Validation errors, raised locally before any network attempt.
var (
	ErrEmptyMessage          = errors.New("message cannot be empty")
	ErrMessageTooLong        = fmt.Errorf("message too long (max %d characters)", MaxMessageLength)
	ErrMissingConversationID = errors.New("conversation ID required")
)

// Client is the typed facade over the chat endpoints. It validates
// arguments locally and delegates to the authenticated request client.
type Client struct {
	api *api.Client
}

// NewClient creates a chat facade on top of the request client.
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// SendMessage posts a message to the assistant. An empty conversationID
// starts a new conversation; the response carries the adopted id.
func (c *Client) SendMessage(ctx context.Context, message, conversationID string) (*SendMessageResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	// The cap counts characters, not bytes; multibyte text must not be
	// rejected locally when the backend would accept it.
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	req := SendMessageRequest{Message: message, ConversationID: conversationID}
	var resp SendMessageResponse
	if err := c.api.Post(ctx, "/api/v1/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetConversation fetches the full history of one conversation.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*ConversationHistoryResponse, error) {
	if conversationID == "" {
		return nil, ErrMissingConversationID
	}
	var resp ConversationHistoryResponse
	if err := c.api.Get(ctx, "/api/v1/conversations/"+url.PathEscape(conversationID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListConversations fetches a page of conversation summaries, newest first.
func (c *Client) ListConversations(ctx context.Context, limit, offset int) (*ConversationListResponse, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	var resp ConversationListResponse
	if err := c.api.Get(ctx, "/api/v1/conversations", pageQuery(limit, offset), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetConversationMessages fetches a page of messages for one conversation.
func (c *Client) GetConversationMessages(ctx context.Context, conversationID string, limit, offset int) (*MessageListResponse, error) {
	if conversationID == "" {
		return nil, ErrMissingConversationID
	}
	if limit <= 0 {
		limit = MessagesPageLimit
	}
	var resp MessageListResponse
	path := "/api/v1/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.api.Get(ctx, path, pageQuery(limit, offset), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateConversation explicitly creates an empty conversation.
func (c *Client) CreateConversation(ctx context.Context) (*CreateConversationResponse, error) {
	var resp CreateConversationResponse
	if err := c.api.Post(ctx, "/api/v1/conversations", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteConversation removes a conversation. The backend answers 204.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return ErrMissingConversationID
	}
	return c.api.Delete(ctx, "/api/v1/conversations/"+url.PathEscape(conversationID))
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}
