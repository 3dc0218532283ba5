// Package history manages the paginated conversation list shown in the
// history panel. The list is a cache of server state: refreshes replace
// it wholesale, deletes remove optimistically and re-sync on failure.
package history

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/SyedSaudAli-gh/todochat/internal/chat"
	"github.com/SyedSaudAli-gh/todochat/internal/log"
)

// API is the slice of the chat facade the history manager needs.
type API interface {
	ListConversations(ctx context.Context, limit, offset int) (*chat.ConversationListResponse, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}

// State is an observable snapshot of the history list.
type State struct {
	Conversations []chat.ConversationSummary
	Total         int
	Loading       bool
	Err           string
}

// Manager owns the conversation list. All methods are safe for
// concurrent use.
type Manager struct {
	api      API
	pageSize int

	mu    sync.Mutex
	state State
}

// Option configures a Manager.
type Option func(*Manager)

// WithPageSize overrides the listing page size.
func WithPageSize(n int) Option {
	return func(m *Manager) { m.pageSize = n }
}

// New creates a history manager over the chat facade.
func New(api API, opts ...Option) *Manager {
	m := &Manager{api: api, pageSize: chat.DefaultPageLimit}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	s.Conversations = append([]chat.ConversationSummary(nil), m.state.Conversations...)
	return s
}

// Refresh fetches the first page of conversations and replaces the list.
// On failure the previous list is kept so the panel never goes blank.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.fetch(ctx, 0, false)
}

// LoadMore fetches the next page and appends it to the list.
func (m *Manager) LoadMore(ctx context.Context) error {
	m.mu.Lock()
	offset := len(m.state.Conversations)
	total := m.state.Total
	m.mu.Unlock()
	if total > 0 && offset >= total {
		return nil
	}
	return m.fetch(ctx, offset, true)
}

// HasMore reports whether pages beyond the loaded ones remain.
func (m *Manager) HasMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.Conversations) < m.state.Total
}

func (m *Manager) fetch(ctx context.Context, offset int, appendPage bool) error {
	m.mu.Lock()
	m.state.Loading = true
	m.state.Err = ""
	m.mu.Unlock()

	resp, err := m.api.ListConversations(ctx, m.pageSize, offset)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Loading = false
	if err != nil {
		// Keep whatever was loaded before; stale beats empty.
		m.state.Err = chat.UserErrorMessage(err)
		log.Logger().Debug("conversation list fetch failed",
			zap.Int("offset", offset), zap.Error(err))
		return err
	}
	if appendPage {
		m.state.Conversations = append(m.state.Conversations, resp.Conversations...)
	} else {
		m.state.Conversations = resp.Conversations
	}
	m.state.Total = resp.Total
	if len(resp.Conversations) > 0 {
		log.Logger().Debug("conversation list fetched",
			zap.Int("count", len(resp.Conversations)),
			zap.Int("total", resp.Total),
			chat.SummaryField(resp.Conversations[0]))
	}
	return nil
}

// Delete removes a conversation. The entry disappears from the list
// immediately; if the backend rejects the delete the list is re-fetched
// so it reflects reality again.
func (m *Manager) Delete(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	m.state.Err = ""
	removed := false
	kept := m.state.Conversations[:0]
	for _, c := range m.state.Conversations {
		if c.ConversationID == conversationID {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	m.state.Conversations = kept
	if removed && m.state.Total > 0 {
		m.state.Total--
	}
	m.mu.Unlock()

	err := m.api.DeleteConversation(ctx, conversationID)
	if err == nil {
		return nil
	}

	log.Logger().Debug("conversation delete failed, re-syncing list",
		zap.String("conversation_id", conversationID), zap.Error(err))
	m.mu.Lock()
	m.state.Err = "Failed to delete conversation. Please try again."
	m.mu.Unlock()
	if refetchErr := m.Refresh(ctx); refetchErr != nil {
		return err
	}
	// Refresh succeeded and cleared Err; restore the delete failure so
	// the user still learns the delete did not happen.
	m.mu.Lock()
	m.state.Err = "Failed to delete conversation. Please try again."
	m.mu.Unlock()
	return err
}
