// Package session owns the state of one active conversation: its message
// list, in-flight flag, last error, and the identity of the conversation
// on the backend. One Manager belongs to one UI surface; it is created
// when the surface mounts and closed when it unmounts.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SyedSaudAli-gh/todochat/internal/api"
	"github.com/SyedSaudAli-gh/todochat/internal/chat"
	"github.com/SyedSaudAli-gh/todochat/internal/log"
	"github.com/SyedSaudAli-gh/todochat/internal/notify"
)

// DefaultHintTTL is how long a tool status hint stays visible.
const DefaultHintTTL = 2 * time.Second

// ErrSendInFlight is returned when Send is called while a send is already
// in progress. Sends are serialized, never queued.
var ErrSendInFlight = errors.New("a message is already being sent")

// API is the slice of the chat facade the manager consumes.
type API interface {
	SendMessage(ctx context.Context, message, conversationID string) (*chat.SendMessageResponse, error)
	GetConversation(ctx context.Context, conversationID string) (*chat.ConversationHistoryResponse, error)
	GetConversationMessages(ctx context.Context, conversationID string, limit, offset int) (*chat.MessageListResponse, error)
	CreateConversation(ctx context.Context) (*chat.CreateConversationResponse, error)
}

// Message is one slot in the transcript. A pending message is a local
// optimistic entry awaiting backend confirmation; rollback removes pending
// entries, never positional surgery.
type Message struct {
	chat.Message
	Pending bool
}

// State is a point-in-time snapshot of the conversation.
type State struct {
	Messages       []Message
	Sending        bool
	Err            string
	ConversationID string
	ToolStatus     string
	HistoryOpen    bool
	Initialized    bool
}

// Manager is the state machine for one active conversation.
type Manager struct {
	api      API
	notifier *notify.Notifier
	hintTTL  time.Duration

	mu        sync.Mutex
	state     State
	closed    bool
	hintSeq   int
	hintTimer *time.Timer
}

// Option configures a Manager.
type Option func(*Manager)

// WithConversation sets the conversation to resume on Init.
func WithConversation(id string) Option {
	return func(m *Manager) { m.state.ConversationID = id }
}

// WithHintTTL overrides how long tool status hints stay visible.
func WithHintTTL(d time.Duration) Option {
	return func(m *Manager) { m.hintTTL = d }
}

// New creates a Manager. The notifier may be nil when no other view cares
// about task mutations.
func New(api API, notifier *notify.Notifier, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		notifier: notifier,
		hintTTL:  DefaultHintTTL,
	}
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
	s.Messages = append([]Message(nil), m.state.Messages...)
	return s
}

// Init loads the conversation history when the manager was created with a
// known conversation id. A 404 means the conversation is gone: start
// fresh, with no error banner. Any other failure records an error, but the
// manager still becomes initialized so the UI is never stuck loading.
func (m *Manager) Init(ctx context.Context) {
	m.mu.Lock()
	id := m.state.ConversationID
	m.mu.Unlock()

	if id == "" {
		m.update(func(s *State) { s.Initialized = true })
		return
	}

	m.update(func(s *State) { s.Sending = true })
	history, err := m.api.GetConversation(ctx, id)

	m.update(func(s *State) {
		s.Sending = false
		s.Initialized = true
		switch {
		case err == nil:
			s.Messages = confirmed(history.Messages)
			s.ConversationID = history.ConversationID
		case api.IsNotFound(err):
			s.Messages = nil
			s.ConversationID = ""
			s.Err = ""
		default:
			s.Err = chat.UserErrorMessage(err)
		}
	})

	if err != nil {
		log.Logger().Debug("conversation init fell back",
			zap.String("conversation_id", id), zap.Error(err))
	} else {
		log.Logger().Debug("conversation history loaded",
			zap.String("conversation_id", id),
			chat.MessagesField(history.Messages))
	}
}

// Send posts text to the assistant. The user message appears immediately
// as a pending entry and is rolled back exactly if the send fails. A send
// issued while another is in flight is rejected with ErrSendInFlight and
// leaves all state untouched.
func (m *Manager) Send(ctx context.Context, text string) error {
	userMsg := Message{
		Message: chat.UserMessage("temp-"+uuid.NewString(), text, time.Now()),
		Pending: true,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	if m.state.Sending {
		m.mu.Unlock()
		return ErrSendInFlight
	}
	m.state.Sending = true
	m.state.Err = ""
	m.state.ToolStatus = ""
	m.state.Messages = append(m.state.Messages, userMsg)
	conversationID := m.state.ConversationID
	m.mu.Unlock()

	resp, err := m.api.SendMessage(ctx, text, conversationID)
	if err != nil {
		m.update(func(s *State) {
			s.Sending = false
			s.Messages = rollbackPending(s.Messages)
			s.Err = chat.UserErrorMessage(err)
		})
		return err
	}

	assistantMsg := Message{Message: chat.AssistantMessage(uuid.NewString(), *resp)}

	m.update(func(s *State) {
		s.Sending = false
		if s.ConversationID == "" {
			s.ConversationID = resp.ConversationID
		}
		for i := range s.Messages {
			s.Messages[i].Pending = false
		}
		s.Messages = append(s.Messages, assistantMsg)
	})

	// A send resolving after Close must not leak side effects to views
	// that outlive this manager.
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil
	}

	if hint := statusHint(resp.ToolCalls); hint != "" {
		m.setHint(hint)
	}
	if mutatesTasks(resp.ToolCalls) && m.notifier != nil {
		log.Logger().Debug("task mutation detected, publishing refresh",
			chat.ToolCallsField(resp.ToolCalls))
		m.notifier.Publish()
	}
	return nil
}

// Reset clears the transcript and detaches from the backend conversation
// without deleting anything server-side.
func (m *Manager) Reset() {
	m.update(func(s *State) {
		s.Messages = nil
		s.ConversationID = ""
		s.Err = ""
	})
}

// LoadConversation replaces the transcript with the messages of another
// conversation. On success the history panel closes; selecting from
// history always returns focus to the conversation view.
func (m *Manager) LoadConversation(ctx context.Context, id string) error {
	m.update(func(s *State) {
		s.Sending = true
		s.Err = ""
	})

	page, err := m.api.GetConversationMessages(ctx, id, chat.MessagesPageLimit, 0)

	m.update(func(s *State) {
		s.Sending = false
		if err != nil {
			s.Err = chat.UserErrorMessage(err)
			return
		}
		msgs := make([]Message, 0, len(page.Messages))
		for _, rec := range page.Messages {
			msgs = append(msgs, Message{Message: rec.Message()})
		}
		s.Messages = msgs
		s.ConversationID = id
		s.HistoryOpen = false
	})
	return err
}

// CreateNewConversation explicitly creates an empty conversation on the
// backend and adopts its id, distinct from the implicit creation that
// happens on the first send.
func (m *Manager) CreateNewConversation(ctx context.Context) error {
	m.update(func(s *State) {
		s.Sending = true
		s.Err = ""
	})

	resp, err := m.api.CreateConversation(ctx)

	m.update(func(s *State) {
		s.Sending = false
		if err != nil {
			s.Err = chat.UserErrorMessage(err)
			return
		}
		s.Messages = nil
		s.ConversationID = resp.ConversationID
	})
	return err
}

// ToggleHistory flips the history panel.
func (m *Manager) ToggleHistory() {
	m.update(func(s *State) { s.HistoryOpen = !s.HistoryOpen })
}

// ClearError dismisses the error banner.
func (m *Manager) ClearError() {
	m.update(func(s *State) { s.Err = "" })
}

// Close tears the manager down. Late completions and hint timers observed
// after Close are ignored.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.hintTimer != nil {
		m.hintTimer.Stop()
	}
}

// update applies fn to the state under the lock, unless the manager has
// been closed.
func (m *Manager) update(fn func(*State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	fn(&m.state)
}

// setHint shows a tool status hint and schedules its auto-clear. A newer
// hint wins over a stale timer.
func (m *Manager) setHint(hint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.state.ToolStatus = hint
	m.hintSeq++
	seq := m.hintSeq
	if m.hintTimer != nil {
		m.hintTimer.Stop()
	}
	m.hintTimer = time.AfterFunc(m.hintTTL, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.hintSeq != seq {
			return
		}
		m.state.ToolStatus = ""
	})
}

// rollbackPending removes optimistic entries, leaving confirmed messages
// exactly as they were.
func rollbackPending(msgs []Message) []Message {
	kept := msgs[:0]
	for _, msg := range msgs {
		if !msg.Pending {
			kept = append(kept, msg)
		}
	}
	return kept
}

// confirmed wraps backend messages as confirmed transcript slots.
func confirmed(msgs []chat.Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, Message{Message: msg})
	}
	return out
}

