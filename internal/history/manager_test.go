package history

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedSaudAli-gh/todochat/internal/api"
	"github.com/SyedSaudAli-gh/todochat/internal/chat"
)

type fakeListAPI struct {
	mu         sync.Mutex
	all        []chat.ConversationSummary
	listErr    error
	listCalls  int
	lastLimit  int
	deleteErr  error
	deletedIDs []string
}

func (f *fakeListAPI) ListConversations(ctx context.Context, limit, offset int) (*chat.ConversationListResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	end := offset + limit
	if end > len(f.all) {
		end = len(f.all)
	}
	page := []chat.ConversationSummary(nil)
	if offset < len(f.all) {
		page = f.all[offset:end]
	}
	return &chat.ConversationListResponse{
		Conversations: page,
		Total:         len(f.all),
		Limit:         limit,
		Offset:        offset,
	}, nil
}

func (f *fakeListAPI) DeleteConversation(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIDs = append(f.deletedIDs, conversationID)
	return f.deleteErr
}

func summaries(n int) []chat.ConversationSummary {
	out := make([]chat.ConversationSummary, n)
	for i := range out {
		out[i] = chat.ConversationSummary{
			ConversationID: fmt.Sprintf("conv-%d", i),
			UpdatedAt:      time.Now().Add(-time.Duration(i) * time.Hour),
			MessageCount:   2,
			Preview:        fmt.Sprintf("preview %d", i),
		}
	}
	return out
}

func TestRefreshReplacesList(t *testing.T) {
	fake := &fakeListAPI{all: summaries(3)}
	m := New(fake)

	require.NoError(t, m.Refresh(context.Background()))

	s := m.Snapshot()
	require.Len(t, s.Conversations, 3)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, chat.DefaultPageLimit, fake.lastLimit)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Err)

	// A later refresh against a changed backend replaces, not merges.
	fake.mu.Lock()
	fake.all = summaries(1)
	fake.mu.Unlock()
	require.NoError(t, m.Refresh(context.Background()))
	assert.Len(t, m.Snapshot().Conversations, 1)
}

func TestRefreshFailureKeepsStaleList(t *testing.T) {
	fake := &fakeListAPI{all: summaries(2)}
	m := New(fake)
	require.NoError(t, m.Refresh(context.Background()))

	fake.mu.Lock()
	fake.listErr = &api.Error{Status: 0}
	fake.mu.Unlock()

	err := m.Refresh(context.Background())
	require.Error(t, err)

	s := m.Snapshot()
	assert.Len(t, s.Conversations, 2, "stale list beats an empty panel")
	assert.NotEmpty(t, s.Err)
	assert.False(t, s.Loading)
}

func TestLoadMoreAppendsNextPage(t *testing.T) {
	fake := &fakeListAPI{all: summaries(5)}
	m := New(fake, WithPageSize(2))

	require.NoError(t, m.Refresh(context.Background()))
	assert.Len(t, m.Snapshot().Conversations, 2)
	assert.True(t, m.HasMore())

	require.NoError(t, m.LoadMore(context.Background()))
	require.NoError(t, m.LoadMore(context.Background()))

	s := m.Snapshot()
	require.Len(t, s.Conversations, 5)
	assert.Equal(t, "conv-4", s.Conversations[4].ConversationID)
	assert.False(t, m.HasMore())

	// Fully loaded list means LoadMore is a no-op.
	calls := fake.listCalls
	require.NoError(t, m.LoadMore(context.Background()))
	assert.Equal(t, calls, fake.listCalls)
}

func TestDeleteIsOptimistic(t *testing.T) {
	fake := &fakeListAPI{all: summaries(3)}
	m := New(fake)
	require.NoError(t, m.Refresh(context.Background()))

	require.NoError(t, m.Delete(context.Background(), "conv-1"))

	s := m.Snapshot()
	require.Len(t, s.Conversations, 2)
	for _, c := range s.Conversations {
		assert.NotEqual(t, "conv-1", c.ConversationID)
	}
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, []string{"conv-1"}, fake.deletedIDs)
}

func TestDeleteFailureRefetches(t *testing.T) {
	fake := &fakeListAPI{all: summaries(3), deleteErr: &api.Error{Status: 500}}
	m := New(fake)
	require.NoError(t, m.Refresh(context.Background()))
	listCallsBefore := fake.listCalls

	err := m.Delete(context.Background(), "conv-1")
	require.Error(t, err)

	s := m.Snapshot()
	assert.Len(t, s.Conversations, 3, "failed delete must restore the entry")
	assert.Equal(t, "Failed to delete conversation. Please try again.", s.Err)
	assert.Greater(t, fake.listCalls, listCallsBefore, "failure triggers a re-sync fetch")
}
