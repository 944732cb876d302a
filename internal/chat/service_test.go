package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapwin-admin/models"
)

type fakeConversationStore struct {
	fakeStore
	status models.RequestStatus
	closed []string
}

func (s *fakeConversationStore) RequestStatus(ctx context.Context, requestID string) (models.RequestStatus, error) {
	return s.status, nil
}

func (s *fakeConversationStore) CloseRequest(ctx context.Context, requestID string) error {
	s.status = models.RequestClosed
	s.closed = append(s.closed, requestID)
	return nil
}

type fakeSubscriber struct {
	mu           sync.Mutex
	subscribed   []string
	unsubscribed []string
}

func (f *fakeSubscriber) Subscribe(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, channel)
}

func (f *fakeSubscriber) Unsubscribe(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = append(f.unsubscribed, channel)
}

func newTestService(status models.RequestStatus) (*Service, *fakeConversationStore, *fakeSubscriber) {
	store := &fakeConversationStore{status: status}
	sub := &fakeSubscriber{}
	svc := newService(store, &fakeBroadcaster{}, sub, Timings{
		TypingIdle:      30 * time.Millisecond,
		TypingExpiry:    50 * time.Millisecond,
		ReconcileWindow: 5 * time.Second,
	})
	return svc, store, sub
}

func TestClose_EvictsThreadAndUnsubscribes(t *testing.T) {
	svc, store, sub := newTestService(models.RequestOpen)
	ctx := context.Background()

	thread, err := svc.Thread(ctx, "req1")
	require.NoError(t, err)
	assert.Equal(t, []string{TypingChannel("req1")}, sub.subscribed)

	require.NoError(t, svc.Close(ctx, "req1"))

	assert.Equal(t, []string{"req1"}, store.closed)
	assert.Equal(t, models.RequestClosed, thread.Status())
	assert.Equal(t, []string{TypingChannel("req1")}, sub.unsubscribed)

	svc.mu.Lock()
	_, cached := svc.threads["req1"]
	svc.mu.Unlock()
	assert.False(t, cached, "closed thread must not linger in the map")
}

func TestThread_ClosedConversationStaysTransient(t *testing.T) {
	svc, _, sub := newTestService(models.RequestClosed)
	ctx := context.Background()

	thread, err := svc.Thread(ctx, "req1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestClosed, thread.Status())
	assert.Empty(t, sub.subscribed, "no typing subscription for a closed conversation")

	svc.mu.Lock()
	size := len(svc.threads)
	svc.mu.Unlock()
	assert.Zero(t, size)
}

func TestThread_ReopenedAccessAfterCloseDoesNotResubscribe(t *testing.T) {
	svc, _, sub := newTestService(models.RequestOpen)
	ctx := context.Background()

	_, err := svc.Thread(ctx, "req1")
	require.NoError(t, err)
	require.NoError(t, svc.Close(ctx, "req1"))

	// History is still viewable, but the conversation stays dead.
	thread, err := svc.Thread(ctx, "req1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestClosed, thread.Status())
	assert.Len(t, sub.subscribed, 1, "only the original subscription")
}

func TestThread_CachedBetweenAccesses(t *testing.T) {
	svc, _, sub := newTestService(models.RequestOpen)
	ctx := context.Background()

	first, err := svc.Thread(ctx, "req1")
	require.NoError(t, err)
	second, err := svc.Thread(ctx, "req1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, sub.subscribed, 1)
}
