package effects

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	mu        sync.Mutex
	viewCalls []string // storyID + reaction
	delCalls  int
	delErr    error
	failViews int // fail this many view calls before succeeding
}

func (f *fakeBackend) ViewStory(ctx context.Context, storyID uuid.UUID, reaction string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failViews > 0 {
		f.failViews--
		return errors.New("temporarily unavailable")
	}
	f.viewCalls = append(f.viewCalls, storyID.String()+":"+reaction)
	return nil
}

func (f *fakeBackend) DeleteStory(ctx context.Context, storyID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delCalls++
	return f.delErr
}

func (f *fakeBackend) views() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.viewCalls...)
}

func newTestDispatcher(backend *fakeBackend) *Dispatcher {
	d := NewDispatcher(backend, zap.NewNop())
	d.initialInterval = time.Millisecond
	return d
}

func TestMarkViewedDispatches(t *testing.T) {
	backend := &fakeBackend{}
	d := newTestDispatcher(backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	id := uuid.New()
	d.MarkViewed(id)

	require.Eventually(t, func() bool {
		return len(backend.views()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, id.String()+":", backend.views()[0])
}

func TestReactCarriesEmoji(t *testing.T) {
	backend := &fakeBackend{}
	d := newTestDispatcher(backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	id := uuid.New()
	d.React(id, "🔥")

	require.Eventually(t, func() bool {
		return len(backend.views()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, id.String()+":🔥", backend.views()[0])
}

// Transient failures retry with backoff and eventually go through.
func TestEffectRetriesThenSucceeds(t *testing.T) {
	backend := &fakeBackend{failViews: 2}
	d := newTestDispatcher(backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.MarkViewed(uuid.New())

	require.Eventually(t, func() bool {
		return len(backend.views()) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

// A failed delete confirmation is dropped after exactly one attempt; only
// view marks and reactions get the backoff treatment.
func TestDeleteFailureIsNotRetried(t *testing.T) {
	backend := &fakeBackend{delErr: errors.New("forbidden")}
	d := newTestDispatcher(backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Delete(uuid.New())
	d.MarkViewed(uuid.New())

	// The queue is drained in order, so once the view landed the delete's
	// attempt count is final.
	require.Eventually(t, func() bool {
		return len(backend.views()) == 1
	}, time.Second, 5*time.Millisecond)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 1, backend.delCalls)
}

// A terminally failing effect is dropped, never panicking or wedging the
// queue.
func TestTerminalFailureIsDroppedAndQueueContinues(t *testing.T) {
	backend := &fakeBackend{failViews: 100}
	d := newTestDispatcher(backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.MarkViewed(uuid.New())
	d.Delete(uuid.New())

	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.delCalls == 1
	}, 3*time.Second, 5*time.Millisecond)
}
