package effects

import (
	"context"
	"time"

	"stories-client/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backend is the subset of the stories API the dispatcher drives.
type Backend interface {
	ViewStory(ctx context.Context, storyID uuid.UUID, reaction string) error
	DeleteStory(ctx context.Context, storyID uuid.UUID) error
}

const kindDelete = "delete"

type effect struct {
	kind string
	run  func(ctx context.Context) error
}

// Dispatcher executes the player's fire-and-forget side effects off the
// playback loop: view marks, reactions, deletes. View marks and reactions
// get a small bounded retry with exponential backoff; delete confirmations
// are sent once. A terminal failure is logged and dropped, never surfaced to
// the player. Navigation is never blocked on any of this.
type Dispatcher struct {
	backend Backend
	logger  *zap.Logger
	queue   chan effect

	maxRetries      uint64
	initialInterval time.Duration
}

func NewDispatcher(backend Backend, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		backend:         backend,
		logger:          logger,
		queue:           make(chan effect, 256),
		maxRetries:      3,
		initialInterval: 500 * time.Millisecond,
	}
}

// Run drains the queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("effects dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("effects dispatcher stopped")
			return
		case e := <-d.queue:
			d.execute(ctx, e)
		}
	}
}

// MarkViewed asynchronously records that the viewer saw a story. The caller
// guards idempotence with its local viewed flag; this always sends.
func (d *Dispatcher) MarkViewed(storyID uuid.UUID) {
	d.enqueue(effect{
		kind: "mark_viewed",
		run: func(ctx context.Context) error {
			if err := d.backend.ViewStory(ctx, storyID, ""); err != nil {
				return err
			}
			metrics.StoriesViewedTotal.Inc()
			return nil
		},
	})
}

// React sends an emoji reaction; the backend marks the story viewed as part
// of the same call.
func (d *Dispatcher) React(storyID uuid.UUID, emoji string) {
	d.enqueue(effect{
		kind: "react",
		run: func(ctx context.Context) error {
			if err := d.backend.ViewStory(ctx, storyID, emoji); err != nil {
				return err
			}
			metrics.ReactionsSentTotal.Inc()
			return nil
		},
	})
}

// Delete confirms a story deletion already applied to local player state.
// The confirmation is attempted once, never retried behind the user's back.
func (d *Dispatcher) Delete(storyID uuid.UUID) {
	d.enqueue(effect{
		kind: kindDelete,
		run: func(ctx context.Context) error {
			return d.backend.DeleteStory(ctx, storyID)
		},
	})
}

func (d *Dispatcher) enqueue(e effect) {
	select {
	case d.queue <- e:
	default:
		metrics.EffectsFailedTotal.WithLabelValues(e.kind).Inc()
		d.logger.Warn("effect queue full, dropping", zap.String("kind", e.kind))
	}
}

func (d *Dispatcher) execute(ctx context.Context, e effect) {
	start := time.Now()

	err := d.attempt(ctx, e)

	metrics.EffectLatencySeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EffectsFailedTotal.WithLabelValues(e.kind).Inc()
		d.logger.Warn("effect dropped",
			zap.String("kind", e.kind),
			zap.Error(err))
	}
}

func (d *Dispatcher) attempt(ctx context.Context, e effect) error {
	// Delete confirmations get a single attempt; the story is already gone
	// from local state and a repeat call is not made on the user's behalf.
	if e.kind == kindDelete {
		return e.run(ctx)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, d.maxRetries), ctx)

	notify := func(err error, next time.Duration) {
		d.logger.Warn("effect failed, retrying",
			zap.String("kind", e.kind),
			zap.Error(err),
			zap.Duration("next_attempt_in", next.Round(time.Millisecond)))
	}

	return backoff.RetryNotify(func() error { return e.run(ctx) }, policy, notify)
}
