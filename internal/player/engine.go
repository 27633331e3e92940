package player

import (
	"context"
	"time"

	"stories-client/internal/metrics"
	"stories-client/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Half int

const (
	LeftHalf Half = iota
	RightHalf
)

// VideoController is the active video playback resource. It is a follower of
// the progress timer: the engine starts and stops it, it is never asked for
// elapsed time, and every call is issued after the corresponding timer
// transition.
type VideoController interface {
	Play()
	Pause()
	Stop()
}

// SideEffects receives the fire-and-forget calls the player emits while
// navigating. Implementations must not block; the engine calls these from its
// event loop.
type SideEffects interface {
	MarkViewed(storyID uuid.UUID)
	React(storyID uuid.UUID, emoji string)
	Delete(storyID uuid.UUID)
}

type eventKind int

const (
	evPress eventKind = iota
	evRelease
	evReact
	evDelete
)

type event struct {
	kind  eventKind
	half  Half
	emoji string
	at    time.Time
}

// Engine drives one playback session. All state lives on the Run goroutine;
// the exported input methods only post events, so they are safe to call from
// anywhere (gesture threads included).
type Engine struct {
	viewerID uuid.UUID
	effects  SideEffects
	video    VideoController
	logger   *zap.Logger
	now      func() time.Time

	state     State
	startedAt time.Time
	pressed   bool
	pressAt   time.Time

	events chan event
	done   chan struct{}
	snap   chan chan Snapshot
}

// Snapshot is a read-only view of the session for debug/status surfaces.
type Snapshot struct {
	UserIndex  int
	StoryIndex int
	Progress   float64
	Running    bool
	Done       bool
	StoryID    uuid.UUID
	Author     string
}

func NewEngine(groups []models.StoryGroup, startGroup int, viewerID uuid.UUID,
	effects SideEffects, video VideoController, logger *zap.Logger) *Engine {
	return &Engine{
		viewerID: viewerID,
		effects:  effects,
		video:    video,
		logger:   logger,
		now:      time.Now,
		state:    NewState(groups, startGroup),
		events:   make(chan event, 32),
		done:     make(chan struct{}),
		snap:     make(chan chan Snapshot),
	}
}

// Done is closed when the session terminates (ran past the last story, all
// stories deleted, or ctx cancelled).
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Press pauses playback for as long as the press is held.
func (e *Engine) Press(half Half) {
	e.post(event{kind: evPress, half: half, at: e.now()})
}

// Release resumes playback; a short press (under LongPressThreshold) also
// navigates: left half forward, right half backward.
func (e *Engine) Release(half Half) {
	e.post(event{kind: evRelease, half: half, at: e.now()})
}

// React attaches an emoji reaction to the current story (non-owners only).
func (e *Engine) React(emoji string) {
	e.post(event{kind: evReact, emoji: emoji, at: e.now()})
}

// Delete removes the current story (owner only).
func (e *Engine) Delete() {
	e.post(event{kind: evDelete, at: e.now()})
}

func (e *Engine) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case e.snap <- reply:
		return <-reply
	case <-e.done:
		return Snapshot{Done: true}
	}
}

func (e *Engine) post(ev event) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}

// Run owns the session until termination or ctx cancellation. The 50ms ticker
// is the single clock for navigation decisions; there is never more than one
// timer because this loop is the timer.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	defer e.stopVideo()

	if e.state.Done {
		return
	}
	e.enterStory(e.now())

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.handlePause(e.now())
			return
		case t := <-ticker.C:
			e.handleTick(t)
		case ev := <-e.events:
			e.handleEvent(ev)
		case reply := <-e.snap:
			reply <- e.snapshot()
		}
		if e.state.Done {
			return
		}
	}
}

func (e *Engine) handleEvent(ev event) {
	switch ev.kind {
	case evPress:
		e.handlePress(ev.at)
	case evRelease:
		e.handleRelease(ev.half, ev.at)
	case evReact:
		e.handleReact(ev.emoji)
	case evDelete:
		e.handleDelete(ev.at)
	}
}

// enterStory is called whenever the cursor lands on a story: it arms the
// timer so a preserved Progress resumes mid-story instead of restarting,
// fires the one-shot viewed mark, and starts video playback last.
func (e *Engine) enterStory(now time.Time) {
	cur := e.state.Current()
	if cur == nil {
		return
	}
	dur := Duration(*cur)
	e.startedAt = now.Add(-time.Duration(e.state.Progress * float64(dur)))
	e.state.Running = true

	if !cur.IsViewed {
		cur.IsViewed = true
		e.effects.MarkViewed(cur.ID)
	}

	if cur.Media.Type == models.MediaVideo && e.video != nil {
		e.video.Play()
	}
}

func (e *Engine) handleTick(now time.Time) {
	if !e.state.Running || e.state.Done {
		return
	}
	cur := e.state.Current()
	if cur == nil {
		return
	}
	dur := Duration(*cur)
	p := float64(now.Sub(e.startedAt)) / float64(dur)
	if p >= 1 {
		e.state.Progress = 1
		e.state.Running = false
		e.stopVideo()
		e.state = AdvanceForward(e.state)
		metrics.AdvanceTotal.WithLabelValues("forward").Inc()
		e.enterStory(now)
		return
	}
	if p < 0 {
		p = 0
	}
	e.state.Progress = p
}

func (e *Engine) handlePress(now time.Time) {
	e.pressed = true
	e.pressAt = now
	e.handlePause(now)
}

func (e *Engine) handleRelease(half Half, now time.Time) {
	if !e.pressed {
		return
	}
	held := now.Sub(e.pressAt)
	e.pressed = false
	e.handleResume(now)
	if held >= LongPressThreshold {
		return
	}
	// Left is the forward reading direction in this product (RTL), so the
	// left half advances and the right half goes back.
	e.stopVideo()
	if half == LeftHalf {
		e.state = AdvanceForward(e.state)
		metrics.AdvanceTotal.WithLabelValues("forward").Inc()
	} else {
		e.state = AdvanceBackward(e.state)
		metrics.AdvanceTotal.WithLabelValues("backward").Inc()
	}
	e.enterStory(now)
}

func (e *Engine) handlePause(now time.Time) {
	if !e.state.Running || e.state.Done {
		return
	}
	cur := e.state.Current()
	if cur == nil {
		return
	}
	dur := Duration(*cur)
	p := float64(now.Sub(e.startedAt)) / float64(dur)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	e.state.Progress = p
	e.state.Running = false
	if cur.Media.Type == models.MediaVideo && e.video != nil {
		e.video.Pause()
	}
}

func (e *Engine) handleResume(now time.Time) {
	if e.state.Running || e.state.Done {
		return
	}
	cur := e.state.Current()
	if cur == nil {
		return
	}
	dur := Duration(*cur)
	e.startedAt = now.Add(-time.Duration(e.state.Progress * float64(dur)))
	e.state.Running = true
	if cur.Media.Type == models.MediaVideo && e.video != nil {
		e.video.Play()
	}
}

func (e *Engine) handleReact(emoji string) {
	cur := e.state.Current()
	if cur == nil {
		return
	}
	if cur.AuthorID == e.viewerID {
		e.logger.Warn("ignoring reaction to own story", zap.String("story_id", cur.ID.String()))
		return
	}
	if !models.IsReactionEmoji(emoji) {
		e.logger.Warn("ignoring unknown reaction emoji", zap.String("emoji", emoji))
		return
	}
	cur.IsViewed = true
	e.effects.React(cur.ID, emoji)
}

func (e *Engine) handleDelete(now time.Time) {
	cur := e.state.Current()
	if cur == nil {
		return
	}
	if cur.AuthorID != e.viewerID {
		e.logger.Warn("ignoring delete of another author's story", zap.String("story_id", cur.ID.String()))
		return
	}
	id := cur.ID
	e.stopVideo()
	e.state = DeleteCurrent(e.state)
	e.effects.Delete(id)
	e.enterStory(now)
}

func (e *Engine) stopVideo() {
	if e.video != nil {
		e.video.Stop()
	}
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		UserIndex:  e.state.UserIndex,
		StoryIndex: e.state.StoryIndex,
		Progress:   e.state.Progress,
		Running:    e.state.Running,
		Done:       e.state.Done,
	}
	if cur := e.state.Current(); cur != nil {
		s.StoryID = cur.ID
		s.Author = e.state.CurrentAuthor().Username
	}
	return s
}
