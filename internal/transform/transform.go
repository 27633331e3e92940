package transform

import (
	"math"
	"sync"

	"stories-client/internal/models"
)

const (
	MinScale = 0.3
	MaxScale = 8.0
)

func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// Composer turns raw pan/pinch/rotate gesture streams into a single
// models.Transform. Gesture recognizers run on their own threads, so every
// mutation here is mutex-guarded and the resulting value is published on a
// channel; the owning event loop consumes that channel and is the only place
// shared state gets touched.
//
// A gesture session snapshots the current value as a baseline on Begin, and
// every pan/pinch/rotate input carries the cumulative delta since the press
// started, applied against that baseline. Per-event deltas would drift with
// event rate; cumulative ones cannot.
type Composer struct {
	mu       sync.Mutex
	current  models.Transform
	baseline models.Transform
	active   bool
	updates  chan models.Transform
}

func NewComposer() *Composer {
	return &Composer{
		current:  models.IdentityTransform(),
		baseline: models.IdentityTransform(),
		updates:  make(chan models.Transform, 64),
	}
}

// Updates delivers the transform after every change. Consume it from the
// single goroutine that owns the element's state.
func (c *Composer) Updates() <-chan models.Transform {
	return c.updates
}

// Begin starts a gesture session, snapshotting the current value as the
// baseline for all deltas until End.
func (c *Composer) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseline = c.current
	c.active = true
}

// Pan applies the cumulative screen-space translation since Begin.
func (c *Composer) Pan(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.current.TranslateX = c.baseline.TranslateX + dx
	c.current.TranslateY = c.baseline.TranslateY + dy
	c.publish()
}

// Pinch applies the cumulative scale factor since Begin, clamped to
// [MinScale, MaxScale].
func (c *Composer) Pinch(factor float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.current.Scale = ClampScale(c.baseline.Scale * factor)
	c.publish()
}

// Rotate applies the cumulative rotation in radians since Begin.
func (c *Composer) Rotate(rad float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.current.Rotation = c.baseline.Rotation + rad*180/math.Pi
	c.publish()
}

// End closes the gesture session and publishes the final value.
func (c *Composer) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.active = false
	c.publish()
}

// Set jumps to an explicit transform (programmatic reset, restore). If a
// gesture is mid-flight its baseline is rebased so later deltas apply to the
// new value.
func (c *Composer) Set(t models.Transform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Scale = ClampScale(t.Scale)
	c.current = t
	if c.active {
		c.baseline = t
	}
	c.publish()
}

// Get returns the current value synchronously, e.g. to snapshot at publish.
func (c *Composer) Get() models.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Composer) publish() {
	select {
	case c.updates <- c.current:
	default:
		// Consumer is behind; drop the frame. Get always has the latest value.
	}
}
