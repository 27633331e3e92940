package transform

import (
	"math"
	"testing"

	"stories-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinchScaleAlwaysClamped(t *testing.T) {
	c := NewComposer()

	factors := []float64{0.001, 0.2, 0.5, 1, 3, 10, 100, 0.0001, 50}
	for _, f := range factors {
		c.Begin()
		c.Pinch(f)
		c.End()

		got := c.Get().Scale
		assert.GreaterOrEqual(t, got, MinScale, "factor %v", f)
		assert.LessOrEqual(t, got, MaxScale, "factor %v", f)
	}
}

func TestPinchIsRelativeToBaseline(t *testing.T) {
	c := NewComposer()

	c.Begin()
	c.Pinch(2)
	// Cumulative factor, not incremental: 1.5 replaces 2, it does not stack.
	c.Pinch(1.5)
	c.End()

	assert.InDelta(t, 1.5, c.Get().Scale, 1e-9)

	// Next gesture composes against the committed value.
	c.Begin()
	c.Pinch(2)
	c.End()
	assert.InDelta(t, 3.0, c.Get().Scale, 1e-9)
}

func TestRotationConvertsRadiansToDegrees(t *testing.T) {
	c := NewComposer()

	c.Begin()
	c.Rotate(math.Pi / 2)
	c.End()
	assert.InDelta(t, 90, c.Get().Rotation, 1e-9)

	c.Begin()
	c.Rotate(-math.Pi / 4)
	c.End()
	assert.InDelta(t, 45, c.Get().Rotation, 1e-9)
}

func TestPanAccumulatesAcrossGestures(t *testing.T) {
	c := NewComposer()

	c.Begin()
	c.Pan(10, -5)
	c.Pan(20, -10) // cumulative within the gesture
	c.End()

	c.Begin()
	c.Pan(5, 5)
	c.End()

	got := c.Get()
	assert.InDelta(t, 25, got.TranslateX, 1e-9)
	assert.InDelta(t, -5, got.TranslateY, 1e-9)
}

func TestSimultaneousPanPinchRotate(t *testing.T) {
	c := NewComposer()

	c.Begin()
	c.Pan(30, 40)
	c.Pinch(1.2)
	c.Rotate(math.Pi / 6)
	c.End()

	got := c.Get()
	assert.InDelta(t, 30, got.TranslateX, 1e-9)
	assert.InDelta(t, 40, got.TranslateY, 1e-9)
	assert.InDelta(t, 1.2, got.Scale, 1e-9)
	assert.InDelta(t, 30, got.Rotation, 1e-9)
}

func TestInputsIgnoredOutsideGesture(t *testing.T) {
	c := NewComposer()

	c.Pan(100, 100)
	c.Pinch(5)
	c.Rotate(1)

	assert.Equal(t, models.IdentityTransform(), c.Get())
}

func TestSetRebasesActiveGesture(t *testing.T) {
	c := NewComposer()

	c.Begin()
	c.Pinch(2)
	c.Set(models.Transform{Scale: 1})
	c.Pinch(3)
	c.End()

	// Deltas after Set apply to the new baseline, not the pre-Set one.
	assert.InDelta(t, 3, c.Get().Scale, 1e-9)
}

func TestSetClampsScale(t *testing.T) {
	c := NewComposer()
	c.Set(models.Transform{Scale: 100})
	assert.InDelta(t, MaxScale, c.Get().Scale, 1e-9)
}

func TestUpdatesPublishedToChannel(t *testing.T) {
	c := NewComposer()

	c.Begin()
	c.Pan(1, 2)
	c.End()

	var got []models.Transform
	for {
		select {
		case u := <-c.Updates():
			got = append(got, u)
			continue
		default:
		}
		break
	}

	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.InDelta(t, 1, last.TranslateX, 1e-9)
	assert.InDelta(t, 2, last.TranslateY, 1e-9)
}
