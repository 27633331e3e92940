package player

import (
	"testing"

	"stories-client/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeLayoutLetterboxesHeight(t *testing.T) {
	canvas := models.Canvas{Width: 400, Height: 800}

	l := ComputeLayout(canvas, 375, 812)

	assert.InDelta(t, 0.9375, l.Scale, 1e-9)
	assert.InDelta(t, 0, l.OffsetX, 1e-9)
	assert.InDelta(t, 31, l.OffsetY, 1e-9) // (812 - 800*0.9375) / 2
	assert.False(t, l.LetterboxX)
	assert.True(t, l.LetterboxY)
}

func TestComputeLayoutLetterboxesWidth(t *testing.T) {
	canvas := models.Canvas{Width: 300, Height: 600}

	l := ComputeLayout(canvas, 800, 1200)

	assert.InDelta(t, 2, l.Scale, 1e-9)
	assert.InDelta(t, 100, l.OffsetX, 1e-9)
	assert.InDelta(t, 0, l.OffsetY, 1e-9)
	assert.True(t, l.LetterboxX)
	assert.False(t, l.LetterboxY)
}

func TestComputeLayoutSameAspectNoLetterbox(t *testing.T) {
	l := ComputeLayout(models.Canvas{Width: 390, Height: 844}, 780, 1688)

	assert.InDelta(t, 2, l.Scale, 1e-9)
	assert.False(t, l.LetterboxX)
	assert.False(t, l.LetterboxY)
}

func TestComputeLayoutDegenerateCanvas(t *testing.T) {
	l := ComputeLayout(models.Canvas{}, 375, 812)
	assert.Equal(t, 1.0, l.Scale)
}

func TestOverlayPositionOffsetsFromCanvasCenter(t *testing.T) {
	canvas := models.Canvas{Width: 400, Height: 800}
	tf := models.Transform{TranslateX: 10, TranslateY: -5, Scale: 1.2, Rotation: 15}

	x, y := OverlayPosition(canvas, tf)
	assert.InDelta(t, 210, x, 1e-9)
	assert.InDelta(t, 395, y, 1e-9)
}
