package player

import "stories-client/internal/models"

// Layout places an authored composition on a viewing device. The composition
// is rendered at its recorded canvas size, uniformly scaled to fit the
// viewport, and centered; the axis with slack is letterboxed. This reproduces
// transforms recorded on any authoring device proportionally on any viewer.
type Layout struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	// Letterboxed axes: exactly one is true unless the aspect ratios match.
	LetterboxX bool
	LetterboxY bool
}

func ComputeLayout(canvas models.Canvas, viewportWidth, viewportHeight float64) Layout {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return Layout{Scale: 1}
	}
	sx := viewportWidth / canvas.Width
	sy := viewportHeight / canvas.Height
	scale := sx
	if sy < sx {
		scale = sy
	}
	return Layout{
		Scale:      scale,
		OffsetX:    (viewportWidth - canvas.Width*scale) / 2,
		OffsetY:    (viewportHeight - canvas.Height*scale) / 2,
		LetterboxX: sx > scale,
		LetterboxY: sy > scale,
	}
}

// OverlayPosition returns the canvas-space center of a text overlay: the
// canvas center offset by the overlay's own translation.
func OverlayPosition(canvas models.Canvas, t models.Transform) (x, y float64) {
	return canvas.Width/2 + t.TranslateX, canvas.Height/2 + t.TranslateY
}
