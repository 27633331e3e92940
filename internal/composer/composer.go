package composer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"stories-client/internal/metrics"
	"stories-client/internal/models"
	"stories-client/internal/transform"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxVideoDuration is enforced at pick time; longer clips are rejected
	// before anything is uploaded.
	MaxVideoDuration = 30 * time.Second

	MinFontSize      = 10
	MaxFontSize      = 120
	FontSizeStep     = 2
	DefaultFontSize  = 28
	TransparentColor = "transparent"
)

// Fixed palettes for the edit sheet.
var (
	TextColors = []string{"#FFFFFF", "#000000", "#FF3B30", "#FF9500", "#FFCC00", "#34C759", "#007AFF", "#AF52DE"}

	BackgroundColors = append([]string{TransparentColor}, TextColors...)
)

type StateName string

const (
	StateEmpty   StateName = "empty"
	StateEditing StateName = "editing"
)

var (
	ErrNoMedia          = errors.New("no media picked")
	ErrVideoTooLong     = errors.New("video longer than 30 seconds")
	ErrPermissionDenied = errors.New("media permission denied")
	ErrNoSelection      = errors.New("no text overlay selected")
	ErrNoCanvas         = errors.New("canvas size not measured")
	ErrBadColor         = errors.New("color not in palette")
)

// MediaPicker is the device media surface behind the composer's Empty-state
// actions: gallery picks and camera capture. Implementations return
// ErrPermissionDenied when the user has refused the OS photo or camera
// permission, and ErrNoMedia when they back out without choosing anything.
type MediaPicker interface {
	PickImage(ctx context.Context) (uri string, err error)
	PickVideo(ctx context.Context) (uri string, duration time.Duration, err error)
	Capture(ctx context.Context, mediaType models.MediaType) (uri string, duration time.Duration, err error)
}

// Uploader pushes the raw media file to the external CDN and returns its
// public URL.
type Uploader interface {
	Upload(ctx context.Context, media models.Media) (string, error)
}

// Publisher is the backend create-story call.
type Publisher interface {
	CreateStory(ctx context.Context, req models.CreateStoryRequest) (models.Story, error)
}

// Composer assembles one story: a single media item with its transform and
// any number of text overlays, each with an independent transform, on a
// measured canvas. Not safe for concurrent use; it belongs to the editing
// screen's event loop, with gesture input arriving through the per-element
// transform composers.
type Composer struct {
	picker    MediaPicker
	uploader  Uploader
	publisher Publisher
	logger    *zap.Logger

	state    StateName
	canvas   models.Canvas
	media    *models.Media
	mediaTf  *transform.Composer
	overlays []*overlay
	selected uuid.UUID
}

type overlay struct {
	id    uuid.UUID
	text  string
	style models.TextStyle
	tf    *transform.Composer
}

func New(picker MediaPicker, uploader Uploader, publisher Publisher, logger *zap.Logger) *Composer {
	return &Composer{
		picker:    picker,
		uploader:  uploader,
		publisher: publisher,
		logger:    logger,
		state:     StateEmpty,
	}
}

func (c *Composer) State() StateName { return c.state }

// SetCanvas records the measured pixel size of the editing surface. All
// transforms are defined in this coordinate space and the player reproduces
// the composition from it.
func (c *Composer) SetCanvas(width, height float64) {
	c.canvas = models.Canvas{Width: width, Height: height}
}

// PickImage asks the picker for a gallery image and moves to editing. A
// picker error (permission denial, backing out) leaves the composition
// exactly as it was. Any previous media transform is reset on a successful
// pick; overlays survive a media swap.
func (c *Composer) PickImage(ctx context.Context) error {
	uri, err := c.picker.PickImage(ctx)
	if err != nil {
		return err
	}
	return c.attach(uri, models.MediaImage, 0)
}

// PickVideo asks the picker for a gallery video, rejecting clips over
// MaxVideoDuration. The stored duration is a rounded whole number of seconds
// (backend constraint).
func (c *Composer) PickVideo(ctx context.Context) error {
	uri, duration, err := c.picker.PickVideo(ctx)
	if err != nil {
		return err
	}
	return c.attach(uri, models.MediaVideo, duration)
}

// Capture opens the camera for a fresh photo or clip. The video length rule
// applies to captures and gallery picks alike.
func (c *Composer) Capture(ctx context.Context, mediaType models.MediaType) error {
	uri, duration, err := c.picker.Capture(ctx, mediaType)
	if err != nil {
		return err
	}
	return c.attach(uri, mediaType, duration)
}

func (c *Composer) attach(uri string, mediaType models.MediaType, duration time.Duration) error {
	if uri == "" {
		return ErrNoMedia
	}
	m := models.Media{URI: uri, Type: mediaType}
	if mediaType == models.MediaVideo {
		if duration > MaxVideoDuration {
			return ErrVideoTooLong
		}
		m.DurationSec = RoundDurationSec(duration)
	}
	c.setMedia(m)
	return nil
}

// RoundDurationSec converts a raw clip duration to the rounded integer
// seconds the backend stores.
func RoundDurationSec(d time.Duration) int {
	return int(math.Round(d.Seconds()))
}

func (c *Composer) setMedia(m models.Media) {
	c.media = &m
	c.mediaTf = transform.NewComposer()
	c.state = StateEditing
}

// MediaTransform exposes the media's gesture composer, nil while Empty.
func (c *Composer) MediaTransform() *transform.Composer { return c.mediaTf }

// AddText creates a new overlay with the default style, centered (identity
// transform), and selects it.
func (c *Composer) AddText() (uuid.UUID, error) {
	if c.state != StateEditing {
		return uuid.Nil, ErrNoMedia
	}
	o := &overlay{
		id: uuid.New(),
		style: models.TextStyle{
			Color:           TextColors[0],
			BackgroundColor: TransparentColor,
			FontSize:        DefaultFontSize,
			FontWeight:      "normal",
		},
		tf: transform.NewComposer(),
	}
	c.overlays = append(c.overlays, o)
	c.selected = o.id
	return o.id, nil
}

func (c *Composer) SelectText(id uuid.UUID) error {
	if c.find(id) == nil {
		return fmt.Errorf("overlay %s: not found", id)
	}
	c.selected = id
	return nil
}

func (c *Composer) Deselect() { c.selected = uuid.Nil }

func (c *Composer) Selected() uuid.UUID { return c.selected }

// TextTransform exposes an overlay's gesture composer.
func (c *Composer) TextTransform(id uuid.UUID) *transform.Composer {
	if o := c.find(id); o != nil {
		return o.tf
	}
	return nil
}

func (c *Composer) DeleteText(id uuid.UUID) error {
	for i, o := range c.overlays {
		if o.id == id {
			c.overlays = append(c.overlays[:i], c.overlays[i+1:]...)
			if c.selected == id {
				c.selected = uuid.Nil
			}
			return nil
		}
	}
	return fmt.Errorf("overlay %s: not found", id)
}

// Edit-sheet operations. Each applies immediately to the selected overlay.

func (c *Composer) SetText(text string) error {
	o, err := c.selection()
	if err != nil {
		return err
	}
	o.text = text
	return nil
}

// StepFontSize moves the selected overlay's font size by steps of ±2 points,
// clamped to [10, 120].
func (c *Composer) StepFontSize(direction int) error {
	o, err := c.selection()
	if err != nil {
		return err
	}
	size := o.style.FontSize
	if direction > 0 {
		size += FontSizeStep
	} else if direction < 0 {
		size -= FontSizeStep
	}
	if size < MinFontSize {
		size = MinFontSize
	}
	if size > MaxFontSize {
		size = MaxFontSize
	}
	o.style.FontSize = size
	return nil
}

func (c *Composer) ToggleBold() error {
	o, err := c.selection()
	if err != nil {
		return err
	}
	if o.style.FontWeight == "bold" {
		o.style.FontWeight = "normal"
	} else {
		o.style.FontWeight = "bold"
	}
	return nil
}

func (c *Composer) SetColor(color string) error {
	o, err := c.selection()
	if err != nil {
		return err
	}
	if !contains(TextColors, color) {
		return ErrBadColor
	}
	o.style.Color = color
	return nil
}

func (c *Composer) SetBackground(color string) error {
	o, err := c.selection()
	if err != nil {
		return err
	}
	if !contains(BackgroundColors, color) {
		return ErrBadColor
	}
	o.style.BackgroundColor = color
	return nil
}

func (c *Composer) ToggleShadow() error {
	o, err := c.selection()
	if err != nil {
		return err
	}
	o.style.Shadow = !o.style.Shadow
	return nil
}

// Reset discards the whole composition and returns to Empty.
func (c *Composer) Reset() {
	c.media = nil
	c.mediaTf = nil
	c.overlays = nil
	c.selected = uuid.Nil
	c.state = StateEmpty
}

// Payload snapshots the current composition as the create-story request.
func (c *Composer) Payload() (models.CreateStoryRequest, error) {
	if c.state != StateEditing || c.media == nil {
		return models.CreateStoryRequest{}, ErrNoMedia
	}
	if c.canvas.Width <= 0 || c.canvas.Height <= 0 {
		return models.CreateStoryRequest{}, ErrNoCanvas
	}
	texts := make([]models.TextOverlay, 0, len(c.overlays))
	for _, o := range c.overlays {
		texts = append(texts, models.TextOverlay{
			ID:        o.id,
			Text:      o.text,
			Transform: o.tf.Get(),
			Style:     o.style,
		})
	}
	return models.CreateStoryRequest{
		Canvas:         c.canvas,
		Media:          *c.media,
		MediaTransform: c.mediaTf.Get(),
		Texts:          texts,
	}, nil
}

// Publish uploads the media and submits the story. Either step failing leaves
// the whole composition intact in Editing so the user can retry without
// redoing edits; nothing reaches the backend unless the upload succeeded.
// On success the composer resets to Empty and the created story is returned.
func (c *Composer) Publish(ctx context.Context) (models.Story, error) {
	req, err := c.Payload()
	if err != nil {
		return models.Story{}, err
	}

	url, err := c.uploader.Upload(ctx, req.Media)
	if err != nil {
		metrics.UploadFailuresTotal.Inc()
		c.logger.Error("media upload failed", zap.Error(err))
		return models.Story{}, fmt.Errorf("upload media: %w", err)
	}
	req.Media.URI = url

	story, err := c.publisher.CreateStory(ctx, req)
	if err != nil {
		c.logger.Error("create story failed", zap.Error(err))
		return models.Story{}, fmt.Errorf("create story: %w", err)
	}

	metrics.StoriesPublishedTotal.Inc()
	c.logger.Info("story published",
		zap.String("story_id", story.ID.String()),
		zap.Int("texts", len(req.Texts)),
		zap.String("media_type", string(req.Media.Type)))

	c.Reset()
	return story, nil
}

func (c *Composer) selection() (*overlay, error) {
	if c.selected == uuid.Nil {
		return nil, ErrNoSelection
	}
	o := c.find(c.selected)
	if o == nil {
		return nil, ErrNoSelection
	}
	return o, nil
}

func (c *Composer) find(id uuid.UUID) *overlay {
	for _, o := range c.overlays {
		if o.id == id {
			return o
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
