package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

// Transform is a 2D affine transform (translate, then uniform scale, then
// rotate) applied about an element's own center. Rotation is in degrees.
// Coordinates are in the canvas space recorded at composition time.
type Transform struct {
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	Scale      float64 `json:"scale"`
	Rotation   float64 `json:"rotation"`
}

func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

type TextStyle struct {
	Color           string  `json:"color"`
	BackgroundColor string  `json:"background_color"`
	Shadow          bool    `json:"shadow"`
	FontSize        float64 `json:"font_size"`
	FontWeight      string  `json:"font_weight"`
	FontFamily      string  `json:"font_family,omitempty"`
}

type TextOverlay struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Transform Transform `json:"transform"`
	Style     TextStyle `json:"style"`
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Media is one picked or uploaded media item. DurationSec is only meaningful
// for video and is a rounded whole number of seconds.
type Media struct {
	URI         string    `json:"uri"`
	Type        MediaType `json:"type"`
	DurationSec int       `json:"duration_sec,omitempty"`
}

// Canvas records the exact pixel size of the editing surface at composition
// time. Every transform on the story is defined in this coordinate space.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Story struct {
	ID             uuid.UUID     `json:"id"`
	AuthorID       uuid.UUID     `json:"author_id"`
	CreatedAt      time.Time     `json:"created_at"`
	Canvas         Canvas        `json:"canvas"`
	Media          Media         `json:"media"`
	MediaTransform Transform     `json:"media_transform"`
	Texts          []TextOverlay `json:"texts"`

	// IsViewed is the viewer-local flag; it flips false->true at most once
	// per player session, optimistically on display.
	IsViewed bool `json:"is_viewed"`
}

// StoryGroup is one author's ordered run of active stories, in the order the
// backend returned them. Refetched on every player open, never cached.
type StoryGroup struct {
	Author  User    `json:"author"`
	Stories []Story `json:"stories"`
}

type StoryViewer struct {
	ID       uuid.UUID `json:"id"`
	User     User      `json:"user"`
	ViewedAt time.Time `json:"viewed_at"`
	Reaction string    `json:"reaction,omitempty"`
}

type StoryViewersResponse struct {
	Viewers         []StoryViewer  `json:"viewers"`
	ReactionSummary map[string]int `json:"reaction_summary"`
}

type CreateStoryRequest struct {
	Canvas         Canvas        `json:"canvas"`
	Media          Media         `json:"media"`
	MediaTransform Transform     `json:"media_transform"`
	Texts          []TextOverlay `json:"texts"`
}

type ViewStoryRequest struct {
	Reaction string `json:"reaction,omitempty"`
}

// ReactionEmojis is the fixed set a viewer may attach to a story.
var ReactionEmojis = []string{"👍", "❤️", "😂", "😮", "😢", "🔥"}

func IsReactionEmoji(emoji string) bool {
	for _, e := range ReactionEmojis {
		if e == emoji {
			return true
		}
	}
	return false
}
