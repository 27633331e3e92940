package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	EventStoryViewed  = "story.viewed"
	EventStoryReacted = "story.reacted"

	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ViewEvent struct {
	StoryID  uuid.UUID `json:"story_id"`
	ViewerID uuid.UUID `json:"viewer_id"`
	ViewedAt string    `json:"viewed_at"`
}

type ReactionEvent struct {
	StoryID uuid.UUID `json:"story_id"`
	UserID  uuid.UUID `json:"user_id"`
	Emoji   string    `json:"emoji"`
}

// Subscriber holds the client end of the backend's realtime channel. The
// backend pushes view and reaction events for the authenticated user's own
// stories; the author session consumes them to refresh viewer lists live.
type Subscriber struct {
	url    string
	token  string
	logger *zap.Logger
	events chan Event
}

func NewSubscriber(url, token string, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		url:    url,
		token:  token,
		logger: logger,
		events: make(chan Event, 64),
	}
}

func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Run dials the hub and pumps events until ctx is cancelled or the peer
// closes. The events channel is closed on return.
func (s *Subscriber) Run(ctx context.Context) error {
	defer close(s.events)

	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("failed to dial realtime hub: %w", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go s.pingLoop(ctx, conn)

	s.logger.Info("realtime hub connected", zap.String("url", s.url))

	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("realtime read failed: %w", err)
		}

		select {
		case s.events <- event:
		default:
			s.logger.Warn("realtime event dropped, consumer behind", zap.String("type", event.Type))
		}
	}
}

func (s *Subscriber) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// DecodeView decodes a story.viewed payload.
func DecodeView(e Event) (ViewEvent, error) {
	var v ViewEvent
	err := json.Unmarshal(e.Payload, &v)
	return v, err
}

// DecodeReaction decodes a story.reacted payload.
func DecodeReaction(e Event) (ReactionEvent, error) {
	var r ReactionEvent
	err := json.Unmarshal(e.Payload, &r)
	return r, err
}
