package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func hubServer(t *testing.T, events []interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for _, e := range events {
			require.NoError(t, conn.WriteJSON(e))
		}
		// Keep the connection open until the client goes away.
		conn.ReadMessage()
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSubscriberReceivesAndDecodesEvents(t *testing.T) {
	storyID := uuid.New()
	viewerID := uuid.New()
	srv := hubServer(t, []interface{}{
		map[string]interface{}{
			"type": EventStoryViewed,
			"payload": ViewEvent{
				StoryID:  storyID,
				ViewerID: viewerID,
				ViewedAt: time.Now().Format(time.RFC3339),
			},
		},
		map[string]interface{}{
			"type":    EventStoryReacted,
			"payload": ReactionEvent{StoryID: storyID, UserID: viewerID, Emoji: "🔥"},
		},
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := NewSubscriber(wsURL(srv), "tok", zap.NewNop())
	go sub.Run(ctx)

	var got []Event
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case e := <-sub.Events():
			got = append(got, e)
		case <-timeout:
			t.Fatalf("timed out with %d events", len(got))
		}
	}

	view, err := DecodeView(got[0])
	require.NoError(t, err)
	assert.Equal(t, storyID, view.StoryID)
	assert.Equal(t, viewerID, view.ViewerID)

	reaction, err := DecodeReaction(got[1])
	require.NoError(t, err)
	assert.Equal(t, "🔥", reaction.Emoji)
}

func TestSubscriberDialFailure(t *testing.T) {
	sub := NewSubscriber("ws://127.0.0.1:1/ws", "tok", zap.NewNop())
	err := sub.Run(context.Background())
	assert.Error(t, err)
}

func TestSubscriberClosesEventsOnCancel(t *testing.T) {
	srv := hubServer(t, nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := NewSubscriber(wsURL(srv), "tok", zap.NewNop())

	done := make(chan struct{})
	go func() {
		sub.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop on cancel")
	}
}
