package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stories-client/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client talks to the stories backend. Route shapes follow the service API:
//
//	GET    /stories                  story groups for the viewer
//	POST   /stories                  create
//	POST   /stories/:id/view         mark viewed, optional reaction
//	GET    /stories/:id/viewers      author-only viewer list
//	DELETE /stories/:id              author-only delete
//	GET    /healthz                  reachability
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type storiesResponse struct {
	Groups []models.StoryGroup `json:"groups"`
}

// GetStories fetches every active story group visible to the viewer, in
// server order. Nothing is cached client-side; the player refetches per open.
func (c *Client) GetStories(ctx context.Context) ([]models.StoryGroup, error) {
	var resp storiesResponse
	if err := c.do(ctx, http.MethodGet, "/stories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

func (c *Client) CreateStory(ctx context.Context, req models.CreateStoryRequest) (models.Story, error) {
	var story models.Story
	if err := c.do(ctx, http.MethodPost, "/stories", req, &story); err != nil {
		return models.Story{}, err
	}
	return story, nil
}

// ViewStory marks a story viewed for the caller; a non-empty reaction is
// attached in the same call.
func (c *Client) ViewStory(ctx context.Context, storyID uuid.UUID, reaction string) error {
	req := models.ViewStoryRequest{Reaction: reaction}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/stories/%s/view", storyID), req, nil)
}

func (c *Client) GetStoryViewers(ctx context.Context, storyID uuid.UUID) (models.StoryViewersResponse, error) {
	var resp models.StoryViewersResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/stories/%s/viewers", storyID), nil, &resp)
	return resp, err
}

func (c *Client) DeleteStory(ctx context.Context, storyID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/stories/%s", storyID), nil, nil)
}

// Health checks backend reachability for the local debug surface.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", method, path, apiError(resp))
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// apiError extracts the backend's {"error": "..."} message when present.
func apiError(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return fmt.Sprintf("%s (%s)", payload.Error, resp.Status)
	}
	return resp.Status
}
