package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"stories-client/internal/models"

	"go.uber.org/zap"
)

// Uploader pushes raw media bytes to an external store and returns the public
// URL the story payload will reference.
type Uploader interface {
	Upload(ctx context.Context, media models.Media) (string, error)
}

// CDNUploader posts the raw file to a third-party media CDN. The preset-based
// request is tried first; only if it fails is the presetless variant sent.
// The two are never attempted in parallel.
type CDNUploader struct {
	endpoint string
	preset   string
	http     *http.Client
	logger   *zap.Logger
}

func NewCDNUploader(endpoint, preset string, logger *zap.Logger) *CDNUploader {
	return &CDNUploader{
		endpoint: endpoint,
		preset:   preset,
		http:     &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}
}

func (u *CDNUploader) Upload(ctx context.Context, media models.Media) (string, error) {
	url, err := u.post(ctx, media, u.preset)
	if err == nil {
		return url, nil
	}
	if u.preset == "" {
		return "", err
	}

	u.logger.Warn("preset upload failed, retrying without preset", zap.Error(err))
	url, fallbackErr := u.post(ctx, media, "")
	if fallbackErr != nil {
		return "", fmt.Errorf("upload failed with and without preset: %w", fallbackErr)
	}
	return url, nil
}

func (u *CDNUploader) post(ctx context.Context, media models.Media, preset string) (string, error) {
	file, err := os.Open(media.URI)
	if err != nil {
		return "", fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		if preset != "" {
			if err := mw.WriteField("upload_preset", preset); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		part, err := mw.CreateFormFile("file", filepath.Base(media.URI))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("upload rejected: %s: %s", resp.Status, body)
	}

	var payload struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if payload.SecureURL != "" {
		return payload.SecureURL, nil
	}
	if payload.URL == "" {
		return "", fmt.Errorf("upload response missing url")
	}
	return payload.URL, nil
}
