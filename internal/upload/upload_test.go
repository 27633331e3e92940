package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"stories-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func mediaFile(t *testing.T) models.Media {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pic.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o644))
	return models.Media{URI: path, Type: models.MediaImage}
}

func TestCDNUploadWithPreset(t *testing.T) {
	var presets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		presets = append(presets, r.FormValue("upload_preset"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "pic.jpg", header.Filename)

		w.Write([]byte(`{"secure_url":"https://cdn.example.com/pic.jpg"}`))
	}))
	defer srv.Close()

	u := NewCDNUploader(srv.URL, "stories-preset", zap.NewNop())
	url, err := u.Upload(context.Background(), mediaFile(t))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/pic.jpg", url)
	assert.Equal(t, []string{"stories-preset"}, presets)
}

// The presetless variant is attempted only after the preset request failed,
// never in parallel and never first.
func TestCDNUploadFallsBackWithoutPreset(t *testing.T) {
	var presets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		preset := r.FormValue("upload_preset")
		presets = append(presets, preset)

		if preset != "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`preset not allowed`))
			return
		}
		w.Write([]byte(`{"url":"http://cdn.example.com/pic.jpg"}`))
	}))
	defer srv.Close()

	u := NewCDNUploader(srv.URL, "stories-preset", zap.NewNop())
	url, err := u.Upload(context.Background(), mediaFile(t))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/pic.jpg", url)
	assert.Equal(t, []string{"stories-preset", ""}, presets)
}

func TestCDNUploadBothVariantsFail(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	u := NewCDNUploader(srv.URL, "stories-preset", zap.NewNop())
	_, err := u.Upload(context.Background(), mediaFile(t))
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestCDNUploadMissingFile(t *testing.T) {
	u := NewCDNUploader("http://unused.invalid", "p", zap.NewNop())
	_, err := u.Upload(context.Background(), models.Media{URI: "/does/not/exist.jpg"})
	require.Error(t, err)
}

func TestCDNUploadNoPresetConfigured(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	u := NewCDNUploader(srv.URL, "", zap.NewNop())
	_, err := u.Upload(context.Background(), mediaFile(t))
	require.Error(t, err)
	assert.Equal(t, 1, calls) // nothing to fall back to
}
