package transcription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-risk-go/internal/config"
)

func TestNewRequiresURL(t *testing.T) {
	_, err := New(config.Config{})
	assert.Error(t, err)
}

func TestFetchMockMode(t *testing.T) {
	t.Setenv("USE_MOCK_TRANSCRIBE", "true")
	c := &Client{}
	res, err := c.Fetch(context.Background(), "https://example.com/call.wav", "whisper-stt")
	require.NoError(t, err)
	assert.Equal(t, "en", res.LanguageCode)
	assert.NotEmpty(t, res.Fragments)
}

func TestFetchImmediateResult(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sarvam-stt", req["backend"])
		json.NewEncoder(w).Encode(map[string]any{
			"Code": 200,
			"Data": map[string]any{
				"Status":    "Success",
				"ResultURL": srv.URL + "/result",
			},
		})
	})
	mux.HandleFunc("/result", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{
			LanguageCode:       "hi",
			LanguageConfidence: 0.9,
		})
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.TranscribeURL = srv.URL
	c, err := New(cfg)
	require.NoError(t, err)

	res, err := c.Fetch(context.Background(), "https://example.com/call.wav", "sarvam-stt")
	require.NoError(t, err)
	assert.Equal(t, "hi", res.LanguageCode)
}

func TestFetchPublishFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"Code": 422, "Reason": "unsupported media"})
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.TranscribeURL = srv.URL
	c, err := New(cfg)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "https://example.com/call.wav", "whisper-stt")
	assert.Error(t, err)
}
