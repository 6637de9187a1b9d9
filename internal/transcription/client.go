// Package transcription is the client for the external transcription and
// diarization collaborator. It is not part of the deterministic core: it
// publishes an audio reference, polls until the job completes, and
// downloads the raw speaker-tagged fragments the reconciler consumes.
package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"voice-risk-go/internal/config"
	"voice-risk-go/internal/logger"
	"voice-risk-go/internal/types"
)

// Result is the collaborator's completed output for one call: language-
// tagged, timestamped fragments plus the coarse audio quality indicators.
type Result struct {
	LanguageCode       string              `json:"language_code"`
	LanguageConfidence float64             `json:"language_confidence"`
	NoiseLevel         string              `json:"noise_level"`
	CallStability      string              `json:"call_stability"`
	SpeechNaturalness  string              `json:"speech_naturalness"`
	Fragments          []types.RawFragment `json:"fragments"`
}

type publishResponse struct {
	Code   int    `json:"Code"`
	Status string `json:"Status"`
	Data   struct {
		MediaId   string `json:"MediaId"`
		Status    string `json:"Status"`
		ResultURL string `json:"ResultURL"`
	} `json:"Data"`
	Reason string `json:"Reason,omitempty"`
}

type statusResponse struct {
	Code int `json:"Code"`
	Data struct {
		Status    string `json:"Status"`
		ResultURL string `json:"ResultURL"`
	} `json:"Data"`
	Reason string `json:"Reason,omitempty"`
}

// Client talks to one transcription host.
type Client struct {
	host       string
	httpClient *http.Client
	maxWait    time.Duration
}

func New(cfg config.Config) (*Client, error) {
	if cfg.TranscribeURL == "" {
		return nil, errors.New("TRANSCRIBE_URL not set")
	}
	return &Client{
		host:       strings.TrimRight(cfg.TranscribeURL, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		maxWait:    cfg.RetryMaxElapsed,
	}, nil
}

// Fetch runs the full publish -> poll -> download flow for one recording.
// The backend parameter is the provider router's selection. Mock mode via
// USE_MOCK_TRANSCRIBE=true returns a fixed two-party conversation for
// offline operation.
func (c *Client) Fetch(ctx context.Context, audioURL, backend string) (Result, error) {
	if os.Getenv("USE_MOCK_TRANSCRIBE") == "true" {
		return mockResult(), nil
	}
	log := logger.New().WithField("component", "transcription").WithField("backend", backend)

	mediaID, resultURL, err := c.publish(ctx, audioURL, backend)
	if err != nil {
		return Result{}, err
	}
	if resultURL == "" {
		resultURL, err = c.poll(ctx, mediaID)
		if err != nil {
			return Result{}, err
		}
	}
	log.WithField("result_url", resultURL).Info("downloading diarized fragments")
	return c.download(ctx, resultURL)
}

func (c *Client) publish(ctx context.Context, audioURL, backend string) (string, string, error) {
	body, _ := json.Marshal(map[string]string{
		"audio_url": audioURL,
		"backend":   backend,
	})
	var resp publishResponse
	if err := c.doJSON(ctx, http.MethodPost, c.host+"/transcribe", string(body), &resp); err != nil {
		return "", "", err
	}
	if resp.Code != 200 {
		return "", "", fmt.Errorf("transcribe publish error: code=%d reason=%s", resp.Code, resp.Reason)
	}
	if resp.Data.ResultURL != "" && strings.EqualFold(resp.Data.Status, "success") {
		return "", resp.Data.ResultURL, nil
	}
	return resp.Data.MediaId, "", nil
}

func (c *Client) poll(ctx context.Context, mediaID string) (string, error) {
	base := c.host + "/getstatus"
	for i := 0; i < 40; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(1500 * time.Millisecond):
		}
		u, _ := url.Parse(base)
		q := u.Query()
		q.Set("mediaId", mediaID)
		u.RawQuery = q.Encode()

		var s statusResponse
		if err := c.doJSON(ctx, http.MethodGet, u.String(), "", &s); err != nil {
			continue
		}
		switch s.Data.Status {
		case "Success":
			return s.Data.ResultURL, nil
		case "Queued", "Processing":
			continue
		case "Failed":
			return "", fmt.Errorf("transcription failed: %s", s.Reason)
		}
	}
	return "", errors.New("transcription timeout")
}

func (c *Client) download(ctx context.Context, resultURL string) (Result, error) {
	var out Result
	if err := c.doJSON(ctx, http.MethodGet, resultURL, "", &out); err != nil {
		return Result{}, fmt.Errorf("download fragments: %w", err)
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, body string, target any) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxWait
	var lastErr error
	op := func() error {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", string(data))
			return lastErr
		}
		if len(data) == 0 {
			lastErr = errors.New("empty response body")
			return lastErr
		}
		if err := json.Unmarshal(data, target); err != nil {
			lastErr = fmt.Errorf("json decode error: %v body=%s", err, string(data))
			return lastErr
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}

func mockResult() Result {
	return Result{
		LanguageCode:       "en",
		LanguageConfidence: 0.95,
		NoiseLevel:         types.NoiseLow,
		CallStability:      types.StabilityHigh,
		SpeechNaturalness:  types.NaturalnessNormal,
		Fragments: []types.RawFragment{
			{SpeakerTag: "SPEAKER_00", Text: "Hello, this is Priya calling from the bank regarding your loan account.", Start: 0, End: 4.2},
			{SpeakerTag: "SPEAKER_01", Text: "Yes, I know the payment is late.", Start: 4.8, End: 6.9},
			{SpeakerTag: "SPEAKER_01", Text: "I will pay the full amount next week once my salary arrives.", Start: 7.1, End: 10.4},
		},
	}
}
