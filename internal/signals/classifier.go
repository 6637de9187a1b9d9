package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"voice-risk-go/internal/config"
	"voice-risk-go/internal/logger"
)

// Task names for the single classification capability. Every interpretive
// dimension goes through the same interface, so a deterministic stub, a
// rule-based local implementation, or a remote service are interchangeable.
const (
	TaskIntent        = "intent"
	TaskSentiment     = "sentiment"
	TaskContradiction = "contradiction"
	TaskEntities      = "entities"
)

// ClassifyRequest carries one task over customer utterance texts. Labels is
// the caller-supplied closed enum the collaborator must answer from.
type ClassifyRequest struct {
	Task       string   `json:"task"`
	Utterances []string `json:"utterances"`
	Labels     []string `json:"labels,omitempty"`
}

// ClassifyResult is the collaborator's answer. Fields beyond Label and
// Confidence are task-specific and may be zero-valued.
type ClassifyResult struct {
	Label          string   `json:"label"`
	Confidence     float64  `json:"confidence"`
	Conditionality string   `json:"conditionality,omitempty"`
	Flag           bool     `json:"flag,omitempty"`
	Commitment     *string  `json:"payment_commitment,omitempty"`
	Amount         *float64 `json:"amount_mentioned,omitempty"`
}

// Classifier is the narrow contract for the interpretive classification
// collaborator.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (ClassifyResult, error)
}

// GatewayClassifier calls a remote classification gateway over HTTP with
// bounded exponential retry. Responses are parsed leniently (JSON object
// extracted from the body) but validated strictly by the orchestrator.
type GatewayClassifier struct {
	URL     string
	APIKey  string
	Model   string
	Client  *http.Client
	MaxWait time.Duration
}

// NewGatewayClassifier builds a classifier from configuration, or returns
// nil when no gateway is configured so every dimension degrades to its
// neutral default.
func NewGatewayClassifier(cfg config.Config) *GatewayClassifier {
	if cfg.ClassifierGatewayURL == "" {
		return nil
	}
	return &GatewayClassifier{
		URL:     cfg.ClassifierGatewayURL,
		APIKey:  cfg.ClassifierAPIKey,
		Model:   cfg.ClassifierModel,
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		MaxWait: cfg.RetryMaxElapsed,
	}
}

func (g *GatewayClassifier) Classify(ctx context.Context, req ClassifyRequest) (ClassifyResult, error) {
	log := logger.New().WithField("component", "signals.gateway").WithField("task", req.Task)

	payload := map[string]any{
		"model":       g.Model,
		"task":        req.Task,
		"labels":      req.Labels,
		"utterances":  req.Utterances,
		"temperature": 0.0,
	}
	data, _ := json.Marshal(payload)

	var out ClassifyResult
	var lastErr error
	op := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if g.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+g.APIKey)
		}
		resp, err := g.Client.Do(httpReq)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("classifier server error: %s", string(body))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("classifier rejected request: %s", string(body))
			return backoff.Permanent(lastErr)
		}
		raw, err := extractJSONObject(body)
		if err != nil {
			lastErr = err
			return lastErr
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			lastErr = fmt.Errorf("classifier decode error: %v body=%s", err, string(body))
			return lastErr
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = g.MaxWait
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		log.WithError(lastErr).Warn("classification failed after retries")
		if lastErr != nil {
			return ClassifyResult{}, lastErr
		}
		return ClassifyResult{}, err
	}
	return out, nil
}

// extractJSONObject pulls the first balanced-looking JSON object out of a
// response body, tolerating gateways that wrap the object in prose.
func extractJSONObject(body []byte) (json.RawMessage, error) {
	s := string(body)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in classifier response: %s", s)
	}
	return json.RawMessage(s[start : end+1]), nil
}
