package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"voice-risk-go/internal/config"
	"voice-risk-go/internal/types"
)

// GatewayGenerator calls the optional text-generation collaborator. It
// sends only structured signal fields, no transcript text of any kind,
// and returns the collaborator's candidate sentence for validation.
type GatewayGenerator struct {
	url     string
	apiKey  string
	client  *http.Client
	maxWait time.Duration
}

// NewGatewayGenerator returns nil when no generator is configured, which
// makes Generate use the template path unconditionally.
func NewGatewayGenerator(cfg config.Config) *GatewayGenerator {
	if cfg.GeneratorGatewayURL == "" {
		return nil
	}
	return &GatewayGenerator{
		url:     cfg.GeneratorGatewayURL,
		apiKey:  cfg.ClassifierAPIKey,
		client:  &http.Client{Timeout: cfg.HTTPTimeout},
		maxWait: cfg.RetryMaxElapsed,
	}
}

func (g *GatewayGenerator) Generate(ctx context.Context, bundle types.SignalBundle, assessment types.RiskAssessment) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"intent":                  bundle.Intent.Label,
		"conditionality":          bundle.Intent.Conditionality,
		"obligation_strength":     bundle.ObligationStrength,
		"contradictions_detected": bundle.ContradictionsDetected,
		"fraud_likelihood":        assessment.FraudLikelihood,
		"key_risk_factors":        assessment.KeyRiskFactors,
	})

	var sentence string
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if g.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.apiKey)
		}
		resp, err := g.client.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("generator server error: %s", string(body))
			return lastErr
		}
		var parsed struct {
			Summary string `json:"summary"`
		}
		if err := json.Unmarshal(body, &parsed); err == nil && parsed.Summary != "" {
			sentence = parsed.Summary
			return nil
		}
		// Some gateways return the sentence as plain text.
		if s := strings.TrimSpace(string(body)); s != "" && !strings.HasPrefix(s, "{") {
			sentence = s
			return nil
		}
		lastErr = fmt.Errorf("unexpected generator response: %s", string(body))
		return lastErr
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = g.maxWait
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return "", lastErr
		}
		return "", err
	}
	if sentence == "" {
		return "", errors.New("generator returned empty summary")
	}
	return sentence, nil
}
