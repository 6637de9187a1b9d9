package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Weights controls how much each signal dimension contributes to the final
// risk score. Values must sum to 1.0 and no single weight may exceed
// MaxDimensionWeight, so no single maxed dimension can push the score past
// the high threshold on its own.
type Weights struct {
	Sentiment      float64
	Intent         float64
	Conditionality float64
	Obligation     float64
	Contradictions float64
	AudioTrust     float64
}

// MaxDimensionWeight caps any single dimension's contribution at 20 points.
const MaxDimensionWeight = 0.20

// Config holds all tunables for one service instance. Loaded once at
// startup; a Config that fails Validate is a fatal startup error, never a
// per-call condition.
type Config struct {
	Weights Weights

	// Risk score thresholds for the fraud likelihood buckets.
	FraudThresholdHigh   float64
	FraudThresholdMedium float64

	// Sub-score threshold above which a dimension is named a key risk factor.
	RiskFactorThreshold float64

	// Diarization reconciliation thresholds.
	MergeGapSec        float64
	MinUtteranceDurSec float64

	// Language detection confidence below which the default transcription
	// backend is selected.
	DetectionConfidenceThreshold float64

	// External collaborator endpoints. Empty values disable the collaborator
	// and its phase degrades to the documented fallback.
	ClassifierGatewayURL string
	ClassifierAPIKey     string
	ClassifierModel      string
	GeneratorGatewayURL  string
	TranscribeURL        string

	HTTPTimeout     time.Duration
	RetryMaxElapsed time.Duration
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Weights: Weights{
			Sentiment:      0.20,
			Intent:         0.20,
			Conditionality: 0.15,
			Obligation:     0.15,
			Contradictions: 0.15,
			AudioTrust:     0.15,
		},
		FraudThresholdHigh:           65.0,
		FraudThresholdMedium:         35.0,
		RiskFactorThreshold:          50.0,
		MergeGapSec:                  0.3,
		MinUtteranceDurSec:           0.1,
		DetectionConfidenceThreshold: 0.60,
		HTTPTimeout:                  12 * time.Second,
		RetryMaxElapsed:              20 * time.Second,
	}
}

// FromEnv builds a Config from environment variables on top of the defaults.
func FromEnv() Config {
	cfg := Default()
	cfg.Weights.Sentiment = envFloat("WEIGHT_SENTIMENT", cfg.Weights.Sentiment)
	cfg.Weights.Intent = envFloat("WEIGHT_INTENT", cfg.Weights.Intent)
	cfg.Weights.Conditionality = envFloat("WEIGHT_CONDITIONALITY", cfg.Weights.Conditionality)
	cfg.Weights.Obligation = envFloat("WEIGHT_OBLIGATION", cfg.Weights.Obligation)
	cfg.Weights.Contradictions = envFloat("WEIGHT_CONTRADICTIONS", cfg.Weights.Contradictions)
	cfg.Weights.AudioTrust = envFloat("WEIGHT_AUDIO_TRUST", cfg.Weights.AudioTrust)

	cfg.FraudThresholdHigh = envFloat("FRAUD_THRESHOLD_HIGH", cfg.FraudThresholdHigh)
	cfg.FraudThresholdMedium = envFloat("FRAUD_THRESHOLD_MEDIUM", cfg.FraudThresholdMedium)
	cfg.RiskFactorThreshold = envFloat("RISK_FACTOR_THRESHOLD", cfg.RiskFactorThreshold)
	cfg.DetectionConfidenceThreshold = envFloat("DETECTION_CONFIDENCE_THRESHOLD", cfg.DetectionConfidenceThreshold)

	cfg.ClassifierGatewayURL = os.Getenv("CLASSIFIER_GATEWAY_URL")
	cfg.ClassifierAPIKey = os.Getenv("CLASSIFIER_API_KEY")
	cfg.ClassifierModel = os.Getenv("CLASSIFIER_MODEL")
	cfg.GeneratorGatewayURL = os.Getenv("GENERATOR_GATEWAY_URL")
	cfg.TranscribeURL = os.Getenv("TRANSCRIBE_URL")
	return cfg
}

// Validate checks the invariants that make risk scoring reproducible and
// bounded. Callers treat an error here as fatal.
func (c Config) Validate() error {
	w := c.Weights
	sum := w.Sentiment + w.Intent + w.Conditionality + w.Obligation + w.Contradictions + w.AudioTrust
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("risk weights must sum to 1.0, got %.4f", sum)
	}
	for name, v := range map[string]float64{
		"sentiment":      w.Sentiment,
		"intent":         w.Intent,
		"conditionality": w.Conditionality,
		"obligation":     w.Obligation,
		"contradictions": w.Contradictions,
		"audio_trust":    w.AudioTrust,
	} {
		if v < 0 {
			return fmt.Errorf("risk weight %q is negative (%.4f)", name, v)
		}
		if v > MaxDimensionWeight+1e-9 {
			return fmt.Errorf("risk weight %q exceeds %.2f (%.4f): a single dimension could dominate the score", name, MaxDimensionWeight, v)
		}
	}
	if c.FraudThresholdHigh < c.FraudThresholdMedium {
		return fmt.Errorf("fraud threshold ordering violated: high (%.1f) < medium (%.1f)", c.FraudThresholdHigh, c.FraudThresholdMedium)
	}
	if c.MergeGapSec < 0 || c.MinUtteranceDurSec < 0 {
		return fmt.Errorf("reconciliation thresholds must be non-negative")
	}
	if c.DetectionConfidenceThreshold < 0 || c.DetectionConfidenceThreshold > 1 {
		return fmt.Errorf("detection confidence threshold out of [0,1]: %.2f", c.DetectionConfidenceThreshold)
	}
	return nil
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
