package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateWeightSum(t *testing.T) {
	cfg := Default()
	cfg.Weights.Sentiment = 0.10
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1.0")
}

func TestValidateWeightCap(t *testing.T) {
	cfg := Default()
	cfg.Weights.Intent = 0.30
	cfg.Weights.Sentiment = 0.10
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestValidateNegativeWeight(t *testing.T) {
	cfg := Default()
	cfg.Weights.Sentiment = -0.05
	cfg.Weights.Intent = 0.20
	cfg.Weights.Conditionality = 0.20
	cfg.Weights.Obligation = 0.20
	cfg.Weights.Contradictions = 0.20
	cfg.Weights.AudioTrust = 0.20
	// Sums to 0.95, but the negative weight must be reported even if the sum
	// check also fails on other inputs.
	assert.Error(t, cfg.Validate())
}

func TestValidateThresholdOrdering(t *testing.T) {
	cfg := Default()
	cfg.FraudThresholdHigh = 30
	cfg.FraudThresholdMedium = 40
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ordering")
}

func TestValidateDetectionThresholdRange(t *testing.T) {
	cfg := Default()
	cfg.DetectionConfidenceThreshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("WEIGHT_SENTIMENT", "0.15")
	t.Setenv("WEIGHT_AUDIO_TRUST", "0.20")
	t.Setenv("FRAUD_THRESHOLD_HIGH", "70")
	t.Setenv("CLASSIFIER_GATEWAY_URL", "http://gateway.local/classify")

	cfg := FromEnv()
	assert.InDelta(t, 0.15, cfg.Weights.Sentiment, 1e-9)
	assert.InDelta(t, 0.20, cfg.Weights.AudioTrust, 1e-9)
	assert.InDelta(t, 70.0, cfg.FraudThresholdHigh, 1e-9)
	assert.Equal(t, "http://gateway.local/classify", cfg.ClassifierGatewayURL)
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("WEIGHT_INTENT", "not-a-number")
	cfg := FromEnv()
	assert.InDelta(t, Default().Weights.Intent, cfg.Weights.Intent, 1e-9)
}
