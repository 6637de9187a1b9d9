package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"voice-risk-go/internal/config"
)

func TestRouteRegionalLanguage(t *testing.T) {
	got := Route(Detection{LanguageCode: "hi", Confidence: 0.9}, config.Default())
	assert.Equal(t, Selection{Backend: BackendRegional, Language: "hi"}, got)
}

func TestRouteDefaultLanguage(t *testing.T) {
	got := Route(Detection{LanguageCode: "en", Confidence: 0.9}, config.Default())
	assert.Equal(t, Selection{Backend: BackendDefault, Language: "en"}, got)
}

func TestRouteLowConfidenceFallsBack(t *testing.T) {
	got := Route(Detection{LanguageCode: "ta", Confidence: 0.4}, config.Default())
	assert.Equal(t, BackendDefault, got.Backend)
	assert.Equal(t, "ta", got.Language)
	assert.True(t, got.Degraded)
}

func TestRouteDetectionFailureFallsBack(t *testing.T) {
	got := Route(Detection{Err: errors.New("detector offline")}, config.Default())
	assert.Equal(t, BackendDefault, got.Backend)
	assert.Equal(t, "unknown", got.Language)
	assert.True(t, got.Degraded)
}

func TestRouteDeterministic(t *testing.T) {
	det := Detection{LanguageCode: "bn", Confidence: 0.75}
	first := Route(det, config.Default())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Route(det, config.Default()))
	}
}

func TestRouteThresholdBoundary(t *testing.T) {
	cfg := config.Default()
	atThreshold := Route(Detection{LanguageCode: "hi", Confidence: cfg.DetectionConfidenceThreshold}, cfg)
	assert.Equal(t, BackendRegional, atThreshold.Backend)
	assert.False(t, atThreshold.Degraded)
}
