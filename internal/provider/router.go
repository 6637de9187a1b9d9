// Package provider selects a transcription backend for a detected language.
// The selection is a pure function of the detection result and the
// configured confidence threshold; a failed or low-confidence detection
// falls back to the default backend without ever blocking the pipeline.
package provider

import (
	"voice-risk-go/internal/config"
	"voice-risk-go/internal/logger"
)

// Backend identifiers. Regional languages route to the regional STT
// provider, everything else to the general-purpose default.
const (
	BackendRegional = "sarvam-stt"
	BackendDefault  = "whisper-stt"
)

// regionalLanguages is the fixed partition of languages served by the
// regional backend (ISO 639-1 codes).
var regionalLanguages = map[string]bool{
	"hi": true, "bn": true, "ta": true, "te": true,
	"mr": true, "gu": true, "kn": true, "ml": true,
	"pa": true, "or": true, "as": true, "ur": true,
}

// Detection is the language detection collaborator's output. A failed
// detection is represented by Err != nil.
type Detection struct {
	LanguageCode string
	Confidence   float64
	Err          error
}

// Selection names the chosen backend and records whether the router fell
// back to the default because detection was unavailable or unconfident.
// Degraded selections dampen the speech-naturalness confidence downstream.
type Selection struct {
	Backend  string
	Language string
	Degraded bool
}

// Route chooses exactly one backend for the detection result. Deterministic
// for identical inputs.
func Route(det Detection, cfg config.Config) Selection {
	log := logger.New().WithField("component", "provider.router")

	if det.Err != nil {
		log.WithField("error", det.Err.Error()).Warn("language detection unavailable, selecting default backend")
		return Selection{Backend: BackendDefault, Language: "unknown", Degraded: true}
	}
	if det.Confidence < cfg.DetectionConfidenceThreshold {
		log.WithField("confidence", det.Confidence).Info("detection confidence below threshold, selecting default backend")
		return Selection{Backend: BackendDefault, Language: det.LanguageCode, Degraded: true}
	}
	if regionalLanguages[det.LanguageCode] {
		return Selection{Backend: BackendRegional, Language: det.LanguageCode}
	}
	return Selection{Backend: BackendDefault, Language: det.LanguageCode}
}
