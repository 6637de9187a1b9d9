// Package pipeline threads one call through the six phases in strict
// order: provider routing, diarization reconciliation, PII redaction,
// signal extraction, risk scoring, and summary generation. Each phase
// consumes only the validated output of its predecessor; the pipeline
// itself holds no mutable state, so concurrent calls need no
// synchronization beyond per-call isolation.
package pipeline

import (
	"context"
	"fmt"

	"voice-risk-go/internal/config"
	"voice-risk-go/internal/diarize"
	"voice-risk-go/internal/logger"
	"voice-risk-go/internal/metrics"
	"voice-risk-go/internal/provider"
	"voice-risk-go/internal/redact"
	"voice-risk-go/internal/risk"
	"voice-risk-go/internal/signals"
	"voice-risk-go/internal/summary"
	"voice-risk-go/internal/types"
)

// Input is one call's raw material: the diarized fragments plus the
// detection and quality indicators reported by the upstream collaborators.
type Input struct {
	Fragments          []types.RawFragment `json:"fragments"`
	LanguageCode       string              `json:"language_code"`
	LanguageConfidence float64             `json:"language_confidence"`
	DetectionFailed    bool                `json:"detection_failed"`
	NoiseLevel         string              `json:"noise_level"`
	CallStability      string              `json:"call_stability"`
	SpeechNaturalness  string              `json:"speech_naturalness"`
}

// Deps are the collaborators the interpretive phases talk to. Either may
// be nil, degrading those phases to their documented fallbacks.
type Deps struct {
	Classifier signals.Classifier
	Generator  summary.Generator
}

// Run executes the full pipeline for one call and assembles the locked
// output document. The only error condition is an empty conversation after
// reconciliation; collaborator failures degrade in place and still yield
// the complete document.
func Run(ctx context.Context, in Input, deps Deps, cfg config.Config) (types.CallInsights, error) {
	log := logger.New().WithCall()

	// Phase 1: provider routing. The backend selection itself belongs to
	// the transcription step upstream; here it fixes the call language and
	// whether detection degraded.
	selection := provider.Route(provider.Detection{
		LanguageCode: in.LanguageCode,
		Confidence:   in.LanguageConfidence,
		Err:          detectionErr(in),
	}, cfg)

	callCtx := types.CallContext{
		Language:          selection.Language,
		NoiseLevel:        defaulted(in.NoiseLevel, types.NoiseMedium),
		CallStability:     defaulted(in.CallStability, types.StabilityMedium),
		SpeechNaturalness: defaulted(in.SpeechNaturalness, types.NaturalnessNormal),
		DetectionDegraded: selection.Degraded,
	}

	// Phase 2: diarization reconciliation.
	utterances, err := diarize.Reconcile(in.Fragments, cfg)
	if err != nil {
		metrics.CallsProcessed.WithLabelValues("empty_conversation").Inc()
		return types.CallInsights{}, fmt.Errorf("reconcile fragments: %w", err)
	}
	log.WithField("utterances", len(utterances)).Info("conversation reconciled")

	// Phase 3: normalization + PII redaction. From here on no raw PII
	// pattern exists anywhere in the call's artifacts.
	redacted := redact.Apply(utterances, cfg)

	// Phase 4: signal extraction over CUSTOMER utterances.
	orch := signals.Orchestrator{Classifier: deps.Classifier}
	bundle := orch.Extract(ctx, redacted)
	for _, dim := range bundle.DegradedDimensions {
		metrics.DegradedDimensions.WithLabelValues(dim).Inc()
	}

	// Phase 5: deterministic risk scoring.
	assessment := risk.Score(bundle, callCtx, cfg)
	metrics.RiskScores.Observe(float64(assessment.RiskScore))

	// Phase 6: summary from structured fields only.
	sentence := summary.Generate(ctx, deps.Generator, bundle, assessment)

	metrics.CallsProcessed.WithLabelValues("ok").Inc()
	return assemble(callCtx, redacted, bundle, assessment, sentence), nil
}

// assemble builds the locked output contract. Every key is always present;
// absent optionals are null; nothing else is emitted.
func assemble(
	callCtx types.CallContext,
	utterances []types.Utterance,
	bundle types.SignalBundle,
	assessment types.RiskAssessment,
	sentence string,
) types.CallInsights {
	return types.CallInsights{
		CallContext: types.InsightsCallContext{
			CallLanguage: callCtx.Language,
			CallQuality: types.CallQuality{
				NoiseLevel:        callCtx.NoiseLevel,
				CallStability:     callCtx.CallStability,
				SpeechNaturalness: callCtx.SpeechNaturalness,
			},
		},
		SpeakerAnalysis: types.SpeakerAnalysis{
			CustomerOnlyAnalysis:   true,
			AgentInfluenceDetected: signals.DetectAgentInfluence(utterances),
		},
		NLPInsights: types.NLPInsights{
			Intent:                 bundle.Intent,
			Sentiment:              bundle.Sentiment,
			ObligationStrength:     bundle.ObligationStrength,
			Entities:               bundle.Entities,
			ContradictionsDetected: bundle.ContradictionsDetected,
		},
		RiskSignals: types.RiskSignals{
			AudioTrustFlags: risk.AudioTrustFlags(callCtx),
			BehavioralFlags: risk.BehavioralFlags(assessment.KeyRiskFactors, bundle.ContradictionsDetected),
		},
		RiskAssessment: types.InsightsRiskAssessment{
			RiskScore:       assessment.RiskScore,
			FraudLikelihood: assessment.FraudLikelihood,
			Confidence:      assessment.Confidence,
		},
		SummaryForRAG: sentence,
	}
}

func detectionErr(in Input) error {
	if in.DetectionFailed {
		return fmt.Errorf("language detection unavailable")
	}
	return nil
}

func defaulted(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
