// Package risk computes the reproducible 0-100 risk assessment from the
// SignalBundle and CallContext. There is no LLM call, no sampling, and no
// time-dependent state anywhere in this package: identical inputs always
// produce an identical RiskAssessment.
//
// Each of the six dimensions is scored independently into [0,100] by a
// fixed lookup, then combined by configured weights. Because every weight
// is capped at 0.20 (enforced at startup by config.Validate), no single
// maxed dimension can push the score past the high threshold alone.
package risk

import (
	"math"

	"voice-risk-go/internal/config"
	"voice-risk-go/internal/logger"
	"voice-risk-go/internal/types"
)

// Per-dimension base sub-scores. Sentiment and intent scale by the
// classifier's confidence; the categorical dimensions map directly.
var sentimentScores = map[string]float64{
	types.SentimentCalm:       0,
	types.SentimentNeutral:    10,
	types.SentimentAnxious:    55,
	types.SentimentStressed:   70,
	types.SentimentFrustrated: 60,
	types.SentimentEvasive:    85,
}

var intentScores = map[string]float64{
	types.IntentRepaymentPromise: 5,
	types.IntentRepaymentDelay:   40,
	types.IntentRefusal:          80,
	types.IntentDeflection:       75,
	types.IntentInfoSeeking:      15,
	types.IntentDispute:          65,
	types.IntentUnknown:          50,
}

var conditionalityScores = map[string]float64{
	types.ConditionalityLow:    10,
	types.ConditionalityMedium: 50,
	types.ConditionalityHigh:   85,
}

var obligationScores = map[string]float64{
	types.ObligationStrong:      5,
	types.ObligationWeak:        45,
	types.ObligationConditional: 65,
	types.ObligationNone:        80,
}

const (
	contradictionScore   = 90
	noContradictionScore = 5
)

var noiseScores = map[string]float64{
	types.NoiseLow:    0,
	types.NoiseMedium: 25,
	types.NoiseHigh:   55,
}

var stabilityScores = map[string]float64{
	types.StabilityHigh:   0,
	types.StabilityMedium: 25,
	types.StabilityLow:    55,
}

var naturalnessScores = map[string]float64{
	types.NaturalnessNormal:     0,
	types.NaturalnessSuspicious: 80,
}

// Factor labels, one per dimension, emitted only when that dimension's
// sub-score breaches the configured threshold.
const (
	FactorEmotionalStress = "high_emotional_stress"
	FactorRiskyIntent     = "risky_intent"
	FactorConditional     = "conditional_commitment"
	FactorWeakObligation  = "weak_obligation"
	FactorContradictions  = "contradictory_statements"
	FactorSuspiciousAudio = "suspicious_audio_signals"
)

// Confidence deduction applied per signal dimension that fell back to its
// neutral default.
const degradedConfidencePenalty = 0.05

// subScores holds the six per-dimension scores in a fixed order so the
// weighted sum and factor collection are reproducible.
type subScores struct {
	sentiment      float64
	intent         float64
	conditionality float64
	obligation     float64
	contradictions float64
	audioTrust     float64
}

// Score computes the RiskAssessment for a validated bundle and context.
func Score(bundle types.SignalBundle, callCtx types.CallContext, cfg config.Config) types.RiskAssessment {
	log := logger.New().WithField("component", "risk.scorer")

	subs := computeSubScores(bundle, callCtx)

	w := cfg.Weights
	raw := subs.sentiment*w.Sentiment +
		subs.intent*w.Intent +
		subs.conditionality*w.Conditionality +
		subs.obligation*w.Obligation +
		subs.contradictions*w.Contradictions +
		subs.audioTrust*w.AudioTrust

	score := int(math.Round(clamp(raw, 0, 100)))

	likelihood := types.LikelihoodLow
	switch {
	case float64(score) >= cfg.FraudThresholdHigh:
		likelihood = types.LikelihoodHigh
	case float64(score) >= cfg.FraudThresholdMedium:
		likelihood = types.LikelihoodMedium
	}

	assessment := types.RiskAssessment{
		RiskScore:       score,
		FraudLikelihood: likelihood,
		Confidence:      computeConfidence(bundle, callCtx),
		KeyRiskFactors:  collectFactors(subs, cfg.RiskFactorThreshold),
	}

	log.WithField("risk_score", assessment.RiskScore).
		WithField("fraud_likelihood", assessment.FraudLikelihood).
		WithField("key_risk_factors", assessment.KeyRiskFactors).
		Info("risk assessment computed")
	return assessment
}

func computeSubScores(bundle types.SignalBundle, callCtx types.CallContext) subScores {
	subs := subScores{
		sentiment:      lookup(sentimentScores, bundle.Sentiment.Label, 10) * bundle.Sentiment.Confidence,
		intent:         lookup(intentScores, bundle.Intent.Label, 50) * bundle.Intent.Confidence,
		conditionality: lookup(conditionalityScores, bundle.Intent.Conditionality, 50),
		obligation:     lookup(obligationScores, bundle.ObligationStrength, 50),
		contradictions: noContradictionScore,
		audioTrust:     audioTrustScore(callCtx),
	}
	if bundle.ContradictionsDetected {
		subs.contradictions = contradictionScore
	}
	subs.sentiment = round2(subs.sentiment)
	subs.intent = round2(subs.intent)
	return subs
}

// audioTrustScore folds the three quality indicators into one sub-score.
// Naturalness is the dominant audio signal; noise and stability are
// secondary.
func audioTrustScore(callCtx types.CallContext) float64 {
	noise := lookup(noiseScores, callCtx.NoiseLevel, 25)
	stability := lookup(stabilityScores, callCtx.CallStability, 25)
	naturalness := lookup(naturalnessScores, callCtx.SpeechNaturalness, 0)
	return round2(naturalness*0.50 + noise*0.25 + stability*0.25)
}

// computeConfidence reflects how much the upstream phases actually knew.
// Sentiment and intent carry collaborator confidences; the deterministic
// dimensions contribute a fixed base. Every dimension that degraded to a
// neutral default, and a degraded language detection, deducts from the
// result.
func computeConfidence(bundle types.SignalBundle, callCtx types.CallContext) float64 {
	confidence := bundle.Sentiment.Confidence*0.40 + bundle.Intent.Confidence*0.40 + 0.20
	confidence -= float64(len(bundle.DegradedDimensions)) * degradedConfidencePenalty
	if callCtx.DetectionDegraded {
		confidence -= degradedConfidencePenalty
	}
	return round2(clamp(confidence, 0, 1))
}

// collectFactors names each dimension whose sub-score breached the
// threshold. Every emitted factor is traceable to exactly one dimension.
func collectFactors(subs subScores, threshold float64) []string {
	factors := make([]string, 0, 6)
	checks := []struct {
		score float64
		label string
	}{
		{subs.sentiment, FactorEmotionalStress},
		{subs.intent, FactorRiskyIntent},
		{subs.conditionality, FactorConditional},
		{subs.obligation, FactorWeakObligation},
		{subs.contradictions, FactorContradictions},
		{subs.audioTrust, FactorSuspiciousAudio},
	}
	for _, c := range checks {
		if c.score >= threshold {
			factors = append(factors, c.label)
		}
	}
	return factors
}

func lookup(table map[string]float64, key string, def float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return def
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
