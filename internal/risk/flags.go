package risk

import "voice-risk-go/internal/types"

// Flag derivation for the risk_signals section of the output document.
// Flags restate upstream findings in fixed vocabulary; they never add
// information the scorer did not already see.

var behavioralFlagByFactor = map[string]string{
	FactorConditional:     "conditional_commitment",
	FactorContradictions:  "statement_contradiction",
	FactorEmotionalStress: "emotional_distress",
	FactorRiskyIntent:     "evasive_responses",
	FactorWeakObligation:  "weak_commitment",
}

// AudioTrustFlags maps the call quality indicators to audio trust flags.
// Clean indicators contribute nothing; the slice is empty, not nil, so the
// contract field always serializes as an array.
func AudioTrustFlags(callCtx types.CallContext) []string {
	flags := []string{}
	switch callCtx.NoiseLevel {
	case types.NoiseMedium:
		flags = append(flags, "moderate_noise")
	case types.NoiseHigh:
		flags = append(flags, "high_background_noise")
	}
	if callCtx.CallStability == types.StabilityLow {
		flags = append(flags, "low_call_stability")
	}
	if callCtx.SpeechNaturalness == types.NaturalnessSuspicious {
		flags = append(flags, "unnatural_speech_pattern")
	}
	return flags
}

// BehavioralFlags maps key risk factors to behavioral flags. A detected
// contradiction always surfaces, even when its sub-score stayed below the
// factor threshold.
func BehavioralFlags(keyRiskFactors []string, contradictionsDetected bool) []string {
	flags := []string{}
	for _, factor := range keyRiskFactors {
		if flag, ok := behavioralFlagByFactor[factor]; ok && !contains(flags, flag) {
			flags = append(flags, flag)
		}
	}
	if contradictionsDetected && !contains(flags, "statement_contradiction") {
		flags = append(flags, "statement_contradiction")
	}
	return flags
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
