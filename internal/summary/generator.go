// Package summary produces the single compliance-safe sentence embedded
// alongside the call's structured signals. The sentence is built from
// SignalBundle and RiskAssessment fields only, never from raw or redacted
// transcript text. A deterministic template path is always available; the
// optional richer-language collaborator is used only when its output passes
// every constraint check.
package summary

import (
	"context"
	"regexp"
	"strings"

	"voice-risk-go/internal/logger"
	"voice-risk-go/internal/types"
)

// Generator is the optional richer-language collaborator. It receives only
// structured fields and returns a candidate sentence.
type Generator interface {
	Generate(ctx context.Context, bundle types.SignalBundle, assessment types.RiskAssessment) (string, error)
}

var bannedWords = map[string]bool{
	"fraudster": true, "fraud": true, "lied": true, "lying": true,
	"scam": true, "scammer": true, "criminal": true, "guilty": true,
	"dishonest": true, "cheat": true, "cheating": true, "thief": true,
	"steal": true, "stealing": true, "deceive": true, "deceiving": true,
	"deceptive": true, "malicious": true,
}

var intentPhrases = map[string]string{
	types.IntentRepaymentPromise: "a repayment promise",
	types.IntentRepaymentDelay:   "a request to delay repayment",
	types.IntentRefusal:          "a refusal to pay",
	types.IntentDeflection:       "deflective responses",
	types.IntentInfoSeeking:      "information-seeking behavior",
	types.IntentDispute:          "a dispute regarding the obligation",
	types.IntentUnknown:          "unclear intent",
}

var obligationPhrases = map[string]string{
	types.ObligationStrong:      "strong commitment",
	types.ObligationWeak:        "weak commitment",
	types.ObligationConditional: "conditional commitment",
	types.ObligationNone:        "no discernible commitment",
}

var conditionalityPhrases = map[string]string{
	types.ConditionalityLow:    "low conditionality",
	types.ConditionalityMedium: "moderate conditionality",
	types.ConditionalityHigh:   "high conditionality",
}

var likelihoodPhrases = map[string]string{
	types.LikelihoodLow:    "low risk",
	types.LikelihoodMedium: "moderate risk",
	types.LikelihoodHigh:   "elevated risk",
}

var riskFactorPhrases = map[string]string{
	"high_emotional_stress":    "elevated stress",
	"risky_intent":             "risky intent signals",
	"conditional_commitment":   "conditional commitment patterns",
	"weak_obligation":          "unreliable commitment",
	"contradictory_statements": "contradictions",
	"suspicious_audio_signals": "suspicious audio characteristics",
}

// Generate returns the summary sentence. The collaborator is consulted
// first when present; any constraint violation falls back to the template
// path, which always yields an identical sentence for identical inputs.
func Generate(ctx context.Context, gen Generator, bundle types.SignalBundle, assessment types.RiskAssessment) string {
	log := logger.New().WithField("component", "summary.generator")

	if gen != nil {
		candidate, err := gen.Generate(ctx, bundle, assessment)
		if err == nil {
			if validated, ok := validate(candidate); ok {
				return validated
			}
			log.Warn("generated summary violated constraints, using template")
		} else {
			log.WithError(err).Warn("summary collaborator unavailable, using template")
		}
	}
	return Template(bundle, assessment)
}

// Template is the deterministic construction path over the structured
// fields.
func Template(bundle types.SignalBundle, assessment types.RiskAssessment) string {
	intentPhrase := phrase(intentPhrases, bundle.Intent.Label, "unclear intent")
	obligationPhrase := phrase(obligationPhrases, bundle.ObligationStrength, "uncertain commitment")
	likelihoodPhrase := phrase(likelihoodPhrases, assessment.FraudLikelihood, "uncertain risk")

	qualifiers := []string{
		phrase(conditionalityPhrases, bundle.Intent.Conditionality, "uncertain conditionality"),
	}
	if bundle.ContradictionsDetected {
		qualifiers = append(qualifiers, "contradictions in statements")
	}
	added := 0
	for _, factor := range assessment.KeyRiskFactors {
		if added == 2 {
			break
		}
		p, ok := riskFactorPhrases[factor]
		if !ok || contains(qualifiers, p) {
			continue
		}
		qualifiers = append(qualifiers, p)
		added++
	}

	var action string
	switch assessment.FraudLikelihood {
	case types.LikelihoodHigh:
		action = "requiring further review"
	case types.LikelihoodMedium:
		action = "warranting closer attention"
	default:
		action = "within normal parameters"
	}

	return "Customer expressed " + intentPhrase + " with " + obligationPhrase +
		", showing " + strings.Join(qualifiers, " and ") +
		", indicating " + likelihoodPhrase + " and " + action + "."
}

var (
	bareNumber  = regexp.MustCompile(`\b\d{1,3}\b`)
	piiShaped   = regexp.MustCompile(`<[A-Z_]+>`)
	sentenceEnd = regexp.MustCompile(`[.!?]`)
)

// validate enforces the collaborator output constraints: one sentence,
// no banned vocabulary, no bare numbers, no PII-shaped tokens.
func validate(candidate string) (string, bool) {
	s := strings.TrimSpace(candidate)
	if s == "" || !strings.HasSuffix(s, ".") {
		return "", false
	}
	if len(sentenceEnd.FindAllString(s, -1)) > 1 {
		return "", false
	}
	for _, word := range strings.Fields(strings.ToLower(strings.Trim(s, "."))) {
		if bannedWords[strings.Trim(word, ",;:")] {
			return "", false
		}
	}
	if bareNumber.MatchString(s) || piiShaped.MatchString(s) {
		return "", false
	}
	return s, true
}

func phrase(table map[string]string, key, def string) string {
	if v, ok := table[key]; ok {
		return v
	}
	return def
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
