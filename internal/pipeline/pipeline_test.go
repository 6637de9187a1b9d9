package pipeline

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-risk-go/internal/config"
	"voice-risk-go/internal/diarize"
	"voice-risk-go/internal/signals"
	"voice-risk-go/internal/types"
)

func sampleInput() Input {
	return Input{
		Fragments: []types.RawFragment{
			{SpeakerTag: "SPEAKER_00", Text: "Hello, calling about the overdue loan installment.", Start: 0, End: 3.0},
			{SpeakerTag: "SPEAKER_01", Text: "Yes, um, call me back at 9876543210 if we get cut off.", Start: 3.5, End: 7.0},
			{SpeakerTag: "SPEAKER_01", Text: "I will pay the full amount once my salary arrives next week.", Start: 7.2, End: 11.0},
		},
		LanguageCode:       "en",
		LanguageConfidence: 0.95,
		NoiseLevel:         types.NoiseLow,
		CallStability:      types.StabilityHigh,
		SpeechNaturalness:  types.NaturalnessNormal,
	}
}

func stubDeps() Deps {
	return Deps{Classifier: signals.StubClassifier{}}
}

func TestRunProducesCompleteDocument(t *testing.T) {
	insights, err := Run(context.Background(), sampleInput(), stubDeps(), config.Default())
	require.NoError(t, err)

	data, err := json.Marshal(insights)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{
		"call_context", "speaker_analysis", "nlp_insights",
		"risk_signals", "risk_assessment", "summary_for_rag",
	} {
		assert.Contains(t, doc, key)
	}
	assert.Len(t, doc, 6, "no undocumented top-level keys")
}

func TestRunRiskAssessmentKeySet(t *testing.T) {
	insights, err := Run(context.Background(), sampleInput(), stubDeps(), config.Default())
	require.NoError(t, err)

	data, err := json.Marshal(insights)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	var ra map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["risk_assessment"], &ra))

	assert.Contains(t, ra, "risk_score")
	assert.Contains(t, ra, "fraud_likelihood")
	assert.Contains(t, ra, "confidence")
	assert.NotContains(t, ra, "key_risk_factors")
	assert.Len(t, ra, 3, "risk_assessment carries exactly three keys")
}

func TestRunOutputCarriesNoPII(t *testing.T) {
	insights, err := Run(context.Background(), sampleInput(), stubDeps(), config.Default())
	require.NoError(t, err)

	data, err := json.Marshal(insights)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "9876543210")
	// The document carries no transcript text at all, redacted or otherwise.
	assert.NotRegexp(t, regexp.MustCompile(`<[A-Z_]+>`), string(data))
}

func TestRunDeterministicWithStub(t *testing.T) {
	first, err := Run(context.Background(), sampleInput(), stubDeps(), config.Default())
	require.NoError(t, err)
	firstJSON, _ := json.Marshal(first)
	for i := 0; i < 3; i++ {
		again, err := Run(context.Background(), sampleInput(), stubDeps(), config.Default())
		require.NoError(t, err)
		againJSON, _ := json.Marshal(again)
		assert.Equal(t, string(firstJSON), string(againJSON))
	}
}

func TestRunEmptyConversation(t *testing.T) {
	in := sampleInput()
	in.Fragments = nil
	_, err := Run(context.Background(), in, stubDeps(), config.Default())
	assert.ErrorIs(t, err, diarize.ErrEmptyConversation)
}

func TestRunSignalContent(t *testing.T) {
	insights, err := Run(context.Background(), sampleInput(), stubDeps(), config.Default())
	require.NoError(t, err)

	assert.Equal(t, "en", insights.CallContext.CallLanguage)
	assert.True(t, insights.SpeakerAnalysis.CustomerOnlyAnalysis)
	assert.Equal(t, types.IntentRepaymentPromise, insights.NLPInsights.Intent.Label)
	assert.Equal(t, types.ConditionalityHigh, insights.NLPInsights.Intent.Conditionality)
	assert.Equal(t, types.ObligationConditional, insights.NLPInsights.ObligationStrength)
	require.NotNil(t, insights.NLPInsights.Entities.PaymentCommitment)
	assert.Equal(t, "next_week", *insights.NLPInsights.Entities.PaymentCommitment)
	assert.NotEmpty(t, insights.SummaryForRAG)
	assert.NotNil(t, insights.RiskSignals.AudioTrustFlags)
	assert.NotNil(t, insights.RiskSignals.BehavioralFlags)
}

func TestRunDegradedDetectionDampensConfidence(t *testing.T) {
	cfg := config.Default()
	baseline, err := Run(context.Background(), sampleInput(), stubDeps(), cfg)
	require.NoError(t, err)

	degraded := sampleInput()
	degraded.DetectionFailed = true
	got, err := Run(context.Background(), degraded, stubDeps(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "unknown", got.CallContext.CallLanguage)
	assert.Less(t, got.RiskAssessment.Confidence, baseline.RiskAssessment.Confidence)
}

func TestRunNilClassifierStillYieldsDocument(t *testing.T) {
	insights, err := Run(context.Background(), sampleInput(), Deps{}, config.Default())
	require.NoError(t, err)
	assert.Equal(t, types.IntentUnknown, insights.NLPInsights.Intent.Label)
	assert.NotEmpty(t, insights.SummaryForRAG)
	assert.NotZero(t, insights.RiskAssessment.RiskScore)
}

func TestRunDefaultsMissingQualityIndicators(t *testing.T) {
	in := sampleInput()
	in.NoiseLevel = ""
	in.CallStability = ""
	in.SpeechNaturalness = ""
	insights, err := Run(context.Background(), in, stubDeps(), config.Default())
	require.NoError(t, err)
	assert.Equal(t, types.NoiseMedium, insights.CallContext.CallQuality.NoiseLevel)
	assert.Equal(t, types.StabilityMedium, insights.CallContext.CallQuality.CallStability)
	assert.Equal(t, types.NaturalnessNormal, insights.CallContext.CallQuality.SpeechNaturalness)
}
