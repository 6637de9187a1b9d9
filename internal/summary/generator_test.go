package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"voice-risk-go/internal/types"
)

type fixedGenerator struct {
	sentence string
	err      error
}

func (f fixedGenerator) Generate(context.Context, types.SignalBundle, types.RiskAssessment) (string, error) {
	return f.sentence, f.err
}

func sampleBundle() types.SignalBundle {
	return types.SignalBundle{
		Intent:             types.Intent{Label: types.IntentRepaymentDelay, Confidence: 0.8, Conditionality: types.ConditionalityHigh},
		Sentiment:          types.Sentiment{Label: types.SentimentStressed, Confidence: 0.7},
		ObligationStrength: types.ObligationConditional,
	}
}

func sampleAssessment() types.RiskAssessment {
	return types.RiskAssessment{
		RiskScore:       58,
		FraudLikelihood: types.LikelihoodMedium,
		Confidence:      0.8,
		KeyRiskFactors:  []string{"high_emotional_stress", "conditional_commitment"},
	}
}

func TestTemplateDeterministic(t *testing.T) {
	first := Template(sampleBundle(), sampleAssessment())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Template(sampleBundle(), sampleAssessment()))
	}
}

func TestTemplateIsOneSentence(t *testing.T) {
	s := Template(sampleBundle(), sampleAssessment())
	assert.True(t, strings.HasSuffix(s, "."))
	assert.Equal(t, 1, strings.Count(s, "."))
	assert.NotContains(t, s, "?")
	assert.NotContains(t, s, "!")
}

func TestTemplateMentionsSignals(t *testing.T) {
	s := Template(sampleBundle(), sampleAssessment())
	assert.Contains(t, s, "delay repayment")
	assert.Contains(t, s, "conditional commitment")
	assert.Contains(t, s, "moderate risk")
}

func TestTemplateContradictionQualifier(t *testing.T) {
	bundle := sampleBundle()
	bundle.ContradictionsDetected = true
	s := Template(bundle, sampleAssessment())
	assert.Contains(t, s, "contradictions in statements")
}

func TestGenerateAcceptsValidCollaboratorSentence(t *testing.T) {
	want := "Customer expressed a request to delay repayment with conditional commitment, indicating moderate risk."
	got := Generate(context.Background(), fixedGenerator{sentence: want}, sampleBundle(), sampleAssessment())
	assert.Equal(t, want, got)
}

func TestGenerateFallsBackOnError(t *testing.T) {
	got := Generate(context.Background(), fixedGenerator{err: errors.New("timeout")}, sampleBundle(), sampleAssessment())
	assert.Equal(t, Template(sampleBundle(), sampleAssessment()), got)
}

func TestGenerateFallsBackOnConstraintViolations(t *testing.T) {
	cases := map[string]string{
		"banned word":        "Customer is a fraudster avoiding repayment.",
		"bare number":        "Customer promised to pay within 7 days.",
		"pii shaped token":   "Customer shared <PHONE_NUMBER> during the call.",
		"two sentences":      "Customer promised to pay. Risk is moderate.",
		"no trailing period": "Customer promised to pay",
		"empty":              "",
	}
	want := Template(sampleBundle(), sampleAssessment())
	for name, candidate := range cases {
		got := Generate(context.Background(), fixedGenerator{sentence: candidate}, sampleBundle(), sampleAssessment())
		assert.Equal(t, want, got, "case %s", name)
	}
}

func TestGenerateNilCollaboratorUsesTemplate(t *testing.T) {
	got := Generate(context.Background(), nil, sampleBundle(), sampleAssessment())
	assert.Equal(t, Template(sampleBundle(), sampleAssessment()), got)
}
