// Package signals derives the per-call SignalBundle from CUSTOMER
// utterances. Intent, sentiment, contradiction, and entity extraction are
// delegated to a classification collaborator behind the Classifier
// interface; the orchestrator's own work is strictly deterministic: label
// validation against the closed enums, neutral-default fallbacks, and the
// local obligation-strength derivation.
package signals

import (
	"context"
	"strings"

	"voice-risk-go/internal/logger"
	"voice-risk-go/internal/types"
)

// Neutral defaults used when a collaborator is unavailable or returns
// out-of-domain output. Each dimension degrades independently.
var (
	defaultIntent    = types.Intent{Label: types.IntentUnknown, Confidence: 0.0, Conditionality: types.ConditionalityLow}
	defaultSentiment = types.Sentiment{Label: types.SentimentNeutral, Confidence: 0.0}
)

var validIntentLabels = map[string]bool{
	types.IntentRepaymentPromise: true,
	types.IntentRepaymentDelay:   true,
	types.IntentRefusal:          true,
	types.IntentDeflection:       true,
	types.IntentInfoSeeking:      true,
	types.IntentDispute:          true,
	types.IntentUnknown:          true,
}

var validSentimentLabels = map[string]bool{
	types.SentimentCalm:       true,
	types.SentimentNeutral:    true,
	types.SentimentStressed:   true,
	types.SentimentAnxious:    true,
	types.SentimentFrustrated: true,
	types.SentimentEvasive:    true,
}

var validConditionality = map[string]bool{
	types.ConditionalityLow:    true,
	types.ConditionalityMedium: true,
	types.ConditionalityHigh:   true,
}

var validCommitments = map[string]bool{
	"today": true, "tomorrow": true,
	"this_week": true, "next_week": true,
	"this_month": true, "next_month": true,
	"specific_date": true, "unspecified": true,
}

// Orchestrator extracts the SignalBundle for one call.
type Orchestrator struct {
	Classifier Classifier
}

// Extract builds the SignalBundle from the redacted utterance sequence.
// AGENT text is never classified as a customer admission; only CUSTOMER
// utterances reach the collaborator. A failing dimension degrades to its
// neutral default without aborting the other three.
func (o Orchestrator) Extract(ctx context.Context, utterances []types.Utterance) types.SignalBundle {
	log := logger.New().WithField("component", "signals.orchestrator")

	customer := customerTexts(utterances)
	bundle := types.SignalBundle{
		Intent:    defaultIntent,
		Sentiment: defaultSentiment,
		Entities:  types.Entities{},
	}

	if len(customer) == 0 {
		log.Warn("no customer utterances, all dimensions use neutral defaults")
		bundle.ObligationStrength = types.ObligationNone
		bundle.DegradedDimensions = []string{"intent", "sentiment", "entities"}
		return bundle
	}

	bundle.Intent = o.classifyIntent(ctx, customer, &bundle)
	bundle.Sentiment = o.classifySentiment(ctx, customer, &bundle)
	bundle.ContradictionsDetected = o.detectContradictions(ctx, customer, &bundle)
	bundle.Entities = o.extractEntities(ctx, customer, &bundle)

	// Obligation strength: local and deterministic, never delegated.
	bundle.ObligationStrength = DeriveObligation(bundle.Intent, strings.Join(customer, " "))

	log.WithField("intent", bundle.Intent.Label).
		WithField("sentiment", bundle.Sentiment.Label).
		WithField("obligation", bundle.ObligationStrength).
		WithField("contradictions", bundle.ContradictionsDetected).
		WithField("degraded", strings.Join(bundle.DegradedDimensions, ",")).
		Info("signal extraction complete")
	return bundle
}

func (o Orchestrator) classifyIntent(ctx context.Context, customer []string, bundle *types.SignalBundle) types.Intent {
	if o.Classifier == nil {
		bundle.DegradedDimensions = append(bundle.DegradedDimensions, "intent")
		return defaultIntent
	}
	res, err := o.Classifier.Classify(ctx, ClassifyRequest{
		Task:       TaskIntent,
		Utterances: customer,
		Labels:     intentLabels(),
	})
	if err != nil || !validIntentLabels[res.Label] || !validConditionality[res.Conditionality] || res.Confidence < 0 || res.Confidence > 1 {
		bundle.DegradedDimensions = append(bundle.DegradedDimensions, "intent")
		return defaultIntent
	}
	return types.Intent{Label: res.Label, Confidence: res.Confidence, Conditionality: res.Conditionality}
}

func (o Orchestrator) classifySentiment(ctx context.Context, customer []string, bundle *types.SignalBundle) types.Sentiment {
	if o.Classifier == nil {
		bundle.DegradedDimensions = append(bundle.DegradedDimensions, "sentiment")
		return defaultSentiment
	}
	res, err := o.Classifier.Classify(ctx, ClassifyRequest{
		Task:       TaskSentiment,
		Utterances: customer,
		Labels:     sentimentLabels(),
	})
	if err != nil || !validSentimentLabels[res.Label] || res.Confidence < 0 || res.Confidence > 1 {
		bundle.DegradedDimensions = append(bundle.DegradedDimensions, "sentiment")
		return defaultSentiment
	}
	return types.Sentiment{Label: res.Label, Confidence: res.Confidence}
}

// detectContradictions requires at least two customer utterances; with
// fewer, false is returned without invoking the collaborator.
func (o Orchestrator) detectContradictions(ctx context.Context, customer []string, bundle *types.SignalBundle) bool {
	if len(customer) < 2 {
		return false
	}
	if o.Classifier == nil {
		bundle.DegradedDimensions = append(bundle.DegradedDimensions, "contradictions")
		return false
	}
	res, err := o.Classifier.Classify(ctx, ClassifyRequest{
		Task:       TaskContradiction,
		Utterances: customer,
	})
	if err != nil {
		bundle.DegradedDimensions = append(bundle.DegradedDimensions, "contradictions")
		return false
	}
	return res.Flag
}

func (o Orchestrator) extractEntities(ctx context.Context, customer []string, bundle *types.SignalBundle) types.Entities {
	if o.Classifier == nil {
		bundle.DegradedDimensions = append(bundle.DegradedDimensions, "entities")
		return types.Entities{}
	}
	res, err := o.Classifier.Classify(ctx, ClassifyRequest{
		Task:       TaskEntities,
		Utterances: customer,
	})
	if err != nil {
		bundle.DegradedDimensions = append(bundle.DegradedDimensions, "entities")
		return types.Entities{}
	}
	ent := types.Entities{}
	if res.Commitment != nil && validCommitments[*res.Commitment] {
		ent.PaymentCommitment = res.Commitment
	}
	if res.Amount != nil && *res.Amount > 0 {
		ent.AmountMentioned = res.Amount
	}
	return ent
}

func customerTexts(utterances []types.Utterance) []string {
	var out []string
	for _, u := range utterances {
		if u.Speaker == types.SpeakerCustomer && strings.TrimSpace(u.Text) != "" {
			out = append(out, u.Text)
		}
	}
	return out
}

func intentLabels() []string {
	return []string{
		types.IntentRepaymentPromise, types.IntentRepaymentDelay,
		types.IntentRefusal, types.IntentDeflection,
		types.IntentInfoSeeking, types.IntentDispute, types.IntentUnknown,
	}
}

func sentimentLabels() []string {
	return []string{
		types.SentimentCalm, types.SentimentNeutral, types.SentimentStressed,
		types.SentimentAnxious, types.SentimentFrustrated, types.SentimentEvasive,
	}
}
