package signals

import (
	"context"
	"strings"

	"voice-risk-go/internal/types"
)

// StubClassifier is a deterministic, rule-based implementation of the
// classification capability. It backs the /demo endpoint and the tests, and
// lets the full pipeline run byte-identically without a remote service.
type StubClassifier struct{}

func (StubClassifier) Classify(_ context.Context, req ClassifyRequest) (ClassifyResult, error) {
	joined := strings.ToLower(strings.Join(req.Utterances, " "))

	switch req.Task {
	case TaskIntent:
		return stubIntent(joined), nil
	case TaskSentiment:
		return stubSentiment(joined), nil
	case TaskContradiction:
		flag := strings.Contains(joined, "never received") && strings.Contains(joined, "already paid")
		return ClassifyResult{Flag: flag, Confidence: 0.9}, nil
	case TaskEntities:
		return stubEntities(joined), nil
	}
	return ClassifyResult{}, nil
}

func stubIntent(text string) ClassifyResult {
	cond := types.ConditionalityLow
	if strings.Contains(text, "if ") || strings.Contains(text, "once ") || strings.Contains(text, "depends") {
		cond = types.ConditionalityHigh
	} else if strings.Contains(text, "try") || strings.Contains(text, "should be able") {
		cond = types.ConditionalityMedium
	}
	switch {
	case strings.Contains(text, "will pay") || strings.Contains(text, "will transfer"):
		return ClassifyResult{Label: types.IntentRepaymentPromise, Confidence: 0.9, Conditionality: cond}
	case strings.Contains(text, "more time") || strings.Contains(text, "next month") || strings.Contains(text, "next week"):
		return ClassifyResult{Label: types.IntentRepaymentDelay, Confidence: 0.8, Conditionality: cond}
	case strings.Contains(text, "won't pay") || strings.Contains(text, "will not pay") || strings.Contains(text, "refuse"):
		return ClassifyResult{Label: types.IntentRefusal, Confidence: 0.85, Conditionality: cond}
	case strings.Contains(text, "not mine") || strings.Contains(text, "too high") || strings.Contains(text, "dispute"):
		return ClassifyResult{Label: types.IntentDispute, Confidence: 0.8, Conditionality: cond}
	case strings.Contains(text, "?"):
		return ClassifyResult{Label: types.IntentInfoSeeking, Confidence: 0.7, Conditionality: cond}
	}
	return ClassifyResult{Label: types.IntentUnknown, Confidence: 0.5, Conditionality: cond}
}

func stubSentiment(text string) ClassifyResult {
	switch {
	case strings.Contains(text, "stress") || strings.Contains(text, "pressure"):
		return ClassifyResult{Label: types.SentimentStressed, Confidence: 0.8}
	case strings.Contains(text, "stop calling") || strings.Contains(text, "fed up"):
		return ClassifyResult{Label: types.SentimentFrustrated, Confidence: 0.8}
	case strings.Contains(text, "worried") || strings.Contains(text, "afraid"):
		return ClassifyResult{Label: types.SentimentAnxious, Confidence: 0.75}
	case strings.Contains(text, "thank you") || strings.Contains(text, "sure,"):
		return ClassifyResult{Label: types.SentimentCalm, Confidence: 0.7}
	}
	return ClassifyResult{Label: types.SentimentNeutral, Confidence: 0.6}
}

func stubEntities(text string) ClassifyResult {
	timeframes := []struct{ phrase, value string }{
		{"today", "today"},
		{"tomorrow", "tomorrow"},
		{"this week", "this_week"},
		{"next week", "next_week"},
		{"this month", "this_month"},
		{"next month", "next_month"},
	}
	var commitment *string
	for _, tf := range timeframes {
		if strings.Contains(text, tf.phrase) {
			v := tf.value
			commitment = &v
			break
		}
	}
	return ClassifyResult{Confidence: 0.7, Commitment: commitment}
}
