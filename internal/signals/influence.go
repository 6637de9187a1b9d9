package signals

import (
	"strings"

	"voice-risk-go/internal/types"
)

// Leading-language phrases an agent might use to steer the customer toward
// an admission. AGENT text is read-only context here; a hit sets
// agent_influence_detected and never feeds any customer-attributed signal.
var leadingPhrases = []string{
	"wouldn't you agree",
	"you have to admit",
	"surely you",
	"you must agree",
	"don't you think",
	"obviously",
	"clearly you",
	"as you know",
}

// DetectAgentInfluence reports whether any AGENT utterance contains a
// leading-language phrase.
func DetectAgentInfluence(utterances []types.Utterance) bool {
	for _, u := range utterances {
		if u.Speaker != types.SpeakerAgent {
			continue
		}
		text := strings.ToLower(u.Text)
		for _, phrase := range leadingPhrases {
			if strings.Contains(text, phrase) {
				return true
			}
		}
	}
	return false
}
