package signals

import (
	"regexp"
	"strings"

	"voice-risk-go/internal/types"
)

// Obligation strength is the one dimension that is never delegated: it is
// derived locally from the intent label, its conditionality, and linguistic
// commitment markers in the customer's speech.

var strongMarkers = compileMarkers([]string{
	`\bI will pay\b`,
	`\bI am going to pay\b`,
	`\bI promise\b`,
	`\bguarantee\b`,
	`\bfor sure\b`,
	`\bdefinitely\b`,
	`\bcertainly\b`,
	`\babsolutely\b`,
	`\bwithout fail\b`,
	`\bI commit\b`,
	`\bI assure\b`,
	`\byou have my word\b`,
	`\bcount on it\b`,
	`\bI will clear\b`,
	`\bI will settle\b`,
	`\bI will transfer\b`,
})

var weakMarkers = compileMarkers([]string{
	`\bI think I can\b`,
	`\bmaybe\b`,
	`\bprobably\b`,
	`\bpossibly\b`,
	`\bI might\b`,
	`\bI may\b`,
	`\bnot sure\b`,
	`\bI hope\b`,
	`\bI will try\b`,
	`\bI should be able\b`,
	`\blet me see\b`,
	`\blet me check\b`,
	`\bI need to check\b`,
	`\bI do not know\b`,
	`\bhard to say\b`,
})

var conditionalMarkers = compileMarkers([]string{
	`\bif\b`,
	`\bonce\b`,
	`\bdepends on\b`,
	`\bsubject to\b`,
	`\bprovided that\b`,
	`\bas soon as\b`,
	`\bonly if\b`,
	`\bin case\b`,
	`\bassuming\b`,
	`\bafter\b.*\b(?:salary|money|payment|funds|cheque|check)\b`,
	`\bwhen\b.*\b(?:comes|arrives|gets|receive|cleared)\b`,
})

func compileMarkers(patterns []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + strings.Join(patterns, "|"))
}

var noObligationIntents = map[string]bool{
	types.IntentRefusal:     true,
	types.IntentDeflection:  true,
	types.IntentInfoSeeking: true,
	types.IntentDispute:     true,
	types.IntentUnknown:     true,
}

// DeriveObligation maps a classified intent plus customer speech to an
// obligation strength. Pure function; no I/O.
func DeriveObligation(intent types.Intent, customerText string) string {
	if noObligationIntents[intent.Label] {
		return types.ObligationNone
	}

	strongCount := len(strongMarkers.FindAllString(customerText, -1))
	weakCount := len(weakMarkers.FindAllString(customerText, -1))
	conditionalCount := len(conditionalMarkers.FindAllString(customerText, -1))

	// High conditionality dominates every marker signal.
	if intent.Conditionality == types.ConditionalityHigh {
		return types.ObligationConditional
	}

	switch intent.Label {
	case types.IntentRepaymentPromise:
		if intent.Conditionality == types.ConditionalityLow {
			if strongCount > 0 {
				return types.ObligationStrong
			}
			return types.ObligationWeak
		}
		// medium conditionality
		if conditionalCount > 0 {
			return types.ObligationConditional
		}
		if strongCount > weakCount {
			return types.ObligationWeak
		}
		return types.ObligationConditional

	case types.IntentRepaymentDelay:
		if intent.Conditionality == types.ConditionalityLow {
			return types.ObligationWeak
		}
		return types.ObligationConditional
	}

	return types.ObligationNone
}
