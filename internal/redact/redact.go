// Package redact rewrites utterance text so that no raw PII pattern
// survives into storage or embedding. Matching is purely local and
// pattern-based: no network calls, no external failure modes, and the same
// input always produces the same output.
package redact

import (
	"regexp"

	"voice-risk-go/internal/config"
	"voice-risk-go/internal/logger"
	"voice-risk-go/internal/types"
)

// Redaction tokens, one fixed token per category. A match is replaced
// wholesale, never partially masked.
const (
	TokenEmail       = "<EMAIL>"
	TokenOTP         = "<OTP>"
	TokenBankAccount = "<BANK_ACCOUNT>"
	TokenCreditCard  = "<CREDIT_CARD>"
	TokenGovtID      = "<GOVT_ID>"
	TokenPhone       = "<PHONE_NUMBER>"
)

// Patterns are applied in priority order: context-anchored and longer
// categories first, so a card or account number is never consumed by the
// broader phone patterns. A span replaced by a token contains no digits and
// cannot be re-matched, which also makes redaction idempotent.

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// OTP: 4-6 digit code adjacent to a disclosing keyword, in either order.
var (
	otpContextPattern = regexp.MustCompile(`(?i)((?:otp|one[\s\-]?time[\s\-]?password|verification[\s\-]?code|pin|code|cvv)[\s\-.:;#]*(?:is|was|:)?\s*)(\d{4,6})\b`)
	otpReversePattern = regexp.MustCompile(`(?i)\b(\d{4,6})(\s+(?:is|was)\s+(?:the\s+)?(?:otp|one[\s\-]?time[\s\-]?password|verification[\s\-]?code|pin|code)\b)`)
)

// Bank accounts: 9-18 digits anchored to an account keyword.
var bankAccountPattern = regexp.MustCompile(`(?i)((?:account|a/c|acct|acc)[\s\-.:;#]*(?:number|no|num|#)?[\s\-.:;#]*(?:is|was|:)?\s*)(\d[\d\s\-]{7,17}\d)`)

// Payment cards: 13-19 digits with optional space/hyphen separators.
var creditCardPattern = regexp.MustCompile(`\b(?:\d[\s\-]?){12,18}\d\b`)

// National ids: SSN-style XXX-XX-XXXX and 12-digit grouped ids.
var (
	ssnPattern    = regexp.MustCompile(`\b\d{3}[\s\-]\d{2}[\s\-]\d{4}\b`)
	natIDPattern  = regexp.MustCompile(`\b\d{4}[\s\-]?\d{4}[\s\-]?\d{4}\b`)
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[\s\-]?\(?\d{1,5}\)?[\s\-]?\d{1,5}[\s\-]?\d{1,5}`),
		regexp.MustCompile(`\(\d{3,5}\)[\s\-]?\d{3,5}[\s\-]?\d{3,5}`),
		regexp.MustCompile(`\b[6-9]\d{4}[\s\-]?\d{5}\b`),
		regexp.MustCompile(`\b\d{3}[\s\-]\d{3}[\s\-]\d{4}\b`),
	}
)

// RedactText replaces every PII span in text with its category token.
// Idempotent: redacting already-redacted text is a no-op.
func RedactText(text string) string {
	if text == "" {
		return text
	}
	result := emailPattern.ReplaceAllString(text, TokenEmail)
	result = otpContextPattern.ReplaceAllString(result, "${1}"+TokenOTP)
	result = otpReversePattern.ReplaceAllString(result, TokenOTP+"${2}")
	result = bankAccountPattern.ReplaceAllString(result, "${1}"+TokenBankAccount)
	result = creditCardPattern.ReplaceAllString(result, TokenCreditCard)
	result = ssnPattern.ReplaceAllString(result, TokenGovtID)
	result = natIDPattern.ReplaceAllString(result, TokenGovtID)
	for _, p := range phonePatterns {
		result = p.ReplaceAllString(result, TokenPhone)
	}
	return result
}

// Apply runs the normalization pass and then redaction over the utterance
// sequence. Only the text field is rewritten; count, speakers, and
// timestamps are untouched.
func Apply(utterances []types.Utterance, _ config.Config) []types.Utterance {
	log := logger.New().WithField("component", "redact")

	out := make([]types.Utterance, len(utterances))
	for i, u := range utterances {
		u.Text = RedactText(NormalizeText(u.Text))
		out[i] = u
	}

	log.WithField("utterances", len(out)).Info("normalization and redaction complete")
	return out
}
