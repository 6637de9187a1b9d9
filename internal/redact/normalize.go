package redact

import (
	"regexp"
	"strings"
)

// The normalization pass runs strictly before redaction inside the same
// phase. It removes filler words and expands spoken contractions without
// changing meaning and without altering which spans later classify as PII
// (no substitution introduces or removes digit runs).

var fillerWords = []string{
	"uh", "uhh", "uhhh", "um", "umm", "ummm",
	"hmm", "hmmm", "hmmmm", "er", "err",
	"ah", "ahh", "mhm", "uh-huh", "uh huh",
}

var fillerPattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoteAll(fillerWords), "|") + `)\b`)

// Spoken-form expansions are restricted to meaning-preserving substitutions.
var spokenForms = map[string]string{
	"gonna":   "going to",
	"gotta":   "got to",
	"wanna":   "want to",
	"kinda":   "kind of",
	"sorta":   "sort of",
	"dunno":   "do not know",
	"lemme":   "let me",
	"gimme":   "give me",
	"coulda":  "could have",
	"shoulda": "should have",
	"woulda":  "would have",
	"ain't":   "is not",
	"y'all":   "you all",
	"tryna":   "trying to",
	"outta":   "out of",
}

var spokenFormPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(quoteAll(keys(spokenForms)), "|") + `)\b`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeText removes fillers, expands spoken forms, and collapses
// whitespace. Deterministic and idempotent.
func NormalizeText(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	result := fillerPattern.ReplaceAllString(text, "")
	result = spokenFormPattern.ReplaceAllStringFunc(result, func(m string) string {
		return spokenForms[strings.ToLower(m)]
	})
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(result, " "))
}

func quoteAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = regexp.QuoteMeta(w)
	}
	return out
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
