// Package diarize reconciles raw diarization output into a clean,
// speaker-attributed utterance sequence. The input speaker tags are opaque
// cluster ids with no stability guarantee; the output uses only AGENT and
// CUSTOMER and satisfies the ordering and span invariants the rest of the
// pipeline relies on.
package diarize

import (
	"errors"
	"sort"
	"strings"
	"unicode"

	"voice-risk-go/internal/config"
	"voice-risk-go/internal/logger"
	"voice-risk-go/internal/types"
)

// ErrEmptyConversation is returned when zero utterances survive
// reconciliation. Surfaced explicitly because it changes the meaning of
// every downstream signal.
var ErrEmptyConversation = errors.New("no utterances survived reconciliation")

// Reconcile turns raw fragments into the validated utterance sequence.
//
// Steps, in order:
//  1. drop fragments with invalid timestamps (start < 0 or end <= start)
//  2. sort chronologically by start
//  3. map opaque cluster ids onto AGENT / CUSTOMER (earliest cluster is
//     AGENT, the next distinct cluster is CUSTOMER, any further clusters
//     fold into CUSTOMER; calls are modeled as exactly two parties)
//  4. merge consecutive same-speaker fragments separated by at most the
//     configured gap
//  5. drop diarization artifacts (empty text, or sub-threshold duration
//     with no alphanumeric content); the noise rule is never applied to
//     AGENT utterances
func Reconcile(fragments []types.RawFragment, cfg config.Config) ([]types.Utterance, error) {
	log := logger.New().WithField("component", "diarize.reconciler")

	valid := dropInvalid(fragments)
	if dropped := len(fragments) - len(valid); dropped > 0 {
		log.WithField("dropped", dropped).Warn("fragments with invalid timestamps dropped")
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Start < valid[j].Start })

	utts := assignSpeakers(valid)
	merged := mergeAdjacent(utts, cfg.MergeGapSec)
	cleaned := dropArtifacts(merged, cfg.MinUtteranceDurSec)

	log.WithField("raw", len(fragments)).
		WithField("merged", len(merged)).
		WithField("final", len(cleaned)).
		Info("reconciliation complete")

	if len(cleaned) == 0 {
		return nil, ErrEmptyConversation
	}
	return cleaned, nil
}

func dropInvalid(fragments []types.RawFragment) []types.RawFragment {
	out := make([]types.RawFragment, 0, len(fragments))
	for _, f := range fragments {
		if f.Start < 0 || f.End <= f.Start {
			continue
		}
		out = append(out, f)
	}
	return out
}

// assignSpeakers maps cluster ids to party labels by first-appearance order.
// The earliest-speaking cluster is AGENT (outbound calls open with the
// agent's script); this is a documented heuristic, not inferred from
// content.
func assignSpeakers(fragments []types.RawFragment) []types.Utterance {
	roles := map[string]types.Speaker{}
	seen := 0
	out := make([]types.Utterance, 0, len(fragments))
	for _, f := range fragments {
		role, ok := roles[f.SpeakerTag]
		if !ok {
			switch seen {
			case 0:
				role = types.SpeakerAgent
			default:
				role = types.SpeakerCustomer
			}
			roles[f.SpeakerTag] = role
			seen++
		}
		out = append(out, types.Utterance{
			Speaker:    role,
			Text:       strings.TrimSpace(f.Text),
			Start:      f.Start,
			End:        f.End,
			Confidence: 1.0,
		})
	}
	return out
}

// mergeAdjacent joins consecutive same-speaker utterances whose gap is at
// most gapSec. Concatenation with a single space only, no semantic edits.
func mergeAdjacent(utts []types.Utterance, gapSec float64) []types.Utterance {
	if len(utts) == 0 {
		return nil
	}
	out := make([]types.Utterance, 0, len(utts))
	current := utts[0]
	for _, u := range utts[1:] {
		gap := u.Start - current.End
		if u.Speaker == current.Speaker && gap <= gapSec {
			if u.Text != "" {
				if current.Text != "" {
					current.Text += " "
				}
				current.Text += u.Text
			}
			if u.End > current.End {
				current.End = u.End
			}
			continue
		}
		out = append(out, current)
		current = u
	}
	return append(out, current)
}

// dropArtifacts removes merged utterances that are diarization noise:
// empty text, or a span shorter than minDur carrying no alphanumeric
// content. Short genuine replies ("yes", "no") survive because they carry
// letters. AGENT utterances are exempt so agent content is never
// speculatively discarded.
func dropArtifacts(utts []types.Utterance, minDur float64) []types.Utterance {
	out := make([]types.Utterance, 0, len(utts))
	for _, u := range utts {
		if u.Text == "" && u.Speaker != types.SpeakerAgent {
			continue
		}
		if u.Speaker != types.SpeakerAgent && u.Duration() < minDur && !hasAlphanumeric(u.Text) {
			continue
		}
		if u.Text == "" {
			// An agent turn reduced to whitespace by trimming still fails
			// the non-empty text invariant; nothing to preserve.
			continue
		}
		out = append(out, u)
	}
	return out
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
