// Package dataset loads pre-diarized demo fixtures from an xlsx workbook.
// Each row is one fragment; rows sharing a call id form one call. The demo
// endpoint replays these fixtures through the pipeline without touching the
// transcription collaborator.
package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"voice-risk-go/internal/types"
)

// FixtureCall is one complete call's worth of fragments plus its context
// indicators, ready to feed the pipeline.
type FixtureCall struct {
	CallID             string
	LanguageCode       string
	LanguageConfidence float64
	NoiseLevel         string
	CallStability      string
	SpeechNaturalness  string
	Fragments          []types.RawFragment
}

// Load reads the fixture workbook and groups fragment rows per call,
// preserving row order within each call. Column positions are detected from
// header names.
func Load(path string) ([]FixtureCall, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	idx := detectColumns(rows[0])
	if idx.callID == -1 || idx.speaker == -1 || idx.text == -1 {
		return nil, fmt.Errorf("fixture sheet missing call id, speaker, or text columns")
	}

	byCall := map[string]*FixtureCall{}
	var order []string
	for i, r := range rows {
		if i == 0 {
			continue
		}
		id := cell(r, idx.callID)
		if id == "" {
			continue
		}
		call, ok := byCall[id]
		if !ok {
			call = &FixtureCall{
				CallID:             id,
				LanguageCode:       cell(r, idx.language),
				LanguageConfidence: cellFloat(r, idx.langConf),
				NoiseLevel:         cell(r, idx.noise),
				CallStability:      cell(r, idx.stability),
				SpeechNaturalness:  cell(r, idx.naturalness),
			}
			byCall[id] = call
			order = append(order, id)
		}
		call.Fragments = append(call.Fragments, types.RawFragment{
			SpeakerTag: cell(r, idx.speaker),
			Text:       cell(r, idx.text),
			Start:      cellFloat(r, idx.start),
			End:        cellFloat(r, idx.end),
		})
	}

	out := make([]FixtureCall, 0, len(order))
	for _, id := range order {
		out = append(out, *byCall[id])
	}
	return out, nil
}

type columns struct {
	callID, speaker, text, start, end int
	language, langConf                int
	noise, stability, naturalness     int
}

func detectColumns(header []string) columns {
	idx := columns{
		callID: -1, speaker: -1, text: -1, start: -1, end: -1,
		language: -1, langConf: -1, noise: -1, stability: -1, naturalness: -1,
	}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "call") && strings.Contains(l, "id"):
			if idx.callID == -1 {
				idx.callID = i
			}
		case strings.Contains(l, "speaker"):
			idx.speaker = i
		case strings.Contains(l, "text") || strings.Contains(l, "transcript"):
			idx.text = i
		case strings.Contains(l, "start"):
			idx.start = i
		case strings.Contains(l, "end"):
			idx.end = i
		case strings.Contains(l, "lang") && strings.Contains(l, "conf"):
			idx.langConf = i
		case strings.Contains(l, "lang"):
			idx.language = i
		case strings.Contains(l, "noise"):
			idx.noise = i
		case strings.Contains(l, "stab"):
			idx.stability = i
		case strings.Contains(l, "natural"):
			idx.naturalness = i
		}
	}
	return idx
}

func cell(r []string, i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

func cellFloat(r []string, i int) float64 {
	v, _ := strconv.ParseFloat(cell(r, i), 64)
	return v
}
