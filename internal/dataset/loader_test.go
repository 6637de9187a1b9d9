package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "fixtures.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadGroupsRowsPerCall(t *testing.T) {
	path := writeFixture(t, [][]any{
		{"Call ID", "Speaker", "Text", "Start", "End", "Language", "Lang Confidence", "Noise", "Stability", "Naturalness"},
		{"call-1", "SPEAKER_00", "Hello, about your loan.", 0.0, 2.0, "en", 0.95, "low", "high", "normal"},
		{"call-1", "SPEAKER_01", "I will pay next week.", 2.5, 4.0, "en", 0.95, "low", "high", "normal"},
		{"call-2", "SPEAKER_00", "Good afternoon.", 0.0, 1.0, "hi", 0.9, "medium", "medium", "normal"},
	})

	calls, err := Load(path)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, "call-1", calls[0].CallID)
	require.Len(t, calls[0].Fragments, 2)
	assert.Equal(t, "SPEAKER_01", calls[0].Fragments[1].SpeakerTag)
	assert.InDelta(t, 2.5, calls[0].Fragments[1].Start, 1e-9)
	assert.Equal(t, "en", calls[0].LanguageCode)
	assert.InDelta(t, 0.95, calls[0].LanguageConfidence, 1e-9)

	assert.Equal(t, "call-2", calls[1].CallID)
	assert.Equal(t, "hi", calls[1].LanguageCode)
	assert.Equal(t, "medium", calls[1].NoiseLevel)
}

func TestLoadSkipsRowsWithoutCallID(t *testing.T) {
	path := writeFixture(t, [][]any{
		{"Call ID", "Speaker", "Text", "Start", "End"},
		{"", "SPEAKER_00", "orphan row", 0.0, 1.0},
		{"call-1", "SPEAKER_00", "kept row", 0.0, 1.0},
	})
	calls, err := Load(path)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].Fragments, 1)
}

func TestLoadRejectsMissingColumns(t *testing.T) {
	path := writeFixture(t, [][]any{
		{"Something", "Else"},
		{"a", "b"},
	})
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsEmptySheet(t *testing.T) {
	path := writeFixture(t, [][]any{
		{"Call ID", "Speaker", "Text"},
	})
	_, err := Load(path)
	assert.Error(t, err)
}
