package dataset

import (
	"fmt"
	"strings"
)

// ManualExample is a hand-labelled lyric used as a few-shot prompt example.
type ManualExample struct {
	Lyrics        string
	Label         string
	Justification string
}

// Header names accepted for each field of the manual-label CSV, compared
// after Fold.
var (
	manualLyricsColumns        = []string{"Letra", "Lyrics"}
	manualLabelColumns         = []string{"Pontuacao_manual", "Pontuação_manual", "nivel_toxicidade"}
	manualJustificationColumns = []string{"Justificativa", "Justification"}
)

// LoadManualExamples reads the hand-labelled CSV. Rows without lyrics are
// skipped.
func LoadManualExamples(path string) ([]ManualExample, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	lyricsIdx := firstFoldedIndex(table, manualLyricsColumns)
	labelIdx := firstFoldedIndex(table, manualLabelColumns)
	justIdx := firstFoldedIndex(table, manualJustificationColumns)
	if lyricsIdx < 0 || labelIdx < 0 {
		return nil, fmt.Errorf("%s: %w: need %s and %s, have %v",
			path, ErrMissingColumns, manualLyricsColumns[0], manualLabelColumns[0], table.Header)
	}

	var examples []ManualExample
	for _, row := range table.Rows {
		lyrics := strings.TrimSpace(row[lyricsIdx])
		if lyrics == "" {
			continue
		}
		example := ManualExample{
			Lyrics: lyrics,
			Label:  strings.TrimSpace(row[labelIdx]),
		}
		if justIdx >= 0 {
			example.Justification = strings.TrimSpace(row[justIdx])
		}
		examples = append(examples, example)
	}
	return examples, nil
}

func firstFoldedIndex(t *Table, candidates []string) int {
	for _, c := range candidates {
		if idx := t.FoldedIndex(c); idx >= 0 {
			return idx
		}
	}
	return -1
}
