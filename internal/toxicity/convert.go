package toxicity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ademuri/lyrics-tools/internal/dataset"
)

// DefaultColumn is the label column produced by manual annotation and by the
// classifier.
const DefaultColumn = "nivel_toxicidade"

var (
	ErrFileNotFound  = errors.New("CSV de entrada não encontrado")
	ErrMissingColumn = errors.New("coluna não encontrada no CSV")
	ErrSameFile      = errors.New("o CSV de saída não pode ser o próprio CSV de entrada")
)

type Options struct {
	// Column to convert. Defaults to DefaultColumn.
	Column string

	// NewColumn keeps the textual column and writes the scores to
	// "<Column>_num" instead of replacing it.
	NewColumn bool
}

// DefaultOutputPath names the converted file next to the input:
// "songs.csv" becomes "songs_converted.csv".
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)
	return filepath.Join(filepath.Dir(input), stem+"_converted"+ext)
}

// Convert replaces the textual toxicity labels of a CSV column with their
// numeric scores and writes the result to output (DefaultOutputPath when
// empty). The whole column is validated before anything is written; the
// input file is never modified. Empty cells are left empty.
func Convert(input, output string, opts Options) (string, error) {
	column := opts.Column
	if column == "" {
		column = DefaultColumn
	}

	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, input)
		}
		return "", fmt.Errorf("verificando %s: %w", input, err)
	}

	if output == "" {
		output = DefaultOutputPath(input)
	}
	if sameFile(input, output) {
		return "", fmt.Errorf("%w: %s", ErrSameFile, output)
	}

	table, err := dataset.ReadTable(input)
	if err != nil {
		return "", err
	}

	if err := ConvertTable(table, column, opts.NewColumn); err != nil {
		return "", err
	}

	if err := table.WriteFile(output); err != nil {
		return "", err
	}
	return output, nil
}

// ConvertTable applies the label mapping to column in place.
func ConvertTable(table *dataset.Table, column string, newColumn bool) error {
	src := table.Index(column)
	if src < 0 {
		return fmt.Errorf("%w: a coluna '%s' não foi encontrada. Colunas disponíveis: %v",
			ErrMissingColumn, column, table.Header)
	}

	converted := make([]string, len(table.Rows))
	var invalid []string
	seen := make(map[string]bool)
	for i, row := range table.Rows {
		value := row[src]
		if value == "" {
			continue
		}
		level, ok := ParseLevel(value)
		if !ok {
			if !seen[value] {
				seen[value] = true
				invalid = append(invalid, value)
			}
			continue
		}
		converted[i] = FormatScore(level.Score())
	}
	if len(invalid) > 0 {
		return &UnmappedValuesError{Values: invalid}
	}

	dst := src
	if newColumn {
		name := column + "_num"
		dst = table.Index(name)
		if dst < 0 {
			table.Header = append(table.Header, name)
			dst = len(table.Header) - 1
			for i := range table.Rows {
				table.Rows[i] = append(table.Rows[i], "")
			}
		}
	}
	for i := range table.Rows {
		table.Rows[i][dst] = converted[i]
	}
	return nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
