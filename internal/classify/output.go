package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/ademuri/lyrics-tools/internal/dataset"
	"github.com/ademuri/lyrics-tools/internal/toxicity"
)

// Columns returns the output columns for the profile, in order.
func Columns(p *Profile) []string {
	cols := []string{"indice", "titulo", "artista", "ano", p.ValueColumn()}
	cols = append(cols, p.Flags...)
	return append(cols, "justificativa")
}

// ResultsTable lays the results out as CSV rows.
func ResultsTable(p *Profile, results []Result) *dataset.Table {
	table := &dataset.Table{Header: Columns(p)}
	for _, r := range results {
		row := []string{strconv.Itoa(r.Index), r.Title, r.Artist, strconv.Itoa(r.Year)}
		if p.Schema == SchemaScore {
			row = append(row, toxicity.FormatScore(r.Score))
		} else {
			row = append(row, string(r.Level))
		}
		for i := range p.Flags {
			row = append(row, strconv.FormatBool(flagAt(r.Flags, i)))
		}
		table.Rows = append(table.Rows, append(row, r.Justification))
	}
	return table
}

// WriteCSV writes the results to path.
func WriteCSV(path string, p *Profile, results []Result) error {
	return ResultsTable(p, results).WriteFile(path)
}

// WriteJSON writes the results to path as an indented JSON array whose
// objects keep the CSV column order.
func WriteJSON(path string, p *Profile, results []Result) error {
	records := make([]record, 0, len(results))
	for _, r := range results {
		records = append(records, newRecord(p, r))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

type field struct {
	key   string
	value any
}

// record is a JSON object with a fixed key order.
type record []field

func newRecord(p *Profile, r Result) record {
	rec := record{
		{"indice", r.Index},
		{"titulo", r.Title},
		{"artista", r.Artist},
		{"ano", r.Year},
	}
	if p.Schema == SchemaScore {
		rec = append(rec, field{"score", r.Score})
	} else {
		rec = append(rec, field{"nivel_toxicidade", string(r.Level)})
	}
	for i, name := range p.Flags {
		rec = append(rec, field{name, flagAt(r.Flags, i)})
	}
	return append(rec, field{"justificativa", r.Justification})
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(f.key)
		if err != nil {
			return nil, err
		}
		value, err := marshalNoEscape(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func flagAt(flags []bool, i int) bool {
	return i < len(flags) && flags[i]
}
