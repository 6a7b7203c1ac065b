package classify

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ademuri/lyrics-tools/internal/toxicity"
)

type LevelCount struct {
	Level toxicity.Level
	Count int
}

type FlagCount struct {
	Flag  string
	Count int
}

// Summary aggregates a batch of results.
type Summary struct {
	Schema  Schema
	Total   int
	Skipped int

	// Levels holds every known level in severity order, for level profiles.
	Levels []LevelCount

	MeanScore float64
	MaxScore  float64
	MinScore  float64

	Flags []FlagCount
}

// Summarize computes the batch statistics. skipped is the number of songs
// that produced no result.
func Summarize(p *Profile, results []Result, skipped int) Summary {
	s := Summary{Schema: p.Schema, Total: len(results), Skipped: skipped}

	if p.Schema == SchemaLevel {
		counts := map[toxicity.Level]int{}
		for _, r := range results {
			counts[r.Level]++
		}
		for _, l := range toxicity.Levels {
			s.Levels = append(s.Levels, LevelCount{Level: l, Count: counts[l]})
		}
	}

	if len(results) > 0 {
		scores := make([]float64, len(results))
		for i, r := range results {
			scores[i] = r.Score
		}
		s.MeanScore = stat.Mean(scores, nil)
		s.MaxScore = floats.Max(scores)
		s.MinScore = floats.Min(scores)
	}

	for i, name := range p.Flags {
		fc := FlagCount{Flag: name}
		for _, r := range results {
			if flagAt(r.Flags, i) {
				fc.Count++
			}
		}
		s.Flags = append(s.Flags, fc)
	}
	return s
}

// Print writes the summary as console tables.
func (s Summary) Print(out io.Writer) error {
	fmt.Fprintf(out, "Estatísticas:\n→ Total analisado: %d\n→ Ignoradas: %d\n", s.Total, s.Skipped)
	if s.Total > 0 {
		fmt.Fprintf(out, "→ Média score: %.2f\n→ Máximo: %.2f\n→ Mínimo: %.2f\n", s.MeanScore, s.MaxScore, s.MinScore)
	}

	if len(s.Levels) > 0 {
		table := tablewriter.NewWriter(out)
		table.Header([]string{"Nível", "Músicas"})
		for _, lc := range s.Levels {
			if err := table.Append([]string{string(lc.Level), strconv.Itoa(lc.Count)}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(s.Flags) > 0 {
		table := tablewriter.NewWriter(out)
		table.Header([]string{"Indicador", "Músicas"})
		for _, fc := range s.Flags {
			if err := table.Append([]string{fc.Flag, strconv.Itoa(fc.Count)}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	return nil
}
