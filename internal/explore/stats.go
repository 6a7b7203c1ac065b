package explore

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ademuri/lyrics-tools/internal/dataset"
)

const previewRows = 5
const previewWidth = 40

// Summary holds the descriptive statistics of a numeric column.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// (linear interpolation) and max.
func Describe(values []float64) Summary {
	s := Summary{Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		s.Std = math.NaN()
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

// quantile interpolates between the closest ranks at position q*(n-1).
// stat.Quantile offers no estimator with this definition.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// ColumnInfo describes one column of the raw table.
type ColumnInfo struct {
	Name  string
	Type  string
	Nulls int
	// Summary is set for numeric columns only.
	Summary *Summary
}

// BasicStats is the printed overview of a dataset.
type BasicStats struct {
	Rows       int
	Columns    []ColumnInfo
	Duplicates int
	Preview    [][]string
}

// ComputeBasicStats infers a type per column, counts missing cells and fully
// duplicated rows, and describes numeric columns.
func ComputeBasicStats(table *dataset.Table) BasicStats {
	stats := BasicStats{Rows: len(table.Rows)}

	for col, name := range table.Header {
		info := ColumnInfo{Name: name}
		var numbers []float64
		numeric, integral := true, true
		for _, row := range table.Rows {
			v := strings.TrimSpace(row[col])
			if v == "" {
				info.Nulls++
				continue
			}
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				integral = false
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				numeric = false
				continue
			}
			numbers = append(numbers, f)
		}

		switch {
		case !numeric:
			info.Type = "object"
		case integral && info.Nulls == 0:
			info.Type = "int64"
		default:
			// Missing cells force a float column, as in most dataframe libraries.
			info.Type = "float64"
		}
		if numeric {
			s := Describe(numbers)
			info.Summary = &s
		}
		stats.Columns = append(stats.Columns, info)
	}

	seen := make(map[string]bool, len(table.Rows))
	for _, row := range table.Rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			stats.Duplicates++
			continue
		}
		seen[key] = true
	}

	for i, row := range table.Rows {
		if i >= previewRows {
			break
		}
		preview := make([]string, len(row))
		for j, cell := range row {
			preview[j] = shorten(strings.Join(strings.Fields(cell), " "), previewWidth)
		}
		stats.Preview = append(stats.Preview, preview)
	}
	return stats
}

// PrintBasicStats renders the overview as console tables.
func PrintBasicStats(out io.Writer, header []string, stats BasicStats) error {
	fmt.Fprintln(out, "\n=== Informações Básicas do Dataset ===")
	fmt.Fprintf(out, "\nLinhas: %d\n", stats.Rows)

	fmt.Fprintln(out, "\nTipos de dados e valores nulos:")
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Coluna", "Tipo", "Nulos"})
	for _, c := range stats.Columns {
		if err := table.Append([]string{c.Name, c.Type, strconv.Itoa(c.Nulls)}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nValores duplicados: %d\n", stats.Duplicates)

	fmt.Fprintln(out, "\nEstatísticas descritivas:")
	describe := tablewriter.NewWriter(out)
	names := []string{""}
	var summaries []*Summary
	for _, c := range stats.Columns {
		if c.Summary != nil {
			names = append(names, c.Name)
			summaries = append(summaries, c.Summary)
		}
	}
	describe.Header(names)
	rows := []struct {
		label string
		value func(*Summary) float64
	}{
		{"count", func(s *Summary) float64 { return float64(s.Count) }},
		{"mean", func(s *Summary) float64 { return s.Mean }},
		{"std", func(s *Summary) float64 { return s.Std }},
		{"min", func(s *Summary) float64 { return s.Min }},
		{"25%", func(s *Summary) float64 { return s.Q25 }},
		{"50%", func(s *Summary) float64 { return s.Median }},
		{"75%", func(s *Summary) float64 { return s.Q75 }},
		{"max", func(s *Summary) float64 { return s.Max }},
	}
	for _, r := range rows {
		line := []string{r.label}
		for _, s := range summaries {
			line = append(line, strconv.FormatFloat(r.value(s), 'f', 6, 64))
		}
		if err := describe.Append(line); err != nil {
			return err
		}
	}
	if err := describe.Render(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nPrimeiras linhas do dataset:")
	preview := tablewriter.NewWriter(out)
	preview.Header(header)
	for _, row := range stats.Preview {
		if err := preview.Append(row); err != nil {
			return err
		}
	}
	return preview.Render()
}

func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
