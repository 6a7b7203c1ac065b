package toxicity

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ademuri/lyrics-tools/internal/dataset"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rotulos.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func readColumn(t *testing.T, path, column string) []string {
	t.Helper()
	table, err := dataset.ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable(%s): %v", path, err)
	}
	values, err := table.Column(column)
	if err != nil {
		t.Fatalf("Column(%s): %v", column, err)
	}
	return values
}

func TestScore(t *testing.T) {
	want := map[string]float64{
		"na":          0.0,
		"muito baixo": 0.1,
		"baixo":       0.2,
		"moderado":    0.3,
		"alto":        0.8,
		"muito alto":  1.0,
		"NA":          0.0,
		"Muito Alto":  1.0,
	}
	for label, score := range want {
		got, err := Score(label)
		if err != nil {
			t.Errorf("Score(%q) error: %v", label, err)
			continue
		}
		if got != score {
			t.Errorf("Score(%q) = %v, want %v", label, got, score)
		}
	}
}

func TestScoreUnmapped(t *testing.T) {
	for _, label := range []string{"extremo", "0.1", "muitoalto", "", " alto", "muito   alto", "MODERADO\t"} {
		_, err := Score(label)
		var unmapped *UnmappedValuesError
		if !errors.As(err, &unmapped) {
			t.Errorf("Score(%q) error = %v, want UnmappedValuesError", label, err)
			continue
		}
		if diff := cmp.Diff([]string{label}, unmapped.Values); diff != "" {
			t.Errorf("Score(%q) unmapped values mismatch (-want +got):\n%s", label, diff)
		}
	}
}

func TestLevelRank(t *testing.T) {
	for i, l := range Levels {
		if l.Rank() != i {
			t.Errorf("%q.Rank() = %d, want %d", l, l.Rank(), i)
		}
	}
	if Level("extremo").Rank() != -1 {
		t.Errorf("unknown level should rank -1")
	}
}

func TestFormatScore(t *testing.T) {
	for in, want := range map[float64]string{0: "0.0", 0.1: "0.1", 1: "1.0", 0.8: "0.8"} {
		if got := FormatScore(in); got != want {
			t.Errorf("FormatScore(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestConvertReplacesColumn(t *testing.T) {
	input := writeCSV(t, "titulo,nivel_toxicidade\na,Alto\nb,na\nc,\nd,muito baixo\n")

	out, err := Convert(input, "", Options{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if want := filepath.Join(filepath.Dir(input), "rotulos_converted.csv"); out != want {
		t.Errorf("Convert output = %q, want %q", out, want)
	}

	got := readColumn(t, out, "nivel_toxicidade")
	want := []string{"0.8", "0.0", "", "0.1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("converted column mismatch (-want +got):\n%s", diff)
	}

	original := readColumn(t, input, "nivel_toxicidade")
	if diff := cmp.Diff([]string{"Alto", "na", "", "muito baixo"}, original); diff != "" {
		t.Errorf("input file was modified (-want +got):\n%s", diff)
	}
}

func TestConvertNewColumnTwice(t *testing.T) {
	input := writeCSV(t, "titulo,nivel_toxicidade\na,Alto\nb,moderado\n")
	first := filepath.Join(t.TempDir(), "first.csv")
	second := filepath.Join(t.TempDir(), "second.csv")

	if _, err := Convert(input, first, Options{NewColumn: true}); err != nil {
		t.Fatalf("Convert (first): %v", err)
	}
	if _, err := Convert(first, second, Options{NewColumn: true}); err != nil {
		t.Fatalf("Convert (second): %v", err)
	}

	table, err := dataset.ReadTable(second)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if diff := cmp.Diff([]string{"titulo", "nivel_toxicidade", "nivel_toxicidade_num"}, table.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Alto", "moderado"}, readColumn(t, second, "nivel_toxicidade")); diff != "" {
		t.Errorf("original column changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"0.8", "0.3"}, readColumn(t, second, "nivel_toxicidade_num")); diff != "" {
		t.Errorf("numeric column mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertAlreadyNumericFails(t *testing.T) {
	input := writeCSV(t, "nivel_toxicidade\nalto\nbaixo\n")
	converted, err := Convert(input, "", Options{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	_, err = Convert(converted, filepath.Join(t.TempDir(), "again.csv"), Options{})
	var unmapped *UnmappedValuesError
	if !errors.As(err, &unmapped) {
		t.Fatalf("re-converting numeric column: got %v, want UnmappedValuesError", err)
	}
	if diff := cmp.Diff([]string{"0.8", "0.2"}, unmapped.Values); diff != "" {
		t.Errorf("unmapped values mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertListsEveryUnmappedValue(t *testing.T) {
	input := writeCSV(t, "nivel_toxicidade\nalto\nextremo\nleve\nextremo\n")
	output := filepath.Join(t.TempDir(), "out.csv")

	_, err := Convert(input, output, Options{})
	var unmapped *UnmappedValuesError
	if !errors.As(err, &unmapped) {
		t.Fatalf("Convert: got %v, want UnmappedValuesError", err)
	}
	if diff := cmp.Diff([]string{"extremo", "leve"}, unmapped.Values); diff != "" {
		t.Errorf("unmapped values mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output should not be written when validation fails, stat err = %v", err)
	}
}

func TestConvertRejectsPaddedLabels(t *testing.T) {
	input := writeCSV(t, "nivel_toxicidade\nalto\n\" alto\"\n\"   \"\n\n")
	output := filepath.Join(t.TempDir(), "out.csv")

	_, err := Convert(input, output, Options{})
	var unmapped *UnmappedValuesError
	if !errors.As(err, &unmapped) {
		t.Fatalf("Convert: got %v, want UnmappedValuesError", err)
	}
	if diff := cmp.Diff([]string{" alto", "   "}, unmapped.Values); diff != "" {
		t.Errorf("unmapped values mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertMissingFile(t *testing.T) {
	_, err := Convert(filepath.Join(t.TempDir(), "nope.csv"), "", Options{})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Convert: got %v, want ErrFileNotFound", err)
	}
}

func TestConvertMissingColumn(t *testing.T) {
	input := writeCSV(t, "titulo,pontuacao\na,alto\n")
	_, err := Convert(input, "", Options{})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Convert: got %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), "pontuacao") {
		t.Errorf("error should list available columns: %v", err)
	}
}

func TestConvertCustomColumn(t *testing.T) {
	input := writeCSV(t, "Pontuacao_manual\nbaixo\n")
	out, err := Convert(input, "", Options{Column: "Pontuacao_manual"})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if diff := cmp.Diff([]string{"0.2"}, readColumn(t, out, "Pontuacao_manual")); diff != "" {
		t.Errorf("converted column mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertRefusesToOverwriteInput(t *testing.T) {
	input := writeCSV(t, "nivel_toxicidade\nalto\n")
	if _, err := Convert(input, input, Options{}); !errors.Is(err, ErrSameFile) {
		t.Fatalf("Convert onto itself: got %v, want ErrSameFile", err)
	}
}
