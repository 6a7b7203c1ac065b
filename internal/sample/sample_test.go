package sample

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ademuri/lyrics-tools/internal/dataset"
)

func songs(n int) []dataset.Song {
	var out []dataset.Song
	for i := 0; i < n; i++ {
		s := dataset.Song{Index: i, Year: 1959 + i, Artist: "Artist", Title: "Song"}
		if i%3 != 0 {
			s.Lyrics = "some lyrics"
		}
		out = append(out, s)
	}
	return out
}

func TestSampleSkipsMissingLyrics(t *testing.T) {
	picked, err := Sample(songs(30), 10, DefaultSeed)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(picked) != 10 {
		t.Fatalf("Sample returned %d songs, want 10", len(picked))
	}
	seen := map[int]bool{}
	for _, s := range picked {
		if !s.HasLyrics() {
			t.Errorf("sampled song %d has no lyrics", s.Index)
		}
		if seen[s.Index] {
			t.Errorf("song %d sampled twice", s.Index)
		}
		seen[s.Index] = true
	}
}

func TestSampleIsDeterministic(t *testing.T) {
	first, err := Sample(songs(50), 30, DefaultSeed)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	second, err := Sample(songs(50), 30, DefaultSeed)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same seed gave different samples (-first +second):\n%s", diff)
	}

	other, err := Sample(songs(50), 30, 7)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if cmp.Equal(first, other) {
		t.Errorf("different seeds should give different samples")
	}
}

func TestSampleTooMany(t *testing.T) {
	if _, err := Sample(songs(3), 3, DefaultSeed); err == nil {
		t.Fatalf("Sample should fail when fewer songs have lyrics than requested")
	}
}

func TestWriteTemplateByteIdentical(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	if _, err := WriteTemplate(a, songs(60), DefaultSize, DefaultSeed); err != nil {
		t.Fatalf("WriteTemplate(a): %v", err)
	}
	if _, err := WriteTemplate(b, songs(60), DefaultSize, DefaultSeed); err != nil {
		t.Fatalf("WriteTemplate(b): %v", err)
	}

	aBytes, err := os.ReadFile(a)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	bBytes, err := os.ReadFile(b)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(aBytes, bBytes) {
		t.Errorf("templates differ for the same seed")
	}

	table, err := dataset.ReadTable(a)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if diff := cmp.Diff(TemplateHeader, table.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if len(table.Rows) != DefaultSize {
		t.Errorf("template has %d rows, want %d", len(table.Rows), DefaultSize)
	}
	for _, row := range table.Rows {
		if row[4] != "" || row[5] != "" || row[6] != "" {
			t.Errorf("annotation columns should be blank: %v", row)
		}
	}
}
