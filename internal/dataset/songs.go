package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Columns every song dataset must carry.
const (
	ColumnYear   = "Year"
	ColumnLyrics = "Lyrics"
	ColumnTitle  = "Song Title"
	ColumnArtist = "Artist"
)

var RequiredColumns = []string{ColumnYear, ColumnLyrics, ColumnTitle, ColumnArtist}

var (
	ErrEmptyDataset   = errors.New("dataset is empty")
	ErrMissingColumns = errors.New("required columns not found")
)

// Song is one row of the lyrics dataset.
type Song struct {
	// Index is the zero-based row number in the source file.
	Index  int
	Year   int
	Artist string
	Title  string
	Lyrics string
}

// HasLyrics reports whether the lyrics cell was filled in.
func (s Song) HasLyrics() bool {
	return s.Lyrics != ""
}

// Dataset is a loaded song CSV: the raw table plus the typed songs.
type Dataset struct {
	Path  string
	Table *Table
	Songs []Song
}

// LoadSongs reads the song CSV at path. The file must contain at least one
// row, every column in RequiredColumns, and an integer year on every row.
func LoadSongs(path string) (*Dataset, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
	}

	var missing []string
	for _, col := range RequiredColumns {
		if table.Index(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingColumns, missing)
	}

	yearIdx := table.Index(ColumnYear)
	lyricsIdx := table.Index(ColumnLyrics)
	titleIdx := table.Index(ColumnTitle)
	artistIdx := table.Index(ColumnArtist)

	songs := make([]Song, 0, len(table.Rows))
	for i, row := range table.Rows {
		year, err := ParseYear(row[yearIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		// Store the canonical integer form so later stats see an int column.
		row[yearIdx] = strconv.Itoa(year)
		songs = append(songs, Song{
			Index:  i,
			Year:   year,
			Artist: row[artistIdx],
			Title:  row[titleIdx],
			Lyrics: row[lyricsIdx],
		})
	}

	return &Dataset{Path: path, Table: table, Songs: songs}, nil
}

// ParseYear accepts "1959" as well as the float form "1959.0" that
// spreadsheet exports tend to produce.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if year, err := strconv.Atoi(s); err == nil {
		return year, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("year %q is not an integer", s)
	}
	return int(f), nil
}
