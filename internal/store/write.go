package store

import (
	"fmt"
	"strings"
	"time"
)

// Run is one classification batch.
type Run struct {
	ID      string
	Profile string
	Schema  string
	Flags   []string
	Model   string
	Started time.Time
	// Finished is zero while the run is in progress or if it crashed.
	Finished  time.Time
	Processed int
	Accepted  int
	Skipped   int
	CSVPath   string
	JSONPath  string
}

// Classification is an accepted result of a run.
type Classification struct {
	SongIndex     int
	Title         string
	Artist        string
	Year          int
	Level         string
	Score         float64
	Flags         []bool
	Justification string
	Attempts      int
}

// CreateRun records the start of a run.
func (s *Store) CreateRun(run Run) error {
	_, err := s.db.Exec(
		"INSERT INTO Run (id, profile, schema, flags, model, started) VALUES (?, ?, ?, ?, ?, ?)",
		run.ID, run.Profile, run.Schema, strings.Join(run.Flags, ","), run.Model, run.Started.UTC())
	if err != nil {
		return fmt.Errorf("inserting run %q: %w", run.ID, err)
	}
	return nil
}

// AddClassification stores a result, replacing any earlier result for the
// same song in the run.
func (s *Store) AddClassification(runID string, c Classification) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO Classification
		(run, song_index, title, artist, year, level, score, flags, justification, attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, c.SongIndex, c.Title, c.Artist, c.Year, c.Level, c.Score, encodeFlags(c.Flags), c.Justification, c.Attempts)
	if err != nil {
		return fmt.Errorf("inserting classification %d for run %q: %w", c.SongIndex, runID, err)
	}
	return nil
}

// FinishRun stores the final counts and output paths of run.
func (s *Store) FinishRun(run Run) error {
	res, err := s.db.Exec(`
		UPDATE Run SET finished = ?, processed = ?, accepted = ?, skipped = ?, csv_path = ?, json_path = ?
		WHERE id = ?`,
		run.Finished.UTC(), run.Processed, run.Accepted, run.Skipped, run.CSVPath, run.JSONPath, run.ID)
	if err != nil {
		return fmt.Errorf("updating run %q: %w", run.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating run %q: %w", run.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("run %q: %w", run.ID, ErrRunNotFound)
	}
	return nil
}

func encodeFlags(flags []bool) string {
	var b strings.Builder
	for _, f := range flags {
		if f {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func decodeFlags(s string) []bool {
	flags := make([]bool, len(s))
	for i := range s {
		flags[i] = s[i] == '1'
	}
	return flags
}
