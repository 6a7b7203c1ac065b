package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrAmbiguousRun = errors.New("run id prefix matches several runs")
)

const runColumns = "id, profile, schema, flags, model, started, finished, processed, accepted, skipped, csv_path, json_path"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var flags string
	var finished sql.NullTime
	err := row.Scan(&r.ID, &r.Profile, &r.Schema, &flags, &r.Model, &r.Started, &finished,
		&r.Processed, &r.Accepted, &r.Skipped, &r.CSVPath, &r.JSONPath)
	if err != nil {
		return Run{}, err
	}
	if flags != "" {
		r.Flags = strings.Split(flags, ",")
	}
	if finished.Valid {
		r.Finished = finished.Time
	}
	return r, nil
}

// GetRun looks a run up by its id or by a unique id prefix.
func (s *Store) GetRun(id string) (Run, error) {
	rows, err := s.db.Query("SELECT "+runColumns+" FROM Run WHERE id = ? OR id LIKE ? || '%' ORDER BY id = ? DESC LIMIT 2", id, id, id)
	if err != nil {
		return Run{}, fmt.Errorf("querying run %q: %w", id, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return Run{}, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}

	switch {
	case len(runs) == 0:
		return Run{}, fmt.Errorf("%q: %w", id, ErrRunNotFound)
	case runs[0].ID == id || len(runs) == 1:
		return runs[0], nil
	default:
		return Run{}, fmt.Errorf("%q: %w", id, ErrAmbiguousRun)
	}
}

// ListRuns returns every run, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query("SELECT " + runColumns + " FROM Run ORDER BY started DESC")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetClassifications returns the results of a run in song order.
func (s *Store) GetClassifications(runID string) ([]Classification, error) {
	query := `
	SELECT song_index, title, artist, year, level, score, flags, justification, attempts
	FROM Classification
	WHERE run = ?
	ORDER BY song_index
	`
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("querying classifications: %w", err)
	}
	defer rows.Close()

	var results []Classification
	for rows.Next() {
		var c Classification
		var flags string
		if err := rows.Scan(&c.SongIndex, &c.Title, &c.Artist, &c.Year, &c.Level, &c.Score, &flags, &c.Justification, &c.Attempts); err != nil {
			return nil, err
		}
		c.Flags = decodeFlags(flags)
		results = append(results, c)
	}
	return results, rows.Err()
}
