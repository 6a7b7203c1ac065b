package store

import (
	"fmt"
)

// ArtistToxicity aggregates one artist's results within a run.
type ArtistToxicity struct {
	Artist    string
	Songs     int64
	Flagged   int64
	MeanScore float64
}

// YearToxicity aggregates one release year's results within a run.
type YearToxicity struct {
	Year      int
	Songs     int64
	MeanScore float64
}

// GetTopArtists ranks the artists of a run by how many of their songs scored
// above zero, then by mean score.
func (s *Store) GetTopArtists(runID string, limit int) ([]ArtistToxicity, error) {
	query := `
	SELECT artist, COUNT(*), SUM(CASE WHEN score > 0 THEN 1 ELSE 0 END), AVG(score)
	FROM Classification
	WHERE run = ?
	GROUP BY artist
	ORDER BY 3 DESC, 4 DESC, artist
	LIMIT ?
	`
	rows, err := s.db.Query(query, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top artists: %w", err)
	}
	defer rows.Close()

	var results []ArtistToxicity
	for rows.Next() {
		var at ArtistToxicity
		if err := rows.Scan(&at.Artist, &at.Songs, &at.Flagged, &at.MeanScore); err != nil {
			return nil, err
		}
		results = append(results, at)
	}
	return results, rows.Err()
}

// GetToxicityByYear returns the mean score of a run per release year.
func (s *Store) GetToxicityByYear(runID string) ([]YearToxicity, error) {
	query := `
	SELECT year, COUNT(*), AVG(score)
	FROM Classification
	WHERE run = ?
	GROUP BY year
	ORDER BY year
	`
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("querying toxicity by year: %w", err)
	}
	defer rows.Close()

	var results []YearToxicity
	for rows.Next() {
		var yt YearToxicity
		if err := rows.Scan(&yt.Year, &yt.Songs, &yt.MeanScore); err != nil {
			return nil, err
		}
		results = append(results, yt)
	}
	return results, rows.Err()
}
