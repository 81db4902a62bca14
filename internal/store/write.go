package store

import "fmt"

// ScoredTrack is one linked, scored record as the workspace sees it.
type ScoredTrack struct {
	Seq                  int
	Title                string
	Popularity           int
	DurationMinutes      float64
	TrendCategory        string
	VideoCount           int64
	ViewEstimateMillions float64
	WeeksTrending        int
	CelebrityBoost       string
	ViralityScore        float64
}

// SaveScored replaces the workspace contents with tracks, transactionally.
func (s *Store) SaveScored(tracks []ScoredTrack) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM ScoredTrack"); err != nil {
		return fmt.Errorf("clearing scored tracks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO ScoredTrack (
			seq, title, popularity, duration_min, trend_category, video_count,
			view_estimate_millions, weeks_trending, celebrity_boost, virality_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tracks {
		_, err := stmt.Exec(t.Seq, t.Title, t.Popularity, t.DurationMinutes, t.TrendCategory, t.VideoCount,
			t.ViewEstimateMillions, t.WeeksTrending, t.CelebrityBoost, t.ViralityScore)
		if err != nil {
			return fmt.Errorf("inserting track %q: %w", t.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
