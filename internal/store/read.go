package store

import (
	"fmt"
	"strings"
)

// CategoryStat is the per trend category aggregate.
type CategoryStat struct {
	Category         string
	AvgViralityScore float64
	NumSongs         int
	TotalVideos      int64
	AvgWeeksTrending float64
}

// CategoryPerformance groups the batch by trend category, best mean virality
// first. Equal means are ordered by category name.
func (s *Store) CategoryPerformance() ([]CategoryStat, error) {
	query := `
		SELECT trend_category, AVG(virality_score) AS avg_score, COUNT(*),
			SUM(video_count), AVG(weeks_trending)
		FROM ScoredTrack
		GROUP BY trend_category
		ORDER BY avg_score DESC, trend_category ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var c CategoryStat
		if err := rows.Scan(&c.Category, &c.AvgViralityScore, &c.NumSongs, &c.TotalVideos, &c.AvgWeeksTrending); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		stats = append(stats, c)
	}
	return stats, rows.Err()
}

// CelebrityStat compares tracks whose celebrity_boost mentions one of the
// configured names with the rest.
type CelebrityStat struct {
	WithCount    int
	WithoutCount int
	AvgWith      float64
	AvgWithout   float64
}

// CelebrityComparison splits the batch on a case-sensitive substring match
// of any name against celebrity_boost.
func (s *Store) CelebrityComparison(names []string) (CelebrityStat, error) {
	var stat CelebrityStat
	if len(names) == 0 {
		return stat, nil
	}

	conds := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, n := range names {
		conds[i] = "instr(celebrity_boost, ?) > 0"
		args[i] = n
	}
	match := strings.Join(conds, " OR ")

	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN %[1]s THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN %[1]s THEN 0 ELSE 1 END), 0),
			COALESCE(AVG(CASE WHEN %[1]s THEN virality_score END), 0),
			COALESCE(AVG(CASE WHEN %[1]s THEN NULL ELSE virality_score END), 0)
		FROM ScoredTrack
	`, match)

	var all []interface{}
	for i := 0; i < 4; i++ {
		all = append(all, args...)
	}
	err := s.db.QueryRow(query, all...).Scan(&stat.WithCount, &stat.WithoutCount, &stat.AvgWith, &stat.AvgWithout)
	if err != nil {
		return stat, fmt.Errorf("comparing celebrity boost: %w", err)
	}
	return stat, nil
}

var topColumns = map[string]string{
	"popularity":     "popularity",
	"duration_min":   "duration_min",
	"video_count":    "video_count",
	"virality_score": "virality_score",
}

// TopSeqs returns the seq of the n highest rows by column, ties by title
// then seq.
func (s *Store) TopSeqs(column string, n int) ([]int, error) {
	col, ok := topColumns[column]
	if !ok {
		return nil, fmt.Errorf("unsupported column %q", column)
	}

	query := fmt.Sprintf("SELECT seq FROM ScoredTrack ORDER BY %s DESC, title ASC, seq ASC LIMIT ?", col)
	rows, err := s.db.Query(query, n)
	if err != nil {
		return nil, fmt.Errorf("querying top %s: %w", column, err)
	}
	defer rows.Close()

	var seqs []int
	for rows.Next() {
		var seq int
		if err := rows.Scan(&seq); err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	return seqs, rows.Err()
}
