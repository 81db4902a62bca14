package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

// WriteTable writes header and rows as CSV, creating parent directories.
func WriteTable(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// descriptorNames returns the sorted union of descriptor names.
func descriptorNames(tracks []analysis.TrackMetadataRecord) []string {
	seen := map[string]bool{}
	var names []string
	for _, t := range tracks {
		for name := range t.Descriptors {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

var catalogHeader = []string{
	"track_id", "track_name", "artist", "album", "musical", "release_date",
	"track_number", "duration_min", "popularity",
}

func catalogRow(t analysis.TrackMetadataRecord, descriptors []string) []string {
	row := []string{
		t.TrackID, t.Title, t.Artist, t.Album, t.Musical, t.ReleaseDate,
		strconv.Itoa(t.TrackNumber), formatFloat(t.DurationMinutes), strconv.Itoa(t.Popularity),
	}
	for _, name := range descriptors {
		if v, ok := t.Descriptors[name]; ok {
			row = append(row, formatFloat(v))
		} else {
			row = append(row, "")
		}
	}
	return row
}

// WriteCatalog writes tracks in the layout ReadCatalog reads.
func WriteCatalog(path string, tracks []analysis.TrackMetadataRecord) error {
	descriptors := descriptorNames(tracks)
	header := append(append([]string{}, catalogHeader...), descriptors...)
	rows := make([][]string, len(tracks))
	for i, t := range tracks {
		rows[i] = catalogRow(t, descriptors)
	}
	return WriteTable(path, header, rows)
}

var engagementHeader = []string{
	"song_name", "video_count", "view_estimate_millions", "peak_trend_date",
	"weeks_trending", "trend_category", "viral_moment", "celebrity_boost", "notes",
}

func engagementRow(e analysis.EngagementRecord) []string {
	return []string{
		e.SongName, strconv.FormatInt(e.VideoCount, 10), formatFloat(e.ViewEstimateMillions), e.PeakTrendDate,
		strconv.Itoa(e.WeeksTrending), e.TrendCategory, e.ViralMoment, e.CelebrityBoost, e.Notes,
	}
}

// WriteEngagement writes engagement records in the layout ReadEngagement
// reads.
func WriteEngagement(path string, records []analysis.EngagementRecord) error {
	rows := make([][]string, len(records))
	for i, e := range records {
		rows[i] = engagementRow(e)
	}
	return WriteTable(path, engagementHeader, rows)
}

// WriteLinked writes the merged, scored table.
func WriteLinked(path string, records []analysis.LinkedRecord) error {
	tracks := make([]analysis.TrackMetadataRecord, len(records))
	for i, r := range records {
		tracks[i] = r.Track
	}
	descriptors := descriptorNames(tracks)

	header := append(append([]string{}, catalogHeader...), descriptors...)
	header = append(header, engagementHeader...)
	header = append(header, "normalized_title", "match_type", "match_score",
		"virality_score", "virality_rank", "expected_virality", "surprise_factor")

	rows := make([][]string, len(records))
	for i, r := range records {
		row := catalogRow(r.Track, descriptors)
		row = append(row, engagementRow(r.Engagement)...)
		row = append(row,
			r.NormalizedTitle, string(r.MatchType), formatFloat(r.MatchScore),
			formatFloat(r.ViralityScore), strconv.Itoa(r.ViralityRank),
			formatOptional(r.ExpectedVirality), formatOptional(r.SurpriseFactor))
		rows[i] = row
	}
	return WriteTable(path, header, rows)
}

// WriteCorrelations writes computed correlations followed by the
// descriptors that were skipped, with their reason.
func WriteCorrelations(path string, res analysis.CorrelationResult) error {
	header := []string{
		"feature", "observations", "spearman_correlation", "spearman_p_value",
		"pearson_correlation", "pearson_p_value", "significant", "note",
	}
	var rows [][]string
	for _, c := range res.Correlations {
		rows = append(rows, []string{
			c.Descriptor, strconv.Itoa(c.Observations),
			formatFloat(c.RankCorrelation), formatFloat(c.RankPValue),
			formatFloat(c.LinearCorrelation), formatFloat(c.LinearPValue),
			strconv.FormatBool(c.Significant), "",
		})
	}
	for _, s := range res.Skipped {
		rows = append(rows, []string{s.Descriptor, strconv.Itoa(s.Observations), "", "", "", "", "", s.Reason})
	}
	return WriteTable(path, header, rows)
}

// WriteCategories writes content type performance.
func WriteCategories(path string, categories []analysis.CategoryPerformance) error {
	header := []string{"content_type", "avg_virality_score", "num_songs", "total_videos", "avg_weeks_trending"}
	rows := make([][]string, len(categories))
	for i, c := range categories {
		rows[i] = []string{
			c.Category, formatFloat(c.AvgViralityScore), strconv.Itoa(c.NumSongs),
			strconv.FormatInt(c.TotalVideos, 10), formatFloat(c.AvgWeeksTrending),
		}
	}
	return WriteTable(path, header, rows)
}

// WriteInsights writes the headline findings.
func WriteInsights(path string, insights []analysis.Insight) error {
	rows := make([][]string, len(insights))
	for i, in := range insights {
		rows[i] = []string{in.Insight, in.Finding, in.Why}
	}
	return WriteTable(path, []string{"insight", "finding", "why"}, rows)
}

// WriteSurprise writes one side of the surprise ranking.
func WriteSurprise(path string, records []analysis.LinkedRecord) error {
	header := []string{"track_name", "virality_score", "virality_rank", "expected_virality", "surprise_factor", "viral_moment"}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.NormalizedTitle, formatFloat(r.ViralityScore), strconv.Itoa(r.ViralityRank),
			formatOptional(r.ExpectedVirality), formatOptional(r.SurpriseFactor), r.Engagement.ViralMoment,
		}
	}
	return WriteTable(path, header, rows)
}

// WriteUnmatched lists records from either side that did not link.
func WriteUnmatched(path string, u analysis.UnmatchedReport) error {
	header := []string{"source", "title", "normalized_title", "canonical_key"}
	var rows [][]string
	for _, t := range u.Tracks {
		rows = append(rows, []string{"catalog", t.Title, analysis.Normalize(t.Title), analysis.CanonicalKey(t.Title)})
	}
	for _, e := range u.Engagement {
		rows = append(rows, []string{"engagement", e.SongName, analysis.Normalize(e.SongName), analysis.CanonicalKey(e.SongName)})
	}
	return WriteTable(path, header, rows)
}
