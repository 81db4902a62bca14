package analysis

import "time"

// TrackMetadataRecord is one catalog track as returned by the streaming
// metadata collector.
type TrackMetadataRecord struct {
	TrackID         string             `yaml:"track_id,omitempty"`
	Title           string             `yaml:"track_name"`
	Artist          string             `yaml:"artist,omitempty"`
	Album           string             `yaml:"album,omitempty"`
	Musical         string             `yaml:"musical,omitempty"`
	ReleaseDate     string             `yaml:"release_date,omitempty"`
	TrackNumber     int                `yaml:"track_number,omitempty"`
	DurationMinutes float64            `yaml:"duration_min"`
	Popularity      int                `yaml:"popularity"`
	Descriptors     map[string]float64 `yaml:"descriptors,omitempty"`
}

// Descriptor returns a named numeric value for the track. duration_min and
// popularity resolve to the identity fields, everything else to the audio
// descriptor map.
func (t TrackMetadataRecord) Descriptor(name string) (float64, bool) {
	switch name {
	case "duration_min":
		return t.DurationMinutes, true
	case "popularity":
		return float64(t.Popularity), true
	}
	v, ok := t.Descriptors[name]
	return v, ok
}

// EngagementRecord is one song's short-video engagement statistics.
type EngagementRecord struct {
	SongName             string  `yaml:"song_name"`
	VideoCount           int64   `yaml:"video_count"`
	ViewEstimateMillions float64 `yaml:"view_estimate_millions"`
	WeeksTrending        int     `yaml:"weeks_trending"`
	TrendCategory        string  `yaml:"trend_category"`
	PeakTrendDate        string  `yaml:"peak_trend_date,omitempty"`
	ViralMoment          string  `yaml:"viral_moment,omitempty"`
	CelebrityBoost       string  `yaml:"celebrity_boost,omitempty"`
	Notes                string  `yaml:"notes,omitempty"`
}

// LinkedRecord joins one track with one engagement record and carries the
// scores derived from both.
type LinkedRecord struct {
	Track      TrackMetadataRecord `yaml:"track"`
	Engagement EngagementRecord    `yaml:"engagement"`

	NormalizedTitle string    `yaml:"normalized_title"`
	MatchType       MatchType `yaml:"match_type"`
	MatchScore      float64   `yaml:"match_score"`

	ViralityScore    float64  `yaml:"virality_score"`
	ViralityRank     int      `yaml:"virality_rank"`
	ExpectedVirality *float64 `yaml:"expected_virality"`
	SurpriseFactor   *float64 `yaml:"surprise_factor"`

	// seq is the position produced by Link and breaks the last ties.
	seq int
}

// CategoryPerformance aggregates linked records sharing a trend category.
type CategoryPerformance struct {
	Category         string  `yaml:"category"`
	AvgViralityScore float64 `yaml:"avg_virality_score"`
	NumSongs         int     `yaml:"num_songs"`
	TotalVideos      int64   `yaml:"total_videos"`
	AvgWeeksTrending float64 `yaml:"avg_weeks_trending"`
}

// Insight is one headline finding of a run.
type Insight struct {
	Insight string `yaml:"insight"`
	Finding string `yaml:"finding"`
	Why     string `yaml:"why"`
}

// Summary holds the descriptive statistics printed at the top of the report.
type Summary struct {
	TotalSongs        int      `yaml:"total_songs"`
	AveragePopularity float64  `yaml:"avg_popularity"`
	MinPopularity     int      `yaml:"min_popularity"`
	MaxPopularity     int      `yaml:"max_popularity"`
	MostPopular       string   `yaml:"most_popular"`
	Longest           string   `yaml:"longest_song"`
	TopByPopularity   []string `yaml:"top_by_popularity"`
	TopByVirality     []string `yaml:"top_by_virality"`
}

// Skip records a step that could not run on this batch.
type Skip struct {
	Step   string `yaml:"step"`
	Reason string `yaml:"reason"`
	Err    error  `yaml:"-"`
}

// Result is everything one pipeline run produces.
type Result struct {
	RunID       string    `yaml:"run_id"`
	GeneratedAt time.Time `yaml:"generated_at"`

	CatalogRows    int `yaml:"catalog_rows"`
	EngagementRows int `yaml:"engagement_rows"`

	Linked             []LinkedRecord        `yaml:"linked"`
	Unmatched          UnmatchedReport       `yaml:"unmatched"`
	Correlations       CorrelationResult     `yaml:"correlations"`
	PopularityVsVideos *Correlation          `yaml:"popularity_vs_videos,omitempty"`
	Categories         []CategoryPerformance `yaml:"categories"`
	Surprise           SurpriseRanking       `yaml:"surprise"`
	Insights           []Insight             `yaml:"insights"`
	Summary            Summary               `yaml:"summary"`
	Skips              []Skip                `yaml:"skips,omitempty"`
}

func (r *Result) skip(step string, err error) {
	r.Skips = append(r.Skips, Skip{Step: step, Reason: err.Error(), Err: err})
}
