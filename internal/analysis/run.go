package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ademuri/soundtrack-virality/internal/store"
)

const (
	topPopularityN = 5
	topViralityN   = 10
)

// Inputs are the two tables a run joins.
type Inputs struct {
	Tracks     []TrackMetadataRecord
	Engagement []EngagementRecord
}

// Options configures Run. Zero values fall back to the package defaults.
type Options struct {
	Link        LinkOptions
	Descriptors []string
	SurpriseN   int
	Celebrities []string

	// RunID labels the result. A random one is generated when empty.
	RunID string
	Now   func() time.Time

	Logger *zap.SugaredLogger
}

func (o Options) withDefaults() Options {
	if o.Link.Mode == "" {
		o.Link = DefaultLinkOptions()
	}
	if o.Link.MinSimilarity == 0 {
		o.Link.MinSimilarity = DefaultMinSimilarity
	}
	if o.SurpriseN == 0 {
		o.SurpriseN = DefaultSurpriseN
	}
	if o.Descriptors == nil {
		o.Descriptors = DefaultDescriptors
	}
	if o.Celebrities == nil {
		o.Celebrities = DefaultCelebrities
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}

// Run links, scores and analyzes one batch. Steps that cannot run on the
// batch are recorded in Result.Skips; only workspace failures and context
// cancellation are returned as errors.
func Run(ctx context.Context, in Inputs, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger.With("run_id", opts.RunID)

	res := &Result{
		RunID:          opts.RunID,
		GeneratedAt:    opts.Now().UTC(),
		CatalogRows:    len(in.Tracks),
		EngagementRows: len(in.Engagement),
	}

	res.Linked, res.Unmatched = Link(in.Tracks, in.Engagement, opts.Link)
	log.Infow("linked records",
		"linked", len(res.Linked),
		"unmatched_tracks", len(res.Unmatched.Tracks),
		"unmatched_engagement", len(res.Unmatched.Engagement),
		"mode", opts.Link.Mode)

	if len(res.Linked) == 0 {
		log.Warnw("no records linked, skipping analysis")
		res.skip("scoring", ErrDegenerateBatch)
		return res, nil
	}

	Score(res.Linked)
	ApplyExpected(res.Linked)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Correlations = Correlate(res.Linked, opts.Descriptors)
	for _, s := range res.Correlations.Skipped {
		log.Debugw("descriptor not correlated", "descriptor", s.Descriptor, "reason", s.Reason)
		res.skip("correlation "+s.Descriptor, s.Err)
	}
	if c, err := PopularityVsVideos(res.Linked); err != nil {
		res.skip("popularity vs videos", err)
	} else {
		res.PopularityVsVideos = &c
	}

	res.Surprise = RankSurprise(res.Linked, opts.SurpriseN)
	if !anyBaseline(res.Linked) {
		res.skip("surprise", fmt.Errorf("%w: no record has energy, danceability, valence and acousticness", ErrInsufficientData))
	}

	ws, err := store.New(store.MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}
	defer ws.Close()

	if err := ws.SaveScored(scoredTracks(res.Linked)); err != nil {
		return nil, fmt.Errorf("saving scored tracks: %w", err)
	}

	stats, err := ws.CategoryPerformance()
	if err != nil {
		return nil, fmt.Errorf("aggregating categories: %w", err)
	}
	for _, s := range stats {
		res.Categories = append(res.Categories, CategoryPerformance{
			Category:         s.Category,
			AvgViralityScore: round2(s.AvgViralityScore),
			NumSongs:         s.NumSongs,
			TotalVideos:      s.TotalVideos,
			AvgWeeksTrending: round2(s.AvgWeeksTrending),
		})
	}

	celeb, err := ws.CelebrityComparison(opts.Celebrities)
	if err != nil {
		return nil, fmt.Errorf("comparing celebrity boost: %w", err)
	}
	effect := CelebrityEffect(celeb)

	res.Summary, err = summarize(ws, res.Linked)
	if err != nil {
		return nil, err
	}

	res.Insights = Insights(res.Linked, res.Correlations, res.Categories, &effect)
	log.Infow("analysis complete",
		"correlations", len(res.Correlations.Correlations),
		"categories", len(res.Categories),
		"skips", len(res.Skips))
	return res, nil
}

// Skipped reports whether any step was skipped with an error matching
// target.
func (r *Result) Skipped(target error) bool {
	for _, s := range r.Skips {
		if errors.Is(s.Err, target) {
			return true
		}
	}
	return false
}

func anyBaseline(records []LinkedRecord) bool {
	for _, r := range records {
		if r.ExpectedVirality != nil {
			return true
		}
	}
	return false
}

func scoredTracks(records []LinkedRecord) []store.ScoredTrack {
	tracks := make([]store.ScoredTrack, len(records))
	for i, r := range records {
		tracks[i] = store.ScoredTrack{
			Seq:                  r.seq,
			Title:                r.NormalizedTitle,
			Popularity:           r.Track.Popularity,
			DurationMinutes:      r.Track.DurationMinutes,
			TrendCategory:        r.Engagement.TrendCategory,
			VideoCount:           r.Engagement.VideoCount,
			ViewEstimateMillions: r.Engagement.ViewEstimateMillions,
			WeeksTrending:        r.Engagement.WeeksTrending,
			CelebrityBoost:       r.Engagement.CelebrityBoost,
			ViralityScore:        r.ViralityScore,
		}
	}
	return tracks
}

func summarize(ws *store.Store, records []LinkedRecord) (Summary, error) {
	bySeq := make(map[int]LinkedRecord, len(records))
	s := Summary{
		TotalSongs:    len(records),
		MinPopularity: records[0].Track.Popularity,
		MaxPopularity: records[0].Track.Popularity,
	}
	var total int
	for _, r := range records {
		bySeq[r.seq] = r
		total += r.Track.Popularity
		s.MinPopularity = min(s.MinPopularity, r.Track.Popularity)
		s.MaxPopularity = max(s.MaxPopularity, r.Track.Popularity)
	}
	s.AveragePopularity = round2(float64(total) / float64(len(records)))

	top := func(column string, n int) ([]LinkedRecord, error) {
		seqs, err := ws.TopSeqs(column, n)
		if err != nil {
			return nil, fmt.Errorf("top by %s: %w", column, err)
		}
		out := make([]LinkedRecord, len(seqs))
		for i, seq := range seqs {
			out[i] = bySeq[seq]
		}
		return out, nil
	}

	popular, err := top("popularity", topPopularityN)
	if err != nil {
		return s, err
	}
	for _, r := range popular {
		s.TopByPopularity = append(s.TopByPopularity, fmt.Sprintf("%s - %d", r.NormalizedTitle, r.Track.Popularity))
	}
	s.MostPopular = popular[0].NormalizedTitle

	longest, err := top("duration_min", 1)
	if err != nil {
		return s, err
	}
	s.Longest = longest[0].NormalizedTitle

	viral, err := top("virality_score", topViralityN)
	if err != nil {
		return s, err
	}
	for _, r := range viral {
		s.TopByVirality = append(s.TopByVirality, fmt.Sprintf("%s - %.2f", r.NormalizedTitle, r.ViralityScore))
	}
	return s, nil
}
