package analysis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func runInputs() Inputs {
	return Inputs{
		Tracks: []TrackMetadataRecord{
			{Title: `Dancing Through Life - From "Wicked"`, Popularity: 70, DurationMinutes: 4.1, Descriptors: audio(0.7, 0.7, 0.6, 0.2)},
			{Title: `Popular - From "Wicked"`, Popularity: 82, DurationMinutes: 3.6, Descriptors: audio(0.5, 0.6, 0.7, 0.3)},
			{Title: `What Is This Feeling? - From "Wicked"`, Popularity: 76, DurationMinutes: 3.2, Descriptors: audio(0.4, 0.3, 0.3, 0.6)},
			{Title: `Overture - From "Wicked"`, Popularity: 40, DurationMinutes: 5.9},
		},
		Engagement: []EngagementRecord{
			{SongName: "Dancing Through Life", VideoCount: 100, ViewEstimateMillions: 10, WeeksTrending: 4, TrendCategory: "Dance Challenge", CelebrityBoost: "Jonathan Bailey", ViralMoment: "Library dance"},
			{SongName: "Popular", VideoCount: 50, ViewEstimateMillions: 5, WeeksTrending: 2, TrendCategory: "Lip Sync", ViralMoment: "Makeover"},
			{SongName: "What Is This Feeling?", VideoCount: 1200, ViewEstimateMillions: 20, WeeksTrending: 8, TrendCategory: "Dance Challenge", CelebrityBoost: "Ariana Grande", ViralMoment: "Roommate skits"},
			{SongName: "Wonderful", VideoCount: 10, ViewEstimateMillions: 1, WeeksTrending: 1, TrendCategory: "Lip Sync"},
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestRun(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	res, err := Run(context.Background(), runInputs(), Options{
		RunID:  "run-1",
		Now:    fixedNow,
		Logger: zap.New(core).Sugar(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.RunID != "run-1" || !res.GeneratedAt.Equal(fixedNow()) {
		t.Errorf("RunID/GeneratedAt = %q/%v", res.RunID, res.GeneratedAt)
	}
	if len(res.Linked) != 3 {
		t.Fatalf("linked %d records, want 3", len(res.Linked))
	}
	if len(res.Unmatched.Tracks) != 1 || len(res.Unmatched.Engagement) != 1 {
		t.Errorf("unmatched = %d tracks, %d engagement, want 1 and 1", len(res.Unmatched.Tracks), len(res.Unmatched.Engagement))
	}

	wantScores := map[string]float64{
		"Dancing Through Life":  50*(100.0/1200) + 15 + 10,
		"Popular":               50*(50.0/1200) + 7.5 + 5,
		"What Is This Feeling?": 100,
	}
	for _, r := range res.Linked {
		if want := round2(wantScores[r.NormalizedTitle]); r.ViralityScore != want {
			t.Errorf("%s: score %v, want %v", r.NormalizedTitle, r.ViralityScore, want)
		}
		if r.SurpriseFactor == nil {
			t.Errorf("%s: surprise factor not set", r.NormalizedTitle)
		}
	}

	if len(res.Categories) != 2 || res.Categories[0].Category != "Dance Challenge" {
		t.Fatalf("categories = %+v", res.Categories)
	}
	if c := res.Categories[0]; c.NumSongs != 2 || c.TotalVideos != 1300 || c.AvgWeeksTrending != 6 {
		t.Errorf("Dance Challenge = %+v", c)
	}

	if res.Summary.TotalSongs != 3 || res.Summary.MostPopular != "Popular" || res.Summary.Longest != "Dancing Through Life" {
		t.Errorf("summary = %+v", res.Summary)
	}
	if res.Summary.MinPopularity != 70 || res.Summary.MaxPopularity != 82 {
		t.Errorf("popularity range = %d-%d", res.Summary.MinPopularity, res.Summary.MaxPopularity)
	}
	if len(res.Summary.TopByVirality) != 3 || !strings.HasPrefix(res.Summary.TopByVirality[0], "What Is This Feeling?") {
		t.Errorf("TopByVirality = %v", res.Summary.TopByVirality)
	}

	insights := map[string]Insight{}
	for _, in := range res.Insights {
		insights[in.Insight] = in
	}
	if got := insights["Most Viral Song"].Finding; got != "What Is This Feeling? - 1,200 videos" {
		t.Errorf("most viral finding = %q", got)
	}
	if got := insights["Most Successful Content Type"].Finding; got != "Dance Challenge" {
		t.Errorf("content type finding = %q", got)
	}
	if _, ok := insights["Celebrity Boost Effect"]; !ok {
		t.Errorf("missing celebrity insight in %+v", res.Insights)
	}
	if _, ok := insights["Biggest Surprise Hit"]; !ok {
		t.Errorf("missing surprise insight in %+v", res.Insights)
	}

	if res.PopularityVsVideos == nil {
		t.Errorf("PopularityVsVideos not computed")
	}
	if logs.FilterMessage("linked records").Len() != 1 {
		t.Errorf("expected one linked records log entry, got %d", logs.FilterMessage("linked records").Len())
	}
}

func TestRunDegenerateBatch(t *testing.T) {
	in := runInputs()
	in.Engagement = []EngagementRecord{{SongName: "Something Else", VideoCount: 1}}

	res, err := Run(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Skipped(ErrDegenerateBatch) {
		t.Errorf("Skips = %+v, want ErrDegenerateBatch", res.Skips)
	}
	if len(res.Linked) != 0 || len(res.Categories) != 0 || len(res.Insights) != 0 {
		t.Errorf("degenerate run produced output: %+v", res)
	}
	if res.RunID == "" {
		t.Errorf("RunID not generated")
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, res); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if !strings.Contains(buf.String(), "Skipped scoring") {
		t.Errorf("report does not mention the skipped step:\n%s", buf.String())
	}
}

func TestRunSmallBatchSkipsCorrelation(t *testing.T) {
	in := runInputs()
	in.Engagement = in.Engagement[:2]

	res, err := Run(context.Background(), in, Options{Link: LinkOptions{Mode: MatchModeExact}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Linked) != 2 {
		t.Fatalf("linked %d, want 2", len(res.Linked))
	}
	if len(res.Correlations.Correlations) != 0 {
		t.Errorf("correlations computed on 2 records: %+v", res.Correlations.Correlations)
	}
	if !res.Skipped(ErrInsufficientData) {
		t.Errorf("Skips = %+v, want ErrInsufficientData", res.Skips)
	}
	if res.PopularityVsVideos != nil {
		t.Errorf("PopularityVsVideos computed on 2 records")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, runInputs(), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run with cancelled context error = %v, want context.Canceled", err)
	}
}

func TestRunDefaultJoinsOnEqualTitles(t *testing.T) {
	in := Inputs{
		Tracks: []TrackMetadataRecord{
			{Title: `Dancing Through Life - From "Wicked"`, Popularity: 70, DurationMinutes: 4.1},
			{Title: "POPULAR", Popularity: 82, DurationMinutes: 3.6},
			{Title: `Defying Gravity - From "Wicked"`, Popularity: 88, DurationMinutes: 5.9},
		},
		Engagement: []EngagementRecord{
			{SongName: "Dancing Thru Life", VideoCount: 100, WeeksTrending: 4, TrendCategory: "Dance"},
			{SongName: "Popular", VideoCount: 50, WeeksTrending: 2, TrendCategory: "Lip Sync"},
			{SongName: "Defying Gravity", VideoCount: 300, WeeksTrending: 9, TrendCategory: "Vocal"},
		},
	}

	res, err := Run(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Linked) != 1 {
		t.Fatalf("linked %d records, want 1", len(res.Linked))
	}
	for _, r := range res.Linked {
		if Normalize(r.Track.Title) != Normalize(r.Engagement.SongName) || r.MatchType != MatchTypeExact {
			t.Errorf("%q linked to %q by %s", r.Track.Title, r.Engagement.SongName, r.MatchType)
		}
	}
	if len(res.Unmatched.Tracks) != 2 || len(res.Unmatched.Engagement) != 2 {
		t.Errorf("unmatched = %d tracks, %d engagement, want 2 and 2", len(res.Unmatched.Tracks), len(res.Unmatched.Engagement))
	}
}

func TestBiggestSurprise(t *testing.T) {
	records := surpriseBatch()
	hit, ok := BiggestSurprise(records)
	if !ok {
		t.Fatalf("BiggestSurprise: none found")
	}
	// Highest baseline, fourth by virality.
	if hit.NormalizedTitle != "Dancing Through Life" {
		t.Errorf("BiggestSurprise = %s", hit.NormalizedTitle)
	}

	if _, ok := BiggestSurprise(records[3:4]); ok {
		t.Errorf("BiggestSurprise found a record without baseline")
	}
}
