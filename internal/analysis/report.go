package analysis

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const reportRule = "======================================================================"

// WriteReport renders the plain-text insights report.
func WriteReport(w io.Writer, r *Result) error {
	b := bufio.NewWriter(w)
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(b, format+"\n", args...)
	}

	line(reportRule)
	line("SOUNDTRACK VIRALITY ANALYSIS - KEY INSIGHTS")
	line(reportRule)
	line("Run: %s", r.RunID)
	line("Generated: %s", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	line("")
	line("Catalog rows: %d", r.CatalogRows)
	line("Engagement rows: %d", r.EngagementRows)
	line("Total songs: %d", r.Summary.TotalSongs)

	if r.Summary.TotalSongs > 0 {
		line("Avg popularity: %.1f", r.Summary.AveragePopularity)
		line("Popularity range: %d-%d", r.Summary.MinPopularity, r.Summary.MaxPopularity)
		line("")

		line("TOP 5 MOST POPULAR:")
		for i, s := range r.Summary.TopByPopularity {
			line("%d. %s", i+1, s)
		}
		line("")
		line("- Most popular: %s", r.Summary.MostPopular)
		line("- Longest song: %s", r.Summary.Longest)
		line("")

		line("TOP 10 MOST VIRAL:")
		for i, s := range r.Summary.TopByVirality {
			line("%d. %s", i+1, s)
		}
	}
	line("")

	line("FEATURE CORRELATIONS:")
	if len(r.Correlations.Correlations) == 0 {
		line("- none computed")
	}
	for _, c := range r.Correlations.Correlations {
		mark := ""
		if c.Significant {
			mark = " *"
		}
		line("- %s: spearman %.3f (p=%.3f), pearson %.3f (p=%.3f), n=%d%s",
			c.Descriptor, c.RankCorrelation, c.RankPValue, c.LinearCorrelation, c.LinearPValue, c.Observations, mark)
	}
	if c := r.PopularityVsVideos; c != nil {
		line("- popularity vs video count: spearman %.3f (p=%.3f)", c.RankCorrelation, c.RankPValue)
	}
	line("")

	line("CONTENT TYPE PERFORMANCE:")
	for _, c := range r.Categories {
		line("- %s: avg virality %.1f, %d songs, %d videos, %.1f weeks trending",
			c.Category, c.AvgViralityScore, c.NumSongs, c.TotalVideos, c.AvgWeeksTrending)
	}
	line("")

	line("SURPRISES:")
	writeSurprise := func(label string, records []LinkedRecord) {
		line("%s:", label)
		for i, rec := range records {
			line("%d. %s - actual %.2f, expected %.2f (%+.2f)",
				i+1, rec.NormalizedTitle, rec.ViralityScore, *rec.ExpectedVirality, *rec.SurpriseFactor)
		}
	}
	writeSurprise("Overperformers", r.Surprise.Overperformers)
	writeSurprise("Underperformers", r.Surprise.Underperformers)
	line("")

	line("KEY INSIGHTS:")
	for i, in := range r.Insights {
		line("%d. %s", i+1, in.Insight)
		line("   Finding: %s", in.Finding)
		if in.Why != "" {
			line("   Why: %s", in.Why)
		}
	}
	line("")

	line("UNMATCHED RECORDS:")
	line("- catalog tracks without engagement: %d", len(r.Unmatched.Tracks))
	for _, t := range r.Unmatched.Tracks {
		line("  %s", t.Title)
	}
	line("- engagement rows without a track: %d", len(r.Unmatched.Engagement))
	for _, e := range r.Unmatched.Engagement {
		line("  %s", e.SongName)
	}
	line("")

	line("DATA NOTES:")
	line("- Virality score weights: videos %.0f, views %.0f, weeks trending %.0f",
		VideoCountWeight, ViewEstimateWeight, WeeksTrendingWeight)
	fuzzy := 0
	for _, rec := range r.Linked {
		if rec.MatchType != MatchTypeExact {
			fuzzy++
		}
	}
	if fuzzy > 0 {
		line("- %d records linked by canonical or fuzzy title match", fuzzy)
	}
	for _, s := range r.Skips {
		line("- Skipped %s: %s", s.Step, strings.TrimSpace(s.Reason))
	}
	line(reportRule)

	return b.Flush()
}
