package analysis

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCelebrities are matched, case-sensitively, against celebrity_boost.
var DefaultCelebrities = []string{"Ariana", "Jonathan"}

// CelebrityEffect compares mean virality of records with and without a
// celebrity mention.
type CelebrityEffect struct {
	WithCount    int     `yaml:"with_count"`
	WithoutCount int     `yaml:"without_count"`
	AvgWith      float64 `yaml:"avg_with"`
	AvgWithout   float64 `yaml:"avg_without"`
}

var printer = message.NewPrinter(language.English)

// BiggestSurprise returns the record whose virality rank differs most from
// its rank by expected virality. Ties go to the earlier record. Records
// without a baseline are ignored.
func BiggestSurprise(records []LinkedRecord) (LinkedRecord, bool) {
	var defined []LinkedRecord
	var negExpected []float64
	for _, r := range records {
		if r.ExpectedVirality == nil {
			continue
		}
		defined = append(defined, r)
		negExpected = append(negExpected, -*r.ExpectedVirality)
	}
	if len(defined) == 0 {
		return LinkedRecord{}, false
	}

	expectedRanks := averageRanks(negExpected)
	best, bestGap := 0, -1.0
	for i, r := range defined {
		gap := math.Abs(float64(r.ViralityRank) - expectedRanks[i])
		if gap > bestGap {
			best, bestGap = i, gap
		}
	}
	return defined[best], true
}

// Insights builds the headline findings. Findings whose inputs are missing
// are left out.
func Insights(records []LinkedRecord, corr CorrelationResult, categories []CategoryPerformance, celeb *CelebrityEffect) []Insight {
	var insights []Insight

	if len(records) > 0 {
		most := records[orderBy(records, func(r LinkedRecord) float64 { return r.ViralityScore })[0]]
		insights = append(insights, Insight{
			Insight: "Most Viral Song",
			Finding: printer.Sprintf("%s - %d videos", most.NormalizedTitle, most.Engagement.VideoCount),
			Why:     most.Engagement.ViralMoment,
		})
	}

	if len(corr.Correlations) > 0 {
		top := corr.Correlations[0]
		insights = append(insights, Insight{
			Insight: "Most Important Audio Feature",
			Finding: fmt.Sprintf("%s (correlation: %.3f)", top.Descriptor, top.RankCorrelation),
			Why:     "Strongest correlation with viral success",
		})
	}

	if hit, ok := BiggestSurprise(records); ok {
		insights = append(insights, Insight{
			Insight: "Biggest Surprise Hit",
			Finding: hit.NormalizedTitle,
			Why:     hit.Engagement.ViralMoment,
		})
	}

	if len(categories) > 0 {
		insights = append(insights, Insight{
			Insight: "Most Successful Content Type",
			Finding: categories[0].Category,
			Why:     fmt.Sprintf("Average virality score: %.1f", categories[0].AvgViralityScore),
		})
	}

	if celeb != nil && celeb.WithCount > 0 {
		insights = append(insights, Insight{
			Insight: "Celebrity Boost Effect",
			Finding: fmt.Sprintf("Songs with major celebrity boost: %.1f vs %.1f", celeb.AvgWith, celeb.AvgWithout),
			Why:     fmt.Sprintf("%.1f point increase in virality score", celeb.AvgWith-celeb.AvgWithout),
		})
	}

	return insights
}
