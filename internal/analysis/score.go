package analysis

import (
	"math"
	"sort"
)

// Virality score weights. Video count dominates, then view volume, then
// how long the sound kept trending. They sum to 100.
const (
	VideoCountWeight    = 50.0
	ViewEstimateWeight  = 30.0
	WeeksTrendingWeight = 20.0
)

// Score sets ViralityScore and ViralityRank on every record. Each dimension
// is divided by its batch maximum; a dimension whose maximum is 0
// contributes 0. Rank 1 is the highest score; ties are ordered by
// normalized title and then by link order.
func Score(records []LinkedRecord) {
	var maxVideos, maxViews, maxWeeks float64
	for _, r := range records {
		maxVideos = math.Max(maxVideos, float64(r.Engagement.VideoCount))
		maxViews = math.Max(maxViews, r.Engagement.ViewEstimateMillions)
		maxWeeks = math.Max(maxWeeks, float64(r.Engagement.WeeksTrending))
	}

	for i := range records {
		e := records[i].Engagement
		score := VideoCountWeight*ratio(float64(e.VideoCount), maxVideos) +
			ViewEstimateWeight*ratio(e.ViewEstimateMillions, maxViews) +
			WeeksTrendingWeight*ratio(float64(e.WeeksTrending), maxWeeks)
		records[i].ViralityScore = round2(score)
	}

	for rank, i := range orderBy(records, func(r LinkedRecord) float64 { return r.ViralityScore }) {
		records[i].ViralityRank = rank + 1
	}
}

func ratio(v, batchMax float64) float64 {
	if batchMax == 0 {
		return 0
	}
	return v / batchMax
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// orderBy returns record indexes sorted by value descending, then by
// normalized title, then by link order.
func orderBy(records []LinkedRecord, value func(LinkedRecord) float64) []int {
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := records[idx[a]], records[idx[b]]
		va, vb := value(ra), value(rb)
		if va != vb {
			return va > vb
		}
		if ra.NormalizedTitle != rb.NormalizedTitle {
			return ra.NormalizedTitle < rb.NormalizedTitle
		}
		return ra.seq < rb.seq
	})
	return idx
}
