package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultDescriptors are correlated against virality when none are
// configured.
var DefaultDescriptors = []string{
	"energy",
	"danceability",
	"valence",
	"tempo",
	"acousticness",
	"speechiness",
	"loudness",
	"duration_min",
}

const (
	// SignificanceLevel is the alpha applied to the rank p-value.
	SignificanceLevel = 0.05

	// MinCorrelationSamples is the fewest paired observations correlated.
	MinCorrelationSamples = 3
)

// Correlation relates one descriptor to virality score.
type Correlation struct {
	Descriptor        string  `yaml:"descriptor"`
	Observations      int     `yaml:"observations"`
	RankCorrelation   float64 `yaml:"rank_correlation"`
	RankPValue        float64 `yaml:"rank_p_value"`
	LinearCorrelation float64 `yaml:"linear_correlation"`
	LinearPValue      float64 `yaml:"linear_p_value"`
	Significant       bool    `yaml:"significant"`
}

// SkippedDescriptor is a descriptor that could not be correlated.
type SkippedDescriptor struct {
	Descriptor   string `yaml:"descriptor"`
	Observations int    `yaml:"observations"`
	Reason       string `yaml:"reason"`
	Err          error  `yaml:"-"`
}

// CorrelationResult holds the computed rows, strongest rank correlation
// first, and the descriptors that were flagged instead.
type CorrelationResult struct {
	Correlations []Correlation       `yaml:"correlations"`
	Skipped      []SkippedDescriptor `yaml:"skipped,omitempty"`
}

// Correlate computes Spearman and Pearson coefficients between each
// descriptor and virality score, using only records where the descriptor is
// present.
func Correlate(records []LinkedRecord, descriptors []string) CorrelationResult {
	var res CorrelationResult
	for _, name := range descriptors {
		var xs, ys []float64
		for _, r := range records {
			v, ok := r.Track.Descriptor(name)
			if !ok {
				continue
			}
			xs = append(xs, v)
			ys = append(ys, r.ViralityScore)
		}

		c, err := correlatePair(name, xs, ys)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedDescriptor{
				Descriptor:   name,
				Observations: len(xs),
				Reason:       err.Error(),
				Err:          err,
			})
			continue
		}
		res.Correlations = append(res.Correlations, c)
	}

	sort.SliceStable(res.Correlations, func(i, j int) bool {
		a, b := math.Abs(res.Correlations[i].RankCorrelation), math.Abs(res.Correlations[j].RankCorrelation)
		if a != b {
			return a > b
		}
		return res.Correlations[i].Descriptor < res.Correlations[j].Descriptor
	})
	return res
}

// PopularityVsVideos relates catalog popularity to raw video count.
func PopularityVsVideos(records []LinkedRecord) (Correlation, error) {
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	for i, r := range records {
		xs[i] = float64(r.Track.Popularity)
		ys[i] = float64(r.Engagement.VideoCount)
	}
	return correlatePair("popularity", xs, ys)
}

func correlatePair(name string, xs, ys []float64) (Correlation, error) {
	if len(xs) < MinCorrelationSamples {
		return Correlation{}, fmt.Errorf("%s: %w: %d observations, need %d", name, ErrInsufficientData, len(xs), MinCorrelationSamples)
	}
	if constant(xs) || constant(ys) {
		return Correlation{}, fmt.Errorf("%s: %w", name, ErrUndefinedCorrelation)
	}

	linear, linearP := pearson(xs, ys)
	rank, rankP := pearson(averageRanks(xs), averageRanks(ys))
	return Correlation{
		Descriptor:        name,
		Observations:      len(xs),
		RankCorrelation:   rank,
		RankPValue:        rankP,
		LinearCorrelation: linear,
		LinearPValue:      linearP,
		Significant:       rankP < SignificanceLevel,
	}, nil
}

// perfectTolerance absorbs the rounding left in a perfectly linear sample.
const perfectTolerance = 1e-12

// pearson returns the coefficient and its two-sided p-value from a Student t
// test with n-2 degrees of freedom.
func pearson(xs, ys []float64) (float64, float64) {
	r := stat.Correlation(xs, ys, nil)
	if 1-math.Abs(r) < perfectTolerance {
		return math.Copysign(1, r), 0
	}
	df := float64(len(xs) - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return r, 2 * dist.CDF(-math.Abs(t))
}

// averageRanks assigns 1-based ranks, giving tied values their mean rank.
func averageRanks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && values[idx[end]] == values[idx[start]] {
			end++
		}
		// positions start..end-1 hold rank start+1..end
		mean := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[idx[k]] = mean
		}
		start = end
	}
	return ranks
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
