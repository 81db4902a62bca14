package analysis

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// MatchMode selects how many linking passes run.
type MatchMode string

const (
	// MatchModeExact joins on normalized title equality only.
	MatchModeExact MatchMode = "exact"
	// MatchModeCanonical adds a pass on CanonicalKey equality.
	MatchModeCanonical MatchMode = "canonical"
	// MatchModeFuzzy adds a one-to-one edit-distance pass for leftovers.
	MatchModeFuzzy MatchMode = "fuzzy"
)

// MatchType records which pass produced a link.
type MatchType string

const (
	MatchTypeExact     MatchType = "exact"
	MatchTypeCanonical MatchType = "canonical"
	MatchTypeFuzzy     MatchType = "fuzzy"
)

const DefaultMinSimilarity = 0.85

// LinkOptions configures Link.
type LinkOptions struct {
	Mode MatchMode

	// MinSimilarity is the lowest similarity accepted by the fuzzy pass.
	MinSimilarity float64
}

// DefaultLinkOptions returns the options used when nothing is configured:
// records join only on equal normalized titles.
func DefaultLinkOptions() LinkOptions {
	return LinkOptions{
		Mode:          MatchModeExact,
		MinSimilarity: DefaultMinSimilarity,
	}
}

// ParseMatchMode validates a user supplied match mode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch m := MatchMode(s); m {
	case MatchModeExact, MatchModeCanonical, MatchModeFuzzy:
		return m, nil
	}
	return "", fmt.Errorf("invalid match mode %q (want exact, canonical or fuzzy)", s)
}

// UnmatchedReport lists the inputs that did not link to anything.
type UnmatchedReport struct {
	Tracks     []TrackMetadataRecord `yaml:"tracks"`
	Engagement []EngagementRecord    `yaml:"engagement"`
}

type linkPair struct {
	track, engagement int
	matchType         MatchType
	score             float64
}

// Link inner-joins tracks and engagement records. Records sharing a key are
// cross-joined. Records whose normalized title is empty never link. The
// output is ordered by track input order, then engagement input order.
func Link(tracks []TrackMetadataRecord, engagement []EngagementRecord, opts LinkOptions) ([]LinkedRecord, UnmatchedReport) {
	trackKeys := make([]string, len(tracks))
	for i, t := range tracks {
		trackKeys[i] = Normalize(t.Title)
	}
	engagementKeys := make([]string, len(engagement))
	for j, e := range engagement {
		engagementKeys[j] = Normalize(e.SongName)
	}

	trackLinked := make([]bool, len(tracks))
	engagementLinked := make([]bool, len(engagement))
	var pairs []linkPair

	joinOn := func(key func(string) string, matchType MatchType) {
		index := make(map[string][]int)
		for j := range engagement {
			if engagementLinked[j] {
				continue
			}
			k := key(engagementKeys[j])
			if k == "" {
				continue
			}
			index[k] = append(index[k], j)
		}

		var newlyLinked []int
		for i := range tracks {
			if trackLinked[i] {
				continue
			}
			k := key(trackKeys[i])
			if k == "" {
				continue
			}
			for _, j := range index[k] {
				pairs = append(pairs, linkPair{track: i, engagement: j, matchType: matchType, score: 1})
				trackLinked[i] = true
				newlyLinked = append(newlyLinked, j)
			}
		}
		for _, j := range newlyLinked {
			engagementLinked[j] = true
		}
	}

	joinOn(func(s string) string { return s }, MatchTypeExact)
	if opts.Mode == MatchModeCanonical || opts.Mode == MatchModeFuzzy {
		joinOn(CanonicalKey, MatchTypeCanonical)
	}
	if opts.Mode == MatchModeFuzzy {
		pairs = append(pairs, fuzzyPairs(trackKeys, engagementKeys, trackLinked, engagementLinked, opts.MinSimilarity)...)
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		if pairs[a].track != pairs[b].track {
			return pairs[a].track < pairs[b].track
		}
		return pairs[a].engagement < pairs[b].engagement
	})

	linked := make([]LinkedRecord, len(pairs))
	for n, p := range pairs {
		linked[n] = LinkedRecord{
			Track:           tracks[p.track],
			Engagement:      engagement[p.engagement],
			NormalizedTitle: trackKeys[p.track],
			MatchType:       p.matchType,
			MatchScore:      p.score,
			seq:             n,
		}
	}

	var unmatched UnmatchedReport
	for i, t := range tracks {
		if !trackLinked[i] {
			unmatched.Tracks = append(unmatched.Tracks, t)
		}
	}
	for j, e := range engagement {
		if !engagementLinked[j] {
			unmatched.Engagement = append(unmatched.Engagement, e)
		}
	}

	return linked, unmatched
}

// fuzzyPairs links leftover records one to one, best similarity first. It
// marks the records it links.
func fuzzyPairs(trackKeys, engagementKeys []string, trackLinked, engagementLinked []bool, minSimilarity float64) []linkPair {
	var candidates []linkPair
	for i, tk := range trackKeys {
		if trackLinked[i] {
			continue
		}
		a := CanonicalKey(tk)
		if a == "" {
			continue
		}
		for j, ek := range engagementKeys {
			if engagementLinked[j] {
				continue
			}
			b := CanonicalKey(ek)
			if b == "" {
				continue
			}
			if sim := similarity(a, b); sim >= minSimilarity {
				candidates = append(candidates, linkPair{track: i, engagement: j, matchType: MatchTypeFuzzy, score: sim})
			}
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	var chosen []linkPair
	for _, c := range candidates {
		if trackLinked[c.track] || engagementLinked[c.engagement] {
			continue
		}
		trackLinked[c.track] = true
		engagementLinked[c.engagement] = true
		chosen = append(chosen, c)
	}
	return chosen
}

func similarity(a string, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}
