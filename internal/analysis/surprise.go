package analysis

import "sort"

// Weights of the audio-only baseline. Acousticness counts inversely.
const (
	energyWeight       = 0.3
	danceabilityWeight = 0.3
	valenceWeight      = 0.2
	acousticnessWeight = 0.2
)

// DefaultSurpriseN is how many over and under performers are listed.
const DefaultSurpriseN = 3

// ExpectedVirality predicts a virality score from audio descriptors alone.
// It is only defined when energy, danceability, valence and acousticness are
// all present.
func ExpectedVirality(t TrackMetadataRecord) (float64, bool) {
	energy, ok1 := t.Descriptors["energy"]
	danceability, ok2 := t.Descriptors["danceability"]
	valence, ok3 := t.Descriptors["valence"]
	acousticness, ok4 := t.Descriptors["acousticness"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, false
	}
	return 100 * (energyWeight*energy +
		danceabilityWeight*danceability +
		valenceWeight*valence +
		acousticnessWeight*(1-acousticness)), true
}

// ApplyExpected sets ExpectedVirality and SurpriseFactor where the baseline
// is defined and clears them elsewhere. Score must have run first.
func ApplyExpected(records []LinkedRecord) {
	for i := range records {
		expected, ok := ExpectedVirality(records[i].Track)
		if !ok {
			records[i].ExpectedVirality = nil
			records[i].SurpriseFactor = nil
			continue
		}
		surprise := records[i].ViralityScore - expected
		records[i].ExpectedVirality = &expected
		records[i].SurpriseFactor = &surprise
	}
}

// SurpriseRanking lists the records that most exceeded and most fell short
// of their audio baseline.
type SurpriseRanking struct {
	Overperformers  []LinkedRecord `yaml:"overperformers"`
	Underperformers []LinkedRecord `yaml:"underperformers"`
}

// RankSurprise picks the top n records by surprise factor in each direction.
// Records without a baseline are left out.
func RankSurprise(records []LinkedRecord, n int) SurpriseRanking {
	var defined []LinkedRecord
	for _, r := range records {
		if r.SurpriseFactor != nil {
			defined = append(defined, r)
		}
	}
	if n <= 0 || len(defined) == 0 {
		return SurpriseRanking{}
	}

	byTitle := func(a, b LinkedRecord) bool {
		if a.NormalizedTitle != b.NormalizedTitle {
			return a.NormalizedTitle < b.NormalizedTitle
		}
		return a.seq < b.seq
	}

	over := append([]LinkedRecord(nil), defined...)
	sort.SliceStable(over, func(i, j int) bool {
		if *over[i].SurpriseFactor != *over[j].SurpriseFactor {
			return *over[i].SurpriseFactor > *over[j].SurpriseFactor
		}
		return byTitle(over[i], over[j])
	})

	under := append([]LinkedRecord(nil), defined...)
	sort.SliceStable(under, func(i, j int) bool {
		if *under[i].SurpriseFactor != *under[j].SurpriseFactor {
			return *under[i].SurpriseFactor < *under[j].SurpriseFactor
		}
		return byTitle(under[i], under[j])
	})

	return SurpriseRanking{
		Overperformers:  over[:min(n, len(over))],
		Underperformers: under[:min(n, len(under))],
	}
}
