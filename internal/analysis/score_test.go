package analysis

import (
	"math/rand"
	"testing"
)

func linkedRecord(title string, videos int64, views float64, weeks int) LinkedRecord {
	return LinkedRecord{
		Track:           TrackMetadataRecord{Title: title},
		Engagement:      EngagementRecord{SongName: title, VideoCount: videos, ViewEstimateMillions: views, WeeksTrending: weeks},
		NormalizedTitle: Normalize(title),
	}
}

func withSeq(records []LinkedRecord) []LinkedRecord {
	for i := range records {
		records[i].seq = i
	}
	return records
}

func TestScoreScenario(t *testing.T) {
	records := withSeq([]LinkedRecord{
		linkedRecord("One", 100, 10, 4),
		linkedRecord("Two", 50, 5, 2),
		linkedRecord("Three", 200, 20, 8),
	})
	Score(records)

	want := []struct {
		score float64
		rank  int
	}{
		{50, 2},
		{25, 3},
		{100, 1},
	}
	for i, w := range want {
		if records[i].ViralityScore != w.score || records[i].ViralityRank != w.rank {
			t.Errorf("%s: score %v rank %d, want %v rank %d",
				records[i].NormalizedTitle, records[i].ViralityScore, records[i].ViralityRank, w.score, w.rank)
		}
	}
}

func TestScoreSingleRecord(t *testing.T) {
	records := withSeq([]LinkedRecord{linkedRecord("Popular", 7, 0.3, 1)})
	Score(records)
	if records[0].ViralityScore != 100 || records[0].ViralityRank != 1 {
		t.Errorf("single record: score %v rank %d, want 100 rank 1", records[0].ViralityScore, records[0].ViralityRank)
	}
}

func TestScoreZeroMaximum(t *testing.T) {
	records := withSeq([]LinkedRecord{
		linkedRecord("a", 10, 1, 0),
		linkedRecord("b", 5, 1, 0),
	})
	Score(records)
	if records[0].ViralityScore != 80 || records[1].ViralityScore != 55 {
		t.Errorf("scores = %v, %v, want 80, 55", records[0].ViralityScore, records[1].ViralityScore)
	}

	records = withSeq([]LinkedRecord{linkedRecord("a", 0, 0, 0)})
	Score(records)
	if records[0].ViralityScore != 0 || records[0].ViralityRank != 1 {
		t.Errorf("all-zero batch: score %v rank %d, want 0 rank 1", records[0].ViralityScore, records[0].ViralityRank)
	}
}

func TestScoreRounding(t *testing.T) {
	records := withSeq([]LinkedRecord{
		linkedRecord("a", 1, 1, 1),
		linkedRecord("b", 3, 3, 3),
	})
	Score(records)
	if records[0].ViralityScore != 33.33 {
		t.Errorf("score = %v, want 33.33", records[0].ViralityScore)
	}
}

func TestScoreTieBreak(t *testing.T) {
	records := withSeq([]LinkedRecord{
		linkedRecord("b", 10, 1, 1),
		linkedRecord("a", 10, 1, 1),
		linkedRecord("a", 10, 1, 1),
		linkedRecord("c", 20, 2, 2),
	})
	Score(records)

	wantRanks := []int{4, 2, 3, 1}
	for i, want := range wantRanks {
		if records[i].ViralityRank != want {
			t.Errorf("records[%d] (%s) rank = %d, want %d", i, records[i].NormalizedTitle, records[i].ViralityRank, want)
		}
	}
}

func TestScoreBoundsAndMonotonicity(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for iter := 0; iter < 50; iter++ {
		n := 1 + rnd.Intn(20)
		records := make([]LinkedRecord, n)
		for i := range records {
			records[i] = linkedRecord(string(rune('a'+rnd.Intn(5))), rnd.Int63n(10000), rnd.Float64()*50, rnd.Intn(12))
		}
		records[rnd.Intn(n)].Engagement = EngagementRecord{VideoCount: 10001, ViewEstimateMillions: 51, WeeksTrending: 13}
		Score(withSeq(records))

		seen := make(map[int]bool)
		for i, a := range records {
			if a.ViralityScore < 0 || a.ViralityScore > 100 {
				t.Fatalf("score %v out of [0, 100]", a.ViralityScore)
			}
			if a.ViralityRank < 1 || a.ViralityRank > n || seen[a.ViralityRank] {
				t.Fatalf("rank %d invalid or repeated in batch of %d", a.ViralityRank, n)
			}
			seen[a.ViralityRank] = true
			for _, b := range records[i+1:] {
				if a.ViralityScore > b.ViralityScore && a.ViralityRank >= b.ViralityRank {
					t.Fatalf("score %v > %v but rank %d >= %d", a.ViralityScore, b.ViralityScore, a.ViralityRank, b.ViralityRank)
				}
				if b.ViralityScore > a.ViralityScore && b.ViralityRank >= a.ViralityRank {
					t.Fatalf("score %v > %v but rank %d >= %d", b.ViralityScore, a.ViralityScore, b.ViralityRank, a.ViralityRank)
				}
			}
		}
	}
}
