package analysis

import (
	"math"
	"testing"
)

func tracks(titles ...string) []TrackMetadataRecord {
	out := make([]TrackMetadataRecord, len(titles))
	for i, title := range titles {
		out[i] = TrackMetadataRecord{Title: title, Popularity: 50 + i}
	}
	return out
}

func engagement(names ...string) []EngagementRecord {
	out := make([]EngagementRecord, len(names))
	for i, name := range names {
		out[i] = EngagementRecord{SongName: name, VideoCount: int64(10 * (i + 1))}
	}
	return out
}

func exact() LinkOptions {
	return LinkOptions{Mode: MatchModeExact}
}

func TestLinkInner(t *testing.T) {
	ts := tracks(`Overture - From "Wicked"`, `Popular - From "Wicked"`, `Defying Gravity (Live)`)
	es := engagement("Popular", "Defying Gravity", "Wonderful")

	linked, unmatched := Link(ts, es, exact())
	if len(linked) != 2 {
		t.Fatalf("Link() returned %d records, want 2: %+v", len(linked), linked)
	}

	for _, r := range linked {
		if r.NormalizedTitle != Normalize(r.Track.Title) || r.NormalizedTitle != Normalize(r.Engagement.SongName) {
			t.Errorf("linked record %q does not match on both sides: track %q, engagement %q",
				r.NormalizedTitle, r.Track.Title, r.Engagement.SongName)
		}
		if r.MatchType != MatchTypeExact || r.MatchScore != 1 {
			t.Errorf("record %q: match %s/%v, want exact/1", r.NormalizedTitle, r.MatchType, r.MatchScore)
		}
	}
	if linked[0].NormalizedTitle != "Popular" || linked[1].NormalizedTitle != "Defying Gravity" {
		t.Errorf("Link() order = %q, %q, want track input order", linked[0].NormalizedTitle, linked[1].NormalizedTitle)
	}

	if len(unmatched.Tracks) != 1 || unmatched.Tracks[0].Title != `Overture - From "Wicked"` {
		t.Errorf("unmatched tracks = %+v", unmatched.Tracks)
	}
	if len(unmatched.Engagement) != 1 || unmatched.Engagement[0].SongName != "Wonderful" {
		t.Errorf("unmatched engagement = %+v", unmatched.Engagement)
	}
}

func TestLinkCrossProduct(t *testing.T) {
	ts := tracks("Popular", "Popular (Reprise)")
	es := engagement("Popular", "Popular")

	linked, unmatched := Link(ts, es, exact())
	if len(linked) != 4 {
		t.Fatalf("Link() returned %d records, want 4", len(linked))
	}
	want := [][2]int64{{50, 10}, {50, 20}, {51, 10}, {51, 20}}
	for i, r := range linked {
		got := [2]int64{int64(r.Track.Popularity), r.Engagement.VideoCount}
		if got != want[i] {
			t.Errorf("linked[%d] = %v, want %v", i, got, want[i])
		}
		if r.seq != i {
			t.Errorf("linked[%d].seq = %d", i, r.seq)
		}
	}
	if len(unmatched.Tracks) != 0 || len(unmatched.Engagement) != 0 {
		t.Errorf("unexpected unmatched records: %+v", unmatched)
	}
}

func TestLinkEmpty(t *testing.T) {
	linked, unmatched := Link(nil, engagement("Popular"), DefaultLinkOptions())
	if len(linked) != 0 {
		t.Errorf("Link(nil, ...) returned %d records", len(linked))
	}
	if len(unmatched.Engagement) != 1 {
		t.Errorf("unmatched engagement = %d, want 1", len(unmatched.Engagement))
	}
}

func TestLinkEmptyKeyNeverJoins(t *testing.T) {
	for _, mode := range []MatchMode{MatchModeExact, MatchModeCanonical, MatchModeFuzzy} {
		linked, _ := Link(tracks("(Intro)", "!!!"), engagement("", "(Intro)", "?"), LinkOptions{Mode: mode, MinSimilarity: DefaultMinSimilarity})
		if len(linked) != 0 {
			t.Errorf("mode %s: linked %d records with empty keys", mode, len(linked))
		}
	}
}

func TestLinkModes(t *testing.T) {
	ts := tracks("POPULAR!", "Defying Gravity", "I'm Not That Girl")
	es := engagement("Popular", "Defying Gravty", "Im Not That Girl")

	tests := []struct {
		mode  MatchMode
		types map[string]MatchType
	}{
		{MatchModeExact, map[string]MatchType{}},
		{MatchModeCanonical, map[string]MatchType{
			"POPULAR!":          MatchTypeCanonical,
			"I'm Not That Girl": MatchTypeCanonical,
		}},
		{MatchModeFuzzy, map[string]MatchType{
			"POPULAR!":          MatchTypeCanonical,
			"Defying Gravity":   MatchTypeFuzzy,
			"I'm Not That Girl": MatchTypeCanonical,
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			linked, unmatched := Link(ts, es, LinkOptions{Mode: tt.mode, MinSimilarity: DefaultMinSimilarity})
			if len(linked) != len(tt.types) {
				t.Fatalf("linked %d records, want %d", len(linked), len(tt.types))
			}
			for _, r := range linked {
				if want := tt.types[r.Track.Title]; r.MatchType != want {
					t.Errorf("%q matched by %s, want %s", r.Track.Title, r.MatchType, want)
				}
			}
			if got := len(unmatched.Tracks); got != len(ts)-len(tt.types) {
				t.Errorf("unmatched tracks = %d, want %d", got, len(ts)-len(tt.types))
			}
		})
	}
}

func TestLinkFuzzyOneToOne(t *testing.T) {
	opts := LinkOptions{Mode: MatchModeFuzzy, MinSimilarity: DefaultMinSimilarity}
	linked, unmatched := Link(tracks("Defying Gravity"), engagement("Defying Gravty", "Defying Gravit"), opts)
	if len(linked) != 1 {
		t.Fatalf("linked %d records, want 1", len(linked))
	}
	if linked[0].Engagement.SongName != "Defying Gravty" {
		t.Errorf("linked to %q, want the first equally similar candidate", linked[0].Engagement.SongName)
	}
	if linked[0].MatchScore >= 1 || linked[0].MatchScore < DefaultMinSimilarity {
		t.Errorf("MatchScore = %v, want in [%v, 1)", linked[0].MatchScore, DefaultMinSimilarity)
	}
	if len(unmatched.Engagement) != 1 || unmatched.Engagement[0].SongName != "Defying Gravit" {
		t.Errorf("unmatched engagement = %+v", unmatched.Engagement)
	}
}

func TestLinkFuzzyThreshold(t *testing.T) {
	opts := LinkOptions{Mode: MatchModeFuzzy, MinSimilarity: 0.99}
	linked, _ := Link(tracks("Defying Gravity"), engagement("Defying Gravty"), opts)
	if len(linked) != 0 {
		t.Errorf("linked %d records above a 0.99 threshold", len(linked))
	}
}

func TestParseMatchMode(t *testing.T) {
	for _, s := range []string{"exact", "canonical", "fuzzy"} {
		if m, err := ParseMatchMode(s); err != nil || string(m) != s {
			t.Errorf("ParseMatchMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseMatchMode("Fuzzy"); err == nil {
		t.Errorf("ParseMatchMode(%q): expected error", "Fuzzy")
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"popular", "popular", 1},
		{"", "", 1},
		{"abc", "", 0},
		{"kitten", "sitting", 1 - 3.0/7},
		{"café", "cafe", 0.75},
		{"no good deed", "no good deeds", 1 - 1.0/13},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
