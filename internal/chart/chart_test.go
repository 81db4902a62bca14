package chart

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

func ptr(v float64) *float64 { return &v }

func testResult() *analysis.Result {
	records := []analysis.LinkedRecord{
		{NormalizedTitle: "Defying Gravity", ViralityScore: 100, ExpectedVirality: ptr(56)},
		{NormalizedTitle: "Popular", ViralityScore: 72.5, ExpectedVirality: ptr(68)},
		{NormalizedTitle: "A Very Long Title That Will Not Fit On The Axis", ViralityScore: 10},
	}
	records[0].Track = analysis.TrackMetadataRecord{Popularity: 88, DurationMinutes: 5.9}
	records[0].Engagement = analysis.EngagementRecord{VideoCount: 287000}
	records[1].Track = analysis.TrackMetadataRecord{Popularity: 82, DurationMinutes: 3.64}
	records[1].Engagement = analysis.EngagementRecord{VideoCount: 195000}
	records[2].Track = analysis.TrackMetadataRecord{Popularity: 40, DurationMinutes: 2.5}
	records[2].Engagement = analysis.EngagementRecord{VideoCount: 15000}

	return &analysis.Result{
		Linked: records,
		Categories: []analysis.CategoryPerformance{
			{Category: "Vocal Showcase / Lip Sync", AvgViralityScore: 100, NumSongs: 1},
			{Category: "Dance / POV", AvgViralityScore: 72.5, NumSongs: 1},
		},
	}
}

func TestRender(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figures")
	written, err := Render(dir, testResult(), DefaultPalette())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(written) != 6 {
		t.Errorf("Render wrote %d figures, want 6: %v", len(written), written)
	}
	for _, path := range written {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("Stat(%s): %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}
}

func TestRenderSkipsDegenerateFigures(t *testing.T) {
	r := testResult()
	for i := range r.Linked {
		r.Linked[i].Track.Popularity = 50
		r.Linked[i].ExpectedVirality = nil
	}
	r.Categories = nil

	written, err := Render(t.TempDir(), r, DefaultPalette())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := map[string]bool{}
	for _, path := range written {
		got[filepath.Base(path)] = true
	}
	for _, skipped := range []string{"popularity_distribution.png", "virality_vs_expected.png", "content_type_performance.png"} {
		if got[skipped] {
			t.Errorf("%s was written for degenerate data", skipped)
		}
	}
	if !got["popularity_vs_videos.png"] || len(written) != 3 {
		t.Errorf("written = %v", written)
	}
}

func TestRenderNoRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figures")
	_, err := Render(dir, &analysis.Result{}, DefaultPalette())
	if !errors.Is(err, analysis.ErrDegenerateBatch) {
		t.Errorf("Render with no records: got %v, want ErrDegenerateBatch", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Render with no records created %s", dir)
	}
}

func TestRenderBadPalette(t *testing.T) {
	pal := DefaultPalette()
	pal.Accent = "gold"
	if _, err := Render(t.TempDir(), testResult(), pal); err == nil {
		t.Errorf("Render with invalid palette: expected error")
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#00A86B", color.RGBA{R: 0x00, G: 0xa8, B: 0x6b, A: 0xff}, false},
		{"E91E8C", color.RGBA{R: 0xe9, G: 0x1e, B: 0x8c, A: 0xff}, false},
		{"#FFD", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := label("Popular"); got != "Popular" {
		t.Errorf("label(Popular) = %q", got)
	}
	got := label("A Very Long Title That Will Not Fit On The Axis")
	if len([]rune(got)) != maxLabelLen || got[len(got)-3:] != "..." {
		t.Errorf("label(long) = %q", got)
	}
}
