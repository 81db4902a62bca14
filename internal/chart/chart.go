// Package chart renders the analysis figures as PNG files.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

const (
	histogramBins = 10
	topN          = 10
	maxLabelLen   = 30
)

var (
	figureWidth  = 8 * vg.Inch
	figureHeight = 5 * vg.Inch
)

// Palette holds the figure colours as "#RRGGBB" strings.
type Palette struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
}

// DefaultPalette is emerald, pink and gold.
func DefaultPalette() Palette {
	return Palette{Primary: "#00A86B", Secondary: "#E91E8C", Accent: "#FFD700"}
}

type colors struct {
	primary, secondary, accent color.Color
}

func (p Palette) parse() (colors, error) {
	var c colors
	var err error
	if c.primary, err = ParseHex(p.Primary); err != nil {
		return c, err
	}
	if c.secondary, err = ParseHex(p.Secondary); err != nil {
		return c, err
	}
	if c.accent, err = ParseHex(p.Accent); err != nil {
		return c, err
	}
	return c, nil
}

// ParseHex parses "#RRGGBB".
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Render writes the figures for r into dir and returns the paths written.
// Figures whose data is degenerate are left out. With no linked records
// nothing is drawn and the error wraps analysis.ErrDegenerateBatch.
func Render(dir string, r *analysis.Result, pal Palette) ([]string, error) {
	if len(r.Linked) == 0 {
		return nil, fmt.Errorf("rendering charts: %w", analysis.ErrDegenerateBatch)
	}
	c, err := pal.parse()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	figures := []struct {
		name  string
		build func([]analysis.LinkedRecord, []analysis.CategoryPerformance, colors) (*plot.Plot, error)
	}{
		{"popularity_distribution.png", popularityHistogram},
		{"popularity_vs_videos.png", popularityVsVideos},
		{"top_popularity.png", topByPopularity},
		{"duration_vs_popularity.png", durationVsPopularity},
		{"virality_vs_expected.png", viralityVsExpected},
		{"content_type_performance.png", categoryBars},
	}

	var written []string
	for _, f := range figures {
		p, err := f.build(r.Linked, r.Categories, c)
		if err != nil {
			return written, fmt.Errorf("building %s: %w", f.name, err)
		}
		if p == nil {
			continue
		}
		path := filepath.Join(dir, f.name)
		if err := p.Save(figureWidth, figureHeight, path); err != nil {
			return written, fmt.Errorf("saving %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	return p
}

func popularityHistogram(records []analysis.LinkedRecord, _ []analysis.CategoryPerformance, c colors) (*plot.Plot, error) {
	values := make(plotter.Values, len(records))
	for i, r := range records {
		values[i] = float64(r.Track.Popularity)
	}
	if constant(values) {
		return nil, nil
	}

	h, err := plotter.NewHist(values, histogramBins)
	if err != nil {
		return nil, err
	}
	h.FillColor = c.primary

	p := newPlot("Popularity distribution", "Popularity", "Tracks")
	p.Add(h)
	return p, nil
}

func popularityVsVideos(records []analysis.LinkedRecord, _ []analysis.CategoryPerformance, c colors) (*plot.Plot, error) {
	xys := make(plotter.XYs, len(records))
	for i, r := range records {
		xys[i].X = float64(r.Track.Popularity)
		xys[i].Y = float64(r.Engagement.VideoCount)
	}
	return scatter("Catalog popularity vs video count", "Popularity", "Videos", xys, c.secondary)
}

func durationVsPopularity(records []analysis.LinkedRecord, _ []analysis.CategoryPerformance, c colors) (*plot.Plot, error) {
	xys := make(plotter.XYs, len(records))
	for i, r := range records {
		xys[i].X = r.Track.DurationMinutes
		xys[i].Y = float64(r.Track.Popularity)
	}
	return scatter("Duration vs popularity", "Duration (minutes)", "Popularity", xys, c.primary)
}

// viralityVsExpected plots records with an expected virality against the
// diagonal on which actual equals expected.
func viralityVsExpected(records []analysis.LinkedRecord, _ []analysis.CategoryPerformance, c colors) (*plot.Plot, error) {
	var xys plotter.XYs
	for _, r := range records {
		if r.ExpectedVirality == nil {
			continue
		}
		xys = append(xys, plotter.XY{X: *r.ExpectedVirality, Y: r.ViralityScore})
	}
	if len(xys) == 0 {
		return nil, nil
	}

	p, err := scatter("Actual vs expected virality", "Expected virality", "Virality score", xys, c.secondary)
	if err != nil {
		return nil, err
	}
	diagonal := plotter.NewFunction(func(x float64) float64 { return x })
	diagonal.Color = c.accent
	diagonal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(diagonal)
	p.X.Min, p.X.Max = 0, 100
	p.Y.Min, p.Y.Max = 0, 100
	return p, nil
}

func scatter(title, x, y string, xys plotter.XYs, col color.Color) (*plot.Plot, error) {
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = col
	s.GlyphStyle.Radius = vg.Points(4)

	p := newPlot(title, x, y)
	p.Add(s)
	p.Add(plotter.NewGrid())
	return p, nil
}

func topByPopularity(records []analysis.LinkedRecord, _ []analysis.CategoryPerformance, c colors) (*plot.Plot, error) {
	sorted := append([]analysis.LinkedRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Track.Popularity != sorted[j].Track.Popularity {
			return sorted[i].Track.Popularity > sorted[j].Track.Popularity
		}
		return sorted[i].NormalizedTitle < sorted[j].NormalizedTitle
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}

	// Horizontal bars are drawn bottom up, so the most popular goes last.
	values := make(plotter.Values, len(sorted))
	labels := make([]string, len(sorted))
	for i, r := range sorted {
		j := len(sorted) - 1 - i
		values[j] = float64(r.Track.Popularity)
		labels[j] = label(r.NormalizedTitle)
	}
	return bars(fmt.Sprintf("Top %d tracks by popularity", len(sorted)), "Popularity", values, labels, c.primary)
}

func categoryBars(_ []analysis.LinkedRecord, categories []analysis.CategoryPerformance, c colors) (*plot.Plot, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	values := make(plotter.Values, len(categories))
	labels := make([]string, len(categories))
	for i, cat := range categories {
		j := len(categories) - 1 - i
		values[j] = cat.AvgViralityScore
		labels[j] = label(cat.Category)
	}
	return bars("Virality by content type", "Average virality score", values, labels, c.secondary)
}

func bars(title, x string, values plotter.Values, labels []string, col color.Color) (*plot.Plot, error) {
	b, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, err
	}
	b.Horizontal = true
	b.Color = col
	b.LineStyle.Width = 0

	p := newPlot(title, x, "")
	p.Add(b)
	p.NominalY(labels...)
	return p, nil
}

func label(s string) string {
	r := []rune(s)
	if len(r) <= maxLabelLen {
		return s
	}
	return string(r[:maxLabelLen-3]) + "..."
}

func constant(values plotter.Values) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
