package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
	"github.com/ademuri/soundtrack-virality/internal/chart"
	"github.com/ademuri/soundtrack-virality/internal/logging"
	"github.com/ademuri/soundtrack-virality/internal/tabular"
)

func descriptors(energy, danceability, valence, acousticness float64) map[string]float64 {
	return map[string]float64{
		"energy":       energy,
		"danceability": danceability,
		"valence":      valence,
		"acousticness": acousticness,
	}
}

// writeInputs writes a small catalog and engagement file under dir and
// returns a pipeline config reading them.
func writeInputs(t *testing.T, dir string) PipelineConfig {
	t.Helper()
	tracks := []analysis.TrackMetadataRecord{
		{TrackID: "1", Title: `Defying Gravity - From "Wicked"`, Artist: "Cynthia Erivo", Popularity: 88, DurationMinutes: 5.9, Descriptors: descriptors(0.6, 0.3, 0.3, 0.4)},
		{TrackID: "2", Title: `Popular - From "Wicked"`, Artist: "Ariana Grande", Popularity: 82, DurationMinutes: 3.64, Descriptors: descriptors(0.5, 0.6, 0.7, 0.3)},
		{TrackID: "3", Title: `What Is This Feeling? - From "Wicked"`, Artist: "Ariana Grande", Popularity: 76, DurationMinutes: 3.2, Descriptors: descriptors(0.4, 0.5, 0.5, 0.5)},
		{TrackID: "4", Title: `Dancing Through Life - From "Wicked"`, Artist: "Jonathan Bailey", Popularity: 70, DurationMinutes: 4.1, Descriptors: descriptors(0.7, 0.7, 0.6, 0.2)},
		{TrackID: "5", Title: "Overture", Popularity: 40, DurationMinutes: 2.5},
	}
	catalogPath := filepath.Join(dir, catalogFile)
	if err := tabular.WriteCatalog(catalogPath, tracks); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}

	engagement := []analysis.EngagementRecord{
		{SongName: "Defying Gravity", VideoCount: 287000, ViewEstimateMillions: 850, WeeksTrending: 16, TrendCategory: "Vocal Showcase", CelebrityBoost: "Cynthia Erivo", ViralMoment: "Movie hype"},
		{SongName: "Popular", VideoCount: 195000, ViewEstimateMillions: 520, WeeksTrending: 14, TrendCategory: "Dance / POV", CelebrityBoost: "Ariana Grande", ViralMoment: "Catchy"},
		{SongName: "What Is This Feeling?", VideoCount: 142000, ViewEstimateMillions: 310, WeeksTrending: 10, TrendCategory: "Duets / Comedy", ViralMoment: "Roommate humor"},
		{SongName: "Dancing Through Life", VideoCount: 98000, ViewEstimateMillions: 180, WeeksTrending: 8, TrendCategory: "Dance / POV", CelebrityBoost: "Jonathan Bailey edits", ViralMoment: "Thirst edits"},
		{SongName: "Wonderful", VideoCount: 29000, ViewEstimateMillions: 48, WeeksTrending: 4, TrendCategory: "Comedy"},
	}
	engagementPath := filepath.Join(dir, engagementFile)
	if err := tabular.WriteEngagement(engagementPath, engagement); err != nil {
		t.Fatalf("WriteEngagement: %v", err)
	}

	return PipelineConfig{
		CatalogPath:        catalogPath,
		EngagementPath:     engagementPath,
		EngagementFallback: filepath.Join(dir, exampleFile),
		Link:               analysis.DefaultLinkOptions(),
		Descriptors:        analysis.DefaultDescriptors,
		Celebrities:        analysis.DefaultCelebrities,
		SurpriseN:          analysis.DefaultSurpriseN,
	}
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "outputs")
	config := AnalyzeConfig{
		Pipeline:  writeInputs(t, dir),
		OutputDir: outDir,
		Charts:    true,
		Palette:   chart.DefaultPalette(),
	}
	log, logs := logging.NewTestLogger()

	var out bytes.Buffer
	if err := analyze(context.Background(), config, log, &out); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	for _, name := range []string{
		"processed/merged_analysis.csv",
		"tables/feature_correlations.csv",
		"tables/content_type_performance.csv",
		"tables/key_insights.csv",
		"tables/surprise_overperformers.csv",
		"tables/surprise_underperformers.csv",
		"tables/unmatched_records.csv",
		"reports/analysis_insights.txt",
		"figures/popularity_vs_videos.png",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("output %s: %v", name, err)
		}
	}

	report, err := os.ReadFile(filepath.Join(outDir, "reports", "analysis_insights.txt"))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(report), "Total songs: 4") {
		t.Errorf("report does not count 4 linked songs:\n%s", report)
	}

	unmatched, err := os.ReadFile(filepath.Join(outDir, "tables", "unmatched_records.csv"))
	if err != nil {
		t.Fatalf("reading unmatched: %v", err)
	}
	if !strings.Contains(string(unmatched), "catalog,Overture") || !strings.Contains(string(unmatched), "engagement,Wonderful") {
		t.Errorf("unmatched_records.csv = %s", unmatched)
	}

	if !strings.Contains(out.String(), "Virality ranking") || !strings.Contains(out.String(), "Defying Gravity") {
		t.Errorf("printed tables = %s", out.String())
	}
	if logs.FilterMessage("using engagement data").Len() != 1 {
		t.Errorf("expected the engagement source to be logged")
	}
}

func TestAnalyzeNoLinkedRecords(t *testing.T) {
	dir := t.TempDir()
	config := writeInputs(t, dir)
	if err := tabular.WriteEngagement(config.EngagementPath, []analysis.EngagementRecord{
		{SongName: "Something Else", VideoCount: 5, WeeksTrending: 1, TrendCategory: "Other"},
	}); err != nil {
		t.Fatalf("WriteEngagement: %v", err)
	}
	log, logs := logging.NewTestLogger()

	var out bytes.Buffer
	err := analyze(context.Background(), AnalyzeConfig{Pipeline: config, OutputDir: filepath.Join(dir, "out"), Charts: true, Palette: chart.DefaultPalette()}, log, &out)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if logs.FilterMessage("charts skipped").Len() != 1 {
		t.Errorf("expected charts to be skipped")
	}
	if !strings.Contains(out.String(), "Skipped scoring") {
		t.Errorf("output does not report the skipped step: %s", out.String())
	}
}

func TestResolveEngagement(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "engagement.csv")
	fallback := filepath.Join(dir, "example.csv")
	config := PipelineConfig{EngagementPath: primary, EngagementFallback: fallback}

	log, logs := logging.NewTestLogger()
	if _, err := resolveEngagement(config, log); !errors.Is(err, tabular.ErrMissingInput) {
		t.Errorf("resolveEngagement with no files: got %v, want ErrMissingInput", err)
	}

	if err := os.WriteFile(fallback, []byte("song_name\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := resolveEngagement(config, log)
	if err != nil || got != fallback {
		t.Errorf("resolveEngagement = %q, %v, want fallback", got, err)
	}
	if logs.FilterMessage("engagement data not found, using fallback").Len() != 1 {
		t.Errorf("fallback was not logged")
	}

	if err := os.WriteFile(primary, []byte("song_name\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = resolveEngagement(config, log)
	if err != nil || got != primary {
		t.Errorf("resolveEngagement = %q, %v, want primary", got, err)
	}
}

func TestRunPipelineUsesFallback(t *testing.T) {
	dir := t.TempDir()
	config := writeInputs(t, dir)
	if err := os.Rename(config.EngagementPath, config.EngagementFallback); err != nil {
		t.Fatal(err)
	}
	log, _ := logging.NewTestLogger()

	res, err := runPipeline(context.Background(), config, log)
	if err != nil {
		t.Fatalf("runPipeline: %v", err)
	}
	if len(res.Linked) != 4 {
		t.Errorf("linked %d records from the fallback, want 4", len(res.Linked))
	}
}

func TestRunPipelineMissingCatalog(t *testing.T) {
	dir := t.TempDir()
	config := writeInputs(t, dir)
	config.CatalogPath = filepath.Join(dir, "missing.csv")
	log, _ := logging.NewTestLogger()

	if _, err := runPipeline(context.Background(), config, log); !errors.Is(err, tabular.ErrMissingInput) {
		t.Errorf("runPipeline with missing catalog: got %v, want ErrMissingInput", err)
	}
}

func TestWriteReportYAML(t *testing.T) {
	dir := t.TempDir()
	log, _ := logging.NewTestLogger()
	res, err := runPipeline(context.Background(), writeInputs(t, dir), log)
	if err != nil {
		t.Fatalf("runPipeline: %v", err)
	}

	var out bytes.Buffer
	if err := writeReport(&out, res, "yaml"); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("report is not YAML: %v", err)
	}
	if doc["run_id"] != res.RunID {
		t.Errorf("run_id = %v, want %s", doc["run_id"], res.RunID)
	}
	if linked, ok := doc["linked"].([]interface{}); !ok || len(linked) != 4 {
		t.Errorf("linked = %v", doc["linked"])
	}

	out.Reset()
	if err := writeReport(&out, res, "text"); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	if !strings.HasPrefix(out.String(), "=") || !strings.Contains(out.String(), "KEY INSIGHTS:") {
		t.Errorf("text report = %s", out.String())
	}
}

func TestPipelineConfigFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("data_dir", "in")
	viper.Set("match_mode", "canonical")
	viper.Set("min_similarity", 0.9)
	viper.Set("surprise_n", 5)

	config, err := pipelineConfigFromViper()
	if err != nil {
		t.Fatalf("pipelineConfigFromViper: %v", err)
	}
	if config.CatalogPath != filepath.Join("in", catalogFile) ||
		config.EngagementPath != filepath.Join("in", engagementFile) ||
		config.EngagementFallback != filepath.Join("in", exampleFile) {
		t.Errorf("paths = %+v", config)
	}
	if config.Link.Mode != analysis.MatchModeCanonical || config.Link.MinSimilarity != 0.9 || config.SurpriseN != 5 {
		t.Errorf("options = %+v", config)
	}

	viper.Set("match_mode", "loose")
	if _, err := pipelineConfigFromViper(); err == nil {
		t.Errorf("invalid match mode: expected error")
	}
	viper.Set("match_mode", "exact")
	viper.Set("min_similarity", 1.5)
	if _, err := pipelineConfigFromViper(); err == nil {
		t.Errorf("min_similarity above 1: expected error")
	}
}
