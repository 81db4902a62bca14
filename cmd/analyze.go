/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
	"github.com/ademuri/soundtrack-virality/internal/chart"
	"github.com/ademuri/soundtrack-virality/internal/tabular"
)

// PipelineConfig locates the inputs of a run and configures the analysis.
type PipelineConfig struct {
	CatalogPath        string
	EngagementPath     string
	EngagementFallback string

	Link        analysis.LinkOptions
	Descriptors []string
	Celebrities []string
	SurpriseN   int
}

type AnalyzeConfig struct {
	Pipeline  PipelineConfig
	OutputDir string
	Charts    bool
	Palette   chart.Palette
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Links, scores and analyzes the collected data",
	Long: `Joins the catalog CSV with the engagement CSV by normalized title, scores
virality, correlates audio descriptors with it, and writes the merged table,
result tables, the text report and figures under --output_dir.

If the engagement file does not exist the fallback file is used instead, and
a warning is logged.`,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := analyzeConfigFromViper()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		log, err := newLogger()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer log.Sync()

		err = analyze(cmd.Context(), config, log, os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("charts", true, "Render PNG figures")
	viper.BindPFlag("charts", analyzeCmd.Flags().Lookup("charts"))
}

func pipelineConfigFromViper() (PipelineConfig, error) {
	mode, err := analysis.ParseMatchMode(viper.GetString("match_mode"))
	if err != nil {
		return PipelineConfig{}, err
	}
	minSimilarity := viper.GetFloat64("min_similarity")
	if minSimilarity <= 0 || minSimilarity > 1 {
		return PipelineConfig{}, fmt.Errorf("min_similarity must be in (0, 1], got %v", minSimilarity)
	}

	dataDir := viper.GetString("data_dir")
	config := PipelineConfig{
		CatalogPath:        viper.GetString("catalog"),
		EngagementPath:     viper.GetString("engagement"),
		EngagementFallback: viper.GetString("engagement_fallback"),
		Link:               analysis.LinkOptions{Mode: mode, MinSimilarity: minSimilarity},
		Descriptors:        viper.GetStringSlice("descriptors"),
		Celebrities:        viper.GetStringSlice("celebrities"),
		SurpriseN:          viper.GetInt("surprise_n"),
	}
	if config.CatalogPath == "" {
		config.CatalogPath = filepath.Join(dataDir, catalogFile)
	}
	if config.EngagementPath == "" {
		config.EngagementPath = filepath.Join(dataDir, engagementFile)
	}
	if config.EngagementFallback == "" {
		config.EngagementFallback = filepath.Join(dataDir, exampleFile)
	}
	return config, nil
}

func analyzeConfigFromViper() (AnalyzeConfig, error) {
	pipeline, err := pipelineConfigFromViper()
	if err != nil {
		return AnalyzeConfig{}, err
	}
	palette := chart.DefaultPalette()
	if err := viper.UnmarshalKey("palette", &palette); err != nil {
		return AnalyzeConfig{}, fmt.Errorf("reading palette: %w", err)
	}
	return AnalyzeConfig{
		Pipeline:  pipeline,
		OutputDir: viper.GetString("output_dir"),
		Charts:    viper.GetBool("charts"),
		Palette:   palette,
	}, nil
}

// resolveEngagement picks the engagement file before anything is read: the
// primary file when it exists, otherwise the fallback.
func resolveEngagement(config PipelineConfig, log *zap.SugaredLogger) (string, error) {
	if _, err := os.Stat(config.EngagementPath); err == nil {
		log.Infow("using engagement data", "path", config.EngagementPath)
		return config.EngagementPath, nil
	}
	if config.EngagementFallback != "" {
		if _, err := os.Stat(config.EngagementFallback); err == nil {
			log.Warnw("engagement data not found, using fallback", "path", config.EngagementPath, "fallback", config.EngagementFallback)
			return config.EngagementFallback, nil
		}
	}
	return "", fmt.Errorf("%w: %s (fallback %s)", tabular.ErrMissingInput, config.EngagementPath, config.EngagementFallback)
}

// runPipeline reads both inputs and runs the analysis.
func runPipeline(ctx context.Context, config PipelineConfig, log *zap.SugaredLogger) (*analysis.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()
	log = log.With("run_id", runID)

	engagementPath, err := resolveEngagement(config, log)
	if err != nil {
		return nil, err
	}
	tracks, err := tabular.ReadCatalog(config.CatalogPath, config.Descriptors...)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	engagement, err := tabular.ReadEngagement(engagementPath)
	if err != nil {
		return nil, fmt.Errorf("reading engagement: %w", err)
	}
	log.Infow("read inputs", "catalog_rows", len(tracks), "engagement_rows", len(engagement))

	res, err := analysis.Run(ctx, analysis.Inputs{Tracks: tracks, Engagement: engagement}, analysis.Options{
		Link:        config.Link,
		Descriptors: config.Descriptors,
		SurpriseN:   config.SurpriseN,
		Celebrities: config.Celebrities,
		RunID:       runID,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("running analysis: %w", err)
	}
	return res, nil
}

func analyze(ctx context.Context, config AnalyzeConfig, log *zap.SugaredLogger, out io.Writer) error {
	res, err := runPipeline(ctx, config.Pipeline, log)
	if err != nil {
		return err
	}
	if err := writeOutputs(config.OutputDir, res); err != nil {
		return err
	}

	if config.Charts {
		figures, err := chart.Render(filepath.Join(config.OutputDir, "figures"), res, config.Palette)
		switch {
		case errors.Is(err, analysis.ErrDegenerateBatch):
			log.Warnw("charts skipped", "reason", err)
		case err != nil:
			return err
		default:
			log.Infow("rendered charts", "count", len(figures))
		}
	}

	for _, t := range resultTables(res) {
		fmt.Fprintln(out, t)
	}
	for _, s := range res.Skips {
		fmt.Fprintf(out, "Skipped %s: %s\n", s.Step, s.Reason)
	}
	fmt.Fprintf(out, "Outputs written to %s\n", config.OutputDir)
	return nil
}

// writeOutputs writes every table and the text report under dir.
func writeOutputs(dir string, res *analysis.Result) error {
	tables := filepath.Join(dir, "tables")
	writes := []struct {
		path  string
		write func(string) error
	}{
		{filepath.Join(dir, "processed", "merged_analysis.csv"), func(p string) error { return tabular.WriteLinked(p, res.Linked) }},
		{filepath.Join(tables, "feature_correlations.csv"), func(p string) error { return tabular.WriteCorrelations(p, res.Correlations) }},
		{filepath.Join(tables, "content_type_performance.csv"), func(p string) error { return tabular.WriteCategories(p, res.Categories) }},
		{filepath.Join(tables, "key_insights.csv"), func(p string) error { return tabular.WriteInsights(p, res.Insights) }},
		{filepath.Join(tables, "surprise_overperformers.csv"), func(p string) error { return tabular.WriteSurprise(p, res.Surprise.Overperformers) }},
		{filepath.Join(tables, "surprise_underperformers.csv"), func(p string) error { return tabular.WriteSurprise(p, res.Surprise.Underperformers) }},
		{filepath.Join(tables, "unmatched_records.csv"), func(p string) error { return tabular.WriteUnmatched(p, res.Unmatched) }},
		{filepath.Join(dir, "reports", "analysis_insights.txt"), func(p string) error { return writeReportFile(p, res) }},
	}
	for _, w := range writes {
		if err := w.write(w.path); err != nil {
			return err
		}
	}
	return nil
}

func writeReportFile(path string, res *analysis.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := analysis.WriteReport(f, res); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
