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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ademuri/soundtrack-virality/internal/engagement"
	"github.com/ademuri/soundtrack-virality/internal/tabular"
)

type TemplateConfig struct {
	CatalogPath string
	DataDir     string
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Writes the engagement collection template and example data",
	Long: `Writes, under <data_dir>/engagement:
  engagement_template.csv      one blank row per catalog track
  engagement_EXAMPLE.csv       example engagement data
  content_type_reference.csv   trend formats
  INSTRUCTIONS.txt             how to fill in the template

The template is only written when the catalog CSV exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := TemplateConfig{
			CatalogPath: viper.GetString("catalog"),
			DataDir:     viper.GetString("data_dir"),
		}
		if config.CatalogPath == "" {
			config.CatalogPath = filepath.Join(config.DataDir, catalogFile)
		}
		log, err := newLogger()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer log.Sync()

		err = writeTemplates(config, log)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
}

func writeTemplates(config TemplateConfig, log *zap.SugaredLogger) error {
	dir := filepath.Join(config.DataDir, "engagement")

	tracks, err := tabular.ReadCatalog(config.CatalogPath)
	if err != nil {
		log.Warnw("catalog not readable, skipping engagement template", "path", config.CatalogPath, "error", err)
	} else {
		path := filepath.Join(config.DataDir, templateFile)
		rows := engagement.Template(tracks)
		if err := tabular.WriteEngagement(path, rows); err != nil {
			return err
		}
		log.Infow("wrote engagement template", "path", path, "rows", len(rows))
	}

	examplePath := filepath.Join(config.DataDir, exampleFile)
	if err := tabular.WriteEngagement(examplePath, engagement.Example()); err != nil {
		return err
	}
	log.Infow("wrote example engagement data", "path", examplePath)

	header, rows := engagement.ContentTypeRows()
	if err := tabular.WriteTable(filepath.Join(dir, "content_type_reference.csv"), header, rows); err != nil {
		return err
	}

	instructions := filepath.Join(dir, "INSTRUCTIONS.txt")
	if err := os.WriteFile(instructions, []byte(engagement.Instructions), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", instructions, err)
	}
	fmt.Printf("Wrote engagement templates to %s; see %s\n", dir, instructions)
	return nil
}
