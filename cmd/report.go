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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Runs the analysis and prints the report",
	Long: `Runs the analysis without writing any files and prints the report to
stdout, as plain text or, with --format yaml, as a structured YAML document.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(cmd, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("format", "text", "Output format: text or yaml")
	viper.BindPFlag("format", reportCmd.Flags().Lookup("format"))
}

func runReport(cmd *cobra.Command, out io.Writer) error {
	format := viper.GetString("format")
	if format != "text" && format != "yaml" {
		return fmt.Errorf("invalid format %q (want text or yaml)", format)
	}
	config, err := pipelineConfigFromViper()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	res, err := runPipeline(cmd.Context(), config, log)
	if err != nil {
		return err
	}
	return writeReport(out, res, format)
}

func writeReport(out io.Writer, res *analysis.Result, format string) error {
	if format == "text" {
		return analysis.WriteReport(out, res)
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	err := encoder.Encode(res)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}
