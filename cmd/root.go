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

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
	"github.com/ademuri/soundtrack-virality/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "soundtrack-virality",
	Short: "Links soundtrack catalog data with short-video engagement",
	Long: `Collects streaming-catalog metadata for a soundtrack, joins it with
short-video engagement data by song title, and scores, ranks and correlates
the result.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.soundtrack-virality.yaml)")

	flags.String("data_dir", "data", "Directory holding collected input data")
	viper.BindPFlag("data_dir", flags.Lookup("data_dir"))

	flags.StringP("output_dir", "o", "outputs", "Directory analysis outputs are written to")
	viper.BindPFlag("output_dir", flags.Lookup("output_dir"))

	flags.String("log_level", "info", "Log level: debug, info, warn or error")
	viper.BindPFlag("log_level", flags.Lookup("log_level"))

	flags.String("log_file", "", "Also write JSON logs to this file, rotated")
	viper.BindPFlag("log_file", flags.Lookup("log_file"))

	flags.Bool("log_json", false, "Write JSON logs to stderr even on a terminal")
	viper.BindPFlag("log_json", flags.Lookup("log_json"))

	// Pipeline inputs and options, shared by analyze, report and email.
	flags.String("catalog", "", "Catalog CSV (default <data_dir>/spotify/tracks.csv)")
	viper.BindPFlag("catalog", flags.Lookup("catalog"))

	flags.String("engagement", "", "Engagement CSV (default <data_dir>/engagement/engagement.csv)")
	viper.BindPFlag("engagement", flags.Lookup("engagement"))

	flags.String("engagement_fallback", "", "Engagement CSV used when --engagement is missing (default <data_dir>/engagement/engagement_EXAMPLE.csv)")
	viper.BindPFlag("engagement_fallback", flags.Lookup("engagement_fallback"))

	flags.String("match_mode", string(analysis.MatchModeExact), "Title matching: exact, canonical or fuzzy")
	viper.BindPFlag("match_mode", flags.Lookup("match_mode"))

	flags.Float64("min_similarity", analysis.DefaultMinSimilarity, "Lowest title similarity accepted by fuzzy matching")
	viper.BindPFlag("min_similarity", flags.Lookup("min_similarity"))

	flags.Int("surprise_n", analysis.DefaultSurpriseN, "Number of over and underperformers to list")
	viper.BindPFlag("surprise_n", flags.Lookup("surprise_n"))

	flags.StringSlice("descriptors", analysis.DefaultDescriptors, "Audio descriptors to correlate with virality")
	viper.BindPFlag("descriptors", flags.Lookup("descriptors"))

	flags.StringSlice("celebrities", analysis.DefaultCelebrities, "Names counted as a celebrity boost")
	viper.BindPFlag("celebrities", flags.Lookup("celebrities"))

	// Credentials.
	flags.String("spotify_id", "", "Spotify client id (or SOUNDTRACK_SPOTIFYID)")
	viper.BindPFlag("spotify_id", flags.Lookup("spotify_id"))

	flags.String("spotify_secret", "", "Spotify client secret (or SOUNDTRACK_SPOTIFYSECRET)")
	viper.BindPFlag("spotify_secret", flags.Lookup("spotify_secret"))

	flags.String("lastfm_api_key", "", "last.fm API key")
	viper.BindPFlag("lastfm_api_key", flags.Lookup("lastfm_api_key"))

	flags.String("lastfm_secret", "", "last.fm secret")
	viper.BindPFlag("lastfm_secret", flags.Lookup("lastfm_secret"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".soundtrack-virality" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".soundtrack-virality")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func loggingConfig() logging.Config {
	return logging.Config{
		Level: viper.GetString("log_level"),
		File:  viper.GetString("log_file"),
		JSON:  viper.GetBool("log_json"),
	}
}

func newLogger() (*zap.SugaredLogger, error) {
	return logging.New(loggingConfig())
}
