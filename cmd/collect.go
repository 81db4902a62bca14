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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ademuri/soundtrack-virality/internal/catalog"
	"github.com/ademuri/soundtrack-virality/internal/tabular"
)

const (
	catalogFile    = "spotify/tracks.csv"
	engagementFile = "engagement/engagement.csv"
	exampleFile    = "engagement/engagement_EXAMPLE.csv"
	templateFile   = "engagement/engagement_template.csv"
)

var defaultAlbums = []string{"Wicked=Wicked Original Broadway Cast Recording"}

type CollectConfig struct {
	Albums      []catalog.AlbumRequest
	Output      string
	Interval    time.Duration
	Credentials catalog.Credentials
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collects track metadata and audio features from Spotify",
	Long: `Fetches every track of the configured albums, with popularity, release
date and audio features, and writes them as the catalog CSV.

Albums are given as [musical=]query with --album, or [musical=]id with
--album_id. The first search result is used for a query.`,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := collectConfigFromViper()
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

		source, err := catalog.NewSpotifySource(cmd.Context(), config.Credentials)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		err = collect(cmd.Context(), config, source, log)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringArray("album", nil, "Album to collect, as [musical=]search query (repeatable)")
	viper.BindPFlag("album", collectCmd.Flags().Lookup("album"))

	collectCmd.Flags().StringArray("album_id", nil, "Album to collect, as [musical=]Spotify album id (repeatable)")
	viper.BindPFlag("album_id", collectCmd.Flags().Lookup("album_id"))

	collectCmd.Flags().Duration("call_interval", catalog.DefaultCallInterval, "Delay between Spotify requests")
	viper.BindPFlag("call_interval", collectCmd.Flags().Lookup("call_interval"))
}

// spotifyCredentials prefers flags and config, then the environment.
func spotifyCredentials() (catalog.Credentials, error) {
	creds := catalog.Credentials{
		SpotifyID:     viper.GetString("spotify_id"),
		SpotifySecret: viper.GetString("spotify_secret"),
	}
	if creds.Valid() {
		return creds, nil
	}
	env, err := catalog.CredentialsFromEnv()
	if err != nil {
		return creds, err
	}
	if creds.SpotifyID == "" {
		creds.SpotifyID = env.SpotifyID
	}
	if creds.SpotifySecret == "" {
		creds.SpotifySecret = env.SpotifySecret
	}
	if !creds.Valid() {
		return creds, fmt.Errorf("spotify_id and spotify_secret must be set (or SOUNDTRACK_SPOTIFYID and SOUNDTRACK_SPOTIFYSECRET)")
	}
	return creds, nil
}

func collectConfigFromViper() (CollectConfig, error) {
	creds, err := spotifyCredentials()
	if err != nil {
		return CollectConfig{}, err
	}

	queries := viper.GetStringSlice("album")
	ids := viper.GetStringSlice("album_id")
	if len(queries) == 0 && len(ids) == 0 {
		queries = defaultAlbums
	}
	var albums []catalog.AlbumRequest
	for _, q := range queries {
		musical, query := parseAlbumArg(q)
		albums = append(albums, catalog.AlbumRequest{Musical: musical, Query: query})
	}
	for _, id := range ids {
		musical, albumID := parseAlbumArg(id)
		albums = append(albums, catalog.AlbumRequest{Musical: musical, AlbumID: albumID})
	}

	return CollectConfig{
		Albums:      albums,
		Output:      filepath.Join(viper.GetString("data_dir"), catalogFile),
		Interval:    viper.GetDuration("call_interval"),
		Credentials: creds,
	}, nil
}

// parseAlbumArg splits "musical=value". Without a musical, the value is
// returned alone.
func parseAlbumArg(arg string) (string, string) {
	musical, value, ok := strings.Cut(arg, "=")
	if !ok {
		return "", strings.TrimSpace(arg)
	}
	return strings.TrimSpace(musical), strings.TrimSpace(value)
}

func collect(ctx context.Context, config CollectConfig, source catalog.Source, log *zap.SugaredLogger) error {
	interval := config.Interval
	if interval <= 0 {
		interval = catalog.DefaultCallInterval
	}
	collector := catalog.NewCollector(source, interval, log)

	records, err := collector.Collect(ctx, config.Albums)
	if err != nil {
		return fmt.Errorf("collecting tracks: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no tracks collected from %d albums", len(config.Albums))
	}

	if err := tabular.WriteCatalog(config.Output, records); err != nil {
		return err
	}
	log.Infow("wrote catalog", "path", config.Output, "tracks", len(records))
	fmt.Printf("Collected %d tracks into %s\n", len(records), config.Output)
	return nil
}
