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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ademuri/soundtrack-virality/internal/lastfm"
	"github.com/ademuri/soundtrack-virality/internal/tabular"
)

type EnrichConfig struct {
	CatalogPath string
	APIKey      string
	Secret      string
	Interval    time.Duration
}

var enrichLastfmCmd = &cobra.Command{
	Use:   "enrich-lastfm",
	Short: "Adds last.fm play counts to the catalog",
	Long: `Looks up every catalog track on last.fm by its first artist and normalized
title and rewrites the catalog CSV with a lastfm_playcount column. Tracks
last.fm does not know are left without it.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("lastfm_api_key") == "" {
			return fmt.Errorf("required flag(s) \"lastfm_api_key\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := EnrichConfig{
			CatalogPath: viper.GetString("catalog"),
			APIKey:      viper.GetString("lastfm_api_key"),
			Secret:      viper.GetString("lastfm_secret"),
			Interval:    viper.GetDuration("lastfm_interval"),
		}
		if config.CatalogPath == "" {
			config.CatalogPath = filepath.Join(viper.GetString("data_dir"), catalogFile)
		}
		log, err := newLogger()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer log.Sync()

		client := lastfm.NewAPIClient(config.APIKey, config.Secret)
		err = enrichCatalog(cmd.Context(), config, client, log)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(enrichLastfmCmd)

	enrichLastfmCmd.Flags().Duration("lastfm_interval", lastfm.DefaultCallInterval, "Delay between last.fm requests")
	viper.BindPFlag("lastfm_interval", enrichLastfmCmd.Flags().Lookup("lastfm_interval"))
}

func enrichCatalog(ctx context.Context, config EnrichConfig, client lastfm.Client, log *zap.SugaredLogger) error {
	tracks, err := tabular.ReadCatalog(config.CatalogPath)
	if err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}

	interval := config.Interval
	if interval <= 0 {
		interval = lastfm.DefaultCallInterval
	}
	enricher := lastfm.NewEnricher(client, interval, log)
	enriched, n, err := enricher.Enrich(ctx, tracks)
	if err != nil {
		return fmt.Errorf("enriching catalog: %w", err)
	}

	if err := tabular.WriteCatalog(config.CatalogPath, enriched); err != nil {
		return err
	}
	log.Infow("enriched catalog", "path", config.CatalogPath, "tracks", len(tracks), "enriched", n)
	fmt.Printf("Added last.fm stats to %d of %d tracks\n", n, len(tracks))
	return nil
}
