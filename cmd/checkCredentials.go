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

	"github.com/spf13/cobra"

	"github.com/ademuri/soundtrack-virality/internal/catalog"
)

var checkCredentialsCmd = &cobra.Command{
	Use:   "check-credentials",
	Short: "Checks that the Spotify credentials work",
	Long:  `Authenticates with the configured Spotify credentials and performs one search.`,
	Run: func(cmd *cobra.Command, args []string) {
		creds, err := spotifyCredentials()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		source, err := catalog.NewSpotifySource(cmd.Context(), creds)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		err = checkCredentials(cmd.Context(), source)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCredentialsCmd)
}

func checkCredentials(ctx context.Context, source catalog.Source) error {
	if err := catalog.CheckCredentials(ctx, source); err != nil {
		return err
	}
	fmt.Println("Spotify credentials are valid.")
	return nil
}
