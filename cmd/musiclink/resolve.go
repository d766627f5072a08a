// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/musiclink/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a single music entity to a smart link",
	Long: `Resolve runs the two resolution stages for one entity given on the
command line, without a document. Useful for debugging search queries and
scoring behavior.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("name", "", "album or track title (required)")
	resolveCmd.Flags().String("artist", "", "performing artist")
	resolveCmd.Flags().String("kind", string(types.KindAlbum), "entity kind: album or track")
	resolveCmd.Flags().Int("year", 0, "release year")
	resolveCmd.Flags().String("country", defaultCountry, "storefront country code")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		return fmt.Errorf("provide a title with --name")
	}

	kindStr, _ := cmd.Flags().GetString("kind")
	kind, err := types.ParseKind(kindStr)
	if err != nil {
		return err
	}

	artist, _ := cmd.Flags().GetString("artist")
	year, _ := cmd.Flags().GetInt("year")
	country, _ := cmd.Flags().GetString("country")

	resolver := newResolver(types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{Timeout: defaultTimeout, UserAgent: defaultUserAgent},
		Country:    country,
	})

	outcome := resolver.ResolveEntity(cmd.Context(), types.MusicEntity{
		Name:   name,
		Artist: artist,
		Kind:   kind,
		Year:   year,
	})
	if outcome.Err != nil {
		return fmt.Errorf("%s stage: %w", outcome.Stage, outcome.Err)
	}

	fmt.Printf("platform URL:  %s\n", outcome.Entity.PlatformURL)
	fmt.Printf("smart link:    %s\n", outcome.Entity.SmartLinkURL)
	fmt.Printf("confidence:    %.2f\n", outcome.Entity.Confidence)
	return nil
}
