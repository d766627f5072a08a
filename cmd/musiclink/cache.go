// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the resolution cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache()
		if err != nil {
			return err
		}
		defer cache.Close()

		stats, err := cache.Stat(cmd.Context())
		if err != nil {
			return err
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		tw.SetStyle(table.StyleRounded)
		tw.AppendRow(table.Row{"entries", stats.Entries})
		tw.AppendRow(table.Row{"albums", stats.Albums})
		tw.AppendRow(table.Row{"tracks", stats.Tracks})
		if stats.Entries > 0 {
			tw.AppendRow(table.Row{"oldest", stats.Oldest})
			tw.AppendRow(table.Row{"newest", stats.Newest})
		}
		tw.Render()
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached resolutions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache()
		if err != nil {
			return err
		}
		defer cache.Close()

		removed, err := cache.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d cached resolution(s)\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
