// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/musiclink/internal/extract"
	"github.com/pdiddy/musiclink/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan INPUT",
	Short: "List music reference candidates in a LaTeX document",
	Long: `Scan extracts marked album and track spans from a LaTeX file and lists
them without resolving anything. Spans already wrapped in \href are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Bool("json", false, "output candidates as JSON")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	candidates, err := extract.Scan(string(data), types.ExtractConfig{})
	if err != nil {
		return fmt.Errorf("extracting candidates: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	if len(candidates) == 0 {
		fmt.Println("No candidates found.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Kind", "Name", "Span"})
	for _, c := range candidates {
		tw.AppendRow(table.Row{
			c.CandidateID, c.Kind, c.Name,
			fmt.Sprintf("[%d, %d)", c.Start, c.End),
		})
	}
	tw.Render()

	fmt.Printf("\n%d candidates\n", len(candidates))
	return nil
}
