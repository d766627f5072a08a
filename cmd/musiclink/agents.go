// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/musiclink/pkg/agent"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List registered enrichment strategies",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range agent.Names() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}
