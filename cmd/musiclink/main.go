// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the musiclink CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	_ "github.com/pdiddy/musiclink/internal/agents"
	"github.com/pdiddy/musiclink/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// exitCode lets subcommands distinguish "processed with unresolved
// entities" (2) from success (0). Fatal errors exit 1 via Execute.
var exitCode int

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// agentEnv maps secret file names to the environment variables the agent
// subprocesses expect.
var agentEnvKeys = map[string]string{
	"openai-api-key":    "OPENAI_API_KEY",
	"anthropic-api-key": "ANTHROPIC_API_KEY",
}

// agentEnv returns the environment variables to export to an agent
// subprocess from the loaded secrets.
func agentEnv() map[string]string {
	env := make(map[string]string)
	for file, envVar := range agentEnvKeys {
		if v, ok := loadedSecrets[file]; ok {
			env[envVar] = v
		}
	}
	return env
}

// rootCmd is the base command for the musiclink CLI.
var rootCmd = &cobra.Command{
	Use:   "musiclink",
	Short: "Link music references in LaTeX documents to smart links",
	Long: `musiclink locates music references marked with \album{...} and \song{...}
in LaTeX documents, resolves each one to a streaming-platform URL, converts
it to a platform-agnostic smart link, and rewrites the document with
\href hyperlinks.

Each pipeline stage is also exposed on its own: scan lists candidates,
resolve looks up a single entity, and link runs the full pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./musiclink.yaml or ~/.config/musiclink/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("musiclink")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "musiclink"))
		}
	}

	viper.SetEnvPrefix("MUSICLINK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}
