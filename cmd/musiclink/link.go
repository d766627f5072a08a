// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/musiclink/internal/agents"
	"github.com/pdiddy/musiclink/internal/extract"
	"github.com/pdiddy/musiclink/internal/linkcache"
	"github.com/pdiddy/musiclink/internal/linker"
	"github.com/pdiddy/musiclink/internal/resolve"
	"github.com/pdiddy/musiclink/pkg/types"
)

const (
	defaultCountry   = "us"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "musiclink/0.1"
)

var linkCmd = &cobra.Command{
	Use:   "link INPUT [OUTPUT]",
	Short: "Link music references in a LaTeX document",
	Long: `Link runs the full pipeline over a LaTeX file: extract marked spans,
enrich them through the configured agent, resolve smart links, and write
the rewritten document to OUTPUT.

With --dry-run the JSON payload that would be sent to the agent is printed
instead and no output file is required.

Exit status is 0 when every entity resolved, 2 when the document was
processed but one or more entities stayed unresolved, and 1 on fatal errors.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLink,
}

func init() {
	linkCmd.Flags().String("country", defaultCountry, "storefront country code for platform search")
	linkCmd.Flags().String("agent", "", "agent strategy (default: MUSICLINK_AGENT or heuristic)")
	linkCmd.Flags().String("llm-model", "", "model name for the llm agent (ignored by other agents)")
	linkCmd.Flags().String("agent-prompt", "", "path to a prompt file overriding the embedded one")
	linkCmd.Flags().String("agent-tools", "", "path to a tool schema file overriding the embedded one")
	linkCmd.Flags().Duration("agent-timeout", 0, "agent subprocess timeout (default 2m)")
	linkCmd.Flags().Float64("min-score", 0, "minimum acceptable match score (default 0.5)")
	linkCmd.Flags().Int("concurrency", 1, "parallel entity resolutions")
	linkCmd.Flags().Bool("dry-run", false, "print the agent request payload and exit")
	linkCmd.Flags().Bool("no-cache", false, "disable the resolution cache")
	linkCmd.Flags().String("report", "", "write a YAML run report to this path")

	rootCmd.AddCommand(linkCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		return runDryRun(inputPath)
	}

	if len(args) < 2 {
		return fmt.Errorf("output file is required unless using --dry-run")
	}
	outputPath := args[1]

	agentName, _ := cmd.Flags().GetString("agent")
	if agentName == "" {
		agentName = viper.GetString("agent")
	}
	if agentName == "" {
		agentName = agents.NameHeuristic
	}

	country, _ := cmd.Flags().GetString("country")
	if !cmd.Flags().Changed("country") {
		if v := viper.GetString("country"); v != "" {
			country = v
		}
	}
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	if !cmd.Flags().Changed("min-score") {
		minScore = viper.GetFloat64("min_score")
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	model, _ := cmd.Flags().GetString("llm-model")
	promptPath, _ := cmd.Flags().GetString("agent-prompt")
	toolsPath, _ := cmd.Flags().GetString("agent-tools")
	agentTimeout, _ := cmd.Flags().GetDuration("agent-timeout")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	reportPath, _ := cmd.Flags().GetString("report")

	resolveCfg := types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		Country:     country,
		MinScore:    minScore,
		Concurrency: concurrency,
	}

	resolver := newResolver(resolveCfg)
	if !noCache {
		if cache, err := openCache(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache unavailable, resolving without it: %v\n", err)
		} else {
			defer cache.Close()
			resolver.Cache = cache
		}
	}

	l := &linker.Linker{
		AgentName: agentName,
		AgentConfig: types.AgentConfig{
			Model:      model,
			PromptPath: promptPath,
			ToolsPath:  toolsPath,
			Timeout:    agentTimeout,
			Env:        agentEnv(),
		},
		Resolver: resolver,
		Progress: os.Stderr,
	}

	started := time.Now()
	res, err := l.ProcessFile(cmd.Context(), inputPath, outputPath)
	if err != nil {
		return err
	}

	if reportPath != "" {
		report := linker.NewReport(res, inputPath, outputPath, started)
		if err := report.Write(reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	fmt.Printf("Wrote linked LaTeX to %s\n", outputPath)
	fmt.Printf("%d entities: %d resolved (%d from cache), %d unresolved\n",
		res.Total, res.Resolved, res.CacheHits, res.Unresolved)
	if res.Unresolved > 0 {
		exitCode = 2
	}
	return nil
}

// runDryRun prints the JSON payload that would be sent to an agent.
func runDryRun(inputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	candidates, err := extract.Scan(string(data), types.ExtractConfig{})
	if err != nil {
		return fmt.Errorf("extracting candidates: %w", err)
	}

	req := agents.BuildRequest(string(data), candidates, "")
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(req)
}

func newResolver(cfg types.ResolveConfig) *resolve.Resolver {
	cfg = cfg.Defaults()
	return &resolve.Resolver{
		Platform: &resolve.ITunesBackend{
			Client:    &http.Client{Timeout: cfg.Timeout},
			UserAgent: cfg.UserAgent,
		},
		SmartLink: resolve.NewSongLinkBackend(cfg.Timeout, cfg.UserAgent),
		Config:    cfg,
	}
}

func openCache() (*linkcache.Cache, error) {
	path, err := linkcache.DefaultPath()
	if err != nil {
		return nil, err
	}
	return linkcache.Open(path)
}
