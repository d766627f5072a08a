// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linker

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/musiclink/pkg/types"
)

// Report is the YAML run report written alongside a processed document.
type Report struct {
	RunID      string    `yaml:"run_id"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Input      string    `yaml:"input"`
	Output     string    `yaml:"output"`

	Agent          string `yaml:"agent"`
	FallbackReason string `yaml:"fallback_reason,omitempty"`

	Summary  ReportSummary  `yaml:"summary"`
	Entities []EntityReport `yaml:"entities"`
}

type ReportSummary struct {
	Total        int `yaml:"total"`
	Resolved     int `yaml:"resolved"`
	Unresolved   int `yaml:"unresolved"`
	CacheHits    int `yaml:"cache_hits"`
	AgentDropped int `yaml:"agent_dropped"`
}

// EntityReport records one entity's fate.
type EntityReport struct {
	CandidateID  int        `yaml:"candidate_id"`
	Name         string     `yaml:"name"`
	Artist       string     `yaml:"artist,omitempty"`
	Kind         types.Kind `yaml:"kind"`
	Year         int        `yaml:"year,omitempty"`
	Status       string     `yaml:"status"`
	Stage        string     `yaml:"stage,omitempty"`
	Error        string     `yaml:"error,omitempty"`
	SmartLinkURL string     `yaml:"smartlink_url,omitempty"`
	Confidence   float64    `yaml:"confidence,omitempty"`
}

// NewReport assembles a report from a pipeline result.
func NewReport(res Result, inputPath, outputPath string, started time.Time) Report {
	r := Report{
		RunID:          uuid.NewString(),
		StartedAt:      started.UTC(),
		FinishedAt:     time.Now().UTC(),
		Input:          inputPath,
		Output:         outputPath,
		Agent:          res.AgentUsed,
		FallbackReason: res.FallbackReason,
		Summary: ReportSummary{
			Total:        res.Total,
			Resolved:     res.Resolved,
			Unresolved:   res.Unresolved,
			CacheHits:    res.CacheHits,
			AgentDropped: res.AgentDropped,
		},
	}

	for _, o := range res.Entities {
		er := EntityReport{
			CandidateID:  o.Entity.CandidateID,
			Name:         o.Entity.Name,
			Artist:       o.Entity.Artist,
			Kind:         o.Entity.Kind,
			Year:         o.Entity.Year,
			SmartLinkURL: o.Entity.SmartLinkURL,
			Confidence:   o.Entity.Confidence,
		}
		switch {
		case o.CacheHit:
			er.Status = "cache_hit"
		case o.Entity.Resolved():
			er.Status = "resolved"
		default:
			er.Status = "unresolved"
			er.Stage = o.Stage
			if o.Err != nil {
				er.Error = o.Err.Error()
			}
		}
		r.Entities = append(r.Entities, er)
	}
	return r
}

// Write marshals the report to YAML at path.
func (r Report) Write(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	return nil
}
