// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/musiclink/pkg/types"
)

// Request is the JSON payload sent to an external agent process.
type Request struct {
	DocumentText       string              `json:"document_text"`
	Candidates         []types.MusicEntity `json:"candidates"`
	InstructionVersion string              `json:"instruction_version"`
}

// BuildRequest assembles the agent payload for a document and its extracted
// candidates. Exposed so the CLI dry-run mode can print exactly what an
// agent would receive.
func BuildRequest(document string, candidates []types.MusicEntity, promptName string) Request {
	if promptName == "" {
		promptName = defaultPromptName
	}
	return Request{
		DocumentText:       document,
		Candidates:         candidates,
		InstructionVersion: promptName,
	}
}

// responseEntity is one entry of the agent response. Only candidate_id,
// name, artist, type, and year are trusted; the offset and latex_text
// fields are informational and never merged.
type responseEntity struct {
	CandidateID int    `json:"candidate_id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Type        string `json:"type"`
	Year        int    `json:"year"`
	LatexText   string `json:"latex_text"`
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`
}

type response struct {
	Entities []responseEntity `json:"entities"`
}

var entitiesSchema = jsonschema.MustCompileString("entities_schema.json", entitiesSchemaJSON)

// parseResponse extracts, validates, and decodes the entities from raw
// agent output. Any defect makes the whole response unusable: the caller
// falls back to the unenriched candidates.
func parseResponse(output string) ([]responseEntity, error) {
	cleaned := cleanOutput(output)
	if cleaned == "" {
		return nil, fmt.Errorf("agent produced no JSON output")
	}

	// A bare top-level array is accepted and normalized to the object form.
	if strings.HasPrefix(cleaned, "[") {
		cleaned = `{"entities":` + cleaned + `}`
	}

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("agent response is not valid JSON: %w", err)
	}
	if err := entitiesSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("agent response violates schema: %w", err)
	}

	var resp response
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("decoding agent response: %w", err)
	}
	return resp.Entities, nil
}

// cleanOutput strips markdown code fences and surrounding prose, returning
// the first JSON object or array in the text.
func cleanOutput(output string) string {
	s := strings.TrimSpace(output)

	if strings.HasPrefix(s, "```") {
		if start := strings.Index(s, "\n"); start >= 0 {
			body := s[start+1:]
			if end := strings.Index(body, "```"); end >= 0 {
				body = body[:end]
			}
			s = strings.TrimSpace(body)
		}
	}

	objStart := strings.IndexAny(s, "{[")
	if objStart < 0 {
		return ""
	}
	closer := "}"
	if s[objStart] == '[' {
		closer = "]"
	}
	objEnd := strings.LastIndex(s, closer)
	if objEnd < objStart {
		return ""
	}
	return strings.TrimSpace(s[objStart : objEnd+1])
}

// merge recouples agent entities to the extractor candidates by
// candidate_id and applies the trusted fields. Offsets and source text
// always come from the original candidate, so a hallucinated position can
// never corrupt the rewrite. Candidates the agent omitted are treated as
// agent-filtered and excluded from the result; an unknown or duplicate
// candidate_id rejects the whole response.
func merge(candidates []types.MusicEntity, entities []responseEntity) ([]types.MusicEntity, error) {
	byID := make(map[int]types.MusicEntity, len(candidates))
	for _, c := range candidates {
		byID[c.CandidateID] = c
	}

	seen := make(map[int]bool, len(entities))
	var enriched []types.MusicEntity
	for _, ent := range entities {
		base, ok := byID[ent.CandidateID]
		if !ok {
			return nil, fmt.Errorf("agent response references unknown candidate_id %d", ent.CandidateID)
		}
		if seen[ent.CandidateID] {
			return nil, fmt.Errorf("agent response references candidate_id %d twice", ent.CandidateID)
		}
		seen[ent.CandidateID] = true

		if ent.Name != "" {
			base.Name = ent.Name
		}
		if ent.Artist != "" {
			base.Artist = ent.Artist
		}
		if ent.Type != "" {
			kind, err := types.ParseKind(ent.Type)
			if err != nil {
				return nil, fmt.Errorf("agent response for candidate_id %d: %w", ent.CandidateID, err)
			}
			base.Kind = kind
		}
		if ent.Year != 0 {
			base.Year = ent.Year
		}
		enriched = append(enriched, base)
	}

	if len(enriched) == 0 {
		return nil, fmt.Errorf("agent returned no usable entities")
	}

	// Restore document order; the agent may have reordered entries.
	sort.Slice(enriched, func(i, j int) bool {
		return enriched[i].Start < enriched[j].Start
	})
	return enriched, nil
}
