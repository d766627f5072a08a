// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/musiclink/pkg/types"
)

func testCandidates() []types.MusicEntity {
	return []types.MusicEntity{
		{CandidateID: 0, Name: "Aquemini", Kind: types.KindAlbum,
			SourceText: `\album{Aquemini}`, Start: 10, End: 26},
		{CandidateID: 1, Name: "Rosa Parks", Kind: types.KindTrack,
			SourceText: `\song{Rosa Parks}`, Start: 40, End: 57},
	}
}

func TestCleanOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"entities": []}`, `{"entities": []}`},
		{"bare array", `[{"candidate_id": 0}]`, `[{"candidate_id": 0}]`},
		{"code fence", "```json\n{\"entities\": []}\n```", `{"entities": []}`},
		{"fence without language", "```\n{\"entities\": []}\n```", `{"entities": []}`},
		{"surrounding prose", "Here you go:\n{\"entities\": []}\nHope that helps!", `{"entities": []}`},
		{"no JSON at all", "I could not find any music references.", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanOutput(tt.in))
		})
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("object form", func(t *testing.T) {
		entities, err := parseResponse(`{"entities": [
			{"candidate_id": 0, "name": "Aquemini", "artist": "OutKast", "type": "album", "year": 1998}
		]}`)
		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "OutKast", entities[0].Artist)
		assert.Equal(t, 1998, entities[0].Year)
	})

	t.Run("bare array form", func(t *testing.T) {
		entities, err := parseResponse(`[{"candidate_id": 1, "name": "Rosa Parks", "type": "track"}]`)
		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, 1, entities[0].CandidateID)
	})

	t.Run("fenced response", func(t *testing.T) {
		entities, err := parseResponse("```json\n{\"entities\": [{\"candidate_id\": 0, \"name\": \"X\", \"type\": \"album\"}]}\n```")
		require.NoError(t, err)
		assert.Len(t, entities, 1)
	})

	tests := []struct {
		name string
		in   string
	}{
		{"not JSON", "definitely not json"},
		{"truncated JSON", `{"entities": [{"candidate_id": 0,`},
		{"missing required name", `{"entities": [{"candidate_id": 0, "type": "album"}]}`},
		{"missing candidate_id", `{"entities": [{"name": "X", "type": "album"}]}`},
		{"bad type enum", `{"entities": [{"candidate_id": 0, "name": "X", "type": "mixtape"}]}`},
		{"string candidate_id", `{"entities": [{"candidate_id": "0", "name": "X", "type": "album"}]}`},
		{"entities not an array", `{"entities": {"candidate_id": 0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestMerge(t *testing.T) {
	t.Run("trusted fields applied, offsets kept", func(t *testing.T) {
		enriched, err := merge(testCandidates(), []responseEntity{
			{CandidateID: 0, Name: "Aquemini", Artist: "OutKast", Type: "album", Year: 1998,
				StartIndex: 999, EndIndex: 1020, LatexText: "hallucinated"},
		})
		require.NoError(t, err)
		require.Len(t, enriched, 1)

		e := enriched[0]
		assert.Equal(t, "OutKast", e.Artist)
		assert.Equal(t, 1998, e.Year)
		// Extractor offsets and source text survive regardless of what
		// the agent reported.
		assert.Equal(t, 10, e.Start)
		assert.Equal(t, 26, e.End)
		assert.Equal(t, `\album{Aquemini}`, e.SourceText)
	})

	t.Run("dropped candidate is excluded", func(t *testing.T) {
		enriched, err := merge(testCandidates(), []responseEntity{
			{CandidateID: 1, Name: "Rosa Parks", Type: "track"},
		})
		require.NoError(t, err)
		require.Len(t, enriched, 1)
		assert.Equal(t, 1, enriched[0].CandidateID)
	})

	t.Run("kind change is honored", func(t *testing.T) {
		enriched, err := merge(testCandidates(), []responseEntity{
			{CandidateID: 0, Name: "Aquemini", Type: "track"},
		})
		require.NoError(t, err)
		assert.Equal(t, types.KindTrack, enriched[0].Kind)
	})

	t.Run("reordered response restored to document order", func(t *testing.T) {
		enriched, err := merge(testCandidates(), []responseEntity{
			{CandidateID: 1, Name: "Rosa Parks", Type: "track"},
			{CandidateID: 0, Name: "Aquemini", Type: "album"},
		})
		require.NoError(t, err)
		require.Len(t, enriched, 2)
		assert.Equal(t, 0, enriched[0].CandidateID)
		assert.Equal(t, 1, enriched[1].CandidateID)
	})

	t.Run("unknown candidate_id rejects response", func(t *testing.T) {
		_, err := merge(testCandidates(), []responseEntity{
			{CandidateID: 7, Name: "Ghost", Type: "album"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown candidate_id 7")
	})

	t.Run("duplicate candidate_id rejects response", func(t *testing.T) {
		_, err := merge(testCandidates(), []responseEntity{
			{CandidateID: 0, Name: "A", Type: "album"},
			{CandidateID: 0, Name: "B", Type: "album"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "twice")
	})

	t.Run("empty response rejected", func(t *testing.T) {
		_, err := merge(testCandidates(), nil)
		require.Error(t, err)
	})
}

func TestBuildRequest(t *testing.T) {
	req := BuildRequest("doc text", testCandidates(), "")
	assert.Equal(t, "doc text", req.DocumentText)
	assert.Len(t, req.Candidates, 2)
	assert.Equal(t, defaultPromptName, req.InstructionVersion)
}
