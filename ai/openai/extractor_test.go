package openai

import (
	"testing"

	"github.com/poiesic/stratum/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertFiltersAndRemaps(t *testing.T) {
	e := &Extractor{minConfidence: 50}

	result := &wireExtraction{
		Atoms: []wireAtom{
			{Statement: "kept first", Kind: "fact", Confidence: 90},
			{Statement: "dropped low confidence", Kind: "fact", Confidence: 20},
			{Statement: "kept second", Kind: "Decision", Confidence: 80,
				Matrix: &wireMatrix{Impact: "High", Reversibility: "Irreversible"}},
			{Statement: "", Kind: "fact", Confidence: 90},
			{Statement: "dropped bad kind", Kind: "opinion", Confidence: 90},
		},
		Relations: []wireRelation{
			{From: 0, To: 2, Type: "supports", Confidence: 85},
			{From: 0, To: 1, Type: "related", Confidence: 70},
			{From: 0, To: 2, Type: "implies", Confidence: 70},
			{From: 2, To: 2, Type: "related", Confidence: 70},
		},
	}

	extraction := e.convert(result)

	require.Len(t, extraction.Atoms, 2)
	assert.Equal(t, "kept first", extraction.Atoms[0].Statement)
	assert.Equal(t, "kept second", extraction.Atoms[1].Statement)
	assert.Equal(t, "decision", extraction.Atoms[1].Kind)
	require.NotNil(t, extraction.Atoms[1].Matrix)
	assert.Equal(t, "high", extraction.Atoms[1].Matrix.Impact)

	// Only the relation between surviving atoms with a known type remains,
	// reindexed against the filtered slice.
	require.Len(t, extraction.Relations, 1)
	assert.Equal(t, 0, extraction.Relations[0].From)
	assert.Equal(t, 1, extraction.Relations[0].To)
	assert.Equal(t, "supports", extraction.Relations[0].Type)
}

func TestConvertIgnoresDecisionMetadataOnFacts(t *testing.T) {
	e := &Extractor{minConfidence: 0}

	result := &wireExtraction{
		Atoms: []wireAtom{
			{Statement: "a plain fact", Kind: "fact", Confidence: 90,
				Daci:   &wireDaci{Driver: "someone"},
				Matrix: &wireMatrix{Impact: "high"}},
		},
	}

	extraction := e.convert(result)

	require.Len(t, extraction.Atoms, 1)
	assert.Nil(t, extraction.Atoms[0].Daci)
	assert.Nil(t, extraction.Atoms[0].Matrix)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"atoms":[]}`, stripCodeFences("```json\n{\"atoms\":[]}\n```"))
	assert.Equal(t, `{"atoms":[]}`, stripCodeFences("```\n{\"atoms\":[]}\n```"))
	assert.Equal(t, `{"atoms":[]}`, stripCodeFences(`{"atoms":[]}`))
}

func TestRepairJSON(t *testing.T) {
	assert.Equal(t, `{"kind": "fact"}`, repairJSON(`{kind": "fact"}`))
	assert.Equal(t, `{"kind": "fact", "confidence": 90}`, repairJSON(`{"kind": "fact", confidence": 90}`))
	// Well-formed input passes through untouched
	assert.Equal(t, `{"kind": "fact"}`, repairJSON(`{"kind": "fact"}`))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-5))
	assert.Equal(t, 100, clampScore(140))
	assert.Equal(t, 77, clampScore(77))
}

func TestBuildExtractionPromptEmbedsVocabulary(t *testing.T) {
	prompt := buildExtractionPrompt()
	for _, kind := range ai.AtomKinds {
		assert.Contains(t, prompt, kind)
	}
	for _, relType := range ai.RelationTypes {
		assert.Contains(t, prompt, relType)
	}
}
