// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/stratum/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Extractor implements ai.Extractor using OpenAI-compatible chat APIs.
type Extractor struct {
	client        llms.Model
	minConfidence int
	logger        *slog.Logger
}

// Internal types matching the JSON structure expected from the LLM.
type wireDaci struct {
	Driver       string   `json:"driver"`
	Approver     string   `json:"approver"`
	Contributors []string `json:"contributors"`
	Informed     []string `json:"informed"`
}

type wireMatrix struct {
	Impact        string `json:"impact"`
	Reversibility string `json:"reversibility"`
}

type wireAtom struct {
	Statement  string      `json:"statement"`
	Kind       string      `json:"kind"`
	Confidence int         `json:"confidence"`
	Daci       *wireDaci   `json:"daci"`
	Matrix     *wireMatrix `json:"matrix"`
}

type wireRelation struct {
	From       int    `json:"from"`
	To         int    `json:"to"`
	Type       string `json:"type"`
	Confidence int    `json:"confidence"`
}

type wireExtraction struct {
	Atoms     []wireAtom     `json:"atoms"`
	Relations []wireRelation `json:"relations"`
}

// newExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newExtractor(config *ai.Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		client:        client,
		minConfidence: config.MinConfidence,
		logger:        slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewExtractor creates a new atom extractor using the provided configuration.
//
// Returns ai.Extractor interface to enforce abstraction.
func NewExtractor(config *ai.Config) (ai.Extractor, error) {
	return newExtractor(config)
}

// ExtractAtoms distills a document into candidate atoms and relations using
// an LLM. Atoms below the configured confidence threshold are dropped, along
// with any relations that reference them.
func (e *Extractor) ExtractAtoms(ctx context.Context, text, capsuleID string) (*ai.Extraction, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildExtractionPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result wireExtraction
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "capsule", capsuleID, "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model", "capsule", capsuleID)
			return &ai.Extraction{}, nil
		}

		responseText := stripCodeFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extraction response",
				"capsule", capsuleID,
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extraction response after retries", "capsule", capsuleID, "err", lastErr)
		return nil, lastErr
	}

	extraction := e.convert(&result)
	e.logger.Debug("extracted atoms",
		"capsule", capsuleID,
		"total", len(result.Atoms),
		"kept", len(extraction.Atoms),
		"relations", len(extraction.Relations))
	return extraction, nil
}

// convert filters wire atoms by confidence and kind, remapping relation
// indexes so they stay valid after the filter.
func (e *Extractor) convert(result *wireExtraction) *ai.Extraction {
	extraction := &ai.Extraction{}
	remap := make(map[int]int, len(result.Atoms))

	for i, atom := range result.Atoms {
		statement := strings.TrimSpace(atom.Statement)
		kind := strings.ToLower(strings.TrimSpace(atom.Kind))
		if statement == "" || !slices.Contains(ai.AtomKinds, kind) {
			continue
		}
		if atom.Confidence < e.minConfidence {
			continue
		}

		candidate := ai.CandidateAtom{
			Statement:  statement,
			Kind:       kind,
			Confidence: clampScore(atom.Confidence),
		}
		if kind == "decision" {
			if atom.Daci != nil {
				candidate.Daci = &ai.CandidateDACI{
					Driver:       atom.Daci.Driver,
					Approver:     atom.Daci.Approver,
					Contributors: atom.Daci.Contributors,
					Informed:     atom.Daci.Informed,
				}
			}
			if atom.Matrix != nil {
				candidate.Matrix = &ai.CandidateMatrix{
					Impact:        strings.ToLower(atom.Matrix.Impact),
					Reversibility: strings.ToLower(atom.Matrix.Reversibility),
				}
			}
		}

		remap[i] = len(extraction.Atoms)
		extraction.Atoms = append(extraction.Atoms, candidate)
	}

	for _, relation := range result.Relations {
		from, fromOK := remap[relation.From]
		to, toOK := remap[relation.To]
		relType := strings.ToLower(strings.TrimSpace(relation.Type))
		if !fromOK || !toOK || from == to || !slices.Contains(ai.RelationTypes, relType) {
			continue
		}
		extraction.Relations = append(extraction.Relations, ai.CandidateRelation{
			From:       from,
			To:         to,
			Type:       relType,
			Confidence: clampScore(relation.Confidence),
		})
	}

	return extraction
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
