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


package ingestion

import (
	"context"

	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/core"
)

// runBatch executes the stages of one ingestion batch in order. Nothing is
// persisted unless every stage succeeds and the final commit goes through.
func (p *Pipeline) runBatch(ctx context.Context, tracker *Tracker, capsuleID, text string, opts *IngestOptions) error {
	// Extraction
	tracker.setStage(StageExtraction, StateProcessing, nil)
	extraction, err := p.provider.Extractor().ExtractAtoms(ctx, text, capsuleID)
	if err != nil {
		exErr := &ExtractionError{CapsuleId: capsuleID, Cause: err}
		tracker.setStage(StageExtraction, StateError, exErr)
		tracker.finish(exErr)
		return exErr
	}

	atoms, relations := p.buildAtoms(capsuleID, extraction, opts)
	tracker.setStage(StageExtraction, StateDone, nil)

	if len(atoms) == 0 {
		p.logger.Info("nothing distilled from source", "capsule", capsuleID)
		for _, stage := range []Stage{StageEmbedding, StageClustering, StageConflictChecks} {
			tracker.setStage(stage, StateDone, nil)
		}
		tracker.finish(nil)
		return nil
	}

	// Embedding
	tracker.setStage(StageEmbedding, StateProcessing, nil)
	p.embedAtoms(ctx, atoms)
	tracker.setStage(StageEmbedding, StateDone, nil)

	// Clustering
	tracker.setStage(StageClustering, StateProcessing, nil)
	clusters := clusterAtoms(atoms, p.clusterThreshold)
	tracker.setStage(StageClustering, StateDone, nil)

	// Conflict checks
	tracker.setStage(StageConflictChecks, StateProcessing, nil)
	correlator := &conflictCorrelator{
		repository:         p.repository,
		judge:              p.provider.ConflictJudge(),
		duplicateThreshold: p.duplicateThreshold,
		reviewThreshold:    p.reviewThreshold,
		logger:             p.logger,
	}
	relations = append(relations, correlator.correlate(ctx, atoms)...)
	tracker.setStage(StageConflictChecks, StateDone, nil)

	// Cancellation before commit abandons the batch without side effects.
	if err := ctx.Err(); err != nil {
		p.logger.Info("batch abandoned before commit", "capsule", capsuleID, "err", err)
		tracker.finish(err)
		return err
	}

	// Commit
	batch := &core.Batch{
		CapsuleId: capsuleID,
		Atoms:     atoms,
		Relations: relations,
		Clusters:  clusters,
	}
	if err := p.repository.AppendBatch(ctx, batch); err != nil {
		p.logger.Error("batch commit failed", "capsule", capsuleID, "err", err)
		tracker.finish(err)
		return err
	}

	p.logger.Info("batch committed",
		"capsule", capsuleID,
		"atoms", len(atoms),
		"relations", len(relations),
		"clusters", len(clusters))
	tracker.finish(nil)
	return nil
}

// buildAtoms converts extraction candidates into staged atoms and relations.
// Duplicate statements within the batch collapse onto the first occurrence;
// relation indexes are remapped accordingly. Candidates with an unknown kind
// are dropped.
func (p *Pipeline) buildAtoms(capsuleID string, extraction *ai.Extraction, opts *IngestOptions) ([]*core.Atom, []*core.Relation) {
	var atoms []*core.Atom
	indexToID := make(map[int]core.ID, len(extraction.Atoms))
	seen := make(map[core.ID]bool, len(extraction.Atoms))

	for i, candidate := range extraction.Atoms {
		kind, err := core.ParseAtomKind(candidate.Kind)
		if err != nil {
			p.logger.Warn("dropping candidate with unknown kind", "kind", candidate.Kind, "err", err)
			continue
		}

		id := core.IDFromContent(capsuleID + "\x00" + candidate.Statement)
		indexToID[i] = id
		if seen[id] {
			continue
		}
		seen[id] = true

		atom := &core.Atom{
			Id:               id,
			CapsuleId:        capsuleID,
			Statement:        candidate.Statement,
			Kind:             kind,
			Confidence:       candidate.Confidence,
			Layer:            core.LayerStaging,
			Status:           core.AtomStatusActive,
			SourceDocumentId: opts.SourceDocumentId,
			SourceName:       opts.SourceName,
		}

		if kind == core.AtomKindDecision {
			if candidate.Daci != nil {
				atom.Daci = &core.DACIRoles{
					Driver:       candidate.Daci.Driver,
					Approver:     candidate.Daci.Approver,
					Contributors: candidate.Daci.Contributors,
					Informed:     candidate.Daci.Informed,
				}
			}
			if candidate.Matrix != nil {
				atom.Matrix = parseMatrix(candidate.Matrix)
			}
		}

		atoms = append(atoms, atom)
	}

	var relations []*core.Relation
	linked := make(map[[2]core.ID]bool)
	for _, candidate := range extraction.Relations {
		fromID, fromOK := indexToID[candidate.From]
		toID, toOK := indexToID[candidate.To]
		if !fromOK || !toOK || fromID == toID {
			continue
		}

		relType, err := core.ParseRelationType(candidate.Type)
		if err != nil {
			p.logger.Warn("dropping relation with unknown type", "type", candidate.Type, "err", err)
			continue
		}

		key := [2]core.ID{fromID, toID}
		if linked[key] {
			continue
		}
		linked[key] = true

		relations = append(relations, &core.Relation{
			FromAtomId: fromID,
			ToAtomId:   toID,
			Type:       relType,
			Confidence: candidate.Confidence,
		})
	}

	return atoms, relations
}

// parseMatrix converts wire matrix values, dropping the matrix entirely if
// either axis fails to parse.
func parseMatrix(matrix *ai.CandidateMatrix) *core.DecisionMatrix {
	impact, err := core.ParseImpact(matrix.Impact)
	if err != nil {
		return nil
	}
	reversibility, err := core.ParseReversibility(matrix.Reversibility)
	if err != nil {
		return nil
	}
	return &core.DecisionMatrix{Impact: impact, Reversibility: reversibility}
}

// embedAtoms populates atom vectors. The batch call is tried first; on
// failure each atom gets one individual retry. Atoms that still fail keep a
// nil vector and fall through to the unclustered bucket.
func (p *Pipeline) embedAtoms(ctx context.Context, atoms []*core.Atom) {
	statements := make([]string, len(atoms))
	for i, atom := range atoms {
		statements[i] = atom.Statement
	}

	embedder := p.provider.Embedder()
	vectors, err := embedder.EmbedTexts(ctx, statements)
	if err == nil && len(vectors) == len(atoms) {
		for i, atom := range atoms {
			atom.Vector = vectors[i]
		}
		return
	}
	if err != nil {
		p.logger.Warn("batch embedding failed, retrying per atom", "err", err)
	}

	for _, atom := range atoms {
		vector, err := embedder.EmbedText(ctx, atom.Statement)
		if err != nil {
			embErr := &EmbeddingError{Statement: atom.Statement, Cause: err}
			p.logger.Warn("atom embedding failed, routing to fallback cluster", "atom", atom.Id, "err", embErr)
			continue
		}
		atom.Vector = vector
	}
}
