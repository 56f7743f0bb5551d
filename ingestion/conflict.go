package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// conflictCorrelator checks new atoms against the canonical layer for
// duplicates and contradictions. Its findings are advisory: atoms get marked
// and linked, but no finding ever fails the batch.
type conflictCorrelator struct {
	repository         storage.KnowledgeRepository
	judge              ai.ConflictJudge
	duplicateThreshold float32
	reviewThreshold    float32
	logger             *slog.Logger
}

// correlate inspects each atom with a vector and returns the advisory
// relations to add to the batch. Atoms may be annotated in place with an
// AIAction and reasoning.
func (c *conflictCorrelator) correlate(ctx context.Context, atoms []*core.Atom) []*core.Relation {
	var relations []*core.Relation

	for _, atom := range atoms {
		if len(atom.Vector) == 0 {
			continue
		}

		matches, err := c.repository.FindSimilarAtoms(ctx, atom.Vector, c.reviewThreshold, 1, core.LayerCanonical)
		if err != nil {
			c.logger.Warn("similarity lookup failed during conflict check", "atom", atom.Id, "err", err)
			continue
		}
		if len(matches) == 0 {
			continue
		}

		top := matches[0]
		if top.Score >= c.duplicateThreshold {
			atom.AIAction = core.AIActionDuplicateMerged
			atom.AIReasoning = fmt.Sprintf("duplicates canonical atom %d (similarity %.2f)", top.Atom.Id, top.Score)
			relations = append(relations, &core.Relation{
				FromAtomId: atom.Id,
				ToAtomId:   top.Atom.Id,
				Type:       core.RelationRelated,
				Confidence: scoreToConfidence(top.Score),
			})
			continue
		}

		verdict, err := c.judge.Judge(ctx, atom.Statement, top.Atom.Statement)
		if err != nil {
			c.logger.Warn("conflict judge failed, skipping atom", "atom", atom.Id, "err", err)
			continue
		}

		switch verdict.Action {
		case ai.VerdictConflict:
			atom.AIAction = core.AIActionConflictDetected
			atom.AIReasoning = verdict.Reasoning
			relations = append(relations, &core.Relation{
				FromAtomId: atom.Id,
				ToAtomId:   top.Atom.Id,
				Type:       core.RelationContradicts,
				Confidence: scoreToConfidence(top.Score),
			})
		case ai.VerdictDuplicate:
			atom.AIAction = core.AIActionDuplicateMerged
			atom.AIReasoning = verdict.Reasoning
			relations = append(relations, &core.Relation{
				FromAtomId: atom.Id,
				ToAtomId:   top.Atom.Id,
				Type:       core.RelationRelated,
				Confidence: scoreToConfidence(top.Score),
			})
		}
	}

	return relations
}

func scoreToConfidence(score float32) int {
	confidence := int(score * 100)
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
