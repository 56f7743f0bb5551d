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


package governance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// Controller applies human review decisions to staged knowledge. It is the
// only path by which atoms leave the staging layer.
type Controller struct {
	repository storage.KnowledgeRepository
	logger     *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a governance controller over the repository.
func NewController(repository storage.KnowledgeRepository, opts ...Option) (*Controller, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	c := &Controller{
		repository: repository,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Outcome reports the result of a governance decision. Replayed is true when
// the cluster had already reached a terminal decision; Decision then carries
// the recorded one, which may differ from what the caller asked for.
type Outcome struct {
	Decision core.ClusterDecision
	Replayed bool
}

// Promote accepts a cluster: every member atom moves from the staging layer
// to the canonical layer in one atomic step. Promoting an already-decided
// cluster replays the recorded outcome without further effects.
func (c *Controller) Promote(ctx context.Context, clusterID core.ID) (Outcome, error) {
	return c.transition(ctx, clusterID, core.DecisionPromoted)
}

// Reject discards a cluster: every member atom and every relation touching
// one is deleted in one atomic step. The cluster record itself is kept with
// the rejected decision for audit. Rejecting an already-decided cluster
// replays the recorded outcome without further effects.
func (c *Controller) Reject(ctx context.Context, clusterID core.ID) (Outcome, error) {
	return c.transition(ctx, clusterID, core.DecisionRejected)
}

func (c *Controller) transition(ctx context.Context, clusterID core.ID, decision core.ClusterDecision) (Outcome, error) {
	result, err := c.repository.TransitionCluster(ctx, clusterID, decision)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Outcome{}, ErrClusterNotFound
		}
		return Outcome{}, err
	}

	outcome := Outcome{Decision: result.Decision, Replayed: !result.Applied}
	if outcome.Replayed {
		c.logger.Info("cluster decision replayed",
			"cluster", clusterID,
			"requested", decision,
			"recorded", result.Decision)
	} else {
		c.logger.Info("cluster decision applied", "cluster", clusterID, "decision", decision)
	}
	return outcome, nil
}

// AuthorExploratory writes a hand-authored atom directly into the
// exploratory layer, bypassing the ingestion pipeline. The atom gets a
// content-based ID and full confidence.
func (c *Controller) AuthorExploratory(ctx context.Context, capsuleID, statement string, kind core.AtomKind) (*core.Atom, error) {
	atom := &core.Atom{
		Id:         core.IDFromContent(capsuleID + "\x00" + statement),
		CapsuleId:  capsuleID,
		Statement:  statement,
		Kind:       kind,
		Confidence: 100,
		Layer:      core.LayerExploratory,
		Status:     core.AtomStatusActive,
	}

	added, err := c.repository.AddAtoms(ctx, atom)
	if err != nil {
		return nil, err
	}
	c.logger.Info("authored exploratory atom", "capsule", capsuleID, "atom", atom.Id)
	return added[0], nil
}

// Supersede marks the old atom as superseded by the new one. The old record
// stays queryable for history, linked to its replacement by a related
// relation. Both atoms must already exist.
func (c *Controller) Supersede(ctx context.Context, oldID, newID core.ID) error {
	if _, err := c.repository.GetAtom(ctx, newID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAtomNotFound
		}
		return err
	}

	if err := c.repository.SupersedeAtom(ctx, oldID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAtomNotFound
		}
		return err
	}

	_, err := c.repository.AddRelations(ctx, &core.Relation{
		FromAtomId: newID,
		ToAtomId:   oldID,
		Type:       core.RelationRelated,
		Confidence: 100,
	})
	if err != nil {
		return err
	}

	c.logger.Info("atom superseded", "old", oldID, "new", newID)
	return nil
}
