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

package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/ingestion"
	"github.com/poiesic/stratum/storage"
)

const (
	// DefaultPageLimit is applied when a page requests no limit.
	DefaultPageLimit = 50

	// MaxPageLimit caps a single page of results.
	MaxPageLimit = 200
)

// Filter narrows ListKnowledgeItems results. Fields use wire strings so
// callers at the CLI and API surface can pass user input straight through;
// malformed values fail with ErrInvalidFilter before the store is touched.
// Zero-valued fields are ignored.
type Filter struct {
	Query     string // Free-text match over statement and source name
	Status    string // "active" or "superseded"
	Layer     string // "staging", "exploratory", or "canonical"
	CapsuleId string
}

// Page selects a window of results. A zero Limit means DefaultPageLimit.
type Page struct {
	Offset int
	Limit  int
}

// RelatedItem is a light view of an atom on the far end of a relation.
type RelatedItem struct {
	Id        core.ID
	Statement string
	Type      string // Relation type as seen from the listed item
}

// KnowledgeItem is the read model for a single atom, with enums rendered as
// wire strings and related atoms resolved to statements.
type KnowledgeItem struct {
	Id          core.ID
	Kind        string
	Content     string
	Status      string
	Layer       string
	CapsuleId   string
	SourceName  string
	Confidence  int
	ClusterId   core.ID // Zero once promoted
	AIAction    string
	AIReasoning string
	Related     []RelatedItem
}

// KnowledgeItemPage is one window of filtered results. Total counts every
// match, not just the window, so callers can render page controls.
type KnowledgeItemPage struct {
	Items  []*KnowledgeItem
	Total  int
	Offset int
	Limit  int
}

// ClusterFilter narrows ListClusters results. Zero-valued fields are ignored.
type ClusterFilter struct {
	CapsuleId string
	Decision  string // "pending", "promoted", or "rejected"
}

// ClusterView is the read model for a review cluster with its member atoms
// resolved. Rejected clusters keep their member IDs for audit but the atoms
// themselves are gone, so Items is empty for them.
type ClusterView struct {
	Id       core.ID
	Title    string
	Summary  string
	Decision string
	Items    []*KnowledgeItem
	Promoted bool
	Rejected bool
}

// IngestionStatus is a point-in-time view of a capsule's pipeline run.
type IngestionStatus struct {
	CapsuleId string
	Stages    map[ingestion.Stage]ingestion.StageState
	Finished  bool
	Err       error
}

// Service answers read queries over the knowledge store and ingestion
// progress. It wraps the repository and never mutates it.
type Service struct {
	repository storage.KnowledgeRepository
	registry   *ingestion.Registry
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a query service over the given repository. The registry
// may be nil when no pipeline runs in-process; IngestionStatus then reports
// nothing found.
func NewService(repository storage.KnowledgeRepository, registry *ingestion.Registry, opts ...Option) (*Service, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Service{
		repository: repository,
		registry:   registry,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ListKnowledgeItems returns the atoms matching the filter, newest-last,
// windowed by page. Free-text queries require every non-stop-word to appear
// in the atom's statement or source name.
func (s *Service) ListKnowledgeItems(ctx context.Context, filter Filter, page Page) (*KnowledgeItemPage, error) {
	storeFilter, err := parseFilter(filter)
	if err != nil {
		return nil, err
	}
	offset, limit, err := normalizePage(page)
	if err != nil {
		return nil, err
	}

	atoms, err := s.repository.ListAtoms(ctx, storeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list atoms: %w", err)
	}

	if filter.Query != "" {
		matched := make([]*core.Atom, 0, len(atoms))
		for _, atom := range atoms {
			if matchesQuery(atom.Statement+" "+atom.SourceName, filter.Query) {
				matched = append(matched, atom)
			}
		}
		atoms = matched
	}

	result := &KnowledgeItemPage{
		Total:  len(atoms),
		Offset: offset,
		Limit:  limit,
	}

	if offset >= len(atoms) {
		result.Items = []*KnowledgeItem{}
		return result, nil
	}
	end := offset + limit
	if end > len(atoms) {
		end = len(atoms)
	}

	window := atoms[offset:end]
	result.Items = make([]*KnowledgeItem, 0, len(window))
	for _, atom := range window {
		item := toKnowledgeItem(atom)
		item.Related, err = s.resolveRelated(ctx, atom.Id)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

// ListClusters returns review clusters matching the filter with their member
// atoms resolved.
func (s *Service) ListClusters(ctx context.Context, filter ClusterFilter) ([]*ClusterView, error) {
	storeFilter := storage.ClusterFilter{CapsuleId: filter.CapsuleId}
	if filter.Decision != "" {
		decision, err := core.ParseClusterDecision(filter.Decision)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		storeFilter.Decision = decision
	}

	clusters, err := s.repository.ListClusters(ctx, storeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}

	views := make([]*ClusterView, 0, len(clusters))
	for _, cluster := range clusters {
		view := &ClusterView{
			Id:       cluster.Id,
			Title:    cluster.Title,
			Summary:  cluster.Summary,
			Decision: cluster.Decision.String(),
			Promoted: cluster.Decision == core.DecisionPromoted,
			Rejected: cluster.Decision == core.DecisionRejected,
		}

		atoms, err := s.repository.GetAtoms(ctx, cluster.ItemIds...)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cluster %d atoms: %w", cluster.Id, err)
		}
		view.Items = make([]*KnowledgeItem, 0, len(atoms))
		for _, atom := range atoms {
			view.Items = append(view.Items, toKnowledgeItem(atom))
		}

		views = append(views, view)
	}

	return views, nil
}

// CountByStatus returns atom counts keyed by wire status for a layer. An
// empty layer counts across all layers.
func (s *Service) CountByStatus(ctx context.Context, layer string) (map[string]int, error) {
	var coreLayer core.Layer
	if layer != "" {
		parsed, err := core.ParseLayer(layer)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		coreLayer = parsed
	}

	counts, err := s.repository.CountAtomsByStatus(ctx, coreLayer)
	if err != nil {
		return nil, fmt.Errorf("failed to count atoms: %w", err)
	}

	result := make(map[string]int, len(counts))
	for status, count := range counts {
		result[status.String()] = count
	}
	return result, nil
}

// IngestionStatus reports the pipeline stages for a capsule tracked by the
// in-process registry. The second return is false when the capsule has no
// tracked run.
func (s *Service) IngestionStatus(capsuleID string) (*IngestionStatus, bool) {
	if s.registry == nil {
		return nil, false
	}
	tracker, ok := s.registry.Get(capsuleID)
	if !ok {
		return nil, false
	}
	return &IngestionStatus{
		CapsuleId: capsuleID,
		Stages:    tracker.Snapshot(),
		Finished:  tracker.Finished(),
		Err:       tracker.Err(),
	}, true
}

func (s *Service) resolveRelated(ctx context.Context, atomID core.ID) ([]RelatedItem, error) {
	relations, err := s.repository.GetRelationsFor(ctx, atomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relations for atom %d: %w", atomID, err)
	}
	if len(relations) == 0 {
		return nil, nil
	}

	otherIDs := make([]core.ID, 0, len(relations))
	for _, rel := range relations {
		other := rel.ToAtomId
		if other == atomID {
			other = rel.FromAtomId
		}
		otherIDs = append(otherIDs, other)
	}

	others, err := s.repository.GetAtoms(ctx, otherIDs...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve related atoms: %w", err)
	}
	statements := make(map[core.ID]string, len(others))
	for _, atom := range others {
		statements[atom.Id] = atom.Statement
	}

	related := make([]RelatedItem, 0, len(relations))
	for i, rel := range relations {
		statement, ok := statements[otherIDs[i]]
		if !ok {
			// Endpoint removed between the two reads; skip rather than
			// surface a half-resolved edge.
			continue
		}
		related = append(related, RelatedItem{
			Id:        otherIDs[i],
			Statement: statement,
			Type:      rel.Type.String(),
		})
	}

	return related, nil
}

func parseFilter(filter Filter) (storage.AtomFilter, error) {
	storeFilter := storage.AtomFilter{CapsuleId: filter.CapsuleId}

	if filter.Status != "" {
		status, err := core.ParseAtomStatus(filter.Status)
		if err != nil {
			return storage.AtomFilter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		storeFilter.Status = status
	}
	if filter.Layer != "" {
		layer, err := core.ParseLayer(filter.Layer)
		if err != nil {
			return storage.AtomFilter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		storeFilter.Layer = layer
	}

	return storeFilter, nil
}

func normalizePage(page Page) (offset, limit int, err error) {
	if page.Offset < 0 || page.Limit < 0 {
		return 0, 0, fmt.Errorf("%w: offset and limit must not be negative", ErrInvalidFilter)
	}
	limit = page.Limit
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page.Offset, limit, nil
}

func toKnowledgeItem(atom *core.Atom) *KnowledgeItem {
	return &KnowledgeItem{
		Id:          atom.Id,
		Kind:        atom.Kind.String(),
		Content:     atom.Statement,
		Status:      atom.Status.String(),
		Layer:       atom.Layer.String(),
		CapsuleId:   atom.CapsuleId,
		SourceName:  atom.SourceName,
		Confidence:  atom.Confidence,
		ClusterId:   atom.ClusterId,
		AIAction:    atom.AIAction.String(),
		AIReasoning: atom.AIReasoning,
	}
}
