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


package core

import "fmt"

// ValidateAtom validates an Atom according to domain rules.
//
// Validation rules:
//   - Statement and CapsuleId must not be empty
//   - Kind, Layer, and Status must be valid enum values
//   - Confidence must be within 0-100
//   - DACI roles and decision matrix are only allowed on decision atoms
//
// NOT validated (populated later):
//   - Vector (empty until the embedding stage runs)
//   - ClusterId (0 until clustering assigns one, and again after promotion)
func ValidateAtom(atom *Atom) error {
	if atom == nil {
		return fmt.Errorf("%w: atom is nil", ErrInvalidAtom)
	}

	if atom.Statement == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, ErrEmptyStatement)
	}

	if atom.CapsuleId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, ErrEmptyCapsuleId)
	}

	if err := ValidateAtomKind(atom.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, err)
	}

	if err := ValidateLayer(atom.Layer); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, err)
	}

	if err := ValidateAtomStatus(atom.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, err)
	}

	if atom.Confidence < 0 || atom.Confidence > 100 {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, ErrInvalidConfidence)
	}

	if atom.Kind != AtomKindDecision && (atom.Daci != nil || atom.Matrix != nil) {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, ErrDecisionMetadataOnNonDecision)
	}

	return nil
}

// ValidateRelation validates a Relation according to domain rules.
// Endpoint existence is checked by the store at write time, not here.
func ValidateRelation(relation *Relation) error {
	if relation == nil {
		return fmt.Errorf("%w: relation is nil", ErrInvalidRelation)
	}

	if err := ValidateRelationType(relation.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRelation, err)
	}

	if relation.FromAtomId == 0 || relation.ToAtomId == 0 {
		return fmt.Errorf("%w: endpoints must be set", ErrInvalidRelation)
	}

	if relation.FromAtomId == relation.ToAtomId {
		return fmt.Errorf("%w: relation cannot be self-referential", ErrInvalidRelation)
	}

	if relation.Confidence < 0 || relation.Confidence > 100 {
		return fmt.Errorf("%w: %w", ErrInvalidRelation, ErrInvalidConfidence)
	}

	return nil
}

// ValidateCluster validates a Cluster according to domain rules.
func ValidateCluster(cluster *Cluster) error {
	if cluster == nil {
		return fmt.Errorf("%w: cluster is nil", ErrInvalidCluster)
	}

	if cluster.CapsuleId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCluster, ErrEmptyCapsuleId)
	}

	if err := ValidateClusterDecision(cluster.Decision); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCluster, err)
	}

	if len(cluster.ItemIds) == 0 {
		return fmt.Errorf("%w: cluster has no items", ErrInvalidCluster)
	}

	return nil
}

// ValidateAtomKind validates that an AtomKind has a valid value.
func ValidateAtomKind(kind AtomKind) error {
	if kind < AtomKindFact || kind > AtomKindRequirement {
		return fmt.Errorf("%w: value %d", ErrInvalidAtomKind, kind)
	}
	return nil
}

// ValidateLayer validates that a Layer has a valid value.
func ValidateLayer(layer Layer) error {
	if layer < LayerStaging || layer > LayerCanonical {
		return fmt.Errorf("%w: value %d", ErrInvalidLayer, layer)
	}
	return nil
}

// ValidateAtomStatus validates that an AtomStatus has a valid value.
func ValidateAtomStatus(status AtomStatus) error {
	if status != AtomStatusActive && status != AtomStatusSuperseded {
		return fmt.Errorf("%w: value %d", ErrInvalidAtomStatus, status)
	}
	return nil
}

// ValidateRelationType validates that a RelationType has a valid value.
func ValidateRelationType(relationType RelationType) error {
	if relationType < RelationSupports || relationType > RelationRelated {
		return fmt.Errorf("%w: value %d", ErrInvalidRelationType, relationType)
	}
	return nil
}

// ValidateClusterDecision validates that a ClusterDecision has a valid value.
func ValidateClusterDecision(decision ClusterDecision) error {
	if decision < DecisionPending || decision > DecisionRejected {
		return fmt.Errorf("%w: value %d", ErrInvalidDecision, decision)
	}
	return nil
}
