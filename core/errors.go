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

import "errors"

// Domain validation errors
var (
	// ErrInvalidAtom indicates an Atom failed validation.
	ErrInvalidAtom = errors.New("invalid atom")

	// ErrInvalidRelation indicates a Relation failed validation.
	ErrInvalidRelation = errors.New("invalid relation")

	// ErrInvalidCluster indicates a Cluster failed validation.
	ErrInvalidCluster = errors.New("invalid cluster")

	// ErrEmptyStatement indicates the Statement field is empty.
	ErrEmptyStatement = errors.New("statement cannot be empty")

	// ErrEmptyCapsuleId indicates the CapsuleId field is empty.
	ErrEmptyCapsuleId = errors.New("capsule id cannot be empty")

	// ErrInvalidAtomKind indicates an invalid AtomKind value.
	ErrInvalidAtomKind = errors.New("invalid atom kind")

	// ErrInvalidLayer indicates an invalid Layer value.
	ErrInvalidLayer = errors.New("invalid layer")

	// ErrInvalidAtomStatus indicates an invalid AtomStatus value.
	ErrInvalidAtomStatus = errors.New("invalid atom status")

	// ErrInvalidRelationType indicates an invalid RelationType value.
	ErrInvalidRelationType = errors.New("invalid relation type")

	// ErrInvalidDecision indicates an invalid ClusterDecision value.
	ErrInvalidDecision = errors.New("invalid cluster decision")

	// ErrInvalidConfidence indicates a confidence score outside 0-100.
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 100")

	// ErrDecisionMetadataOnNonDecision indicates DACI roles or a decision
	// matrix attached to a non-decision atom.
	ErrDecisionMetadataOnNonDecision = errors.New("decision metadata is only valid on decision atoms")

	// ErrIllegalLayerTransition indicates a layer move the transition table
	// forbids.
	ErrIllegalLayerTransition = errors.New("illegal layer transition")
)
