package core

import (
	"errors"
	"testing"
)

func validAtom() *Atom {
	return &Atom{
		Id:         IDFromContent("cap-1\x00a statement"),
		CapsuleId:  "cap-1",
		Statement:  "a statement",
		Kind:       AtomKindFact,
		Confidence: 80,
		Layer:      LayerStaging,
		Status:     AtomStatusActive,
	}
}

func TestValidateAtom(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Atom)
		nilAtom bool
		wantErr error
	}{
		{
			name:   "valid atom",
			mutate: func(a *Atom) {},
		},
		{
			name:    "nil atom",
			nilAtom: true,
			wantErr: ErrInvalidAtom,
		},
		{
			name:    "empty statement",
			mutate:  func(a *Atom) { a.Statement = "" },
			wantErr: ErrEmptyStatement,
		},
		{
			name:    "empty capsule id",
			mutate:  func(a *Atom) { a.CapsuleId = "" },
			wantErr: ErrEmptyCapsuleId,
		},
		{
			name:    "invalid kind",
			mutate:  func(a *Atom) { a.Kind = AtomKind(999) },
			wantErr: ErrInvalidAtomKind,
		},
		{
			name:    "invalid layer",
			mutate:  func(a *Atom) { a.Layer = Layer(999) },
			wantErr: ErrInvalidLayer,
		},
		{
			name:    "invalid status",
			mutate:  func(a *Atom) { a.Status = AtomStatus(999) },
			wantErr: ErrInvalidAtomStatus,
		},
		{
			name:    "confidence over 100",
			mutate:  func(a *Atom) { a.Confidence = 101 },
			wantErr: ErrInvalidConfidence,
		},
		{
			name:    "negative confidence",
			mutate:  func(a *Atom) { a.Confidence = -1 },
			wantErr: ErrInvalidConfidence,
		},
		{
			name:    "daci on a fact",
			mutate:  func(a *Atom) { a.Daci = &DACIRoles{Driver: "jane"} },
			wantErr: ErrDecisionMetadataOnNonDecision,
		},
		{
			name:    "matrix on a risk",
			mutate:  func(a *Atom) { a.Kind = AtomKindRisk; a.Matrix = &DecisionMatrix{Impact: ImpactHigh, Reversibility: Reversible} },
			wantErr: ErrDecisionMetadataOnNonDecision,
		},
		{
			name: "daci and matrix on a decision",
			mutate: func(a *Atom) {
				a.Kind = AtomKindDecision
				a.Daci = &DACIRoles{Driver: "jane", Approver: "marco"}
				a.Matrix = &DecisionMatrix{Impact: ImpactHigh, Reversibility: Irreversible}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var atom *Atom
			if !tt.nilAtom {
				atom = validAtom()
				tt.mutate(atom)
			}

			err := ValidateAtom(atom)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateAtom() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateAtom() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAtom() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidAtom) {
				t.Errorf("ValidateAtom() error = %v, should wrap %v", err, ErrInvalidAtom)
			}
		})
	}
}

func TestValidateRelation(t *testing.T) {
	tests := []struct {
		name     string
		relation *Relation
		wantErr  error
	}{
		{
			name:     "valid relation",
			relation: &Relation{FromAtomId: 1, ToAtomId: 2, Type: RelationSupports, Confidence: 70},
		},
		{
			name:    "nil relation",
			wantErr: ErrInvalidRelation,
		},
		{
			name:     "invalid type",
			relation: &Relation{FromAtomId: 1, ToAtomId: 2, Type: RelationType(999), Confidence: 70},
			wantErr:  ErrInvalidRelationType,
		},
		{
			name:     "zero endpoint",
			relation: &Relation{FromAtomId: 0, ToAtomId: 2, Type: RelationRelated, Confidence: 70},
			wantErr:  ErrInvalidRelation,
		},
		{
			name:     "self-referential",
			relation: &Relation{FromAtomId: 5, ToAtomId: 5, Type: RelationRelated, Confidence: 70},
			wantErr:  ErrInvalidRelation,
		},
		{
			name:     "confidence out of range",
			relation: &Relation{FromAtomId: 1, ToAtomId: 2, Type: RelationContradicts, Confidence: 150},
			wantErr:  ErrInvalidConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelation(tt.relation)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRelation() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRelation() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCluster(t *testing.T) {
	tests := []struct {
		name    string
		cluster *Cluster
		wantErr error
	}{
		{
			name:    "valid cluster",
			cluster: &Cluster{CapsuleId: "cap-1", Title: "Caching", ItemIds: []ID{1, 2}, Decision: DecisionPending},
		},
		{
			name:    "nil cluster",
			wantErr: ErrInvalidCluster,
		},
		{
			name:    "empty capsule id",
			cluster: &Cluster{ItemIds: []ID{1}, Decision: DecisionPending},
			wantErr: ErrEmptyCapsuleId,
		},
		{
			name:    "invalid decision",
			cluster: &Cluster{CapsuleId: "cap-1", ItemIds: []ID{1}, Decision: ClusterDecision(999)},
			wantErr: ErrInvalidDecision,
		},
		{
			name:    "no items",
			cluster: &Cluster{CapsuleId: "cap-1", Decision: DecisionPending},
			wantErr: ErrInvalidCluster,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCluster(tt.cluster)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCluster() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCluster() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
