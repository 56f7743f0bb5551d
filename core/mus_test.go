package core

import (
	"testing"
	"time"
)

func TestAtomMUSRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	atom := Atom{
		Id:               IDFromContent("cap-1\x00we will adopt postgresql"),
		CapsuleId:        "cap-1",
		Statement:        "we will adopt postgresql",
		Kind:             AtomKindDecision,
		Confidence:       85,
		Layer:            LayerStaging,
		Status:           AtomStatusActive,
		SourceDocumentId: "doc-7",
		SourceName:       "adr-0001.md",
		ClusterId:        12,
		Vector:           []float32{0.25, -0.5, 1.0},
		Daci: &DACIRoles{
			Driver:       "jane",
			Approver:     "marco",
			Contributors: []string{"ana", "li"},
			Informed:     []string{"platform-team"},
		},
		Matrix: &DecisionMatrix{
			Impact:        ImpactHigh,
			Reversibility: Irreversible,
		},
		AIAction:    AIActionConflictDetected,
		AIReasoning: "contradicts canonical atom 9",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	bs := make([]byte, AtomMUS.Size(atom))
	n := AtomMUS.Marshal(atom, bs)
	if n != len(bs) {
		t.Fatalf("Marshal wrote %d bytes, Size predicted %d", n, len(bs))
	}

	got, n, err := AtomMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if n != len(bs) {
		t.Errorf("Unmarshal consumed %d bytes, want %d", n, len(bs))
	}

	if got.Id != atom.Id || got.CapsuleId != atom.CapsuleId || got.Statement != atom.Statement {
		t.Errorf("identity fields mismatch: got %+v", got)
	}
	if got.Kind != atom.Kind || got.Layer != atom.Layer || got.Status != atom.Status || got.AIAction != atom.AIAction {
		t.Errorf("enum fields mismatch: got %+v", got)
	}
	if got.ClusterId != atom.ClusterId || got.Confidence != atom.Confidence || got.AIReasoning != atom.AIReasoning {
		t.Errorf("metadata fields mismatch: got %+v", got)
	}
	if len(got.Vector) != 3 || got.Vector[1] != -0.5 {
		t.Errorf("vector mismatch: got %v", got.Vector)
	}
	if got.Daci == nil || got.Daci.Approver != "marco" || len(got.Daci.Contributors) != 2 {
		t.Errorf("DACI mismatch: got %+v", got.Daci)
	}
	if got.Matrix == nil || got.Matrix.Impact != ImpactHigh || got.Matrix.Reversibility != Irreversible {
		t.Errorf("matrix mismatch: got %+v", got.Matrix)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Errorf("timestamps mismatch: got %v / %v, want %v", got.CreatedAt, got.UpdatedAt, now)
	}
}

func TestAtomMUSOptionalFieldsAbsent(t *testing.T) {
	atom := Atom{
		Id:         1,
		CapsuleId:  "cap-1",
		Statement:  "plain fact",
		Kind:       AtomKindFact,
		Confidence: 50,
		Layer:      LayerCanonical,
		Status:     AtomStatusActive,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	bs := make([]byte, AtomMUS.Size(atom))
	AtomMUS.Marshal(atom, bs)

	got, _, err := AtomMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got.Daci != nil || got.Matrix != nil {
		t.Errorf("expected nil decision metadata, got %+v / %+v", got.Daci, got.Matrix)
	}
	if got.Vector != nil {
		t.Errorf("expected nil vector, got %v", got.Vector)
	}
}

func TestAtomMUSTruncatedBuffer(t *testing.T) {
	atom := Atom{
		Id:         1,
		CapsuleId:  "cap-1",
		Statement:  "plain fact",
		Kind:       AtomKindFact,
		Confidence: 50,
		Layer:      LayerCanonical,
		Status:     AtomStatusActive,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	bs := make([]byte, AtomMUS.Size(atom))
	AtomMUS.Marshal(atom, bs)

	if _, _, err := AtomMUS.Unmarshal(bs[:len(bs)/2]); err == nil {
		t.Error("expected error for truncated buffer")
	}
}

func TestRelationMUSRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	relation := Relation{
		Id:         3,
		FromAtomId: 10,
		ToAtomId:   11,
		Type:       RelationContradicts,
		Confidence: 66,
		CreatedAt:  now,
	}

	bs := make([]byte, RelationMUS.Size(relation))
	RelationMUS.Marshal(relation, bs)

	got, _, err := RelationMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got != relation {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, relation)
	}
}

func TestClusterMUSRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	cluster := Cluster{
		Id:        7,
		CapsuleId: "cap-1",
		Title:     "Persistence choices",
		Summary:   "we will adopt postgresql; migration risk",
		ItemIds:   []ID{10, 11, 12},
		Decision:  DecisionPromoted,
		CreatedAt: now,
		DecidedAt: now.Add(time.Hour),
	}

	bs := make([]byte, ClusterMUS.Size(cluster))
	ClusterMUS.Marshal(cluster, bs)

	got, _, err := ClusterMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got.Id != cluster.Id || got.Title != cluster.Title || got.Decision != cluster.Decision {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if len(got.ItemIds) != 3 || got.ItemIds[2] != 12 {
		t.Errorf("item ids mismatch: got %v", got.ItemIds)
	}
	if !got.DecidedAt.Equal(cluster.DecidedAt) {
		t.Errorf("decided at mismatch: got %v", got.DecidedAt)
	}
}
