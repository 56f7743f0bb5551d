package core

import (
	"errors"
	"testing"
)

func TestParseRoundTrips(t *testing.T) {
	t.Run("atom kinds", func(t *testing.T) {
		for _, kind := range []AtomKind{AtomKindFact, AtomKindDecision, AtomKindRisk, AtomKindAssumption, AtomKindRequirement} {
			parsed, err := ParseAtomKind(kind.String())
			if err != nil {
				t.Fatalf("ParseAtomKind(%q) error = %v", kind, err)
			}
			if parsed != kind {
				t.Errorf("ParseAtomKind(%q) = %v, want %v", kind, parsed, kind)
			}
		}
	})

	t.Run("layers", func(t *testing.T) {
		for _, layer := range []Layer{LayerStaging, LayerExploratory, LayerCanonical} {
			parsed, err := ParseLayer(layer.String())
			if err != nil {
				t.Fatalf("ParseLayer(%q) error = %v", layer, err)
			}
			if parsed != layer {
				t.Errorf("ParseLayer(%q) = %v, want %v", layer, parsed, layer)
			}
		}
	})

	t.Run("statuses", func(t *testing.T) {
		for _, status := range []AtomStatus{AtomStatusActive, AtomStatusSuperseded} {
			parsed, err := ParseAtomStatus(status.String())
			if err != nil {
				t.Fatalf("ParseAtomStatus(%q) error = %v", status, err)
			}
			if parsed != status {
				t.Errorf("ParseAtomStatus(%q) = %v, want %v", status, parsed, status)
			}
		}
	})

	t.Run("relation types", func(t *testing.T) {
		for _, rt := range []RelationType{RelationSupports, RelationContradicts, RelationRelated} {
			parsed, err := ParseRelationType(rt.String())
			if err != nil {
				t.Fatalf("ParseRelationType(%q) error = %v", rt, err)
			}
			if parsed != rt {
				t.Errorf("ParseRelationType(%q) = %v, want %v", rt, parsed, rt)
			}
		}
	})

	t.Run("cluster decisions", func(t *testing.T) {
		for _, decision := range []ClusterDecision{DecisionPending, DecisionPromoted, DecisionRejected} {
			parsed, err := ParseClusterDecision(decision.String())
			if err != nil {
				t.Fatalf("ParseClusterDecision(%q) error = %v", decision, err)
			}
			if parsed != decision {
				t.Errorf("ParseClusterDecision(%q) = %v, want %v", decision, parsed, decision)
			}
		}
	})
}

func TestParseRejectsUnknown(t *testing.T) {
	if _, err := ParseAtomKind("opinion"); !errors.Is(err, ErrInvalidAtomKind) {
		t.Errorf("ParseAtomKind error = %v, want %v", err, ErrInvalidAtomKind)
	}
	if _, err := ParseLayer("attic"); !errors.Is(err, ErrInvalidLayer) {
		t.Errorf("ParseLayer error = %v, want %v", err, ErrInvalidLayer)
	}
	if _, err := ParseAtomStatus("archived"); !errors.Is(err, ErrInvalidAtomStatus) {
		t.Errorf("ParseAtomStatus error = %v, want %v", err, ErrInvalidAtomStatus)
	}
	if _, err := ParseRelationType("mentions"); !errors.Is(err, ErrInvalidRelationType) {
		t.Errorf("ParseRelationType error = %v, want %v", err, ErrInvalidRelationType)
	}
	if _, err := ParseClusterDecision("undecided"); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("ParseClusterDecision error = %v, want %v", err, ErrInvalidDecision)
	}
	if _, err := ParseImpact("medium"); err == nil {
		t.Error("ParseImpact should reject unknown impact")
	}
	if _, err := ParseReversibility("partial"); err == nil {
		t.Error("ParseReversibility should reject unknown reversibility")
	}
}
