package core

import "fmt"

// ParseAtomKind converts the wire form of an atom kind back to its enum value.
func ParseAtomKind(s string) (AtomKind, error) {
	switch s {
	case "fact":
		return AtomKindFact, nil
	case "decision":
		return AtomKindDecision, nil
	case "risk":
		return AtomKindRisk, nil
	case "assumption":
		return AtomKindAssumption, nil
	case "requirement":
		return AtomKindRequirement, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAtomKind, s)
}

// ParseLayer converts the wire form of a layer back to its enum value.
func ParseLayer(s string) (Layer, error) {
	switch s {
	case "staging":
		return LayerStaging, nil
	case "exploratory":
		return LayerExploratory, nil
	case "canonical":
		return LayerCanonical, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLayer, s)
}

// ParseAtomStatus converts the wire form of a status back to its enum value.
func ParseAtomStatus(s string) (AtomStatus, error) {
	switch s {
	case "active":
		return AtomStatusActive, nil
	case "superseded":
		return AtomStatusSuperseded, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAtomStatus, s)
}

// ParseRelationType converts the wire form of a relation type back to its
// enum value.
func ParseRelationType(s string) (RelationType, error) {
	switch s {
	case "supports":
		return RelationSupports, nil
	case "contradicts":
		return RelationContradicts, nil
	case "related":
		return RelationRelated, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRelationType, s)
}

// ParseClusterDecision converts the wire form of a cluster decision back to
// its enum value.
func ParseClusterDecision(s string) (ClusterDecision, error) {
	switch s {
	case "pending":
		return DecisionPending, nil
	case "promoted":
		return DecisionPromoted, nil
	case "rejected":
		return DecisionRejected, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

// ParseImpact converts the wire form of a decision impact back to its enum
// value.
func ParseImpact(s string) (Impact, error) {
	switch s {
	case "high":
		return ImpactHigh, nil
	case "low":
		return ImpactLow, nil
	}
	return 0, fmt.Errorf("invalid impact: %q", s)
}

// ParseReversibility converts the wire form of a decision reversibility back
// to its enum value.
func ParseReversibility(s string) (Reversibility, error) {
	switch s {
	case "reversible":
		return Reversible, nil
	case "irreversible":
		return Irreversible, nil
	}
	return 0, fmt.Errorf("invalid reversibility: %q", s)
}
