package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Atom IDs are content-based hashes; relation and cluster IDs come from
// database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// AtomKind classifies what sort of assertion an atom makes.
type AtomKind int

const (
	// AtomKindFact is a statement of fact.
	AtomKindFact AtomKind = iota + 1
	// AtomKindDecision records a decision that was made.
	AtomKindDecision
	// AtomKindRisk records an identified risk.
	AtomKindRisk
	// AtomKindAssumption records an unverified assumption.
	AtomKindAssumption
	// AtomKindRequirement records a requirement.
	AtomKindRequirement
)

// String returns the wire form of the kind.
func (k AtomKind) String() string {
	switch k {
	case AtomKindFact:
		return "fact"
	case AtomKindDecision:
		return "decision"
	case AtomKindRisk:
		return "risk"
	case AtomKindAssumption:
		return "assumption"
	case AtomKindRequirement:
		return "requirement"
	}
	return "unknown"
}

// Layer is the trust tier an atom belongs to.
// Staging atoms are unreviewed pipeline output, exploratory atoms are
// manually curated outside the pipeline, and canonical atoms are the trusted
// system of record.
type Layer int

const (
	// LayerStaging holds unreviewed atoms produced by ingestion.
	LayerStaging Layer = iota + 1
	// LayerExploratory holds manually authored, non-canonical atoms.
	LayerExploratory
	// LayerCanonical holds promoted, trusted atoms.
	LayerCanonical
)

// String returns the wire form of the layer.
func (l Layer) String() string {
	switch l {
	case LayerStaging:
		return "staging"
	case LayerExploratory:
		return "exploratory"
	case LayerCanonical:
		return "canonical"
	}
	return "unknown"
}

// CanTransitionTo reports whether an atom may move from layer l to target.
// The only pipeline transition is staging to canonical; atoms never move
// backward, and the exploratory layer is reachable only by direct authoring.
func (l Layer) CanTransitionTo(target Layer) bool {
	return l == LayerStaging && target == LayerCanonical
}

// AtomStatus tracks whether an atom is the current version of its assertion.
type AtomStatus int

const (
	// AtomStatusActive marks the current version of an atom.
	AtomStatusActive AtomStatus = iota + 1
	// AtomStatusSuperseded marks an atom replaced by a newer one.
	// Superseded atoms are kept for history rather than deleted.
	AtomStatusSuperseded
)

// String returns the wire form of the status.
func (s AtomStatus) String() string {
	switch s {
	case AtomStatusActive:
		return "active"
	case AtomStatusSuperseded:
		return "superseded"
	}
	return "unknown"
}

// RelationType classifies a directed edge between two atoms.
type RelationType int

const (
	// RelationSupports marks an atom that backs up another.
	RelationSupports RelationType = iota + 1
	// RelationContradicts marks an atom that opposes another.
	RelationContradicts
	// RelationRelated marks atoms about the same subject.
	RelationRelated
)

// String returns the wire form of the relation type.
func (t RelationType) String() string {
	switch t {
	case RelationSupports:
		return "supports"
	case RelationContradicts:
		return "contradicts"
	case RelationRelated:
		return "related"
	}
	return "unknown"
}

// ClusterDecision is the governance state of a review cluster.
// Pending is the only non-terminal state; promoted and rejected are terminal
// and write-once.
type ClusterDecision int

const (
	// DecisionPending marks a cluster awaiting review.
	DecisionPending ClusterDecision = iota + 1
	// DecisionPromoted marks a cluster whose atoms were moved to canonical.
	DecisionPromoted
	// DecisionRejected marks a cluster whose atoms were removed.
	DecisionRejected
)

// String returns the wire form of the decision.
func (d ClusterDecision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionPromoted:
		return "promoted"
	case DecisionRejected:
		return "rejected"
	}
	return "unknown"
}

// Terminal reports whether the decision is final.
func (d ClusterDecision) Terminal() bool {
	return d == DecisionPromoted || d == DecisionRejected
}

// AIAction records an automated judgment applied to an atom during conflict
// correlation. The zero value means no action was taken.
type AIAction int

const (
	// AIActionNone means conflict correlation found nothing of note.
	AIActionNone AIAction = iota
	// AIActionAutoFixed means the atom was automatically repaired.
	AIActionAutoFixed
	// AIActionConflictDetected means the atom contradicts a canonical atom.
	AIActionConflictDetected
	// AIActionDuplicateMerged means the atom duplicates a canonical atom and
	// will not be promoted independently.
	AIActionDuplicateMerged
)

// String returns the wire form of the action. AIActionNone renders empty.
func (a AIAction) String() string {
	switch a {
	case AIActionNone:
		return "none"
	case AIActionAutoFixed:
		return "auto-fixed"
	case AIActionConflictDetected:
		return "conflict-detected"
	case AIActionDuplicateMerged:
		return "duplicate-merged"
	}
	return "unknown"
}

// Impact is the blast radius of a decision.
type Impact int

const (
	// ImpactHigh marks a decision with wide consequences.
	ImpactHigh Impact = iota + 1
	// ImpactLow marks a decision with narrow consequences.
	ImpactLow
)

// String returns the wire form of the impact.
func (i Impact) String() string {
	switch i {
	case ImpactHigh:
		return "high"
	case ImpactLow:
		return "low"
	}
	return "unknown"
}

// Reversibility describes whether a decision can be undone.
type Reversibility int

const (
	// Reversible marks a decision that can be walked back.
	Reversible Reversibility = iota + 1
	// Irreversible marks a one-way door.
	Irreversible
)

// String returns the wire form of the reversibility.
func (r Reversibility) String() string {
	switch r {
	case Reversible:
		return "reversible"
	case Irreversible:
		return "irreversible"
	}
	return "unknown"
}

// DACIRoles names the people involved in a decision atom.
type DACIRoles struct {
	Driver       string
	Approver     string
	Contributors []string
	Informed     []string
}

// DecisionMatrix places a decision atom on the impact/reversibility grid.
type DecisionMatrix struct {
	Impact        Impact
	Reversibility Reversibility
}

// Atom is the smallest independently-assertable unit of extracted knowledge.
// Atoms are created by the ingestion pipeline in the staging layer and are
// mutated only through cluster transitions or explicit supersede operations.
type Atom struct {
	Id               ID
	CapsuleId        string // Ingestion batch grouping
	Statement        string
	Kind             AtomKind
	Confidence       int // 0-100
	Layer            Layer
	Status           AtomStatus
	SourceDocumentId string
	SourceName       string
	ClusterId        ID // Owning review cluster; cleared on promotion
	Vector           []float32
	Daci             *DACIRoles      // Decision atoms only
	Matrix           *DecisionMatrix // Decision atoms only
	AIAction         AIAction
	AIReasoning      string // Audit trail of automated judgments
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Relation is a directed, typed edge between two atoms.
// Both endpoints must exist when the relation is created, and a relation is
// removed whenever either endpoint is removed.
type Relation struct {
	Id         ID
	FromAtomId ID
	ToAtomId   ID
	Type       RelationType
	Confidence int
	CreatedAt  time.Time
}

// Cluster is a named grouping of atoms produced by one ingestion pass,
// pending a governance decision. ItemIds preserves extraction order.
type Cluster struct {
	Id        ID
	CapsuleId string
	Title     string
	Summary   string
	ItemIds   []ID
	Decision  ClusterDecision
	CreatedAt time.Time
	DecidedAt time.Time // Zero until the decision is terminal
}

// Batch is the complete output of one ingestion pass, committed atomically.
// Relation and cluster IDs are assigned by the store at commit time.
type Batch struct {
	CapsuleId string
	Atoms     []*Atom
	Relations []*Relation
	Clusters  []*Cluster
}

// AtomMatch is an atom returned from vector similarity search.
type AtomMatch struct {
	Atom  *Atom
	Score float32
}
