package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Extractor distills source text into candidate knowledge atoms and the
// relations between them. Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// ExtractAtoms analyzes text and returns candidate atoms with kinds,
	// confidence scores, and index-based relations. The capsule ID gives the
	// extractor document-level context but is not persisted by it.
	// Returns an empty extraction if nothing can be distilled.
	// Returns an error if extraction fails; callers treat that as terminal
	// for the source text.
	ExtractAtoms(ctx context.Context, text, capsuleID string) (*Extraction, error)
}

// ConflictJudge decides whether a new statement duplicates or contradicts an
// existing canonical statement. Implementations must be thread-safe.
type ConflictJudge interface {
	// Judge compares a candidate statement against a canonical one.
	// The verdict is advisory; errors mean no judgment could be made.
	Judge(ctx context.Context, statement, canonicalStatement string) (Verdict, error)
}

// Extraction is the result of distilling one source text.
type Extraction struct {
	Atoms     []CandidateAtom
	Relations []CandidateRelation
}

// CandidateAtom is an extracted knowledge item before validation and storage.
// Kind and the decision metadata use the wire vocabulary from types.go.
type CandidateAtom struct {
	// Statement is the distilled knowledge item as a standalone sentence.
	Statement string

	// Kind is one of AtomKinds.
	Kind string

	// Confidence is the extractor's score from 0-100.
	Confidence int

	// Daci carries accountability roles. Only meaningful on decisions.
	Daci *CandidateDACI

	// Matrix classifies decision impact. Only meaningful on decisions.
	Matrix *CandidateMatrix
}

// CandidateDACI holds extracted accountability roles for a decision.
type CandidateDACI struct {
	Driver       string
	Approver     string
	Contributors []string
	Informed     []string
}

// CandidateMatrix holds the extracted impact classification for a decision.
// Impact is one of Impacts; Reversibility is one of Reversibilities.
type CandidateMatrix struct {
	Impact        string
	Reversibility string
}

// CandidateRelation links two candidate atoms by their index in the
// extraction's atom slice. Type is one of RelationTypes.
type CandidateRelation struct {
	From       int
	To         int
	Type       string
	Confidence int
}

// Verdict is a conflict judge's assessment of a statement pair.
type Verdict struct {
	// Action is one of VerdictNone, VerdictDuplicate, VerdictConflict.
	Action string

	// Reasoning is a short human-readable justification.
	Reasoning string
}

// Verdict actions.
const (
	VerdictNone      = "none"
	VerdictDuplicate = "duplicate"
	VerdictConflict  = "conflict"
)

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Extractor, Embedder, and
// ConflictJudge instances, ensuring they share configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Extractor returns the atom extraction service.
	Extractor() Extractor

	// ConflictJudge returns the conflict assessment service.
	ConflictJudge() ConflictJudge

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
