package storage

import (
	"context"

	"github.com/poiesic/stratum/core"
)

// AtomFilter narrows ListAtoms results. Zero-valued fields are ignored.
type AtomFilter struct {
	CapsuleId string
	Layer     core.Layer
	Status    core.AtomStatus
}

// ClusterFilter narrows ListClusters results. Zero-valued fields are ignored.
type ClusterFilter struct {
	CapsuleId string
	Decision  core.ClusterDecision
}

// TransitionResult reports the outcome of a cluster transition.
// When Applied is false the cluster was already terminal and Decision carries
// the previously recorded outcome, so retried commands observe a stable
// answer instead of an error.
type TransitionResult struct {
	Decision core.ClusterDecision
	Applied  bool
}

// KnowledgeRepository is the authoritative store of atoms, relations, and
// clusters across trust layers. It is the only component permitted to mutate
// persisted state; everything else holds it behind this interface.
// Implementations must be thread-safe and give snapshot-consistent reads:
// a reader never observes a cluster mid-transition.
type KnowledgeRepository interface {
	// AppendBatch commits one ingestion pass atomically: all atoms, relations,
	// and clusters land together or not at all. Relation and cluster IDs are
	// assigned from sequences during the commit, and each cluster member
	// atom's ClusterId is set to its cluster's assigned ID.
	// Every relation endpoint must exist in the batch or in the store;
	// otherwise ErrMissingEndpoint. A colliding concurrent commit on the same
	// capsule returns ErrWriteConflict.
	AppendBatch(ctx context.Context, batch *core.Batch) error

	// AddAtoms writes atoms outside the pipeline path. Used for direct
	// authoring into the exploratory layer and for seeding canonical atoms.
	// Atom IDs must already be set (content-based).
	AddAtoms(ctx context.Context, atoms ...*core.Atom) ([]*core.Atom, error)

	// AddRelations writes relations between existing atoms. Both endpoints
	// must exist; otherwise ErrMissingEndpoint. IDs are assigned from the
	// relation sequence.
	AddRelations(ctx context.Context, relations ...*core.Relation) ([]*core.Relation, error)

	// SupersedeAtom marks an atom as superseded. The record is kept for
	// history; it is never deleted by this call.
	SupersedeAtom(ctx context.Context, id core.ID) error

	// TransitionCluster applies a terminal governance decision to a cluster.
	// Promotion moves every member atom staging to canonical and clears its
	// ClusterId; rejection hard-deletes every member atom and every relation
	// with an endpoint among them. The whole transition is one transaction.
	// A cluster that is already terminal yields Applied=false with the prior
	// decision. Returns ErrNotFound if the cluster does not exist.
	TransitionCluster(ctx context.Context, clusterID core.ID, decision core.ClusterDecision) (TransitionResult, error)

	// GetAtom retrieves a single atom by ID.
	// Returns ErrNotFound if the atom doesn't exist.
	GetAtom(ctx context.Context, id core.ID) (*core.Atom, error)

	// GetAtoms retrieves multiple atoms by their IDs.
	// Returns only the atoms that exist (no error for missing atoms).
	GetAtoms(ctx context.Context, ids ...core.ID) ([]*core.Atom, error)

	// ListAtoms retrieves atoms matching the filter, ordered by creation
	// time then ID for stable pagination upstream.
	ListAtoms(ctx context.Context, filter AtomFilter) ([]*core.Atom, error)

	// CountAtomsByStatus returns atom counts per status for a layer.
	// A zero layer counts across all layers.
	CountAtomsByStatus(ctx context.Context, layer core.Layer) (map[core.AtomStatus]int, error)

	// GetCluster retrieves a single cluster by ID.
	// Returns ErrNotFound if the cluster doesn't exist.
	GetCluster(ctx context.Context, id core.ID) (*core.Cluster, error)

	// ListClusters retrieves clusters matching the filter, ordered by
	// creation time then ID.
	ListClusters(ctx context.Context, filter ClusterFilter) ([]*core.Cluster, error)

	// GetRelationsFor retrieves all relations with the atom as either
	// endpoint.
	GetRelationsFor(ctx context.Context, atomID core.ID) ([]*core.Relation, error)

	// FindSimilarAtoms finds atoms in the given layer whose vectors have
	// cosine similarity >= minSimilarity with the query vector, up to limit
	// results ordered by similarity (highest first). A zero layer searches
	// all layers.
	FindSimilarAtoms(ctx context.Context, vector []float32, minSimilarity float32, limit int, layer core.Layer) ([]*core.AtomMatch, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
