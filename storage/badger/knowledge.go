package badger

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
	relSeq  *badger.Sequence
	cluSeq  *badger.Sequence

	// Commit serialization is scoped to a single capsule or cluster;
	// independent batches proceed concurrently.
	capsuleLocks keyedMutex
	clusterLocks keyedMutex
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) (*KnowledgeRepository, error) {
	relSeq, err := backend.GetSequence(relationIDSeq)
	if err != nil {
		return nil, err
	}

	cluSeq, err := backend.GetSequence(clusterIDSeq)
	if err != nil {
		relSeq.Release()
		return nil, err
	}

	return &KnowledgeRepository{
		backend: backend,
		relSeq:  relSeq,
		cluSeq:  cluSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *KnowledgeRepository) Close() error {
	return errors.Join(r.relSeq.Release(), r.cluSeq.Release())
}

// WithTransaction delegates to the backend.
func (r *KnowledgeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendBatch commits one ingestion pass atomically.
func (r *KnowledgeRepository) AppendBatch(ctx context.Context, batch *core.Batch) error {
	if batch == nil || len(batch.Atoms) == 0 {
		return nil
	}

	unlock := r.capsuleLocks.lock(batch.CapsuleId)
	defer unlock()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()

		// Assign cluster IDs first so member atoms can reference them.
		memberCluster := make(map[core.ID]core.ID, len(batch.Atoms))
		for _, cluster := range batch.Clusters {
			id, err := nextID(r.cluSeq)
			if err != nil {
				return err
			}
			cluster.Id = id
			cluster.CapsuleId = batch.CapsuleId
			cluster.Decision = core.DecisionPending
			cluster.CreatedAt = now
			for _, itemID := range cluster.ItemIds {
				memberCluster[itemID] = cluster.Id
			}
		}

		batchAtoms := make(map[core.ID]bool, len(batch.Atoms))
		for _, atom := range batch.Atoms {
			atom.ClusterId = memberCluster[atom.Id]
			atom.CreatedAt = now
			atom.UpdatedAt = now
			if err := core.ValidateAtom(atom); err != nil {
				return err
			}
			if err := writeAtom(tx, atom); err != nil {
				return err
			}
			batchAtoms[atom.Id] = true
		}

		for _, cluster := range batch.Clusters {
			if err := core.ValidateCluster(cluster); err != nil {
				return err
			}
			if err := writeCluster(tx, cluster); err != nil {
				return err
			}
		}

		for _, relation := range batch.Relations {
			if err := core.ValidateRelation(relation); err != nil {
				return err
			}
			// Endpoints must exist in the batch or in the store.
			for _, endpoint := range []core.ID{relation.FromAtomId, relation.ToAtomId} {
				if batchAtoms[endpoint] {
					continue
				}
				if _, err := tx.Get(makeAtomKey(endpoint)); err != nil {
					if errors.Is(err, badger.ErrKeyNotFound) {
						return storage.ErrMissingEndpoint
					}
					return err
				}
			}
			id, err := nextID(r.relSeq)
			if err != nil {
				return err
			}
			relation.Id = id
			relation.CreatedAt = now
			if err := writeRelation(tx, relation); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)

	return mapConflict(err)
}

// AddAtoms writes atoms outside the pipeline path.
func (r *KnowledgeRepository) AddAtoms(ctx context.Context, atoms ...*core.Atom) ([]*core.Atom, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, atom := range atoms {
			if atom.Id == 0 {
				atom.Id = core.IDFromContent(atom.CapsuleId + "\x00" + atom.Statement)
			}
			atom.CreatedAt = now
			atom.UpdatedAt = now
			if err := core.ValidateAtom(atom); err != nil {
				return err
			}
			if err := writeAtom(tx, atom); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return atoms, mapConflict(err)
}

// AddRelations writes relations between existing atoms.
func (r *KnowledgeRepository) AddRelations(ctx context.Context, relations ...*core.Relation) ([]*core.Relation, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, relation := range relations {
			if err := core.ValidateRelation(relation); err != nil {
				return err
			}
			for _, endpoint := range []core.ID{relation.FromAtomId, relation.ToAtomId} {
				if _, err := tx.Get(makeAtomKey(endpoint)); err != nil {
					if errors.Is(err, badger.ErrKeyNotFound) {
						return storage.ErrMissingEndpoint
					}
					return err
				}
			}
			id, err := nextID(r.relSeq)
			if err != nil {
				return err
			}
			relation.Id = id
			relation.CreatedAt = now
			if err := writeRelation(tx, relation); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return relations, mapConflict(err)
}

// SupersedeAtom marks an atom as superseded, keeping it for history.
func (r *KnowledgeRepository) SupersedeAtom(ctx context.Context, id core.ID) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		atom, err := readAtom(tx, makeAtomKey(id))
		if err != nil {
			return err
		}
		if atom == nil {
			return storage.ErrNotFound
		}
		atom.Status = core.AtomStatusSuperseded
		atom.UpdatedAt = time.Now().UTC()
		if err := tx.Set(makeAtomKey(atom.Id), storage.MarshalAtom(atom)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return mapConflict(err)
}

// TransitionCluster applies a terminal governance decision to a cluster.
// The first caller to observe a pending cluster wins; later callers get the
// recorded decision with Applied=false.
func (r *KnowledgeRepository) TransitionCluster(ctx context.Context, clusterID core.ID, decision core.ClusterDecision) (storage.TransitionResult, error) {
	if !decision.Terminal() {
		return storage.TransitionResult{}, core.ErrInvalidDecision
	}

	unlock := r.clusterLocks.lock(clusterKeyString(clusterID))
	defer unlock()

	var result storage.TransitionResult

	// A racing transition from another process can still conflict at commit
	// time; one retry re-reads the decision and resolves to the replay path.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			cluster, err := readCluster(tx, makeClusterKey(clusterID))
			if err != nil {
				return err
			}
			if cluster == nil {
				return storage.ErrNotFound
			}

			if cluster.Decision.Terminal() {
				result = storage.TransitionResult{Decision: cluster.Decision, Applied: false}
				return nil
			}

			switch decision {
			case core.DecisionPromoted:
				if err := promoteMembers(tx, cluster); err != nil {
					return err
				}
			case core.DecisionRejected:
				if err := rejectMembers(tx, cluster); err != nil {
					return err
				}
			}

			cluster.Decision = decision
			cluster.DecidedAt = time.Now().UTC()
			if err := tx.Set(makeClusterKey(cluster.Id), storage.MarshalCluster(cluster)); err != nil {
				return err
			}

			result = storage.TransitionResult{Decision: decision, Applied: true}
			return tx.Commit()
		}, true)

		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}

	if err != nil {
		return storage.TransitionResult{}, mapConflict(err)
	}
	return result, nil
}

// promoteMembers moves every member atom from staging to canonical.
func promoteMembers(tx *badger.Txn, cluster *core.Cluster) error {
	now := time.Now().UTC()
	for _, itemID := range cluster.ItemIds {
		atom, err := readAtom(tx, makeAtomKey(itemID))
		if err != nil {
			return err
		}
		if atom == nil {
			return storage.ErrNotFound
		}
		if !atom.Layer.CanTransitionTo(core.LayerCanonical) {
			return core.ErrIllegalLayerTransition
		}

		if err := tx.Delete(makeAtomLayerKey(atom.Layer, atom.Id)); err != nil {
			return err
		}
		atom.Layer = core.LayerCanonical
		atom.ClusterId = 0
		atom.UpdatedAt = now
		if err := tx.Set(makeAtomKey(atom.Id), storage.MarshalAtom(atom)); err != nil {
			return err
		}
		if err := tx.Set(makeAtomLayerKey(atom.Layer, atom.Id), storage.MarshalID(atom.Id)); err != nil {
			return err
		}
	}
	return nil
}

// rejectMembers hard-deletes every member atom and every relation touching one.
func rejectMembers(tx *badger.Txn, cluster *core.Cluster) error {
	for _, itemID := range cluster.ItemIds {
		atom, err := readAtom(tx, makeAtomKey(itemID))
		if err != nil {
			return err
		}
		if atom == nil {
			return storage.ErrNotFound
		}

		if err := deleteRelationsFor(tx, atom.Id); err != nil {
			return err
		}
		if err := tx.Delete(makeAtomCapsuleKey(atom.CapsuleId, atom.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeAtomLayerKey(atom.Layer, atom.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeAtomKey(atom.Id)); err != nil {
			return err
		}
	}
	return nil
}

// GetAtom retrieves a single atom by ID.
func (r *KnowledgeRepository) GetAtom(ctx context.Context, id core.ID) (*core.Atom, error) {
	var result *core.Atom
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readAtom(tx, makeAtomKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetAtoms retrieves multiple atoms by their IDs.
func (r *KnowledgeRepository) GetAtoms(ctx context.Context, ids ...core.ID) ([]*core.Atom, error) {
	var result []*core.Atom
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			atom, err := readAtom(tx, makeAtomKey(id))
			if err != nil {
				return err
			}
			if atom != nil {
				result = append(result, atom)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListAtoms retrieves atoms matching the filter.
func (r *KnowledgeRepository) ListAtoms(ctx context.Context, filter storage.AtomFilter) ([]*core.Atom, error) {
	var results []*core.Atom
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		collect := func(atom *core.Atom) {
			if filter.CapsuleId != "" && atom.CapsuleId != filter.CapsuleId {
				return
			}
			if filter.Layer != 0 && atom.Layer != filter.Layer {
				return
			}
			if filter.Status != 0 && atom.Status != filter.Status {
				return
			}
			results = append(results, atom)
		}

		switch {
		case filter.CapsuleId != "":
			return scanIDIndex(tx, makePartialAtomCapsuleKey(filter.CapsuleId), func(id core.ID) error {
				atom, err := readAtom(tx, makeAtomKey(id))
				if err != nil {
					return err
				}
				if atom != nil {
					collect(atom)
				}
				return nil
			})
		case filter.Layer != 0:
			return scanIDIndex(tx, makePartialAtomLayerKey(filter.Layer), func(id core.ID) error {
				atom, err := readAtom(tx, makeAtomKey(id))
				if err != nil {
					return err
				}
				if atom != nil {
					collect(atom)
				}
				return nil
			})
		default:
			return scanAtoms(tx, func(atom *core.Atom) error {
				collect(atom)
				return nil
			})
		}
	}, false)
	if err != nil {
		return nil, err
	}

	sortAtoms(results)
	return results, nil
}

// CountAtomsByStatus returns atom counts per status for a layer.
func (r *KnowledgeRepository) CountAtomsByStatus(ctx context.Context, layer core.Layer) (map[core.AtomStatus]int, error) {
	counts := make(map[core.AtomStatus]int)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanAtoms(tx, func(atom *core.Atom) error {
			if layer != 0 && atom.Layer != layer {
				return nil
			}
			counts[atom.Status]++
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// GetCluster retrieves a single cluster by ID.
func (r *KnowledgeRepository) GetCluster(ctx context.Context, id core.ID) (*core.Cluster, error) {
	var result *core.Cluster
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readCluster(tx, makeClusterKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListClusters retrieves clusters matching the filter.
func (r *KnowledgeRepository) ListClusters(ctx context.Context, filter storage.ClusterFilter) ([]*core.Cluster, error) {
	var results []*core.Cluster
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		collect := func(cluster *core.Cluster) {
			if filter.Decision != 0 && cluster.Decision != filter.Decision {
				return
			}
			results = append(results, cluster)
		}

		if filter.CapsuleId != "" {
			return scanIDIndex(tx, makePartialClusterCapsuleKey(filter.CapsuleId), func(id core.ID) error {
				cluster, err := readCluster(tx, makeClusterKey(id))
				if err != nil {
					return err
				}
				if cluster != nil {
					collect(cluster)
				}
				return nil
			})
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(clusterRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var cluster *core.Cluster
			err := iter.Item().Value(func(val []byte) error {
				var err error
				cluster, err = storage.UnmarshalCluster(val)
				return err
			})
			if err != nil {
				return err
			}
			if cluster != nil {
				collect(cluster)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Cluster) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
	return results, nil
}

// GetRelationsFor retrieves all relations with the atom as either endpoint.
func (r *KnowledgeRepository) GetRelationsFor(ctx context.Context, atomID core.ID) ([]*core.Relation, error) {
	var results []*core.Relation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		seen := make(map[core.ID]bool)
		for _, prefix := range []string{relationFromPrefix, relationToPrefix} {
			err := scanIDIndex(tx, makePartialRelationEndpointKey(prefix, atomID), func(id core.ID) error {
				if seen[id] {
					return nil
				}
				seen[id] = true
				relation, err := readRelation(tx, makeRelationKey(id))
				if err != nil {
					return err
				}
				if relation != nil {
					results = append(results, relation)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Relation) int {
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
	return results, nil
}

// FindSimilarAtoms finds atoms similar to the given vector within a layer.
func (r *KnowledgeRepository) FindSimilarAtoms(ctx context.Context, vector []float32, minSimilarity float32, limit int, layer core.Layer) ([]*core.AtomMatch, error) {
	var results []*core.AtomMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanAtoms(tx, func(atom *core.Atom) error {
			if layer != 0 && atom.Layer != layer {
				return nil
			}
			if len(atom.Vector) == 0 {
				return nil
			}

			similarity := cosineSimilarity(vector, atom.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.AtomMatch{
					Atom:  atom,
					Score: similarity,
				})
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.AtomMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Helper methods

// nextID pulls the next ID from a sequence, skipping the initial zero.
func nextID(seq *badger.Sequence) (core.ID, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		n, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(n), nil
}

// mapConflict translates Badger's optimistic-concurrency failure into the
// storage taxonomy.
func mapConflict(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return storage.ErrWriteConflict
	}
	return err
}

func clusterKeyString(id core.ID) string {
	return string(makeClusterKey(id))
}

// writeAtom stores an atom record and its capsule and layer index entries.
func writeAtom(tx *badger.Txn, atom *core.Atom) error {
	if err := tx.Set(makeAtomKey(atom.Id), storage.MarshalAtom(atom)); err != nil {
		return err
	}
	if err := tx.Set(makeAtomCapsuleKey(atom.CapsuleId, atom.Id), storage.MarshalID(atom.Id)); err != nil {
		return err
	}
	return tx.Set(makeAtomLayerKey(atom.Layer, atom.Id), storage.MarshalID(atom.Id))
}

// writeRelation stores a relation record and both endpoint index entries.
func writeRelation(tx *badger.Txn, relation *core.Relation) error {
	if err := tx.Set(makeRelationKey(relation.Id), storage.MarshalRelation(relation)); err != nil {
		return err
	}
	if err := tx.Set(makeRelationEndpointKey(relationFromPrefix, relation.FromAtomId, relation.Id), storage.MarshalID(relation.Id)); err != nil {
		return err
	}
	return tx.Set(makeRelationEndpointKey(relationToPrefix, relation.ToAtomId, relation.Id), storage.MarshalID(relation.Id))
}

// writeCluster stores a cluster record and its capsule index entry.
func writeCluster(tx *badger.Txn, cluster *core.Cluster) error {
	if err := tx.Set(makeClusterKey(cluster.Id), storage.MarshalCluster(cluster)); err != nil {
		return err
	}
	return tx.Set(makeClusterCapsuleKey(cluster.CapsuleId, cluster.Id), storage.MarshalID(cluster.Id))
}

// deleteRelationsFor removes every relation with the atom as either endpoint,
// including the index entries on the opposite side.
func deleteRelationsFor(tx *badger.Txn, atomID core.ID) error {
	var relationIDs []core.ID
	for _, prefix := range []string{relationFromPrefix, relationToPrefix} {
		err := scanIDIndex(tx, makePartialRelationEndpointKey(prefix, atomID), func(id core.ID) error {
			relationIDs = append(relationIDs, id)
			return nil
		})
		if err != nil {
			return err
		}
	}

	for _, id := range relationIDs {
		relation, err := readRelation(tx, makeRelationKey(id))
		if err != nil {
			return err
		}
		if relation == nil {
			continue
		}
		if err := tx.Delete(makeRelationEndpointKey(relationFromPrefix, relation.FromAtomId, relation.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeRelationEndpointKey(relationToPrefix, relation.ToAtomId, relation.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeRelationKey(relation.Id)); err != nil {
			return err
		}
	}
	return nil
}

// scanIDIndex iterates an index whose values are marshaled IDs.
func scanIDIndex(tx *badger.Txn, prefix []byte, fn func(id core.ID) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var id core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

// scanAtoms iterates all atom records.
func scanAtoms(tx *badger.Txn, fn func(atom *core.Atom) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(atomRecordPrefix + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var atom *core.Atom
		err := iter.Item().Value(func(val []byte) error {
			var err error
			atom, err = storage.UnmarshalAtom(val)
			return err
		})
		if err != nil {
			return err
		}
		if atom == nil {
			continue
		}
		if err := fn(atom); err != nil {
			return err
		}
	}
	return nil
}

// readAtom reads an atom from the transaction. Missing keys return nil, nil.
func readAtom(tx *badger.Txn, key []byte) (*core.Atom, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var atom *core.Atom
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		atom, unmarshalErr = storage.UnmarshalAtom(val)
		return unmarshalErr
	})
	return atom, err
}

// readRelation reads a relation from the transaction. Missing keys return nil, nil.
func readRelation(tx *badger.Txn, key []byte) (*core.Relation, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var relation *core.Relation
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		relation, unmarshalErr = storage.UnmarshalRelation(val)
		return unmarshalErr
	})
	return relation, err
}

// readCluster reads a cluster from the transaction. Missing keys return nil, nil.
func readCluster(tx *badger.Txn, key []byte) (*core.Cluster, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var cluster *core.Cluster
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		cluster, unmarshalErr = storage.UnmarshalCluster(val)
		return unmarshalErr
	})
	return cluster, err
}

// sortAtoms orders atoms by creation time, then ID, for stable pagination.
func sortAtoms(atoms []*core.Atom) {
	slices.SortFunc(atoms, func(a, b *core.Atom) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// keyedMutex hands out one mutex per key so writers to independent resources
// never contend.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
