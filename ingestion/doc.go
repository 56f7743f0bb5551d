// Package ingestion provides pipeline orchestration for distilling source
// documents into staged knowledge atoms.
//
// The Pipeline type manages the batch ingestion workflow:
//   - Extracting candidate atoms and relations from text
//   - Generating embeddings, with a per-atom retry and an unclustered fallback
//   - Grouping atoms into review clusters deterministically
//   - Checking new atoms against the canonical layer for duplicates and conflicts
//   - Committing the whole batch atomically
//
// Batches for independent capsules run concurrently on a worker pool; the
// stages within one batch are strictly sequential. Progress is observable
// per batch through a Tracker, and the Registry serves status polling by
// capsule. A batch persists nothing unless every stage succeeds.
package ingestion
