package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"strings"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// Default similarity thresholds.
const (
	defaultClusterThreshold   = 0.80
	defaultDuplicateThreshold = 0.95
	defaultReviewThreshold    = 0.70
)

// Pipeline orchestrates batch ingestion of source documents into staged
// knowledge atoms. Batches for independent capsules run concurrently on a
// worker pool; the stages within one batch are strictly sequential.
type Pipeline struct {
	repository storage.KnowledgeRepository
	provider   ai.Provider
	pool       *ants.Pool
	registry   *Registry

	clusterThreshold   float32
	duplicateThreshold float32
	reviewThreshold    float32

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent batch processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithClusterThreshold sets the minimum centroid similarity for an atom to
// join an existing cluster. Default 0.80.
func WithClusterThreshold(threshold float32) Option {
	return func(p *Pipeline) error {
		p.clusterThreshold = threshold
		return nil
	}
}

// WithDuplicateThreshold sets the canonical-layer similarity above which an
// atom is marked as a duplicate without consulting the judge. Default 0.95.
func WithDuplicateThreshold(threshold float32) Option {
	return func(p *Pipeline) error {
		p.duplicateThreshold = threshold
		return nil
	}
}

// WithReviewThreshold sets the canonical-layer similarity above which an
// atom is handed to the conflict judge. Default 0.70.
func WithReviewThreshold(threshold float32) Option {
	return func(p *Pipeline) error {
		p.reviewThreshold = threshold
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repository storage.KnowledgeRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository:         repository,
		provider:           provider,
		pool:               pool,
		registry:           NewRegistry(),
		clusterThreshold:   defaultClusterThreshold,
		duplicateThreshold: defaultDuplicateThreshold,
		reviewThreshold:    defaultReviewThreshold,
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Registry returns the tracker registry for status polling.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	// SourceDocumentId identifies the source document.
	SourceDocumentId string

	// SourceName is a human-readable source label, such as a filename.
	SourceName string
}

// Job is a handle on one running batch.
type Job struct {
	capsuleID string
	tracker   *Tracker
	events    <-chan StageEvent
	done      chan struct{}
	err       error
}

// CapsuleId returns the capsule this job ingests into.
func (j *Job) CapsuleId() string {
	return j.capsuleID
}

// Events returns the progress event stream for this batch. The channel
// closes after the terminal event.
func (j *Job) Events() <-chan StageEvent {
	return j.events
}

// Wait blocks until the batch reaches its terminal state and returns the
// batch error, if any.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}

// Ingest schedules a batch that distills the text into atoms staged under
// the given capsule. The batch runs asynchronously; use the returned Job to
// stream progress or wait for completion. All stages must succeed for
// anything to be persisted. Cancelling the context before the final commit
// abandons the batch with no side effects.
func (p *Pipeline) Ingest(ctx context.Context, capsuleID, text string, opts *IngestOptions) (*Job, error) {
	if capsuleID == "" {
		return nil, core.ErrEmptyCapsuleId
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if opts == nil {
		opts = &IngestOptions{}
	}

	tracker := p.registry.track(capsuleID)
	job := &Job{
		capsuleID: capsuleID,
		tracker:   tracker,
		events:    tracker.Subscribe(),
		done:      make(chan struct{}),
	}

	err := p.pool.Submit(func() {
		job.err = p.runBatch(ctx, tracker, capsuleID, text, opts)
		close(job.done)
	})
	if err != nil {
		tracker.finish(err)
		return nil, err
	}

	return job, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
