// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import "sync"

// Stage identifies one phase of a batch ingestion run.
type Stage string

const (
	StageExtraction     Stage = "extraction"
	StageEmbedding      Stage = "embedding"
	StageClustering     Stage = "clustering"
	StageConflictChecks Stage = "conflictChecks"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageExtraction, StageEmbedding, StageClustering, StageConflictChecks}

// StageState is the lifecycle state of a single stage.
type StageState string

const (
	StatePending    StageState = "pending"
	StateProcessing StageState = "processing"
	StateDone       StageState = "done"
	StateError      StageState = "error"
)

// StageEvent is one progress notification from a running batch.
// Terminal is set on the final event of a run; its State is then either
// StateDone (all stages completed and the batch committed) or StateError.
type StageEvent struct {
	CapsuleId string
	Stage     Stage
	State     StageState
	Terminal  bool
	Err       error
}

// Tracker records per-stage progress for one batch and fans events out to
// subscribers. All methods are safe for concurrent use.
type Tracker struct {
	mu          sync.Mutex
	capsuleID   string
	stages      map[Stage]StageState
	terminal    bool
	err         error
	subscribers []chan StageEvent
}

// newTracker creates a tracker with every stage pending.
func newTracker(capsuleID string) *Tracker {
	stages := make(map[Stage]StageState, len(Stages))
	for _, stage := range Stages {
		stages[stage] = StatePending
	}
	return &Tracker{
		capsuleID: capsuleID,
		stages:    stages,
	}
}

// Subscribe returns a channel of progress events. The channel is buffered
// large enough for a full run and is closed after the terminal event.
// Subscribing after the run finished yields only the terminal event.
func (t *Tracker) Subscribe() <-chan StageEvent {
	// Buffer covers processing+done per stage plus the terminal event.
	ch := make(chan StageEvent, len(Stages)*2+1)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminal {
		state := StateDone
		if t.err != nil {
			state = StateError
		}
		ch <- StageEvent{CapsuleId: t.capsuleID, State: state, Terminal: true, Err: t.err}
		close(ch)
		return ch
	}

	t.subscribers = append(t.subscribers, ch)
	return ch
}

// Snapshot returns the current state of every stage.
func (t *Tracker) Snapshot() map[Stage]StageState {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make(map[Stage]StageState, len(t.stages))
	for stage, state := range t.stages {
		snapshot[stage] = state
	}
	return snapshot
}

// Err returns the terminal error, if any.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Finished reports whether the run reached its terminal state.
func (t *Tracker) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.terminal
}

// setStage transitions one stage and notifies subscribers.
func (t *Tracker) setStage(stage Stage, state StageState, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminal {
		return
	}
	t.stages[stage] = state
	t.broadcast(StageEvent{CapsuleId: t.capsuleID, Stage: stage, State: state, Err: err})
}

// finish records the terminal outcome, emits the terminal event, and closes
// all subscriber channels.
func (t *Tracker) finish(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminal {
		return
	}
	t.terminal = true
	t.err = err

	state := StateDone
	if err != nil {
		state = StateError
	}
	t.broadcast(StageEvent{CapsuleId: t.capsuleID, State: state, Terminal: true, Err: err})

	for _, ch := range t.subscribers {
		close(ch)
	}
	t.subscribers = nil
}

// broadcast sends without blocking; a subscriber that stopped draining loses
// events rather than stalling the pipeline. Callers hold t.mu.
func (t *Tracker) broadcast(event StageEvent) {
	for _, ch := range t.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Registry tracks the most recent batch per capsule for status polling.
type Registry struct {
	mu       sync.RWMutex
	trackers map[string]*Tracker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{trackers: make(map[string]*Tracker)}
}

// track registers a fresh tracker for the capsule, replacing any prior run.
func (r *Registry) track(capsuleID string) *Tracker {
	tracker := newTracker(capsuleID)

	r.mu.Lock()
	r.trackers[capsuleID] = tracker
	r.mu.Unlock()

	return tracker
}

// Get returns the tracker for the capsule's most recent batch.
func (r *Registry) Get(capsuleID string) (*Tracker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracker, ok := r.trackers[capsuleID]
	return tracker, ok
}
