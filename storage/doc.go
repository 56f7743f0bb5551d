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


// Package storage provides the storage abstraction layer for stratum.
//
// This package defines the KnowledgeRepository interface that decouples
// persistence from pipeline and governance logic. The repository is the sole
// mutator of atoms, relations, and clusters; all other components hold it
// behind the interface so that the backing store and test doubles can vary
// independently.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the storage interface to
// enforce abstraction:
//
//	repo, err := badger.NewKnowledgeRepository(backend)  // storage.KnowledgeRepository
//
// # Consistency
//
// Implementations must make cluster transitions atomic: promotion moves every
// member atom or none, rejection removes every member atom and its relations
// or none, and readers only ever observe the state before or after a
// completed transition.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. Concurrent terminal decisions on the same
// cluster resolve deterministically: the first writer wins and later callers
// observe the recorded decision.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
