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

// Package query provides the read surface over the knowledge store.
//
// The Service lists knowledge items with filtering, free-text matching, and
// pagination, resolves review clusters to views with their member atoms, and
// reports ingestion progress for capsules tracked in-process. It holds the
// repository behind its read methods only and never writes.
package query
