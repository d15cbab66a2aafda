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


// Package storage provides the storage abstraction layer for lectern.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. Two repositories are defined:
//
//   - QueryRepository: semantically deduplicated queries and the external
//     results cached for them
//   - FactRepository: a small property graph of books, authors and genres
//
// # Usage
//
// Open both repositories over one on-disk backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	queries, _ := badger.NewQueryRepository(backend)
//	facts, _ := badger.NewFactRepository(backend)
//
// Use in tests with in-memory storage:
//
//	queries, facts, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
