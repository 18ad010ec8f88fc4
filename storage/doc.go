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


// Package storage provides the embedding cache abstraction for semdex.
//
// The vector index itself is always in-memory and rebuilt per process. The
// cache persists the expensive part, responses from the remote embedding
// service, keyed by chunk content ID so an unchanged corpus can be
// re-indexed without network calls.
//
// # Constructor Return Type Pattern
//
// Public constructors return the EmbeddingCache interface to enforce
// abstraction and keep backends swappable:
//
//	cache, err := badger.NewEmbeddingCache(backend, "embeddinggemma")
//
// Use in tests with in-memory storage:
//
//	cache, backend, err := badger.NewMemoryCache("embeddinggemma")
//	defer backend.Close()
//
// # Thread Safety
//
// All cache implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
