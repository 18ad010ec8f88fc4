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


package core

import "errors"

// Domain errors
var (
	// ErrUnsupportedFormat indicates a source file's type has no decoder.
	// Readers skip the file, log, and continue with the rest of the batch.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmbeddingService indicates the remote embedding call failed or
	// returned malformed output. The current operation is aborted; a zero
	// vector is never substituted.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrInvalidQuery indicates an empty or whitespace-only query.
	// Queries are rejected before any network call is made.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrIndexUnavailable indicates a query arrived with no completed
	// indexing pass and no way to start one.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrDimensionMismatch indicates an embedding's length differs from
	// the rest of the corpus.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyDocument indicates a document with no extractable text.
	ErrEmptyDocument = errors.New("document has no text")
)
