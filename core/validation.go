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

import (
	"fmt"
	"strings"
)

// ValidateQueryText validates free-form query text before it is handed to
// the embedding service. Empty and whitespace-only queries are rejected so
// no network call is made for them.
func ValidateQueryText(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query text is empty", ErrInvalidQuery)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - OffsetStart must not be negative
//   - OffsetEnd must be greater than OffsetStart
//
// NOT validated:
//   - Id (0 is valid until assigned by the splitter)
//   - Metadata (optional)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("chunk is nil")
	}
	if chunk.Text == "" {
		return fmt.Errorf("chunk %q [%d:%d]: %w", chunk.SourceID, chunk.OffsetStart, chunk.OffsetEnd, ErrEmptyDocument)
	}
	if chunk.OffsetStart < 0 || chunk.OffsetEnd <= chunk.OffsetStart {
		return fmt.Errorf("chunk %q: invalid offsets [%d:%d]", chunk.SourceID, chunk.OffsetStart, chunk.OffsetEnd)
	}
	return nil
}
