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


// Package ai provides abstractions for the embedding service used in semdex.
//
// The package defines the Embedder interface so the ingestion pipeline and
// query responder depend on an abstraction rather than a concrete transport.
//
// # Implementation Packages
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewEmbedder) return the INTERFACE type to
// enforce abstraction. Test utility constructors (mock.NewMockEmbedder)
// return CONCRETE types to enable assertions and behavior injection via the
// mock's public fields (EmbedTextFunc, CallCount, Reset).
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("text-embedding-3-small"))
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vectors, err := embedder.EmbedTexts(ctx, []string{"hello", "world"})
package ai
