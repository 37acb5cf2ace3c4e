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


// Package storage provides the storage abstraction layer for auditorium.
//
// This package defines repository interfaces that decouple storage implementation
// from the ingestion and query pipelines. Two backends implement them:
//
//   - storage/postgres: PostgreSQL with the pgvector extension (production)
//   - storage/badger: embedded BadgerDB (single node deployments and tests)
//
// # Similarity
//
// Similarity between a question and a chunk is 1 - cosine_distance of their
// embeddings. The definition lives in one place, CosineSimilarity, and the
// grounding policy in SimilarityQuery. Backends compute the score once per
// row and use that single value both to filter (score > MinSimilarity) and
// to order (score descending, chunk ID ascending). Backends that scan in Go
// delegate the filter, order and cap to Rank.
//
// # Tenant Isolation
//
// FindSimilar and HasDigest take a room ID and must never observe chunks of
// another room. The badger backend enforces this with room prefixed keys;
// the postgres backend with a room_id predicate.
//
// # Usage
//
//	store, err := badger.OpenStore("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	chunks, err := store.Chunks().FindSimilar(ctx, roomID, vector, storage.DefaultSimilarityQuery())
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
