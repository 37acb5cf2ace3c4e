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


// Package search retrieves the passages that ground an answer.
//
// The Searcher embeds a question and asks the room's vector store for
// chunks whose similarity is strictly above the threshold, ordered by
// similarity descending with ties broken by chunk ID, capped at the
// limit. With the defaults that is the top three chunks above 0.7.
//
// Failures are classified with the core error kinds: an embedding
// failure wraps core.ErrEmbedding and a store failure wraps
// core.ErrPersistence.
package search
