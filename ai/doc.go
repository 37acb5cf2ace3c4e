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


// Package ai provides abstractions for the AI services Auditorium relies on.
//
// Ingestion transcribes audio and embeds the transcript; the query side
// embeds questions and synthesizes answers from retrieved passages. The
// pipelines depend only on the interfaces declared here, never on a
// concrete vendor.
//
// # Interfaces
//
//   - Transcriber: speech to text
//   - Embedder: text to vector
//   - AnswerSynthesizer: question plus passages to answer
//   - AIProvider: aggregates the three and owns their clients
//
// # Implementation Packages
//
//   - ai/gemini: Google Gemini through langchaingo's googleai client
//   - ai/openai: OpenAI and OpenAI-compatible servers (Whisper via
//     openai-go, embeddings and chat via langchaingo)
//   - ai/mock: test doubles that never touch the network
//
// # Constructor Return Type Pattern
//
// Public constructors (gemini.NewProvider, openai.NewProvider) return
// interface types. Mock constructors return concrete types so tests can
// inject behavior and inspect call counts; mock.NewMockProvider returns
// ai.AIProvider and exposes the concrete mocks through GetMockX methods.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
//	provider, err := gemini.NewProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	text, err := provider.Transcriber().Transcribe(ctx, audio, "audio/webm")
//	vector, err := provider.Embedder().EmbedText(ctx, text)
package ai
