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


// Package ingestion turns uploaded audio into searchable chunks.
//
// Each call runs three stages in order: transcription, embedding of the
// transcript, then a single atomic write of the AudioChunk. A failing
// stage ends the call with its own error kind from core, and nothing is
// written unless every stage succeeded. The core never retries.
//
// Calls run on a bounded worker pool so a burst of uploads cannot open
// unbounded connections to the AI services; each caller still waits for
// its own result.
package ingestion
