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

// Package server exposes the auditorium service over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /rooms
//	POST /rooms
//	GET  /rooms/{roomId}/questions
//	POST /rooms/{roomId}/questions
//	POST /rooms/{roomId}/audio
//
// Errors are mapped from the core error kinds: validation failures are
// 400, AI service failures 502, unknown rooms 404 and other persistence
// failures 500.
package server
