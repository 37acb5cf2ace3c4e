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

// Error kinds. Every failure returned by the pipelines wraps exactly one of
// these, so callers can classify with errors.Is.
var (
	// ErrValidation indicates malformed or missing caller input.
	ErrValidation = errors.New("validation error")

	// ErrTranscription indicates the transcription service produced no text.
	ErrTranscription = errors.New("transcription error")

	// ErrEmbedding indicates the embedding service produced no vector.
	ErrEmbedding = errors.New("embedding error")

	// ErrSynthesis indicates the answer synthesis service produced no text.
	ErrSynthesis = errors.New("synthesis error")

	// ErrPersistence indicates a durable write or read failed.
	ErrPersistence = errors.New("persistence error")
)

// Domain validation errors
var (
	// ErrInvalidID indicates an identifier is not a well-formed UUID.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrEmptyAudio indicates no audio payload was supplied.
	ErrEmptyAudio = errors.New("audio payload cannot be empty")

	// ErrMissingMimeType indicates the audio payload has no declared media type.
	ErrMissingMimeType = errors.New("audio media type is required")

	// ErrEmptyQuestion indicates the question text is empty.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyRoomName indicates a room was created without a name.
	ErrEmptyRoomName = errors.New("room name cannot be empty")

	// ErrEmptyTranscription indicates a chunk has no transcription text.
	ErrEmptyTranscription = errors.New("transcription cannot be empty")

	// ErrEmptyEmbedding indicates a chunk has no embedding vector.
	ErrEmptyEmbedding = errors.New("embedding cannot be empty")

	// ErrEmptyAnswer indicates the synthesis service returned blank text.
	ErrEmptyAnswer = errors.New("answer cannot be empty")
)
