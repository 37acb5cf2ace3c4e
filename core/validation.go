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

// ValidateRoomID parses a caller supplied room identifier.
// Failures are wrapped in ErrValidation.
func ValidateRoomID(roomID string) (ID, error) {
	id, err := ParseID(roomID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return id, nil
}

// ValidateAudio checks an audio submission before any service is called.
//
// Validation rules:
//   - audio must not be empty
//   - mimeType must not be blank
func ValidateAudio(audio []byte, mimeType string) error {
	if len(audio) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyAudio)
	}
	if strings.TrimSpace(mimeType) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrMissingMimeType)
	}
	return nil
}

// ValidateQuestionText checks that a question has non-blank text.
func ValidateQuestionText(question string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyQuestion)
	}
	return nil
}

// ValidateRoom validates a Room before it is stored.
func ValidateRoom(room *Room) error {
	if room == nil {
		return fmt.Errorf("%w: room is nil", ErrValidation)
	}
	if strings.TrimSpace(room.Name) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyRoomName)
	}
	return nil
}

// ValidateAudioChunk validates an AudioChunk before it is stored.
//
// Validation rules:
//   - RoomID must be set
//   - Transcription must not be empty
//   - Embedding must not be empty
//
// NOT validated (assigned by the repository):
//   - ID
//   - CreatedAt
func ValidateAudioChunk(chunk *AudioChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrValidation)
	}
	if chunk.RoomID == "" {
		return fmt.Errorf("%w: %w: room id is empty", ErrValidation, ErrInvalidID)
	}
	if strings.TrimSpace(chunk.Transcription) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTranscription)
	}
	if len(chunk.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyEmbedding)
	}
	return nil
}

// ValidateQuestion validates a Question before it is stored.
// A nil Answer is valid; an empty non-nil Answer is not.
func ValidateQuestion(question *Question) error {
	if question == nil {
		return fmt.Errorf("%w: question is nil", ErrValidation)
	}
	if question.RoomID == "" {
		return fmt.Errorf("%w: %w: room id is empty", ErrValidation, ErrInvalidID)
	}
	if err := ValidateQuestionText(question.Question); err != nil {
		return err
	}
	if question.Answer != nil && strings.TrimSpace(*question.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyAnswer)
	}
	return nil
}
