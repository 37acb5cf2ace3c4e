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


package storage

import (
	"fmt"

	"github.com/poiesic/auditorium/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) == 0 {
		return "", ErrTruncatedData
	}
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalRoom serializes a Room to bytes.
func MarshalRoom(room *core.Room) []byte {
	buf := make([]byte, core.RoomMUS.Size(*room))
	core.RoomMUS.Marshal(*room, buf)
	return buf
}

// UnmarshalRoom deserializes a Room from bytes.
func UnmarshalRoom(data []byte) (*core.Room, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	room, _, err := core.RoomMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	room.CreatedAt = room.CreatedAt.UTC()
	return &room, nil
}

// MarshalAudioChunk serializes an AudioChunk to bytes.
func MarshalAudioChunk(chunk *core.AudioChunk) []byte {
	buf := make([]byte, core.AudioChunkMUS.Size(*chunk))
	core.AudioChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalAudioChunk deserializes an AudioChunk from bytes.
func UnmarshalAudioChunk(data []byte) (*core.AudioChunk, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	chunk, _, err := core.AudioChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	chunk.CreatedAt = chunk.CreatedAt.UTC()
	return &chunk, nil
}

// MarshalQuestion serializes a Question to bytes.
func MarshalQuestion(question *core.Question) []byte {
	buf := make([]byte, core.QuestionMUS.Size(*question))
	core.QuestionMUS.Marshal(*question, buf)
	return buf
}

// UnmarshalQuestion deserializes a Question from bytes.
func UnmarshalQuestion(data []byte) (*core.Question, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	question, _, err := core.QuestionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	question.CreatedAt = question.CreatedAt.UTC()
	return &question, nil
}
