package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/auditorium/core"
)

// Key prefixes for different data types.
// Chunk and question keys embed the room ID so a prefix scan can only
// ever see a single room.
const (
	roomPrefix         = "room"
	chunkPrefix        = "chunk"
	chunkIDIndexPrefix = "chunkix"
	chunkDigestPrefix  = "chunkdg"
	questionPrefix     = "quest"
	keySeparator       = ":"
	timestampKeyLength = 8
)

// makeRoomKey generates a key for a room by ID.
func makeRoomKey(id core.ID) []byte {
	return []byte(roomPrefix + keySeparator + string(id))
}

// makeRoomPrefix generates the prefix shared by every room key.
func makeRoomPrefix() []byte {
	return []byte(roomPrefix + keySeparator)
}

// makeChunkKey generates a key for a chunk.
// Format: chunk:roomID:chunkID
func makeChunkKey(roomID, chunkID core.ID) []byte {
	return []byte(chunkPrefix + keySeparator + string(roomID) + keySeparator + string(chunkID))
}

// makeRoomChunkPrefix generates the prefix for every chunk of a room.
// Format: chunk:roomID:
func makeRoomChunkPrefix(roomID core.ID) []byte {
	return []byte(chunkPrefix + keySeparator + string(roomID) + keySeparator)
}

// makeChunkIDIndexKey maps a chunk ID to its owning room.
// Format: chunkix:chunkID
func makeChunkIDIndexKey(chunkID core.ID) []byte {
	return []byte(chunkIDIndexPrefix + keySeparator + string(chunkID))
}

// makeChunkDigestKey generates a key for the audio digest index.
// Format: chunkdg:roomID:digest
func makeChunkDigestKey(roomID core.ID, digest string) []byte {
	return []byte(chunkDigestPrefix + keySeparator + string(roomID) + keySeparator + digest)
}

// makeQuestionKey generates a composite key ordered by creation time.
// Format: quest:roomID:timestamp:questionID
func makeQuestionKey(roomID core.ID, createdAt time.Time, questionID core.ID) []byte {
	prefix := makeRoomQuestionPrefix(roomID)
	buf := make([]byte, 0, len(prefix)+timestampKeyLength+len(keySeparator)+len(questionID))
	buf = append(buf, prefix...)
	// Write in BigEndian order so lexicographic sort works correctly
	buf = binary.BigEndian.AppendUint64(buf, uint64(createdAt.UnixMicro()))
	buf = append(buf, keySeparator...)
	return append(buf, questionID...)
}

// makeRoomQuestionPrefix generates the prefix for every question of a room.
// Format: quest:roomID:
func makeRoomQuestionPrefix(roomID core.ID) []byte {
	return []byte(questionPrefix + keySeparator + string(roomID) + keySeparator)
}
