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


package importer

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// DefaultBatchSize is the default number of files read per batch
	DefaultBatchSize = 8
)

// audioTypes maps supported extensions to the media type sent to the
// transcription service.
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
	".flac": "audio/flac",
}

// MimeTypeForPath returns the media type of an audio file, or "" when
// the extension is not supported.
func MimeTypeForPath(path string) string {
	return audioTypes[strings.ToLower(filepath.Ext(path))]
}

// AudioFile is a discovered audio file.
type AudioFile struct {
	Path     string
	MimeType string
}

// FileIterator walks a directory for audio files in lexical path order.
type FileIterator struct {
	root      string
	batchSize int
}

// NewFileIterator creates a new file iterator.
// batchSize: number of files per batch (defaults when <= 0)
func NewFileIterator(root string, batchSize int) *FileIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &FileIterator{
		root:      root,
		batchSize: batchSize,
	}
}

// Files lists every supported audio file under the root.
func (it *FileIterator) Files() ([]AudioFile, error) {
	var files []AudioFile
	err := filepath.WalkDir(it.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories such as .git
			if path != it.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if mimeType := MimeTypeForPath(path); mimeType != "" {
			files = append(files, AudioFile{Path: path, MimeType: mimeType})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(files, func(a, b AudioFile) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

// ForEach calls fn with consecutive batches of files.
// Iteration stops on first error from fn.
// Context cancellation is checked between batches.
func (it *FileIterator) ForEach(ctx context.Context, fn func([]AudioFile) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	files, err := it.Files()
	if err != nil {
		return err
	}

	for batch := range slices.Chunk(files, it.batchSize) {
		if err := fn(batch); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}
