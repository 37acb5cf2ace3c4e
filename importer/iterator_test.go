package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestMimeTypeForPath(t *testing.T) {
	assert.Equal(t, "audio/mpeg", MimeTypeForPath("aula.mp3"))
	assert.Equal(t, "audio/webm", MimeTypeForPath("/x/AULA.WEBM"))
	assert.Equal(t, "audio/flac", MimeTypeForPath("a.flac"))
	assert.Equal(t, "", MimeTypeForPath("notes.txt"))
	assert.Equal(t, "", MimeTypeForPath("noext"))
}

func TestFileIterator_Files(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.mp3":             "b",
		"a.wav":             "a",
		"notes.txt":         "skip",
		"week2/c.ogg":       "c",
		".cache/hidden.mp3": "hidden",
	})

	files, err := NewFileIterator(dir, 0).Files()
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "a.wav"), files[0].Path)
	assert.Equal(t, "audio/wav", files[0].MimeType)
	assert.Equal(t, filepath.Join(dir, "b.mp3"), files[1].Path)
	assert.Equal(t, filepath.Join(dir, "week2", "c.ogg"), files[2].Path)
}

func TestFileIterator_ForEachBatches(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"1.mp3": "1", "2.mp3": "2", "3.mp3": "3", "4.mp3": "4", "5.mp3": "5",
	})

	var sizes []int
	err := NewFileIterator(dir, 2).ForEach(context.Background(), func(batch []AudioFile) error {
		sizes = append(sizes, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, sizes)
}

func TestFileIterator_ForEachCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"1.mp3": "1", "2.mp3": "2"})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := NewFileIterator(dir, 1).ForEach(ctx, func(batch []AudioFile) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestFileIterator_MissingDir(t *testing.T) {
	_, err := NewFileIterator(filepath.Join(t.TempDir(), "missing"), 1).Files()
	assert.Error(t, err)
}
