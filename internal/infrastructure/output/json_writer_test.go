package output

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/songlens/enricher/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []domain.SongRecord {
	year := 2001
	return []domain.SongRecord{
		{
			Title:       "Café <Live> & Loud",
			Artist:      "Sigur Rós",
			Album:       "( )",
			Genre:       "post-rock",
			ReleaseYear: &year,
			ImageURL:    "https://example.com/a.jpg?x=1&y=2",
			FileName:    "cafe.mp3",
			Features:    domain.DefaultFeatureVector(),
		},
	}
}

func TestEncode_Format(t *testing.T) {
	data, err := Encode(sampleRecords())
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "[\n    {\n        \"title\": "))
	assert.Contains(t, text, `"Café <Live> & Loud"`)
	assert.Contains(t, text, `"Sigur Rós"`)
	assert.Contains(t, text, `"https://example.com/a.jpg?x=1&y=2"`)
	assert.Contains(t, text, `"duration_ms": null`)
	assert.False(t, strings.HasSuffix(text, "\n"))
	assert.NotContains(t, text, "trackId")
}

func TestEncode_EmptyCatalog(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONWriter_WriteRecords(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "out/songs.json", []byte("stale"), 0o644))
	writer := NewJSONWriter(fs, "out/songs.json", nil)

	require.NoError(t, writer.WriteRecords(context.Background(), sampleRecords()))

	data, err := afero.ReadFile(fs, "out/songs.json")
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "cafe.mp3", decoded[0]["fileName"])

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestJSONWriter_FileMode(t *testing.T) {
	t.Run("new catalog is world readable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.json")
		writer := NewJSONWriter(afero.NewOsFs(), path, nil)

		require.NoError(t, writer.WriteRecords(context.Background(), sampleRecords()))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	})

	t.Run("existing catalog keeps its mode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.json")
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
		require.NoError(t, os.Chmod(path, 0o640))
		writer := NewJSONWriter(afero.NewOsFs(), path, nil)

		require.NoError(t, writer.WriteRecords(context.Background(), sampleRecords()))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	})
}

func TestJSONWriter_CreatesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	writer := NewJSONWriter(fs, "nested/dir/songs.json", nil)

	require.NoError(t, writer.WriteRecords(context.Background(), nil))

	data, err := afero.ReadFile(fs, "nested/dir/songs.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONWriter_CancelledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	writer := NewJSONWriter(fs, "songs.json", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := writer.WriteRecords(ctx, sampleRecords())

	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := fs.Stat("songs.json")
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestJSONWriter_ReadOnlyFilesystem(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	writer := NewJSONWriter(fs, "songs.json", nil)

	err := writer.WriteRecords(context.Background(), sampleRecords())

	assert.Error(t, err)
}
