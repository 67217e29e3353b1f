package filesystem

import (
	"context"
	"testing"

	"github.com/songlens/enricher/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner_List(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{
		"song1.mp3",
		"song1 (remix)_-.mp3",
		"LOUD.MP3",
		"cover.jpg",
		"notes.txt",
		"album/nested.mp3",
	} {
		require.NoError(t, afero.WriteFile(fs, "music-files/"+name, []byte("x"), 0o644))
	}

	scanner := NewScanner(fs, "music-files", "mp3")

	names, err := scanner.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"LOUD.MP3", "song1 (remix)_-.mp3", "song1.mp3"}, names)
}

func TestScanner_EmptyDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("music-files", 0o755))

	names, err := NewScanner(fs, "music-files", ".mp3").List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestScanner_MissingDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := NewScanner(fs, "nowhere", ".mp3").List(context.Background())

	assert.ErrorIs(t, err, domain.ErrInputDirMissing)
}

func TestScanner_PathIsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "music-files", []byte("x"), 0o644))

	_, err := NewScanner(fs, "music-files", ".mp3").List(context.Background())

	assert.ErrorIs(t, err, domain.ErrInputDirMissing)
}
