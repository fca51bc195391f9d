package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosterStore_SaveAssignsPathAndWritesBlob(t *testing.T) {
	store, err := NewPosterStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save(strings.NewReader("fake image bytes"), "Poster.JPG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "movies/"), rel)
	assert.True(t, strings.HasSuffix(rel, ".jpg"), rel)
	assert.True(t, store.Exists(rel))
}

func TestPosterStore_SaveGeneratesUniqueNames(t *testing.T) {
	store, err := NewPosterStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save(strings.NewReader("a"), "p.png")
	require.NoError(t, err)
	b, err := store.Save(strings.NewReader("b"), "p.png")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPosterStore_DeleteRemovesBlob(t *testing.T) {
	store, err := NewPosterStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save(strings.NewReader("bytes"), "poster.gif")
	require.NoError(t, err)
	require.True(t, store.Exists(rel))

	require.NoError(t, store.Delete(rel))

	assert.False(t, store.Exists(rel))
}

func TestPosterStore_DeleteMissingIsNotAnError(t *testing.T) {
	store, err := NewPosterStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("movies/never-existed.png"))
}

func TestPosterStore_RejectsEscapingPaths(t *testing.T) {
	store, err := NewPosterStore(t.TempDir())
	require.NoError(t, err)

	for _, bad := range []string{"../outside.png", "/etc/passwd", "."} {
		assert.ErrorIs(t, store.Delete(bad), ErrBadPath, bad)
		assert.False(t, store.Exists(bad), bad)
	}
}
