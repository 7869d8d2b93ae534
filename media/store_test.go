package media

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townboard/eventboard/apperror"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return store
}

func TestCategoryOf(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.gif"} {
		cat, ok := CategoryOf(name)
		require.True(t, ok, name)
		assert.Equal(t, CategoryImage, cat, name)
	}
	for _, name := range []string{"a.mp4", "b.MOV", "c.webm"} {
		cat, ok := CategoryOf(name)
		require.True(t, ok, name)
		assert.Equal(t, CategoryVideo, cat, name)
	}
	for _, name := range []string{"a.exe", "b.txt", "c", "d.svg", "e.mp3"} {
		_, ok := CategoryOf(name)
		assert.False(t, ok, name)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	store := newTestStore(t)

	token, err := store.AllocateDirectory()
	require.NoError(t, err)

	content := []byte("not really a jpeg")
	rel, err := store.WriteFile(token, "holiday photo.jpg", strings.NewReader(string(content)), 0)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, token+"/"))
	assert.True(t, strings.HasSuffix(rel, ".jpg"))
	assert.NotContains(t, rel, "holiday")

	abs, err := store.Resolve(rel)
	require.NoError(t, err)
	got, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestWriteFileSizeLimit(t *testing.T) {
	store := newTestStore(t)
	token, err := store.AllocateDirectory()
	require.NoError(t, err)

	_, err = store.WriteFile(token, "big.png", strings.NewReader("0123456789"), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	// the partial file must not survive
	files, err := store.ListDirectory(token)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDeleteFileIdempotent(t *testing.T) {
	store := newTestStore(t)
	token, err := store.AllocateDirectory()
	require.NoError(t, err)
	rel, err := store.WriteFile(token, "x.png", strings.NewReader("x"), 0)
	require.NoError(t, err)

	require.NoError(t, store.DeleteFile(rel))
	require.NoError(t, store.DeleteFile(rel), "second delete must be a no-op")
}

func TestResolveRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, rel := range []string{"../etc/passwd", "a/../../etc/passwd", ".."} {
		_, err := store.Resolve(rel)
		require.Error(t, err, rel)
		assert.True(t, errors.Is(err, apperror.ErrNotFound), rel)
	}
}

func TestPruneIfEmpty(t *testing.T) {
	store := newTestStore(t)
	token, err := store.AllocateDirectory()
	require.NoError(t, err)
	rel, err := store.WriteFile(token, "x.gif", strings.NewReader("x"), 0)
	require.NoError(t, err)

	// non-empty: stays
	require.NoError(t, store.PruneIfEmpty(token))
	_, statErr := os.Stat(filepath.Join(store.Root(), token))
	require.NoError(t, statErr)

	require.NoError(t, store.DeleteFile(rel))
	require.NoError(t, store.PruneIfEmpty(token))
	_, statErr = os.Stat(filepath.Join(store.Root(), token))
	assert.True(t, os.IsNotExist(statErr))

	// pruning a missing directory is a no-op
	require.NoError(t, store.PruneIfEmpty(token))
}

func TestDeleteDirectory(t *testing.T) {
	store := newTestStore(t)
	token, err := store.AllocateDirectory()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := store.WriteFile(token, "f.jpg", strings.NewReader("data"), 0)
		require.NoError(t, err)
	}

	require.NoError(t, store.DeleteDirectory(token))
	_, statErr := os.Stat(filepath.Join(store.Root(), token))
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, store.DeleteDirectory(token), "missing directory is a no-op")

	require.Error(t, store.DeleteDirectory("../outside"))
}

func TestDirectoryToken(t *testing.T) {
	assert.Equal(t, "abc", DirectoryToken("abc/file.png"))
	assert.Equal(t, "abc", DirectoryToken("/abc/file.png"))
	assert.Equal(t, "", DirectoryToken("file.png"))
	assert.Equal(t, "", DirectoryToken(""))
}

func TestSessionSharesOneDirectory(t *testing.T) {
	store := newTestStore(t)
	sess := store.NewSession()

	relA, err := sess.StoreFile("a.jpg", strings.NewReader("a"), 0)
	require.NoError(t, err)
	relB, err := sess.StoreFile("b.mp4", strings.NewReader("b"), 0)
	require.NoError(t, err)

	assert.Equal(t, DirectoryToken(relA), DirectoryToken(relB))
	assert.Len(t, sess.Written(), 2)
}

func TestSessionDiscard(t *testing.T) {
	store := newTestStore(t)
	sess := store.NewSession()

	_, err := sess.StoreFile("a.jpg", strings.NewReader("a"), 0)
	require.NoError(t, err)
	rel, err := sess.StoreFile("b.png", strings.NewReader("b"), 0)
	require.NoError(t, err)
	token := DirectoryToken(rel)

	sess.Discard()

	_, statErr := os.Stat(filepath.Join(store.Root(), token))
	assert.True(t, os.IsNotExist(statErr), "directory should be gone after discard")
	assert.Empty(t, sess.Written())
}

func TestSweepOncePrunesOnlyOldEmptyDirectories(t *testing.T) {
	store := newTestStore(t)

	emptyToken, err := store.AllocateDirectory()
	require.NoError(t, err)
	fullToken, err := store.AllocateDirectory()
	require.NoError(t, err)
	_, err = store.WriteFile(fullToken, "keep.png", strings.NewReader("keep"), 0)
	require.NoError(t, err)

	// a fresh empty directory is too young to sweep
	store.sweepOnce(time.Hour)
	_, statErr := os.Stat(filepath.Join(store.Root(), emptyToken))
	require.NoError(t, statErr)

	store.sweepOnce(-time.Second)
	_, statErr = os.Stat(filepath.Join(store.Root(), emptyToken))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(store.Root(), fullToken))
	require.NoError(t, statErr, "non-empty directories are never swept")
}
