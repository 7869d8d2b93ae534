package media

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townboard/eventboard/apperror"
)

type partSpec struct {
	name        string
	contentType string
	content     string
}

// buildParts assembles real multipart file headers the way an HTTP request
// would deliver them.
func buildParts(t *testing.T, specs []partSpec) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, s := range specs {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, s.name))
		h.Set("Content-Type", s.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte(s.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

func TestValidatePartAcceptedTypes(t *testing.T) {
	accepted := []partSpec{
		{"a.jpg", "image/jpeg", ""},
		{"a.jpeg", "image/jpeg", ""},
		{"a.png", "image/png", ""},
		{"a.gif", "image/gif", ""},
		{"a.mp4", "video/mp4", ""},
		{"a.mov", "video/quicktime", ""},
		{"a.webm", "video/webm", ""},
	}
	for _, s := range accepted {
		assert.NoError(t, ValidatePart(s.name, s.contentType), s.name)
	}
}

func TestValidatePartRejections(t *testing.T) {
	rejected := []partSpec{
		{"a.exe", "application/octet-stream", ""},
		{"a.txt", "text/plain", ""},
		{"a.svg", "image/svg+xml", ""},
		{"noext", "image/png", ""},
		// extension ok but declared type disagrees
		{"a.png", "video/mp4", ""},
		{"a.mp4", "image/png", ""},
		{"a.jpg", "application/octet-stream", ""},
		{"a.jpg", "", ""},
	}
	for _, s := range rejected {
		err := ValidatePart(s.name, s.contentType)
		require.Error(t, err, s.name)
		assert.True(t, errors.Is(err, apperror.ErrValidation), s.name)
	}
}

func TestIngestStoresAllParts(t *testing.T) {
	store := newTestStore(t)
	ing := NewIngestor(store, 0)
	sess := store.NewSession()

	parts := buildParts(t, []partSpec{
		{"one.jpg", "image/jpeg", "first"},
		{"two.mp4", "video/mp4", "second"},
	})

	stored, err := ing.Ingest(sess, parts)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, DirectoryToken(stored[0]), DirectoryToken(stored[1]))

	want := []string{"first", "second"}
	for i, rel := range stored {
		abs, err := store.Resolve(rel)
		require.NoError(t, err)
		got, err := os.ReadFile(abs)
		require.NoError(t, err)
		assert.Equal(t, want[i], string(got))
	}
}

func TestIngestAllOrNothing(t *testing.T) {
	store := newTestStore(t)
	ing := NewIngestor(store, 0)
	sess := store.NewSession()

	parts := buildParts(t, []partSpec{
		{"good.jpg", "image/jpeg", "ok"},
		{"bad.exe", "application/octet-stream", "nope"},
	})

	_, err := ing.Ingest(sess, parts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	// nothing may remain on disk
	entries, readErr := os.ReadDir(store.Root())
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestIngestSizeLimitDiscardsBatch(t *testing.T) {
	store := newTestStore(t)
	ing := NewIngestor(store, 4)
	sess := store.NewSession()

	parts := buildParts(t, []partSpec{
		{"ok.png", "image/png", "tiny"},
		{"big.png", "image/png", "way too large"},
	})

	_, err := ing.Ingest(sess, parts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	entries, readErr := os.ReadDir(store.Root())
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
