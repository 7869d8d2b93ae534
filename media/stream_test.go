package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeOpenEnd(t *testing.T) {
	spec, err := ParseRange("bytes=0-", 100, DefaultChunkCap)
	require.NoError(t, err)
	assert.Equal(t, int64(0), spec.Start)
	assert.Equal(t, int64(99), spec.End, "open end clamps to the file size")
	assert.Equal(t, int64(100), spec.Length())
	assert.Equal(t, "bytes 0-99/100", spec.ContentRange())
}

func TestParseRangeChunkCap(t *testing.T) {
	size := int64(10 << 20)
	spec, err := ParseRange("bytes=0-", size, DefaultChunkCap)
	require.NoError(t, err)
	assert.Equal(t, int64(0), spec.Start)
	assert.Equal(t, DefaultChunkCap-1, spec.End, "open end clamps to the chunk cap")
	assert.Equal(t, DefaultChunkCap, spec.Length())

	spec, err = ParseRange("bytes=100-", size, 512)
	require.NoError(t, err)
	assert.Equal(t, int64(100), spec.Start)
	assert.Equal(t, int64(611), spec.End)
}

func TestParseRangeExplicitEnd(t *testing.T) {
	spec, err := ParseRange("bytes=100-199", 200, DefaultChunkCap)
	require.NoError(t, err)
	assert.Equal(t, int64(100), spec.Start)
	assert.Equal(t, int64(199), spec.End)
	assert.Equal(t, int64(100), spec.Length())

	// explicit end is not capped
	spec, err = ParseRange("bytes=0-2097151", 4<<20, DefaultChunkCap)
	require.NoError(t, err)
	assert.Equal(t, int64(2<<20), spec.Length())
}

func TestParseRangeRejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
		size   int64
	}{
		{"start equals size", "bytes=100-", 100},
		{"start past size", "bytes=500-", 100},
		{"reversed bounds", "bytes=50-10", 100},
		{"end past size", "bytes=0-100", 100},
		{"negative start", "bytes=-5-", 100},
		{"non numeric", "bytes=abc-", 100},
		{"missing prefix", "0-10", 100},
		{"multi range", "bytes=0-1,5-9", 100},
		{"empty spec", "bytes=", 100},
		{"suffix form", "bytes=-500", 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRange(tc.header, tc.size, DefaultChunkCap)
			assert.Error(t, err)
		})
	}
}

func writeStoreFile(t *testing.T, store *Store, name, content string) string {
	t.Helper()
	token, err := store.AllocateDirectory()
	require.NoError(t, err)
	abs := filepath.Join(store.Root(), token, name)
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return token + "/" + name
}

func TestPlanStreamDecisions(t *testing.T) {
	store := newTestStore(t)
	video := writeStoreFile(t, store, "clip.mp4", strings.Repeat("v", 100))
	image := writeStoreFile(t, store, "pic.jpg", strings.Repeat("i", 50))

	t.Run("missing file is not here", func(t *testing.T) {
		plan := store.PlanStream("nope/missing.mp4", "bytes=0-", 0)
		assert.Equal(t, StreamNotHere, plan.Kind)
	})

	t.Run("traversal is not here", func(t *testing.T) {
		plan := store.PlanStream("../../etc/passwd", "", 0)
		assert.Equal(t, StreamNotHere, plan.Kind)
	})

	t.Run("video without range serves whole file", func(t *testing.T) {
		plan := store.PlanStream(video, "", 0)
		assert.Equal(t, StreamWholeFile, plan.Kind)
		assert.Equal(t, "video/mp4", plan.ContentType)
	})

	t.Run("image with range serves whole file", func(t *testing.T) {
		plan := store.PlanStream(image, "bytes=0-", 0)
		assert.Equal(t, StreamWholeFile, plan.Kind)
	})

	t.Run("video with range serves partial", func(t *testing.T) {
		plan := store.PlanStream(video, "bytes=10-19", 0)
		require.Equal(t, StreamPartial, plan.Kind)
		assert.Equal(t, int64(10), plan.Range.Start)
		assert.Equal(t, int64(19), plan.Range.End)
		assert.Equal(t, int64(100), plan.Range.Size)
		assert.Equal(t, "video/mp4", plan.ContentType)
	})

	t.Run("malformed range on video is unsatisfiable", func(t *testing.T) {
		plan := store.PlanStream(video, "bytes=100-", 0)
		assert.Equal(t, StreamUnsatisfiable, plan.Kind)
		assert.Equal(t, int64(100), plan.Size)
	})
}
