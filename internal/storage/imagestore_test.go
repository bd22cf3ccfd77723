package storage

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	s, err := NewImageStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestNewImageStore_EmptyRoot(t *testing.T) {
	t.Parallel()

	_, err := NewImageStore("  ")
	require.Error(t, err)
}

func TestStore_DistinctNamesForSameFilename(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	first, err := s.Store(bytes.NewReader([]byte("first")), "cover.jpg")
	require.NoError(t, err)
	second, err := s.Store(bytes.NewReader([]byte("second")), "cover.jpg")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	data, contentType, err := s.Retrieve(first)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)
	assert.Equal(t, "image/jpeg", contentType)

	data, _, err = s.Retrieve(second)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestStore_CreatesRootOnFirstUse(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "nested", "uploads")
	s, err := NewImageStore(root)
	require.NoError(t, err)

	name, err := s.Store(bytes.NewReader(pngHeader), "cover.png")
	require.NoError(t, err)

	data, contentType, err := s.Retrieve(name)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", contentType)
}

func TestStore_SanitizesOriginalFilename(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	name, err := s.Store(bytes.NewReader([]byte("x")), "../../evil.png")
	require.NoError(t, err)
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")

	_, _, err = s.Retrieve(name)
	require.NoError(t, err)
}

func TestRetrieve_Missing(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, _, err := s.Retrieve("does-not-exist.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRetrieve_RejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	tests := []struct {
		name       string
		storedName string
	}{
		{name: "empty", storedName: ""},
		{name: "dot", storedName: "."},
		{name: "dotdot", storedName: ".."},
		{name: "parent traversal", storedName: "../secret.txt"},
		{name: "nested path", storedName: "a/b.png"},
		{name: "backslash", storedName: `..\secret.txt`},
		{name: "absolute", storedName: "/etc/passwd"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := s.Retrieve(tt.storedName)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRetrieve_ContentTypeFallback(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	name, err := s.Store(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03}), "rawblob")
	require.NoError(t, err)

	_, contentType, err := s.Retrieve(name)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", contentType)
}
