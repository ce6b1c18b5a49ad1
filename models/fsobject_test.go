package models

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFsObjectRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	obj, err := NewFsObject(path)
	require.NoError(t, err)
	assert.Equal(t, path, obj.Path)
	assert.Equal(t, "VREG", obj.Kind)
	assert.Equal(t, int64(5), obj.Size)
	// blake3("hello")
	assert.Equal(t, "ea8f163db38682925e4491c5e58d4bb3506ef8c14eb78a86e908c5624a67200f", obj.Hash)
}

func TestNewFsObjectDirectory(t *testing.T) {
	obj, err := NewFsObject(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "VDIR", obj.Kind)
	assert.Empty(t, obj.Hash)
}

func TestNewFsObjectMissing(t *testing.T) {
	_, err := NewFsObject(filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "failed to stat path")
}
