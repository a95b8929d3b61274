package synth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "https://host.test/clips")
	require.NoError(t, err)

	assert.False(t, store.Exists("abc123"))

	require.NoError(t, store.Put("abc123", []byte("mp3-bytes")))
	assert.True(t, store.Exists("abc123"))

	data, err := os.ReadFile(filepath.Join(store.Dir(), "abc123.mp3"))
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), data)

	assert.Equal(t, "https://host.test/clips/abc123.mp3", store.PublicURL("abc123"))

	store.Remove("abc123")
	assert.False(t, store.Exists("abc123"))
}

func TestDiskStorePutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "https://host.test/clips")
	require.NoError(t, err)

	require.NoError(t, store.Put("key1", []byte("a")))
	require.NoError(t, store.Put("key1", []byte("b")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "key1.mp3", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "key1.mp3"))
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)
}

func TestNewDiskStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "clips")
	_, err := NewDiskStore(dir, "https://host.test/clips")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
