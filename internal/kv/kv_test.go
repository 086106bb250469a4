package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()

	_, ok, err := store.Get("summary")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("summary", "first"))
	require.NoError(t, store.Set("summary", "second"))
	value, ok, err := store.Get("summary")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)

	require.NoError(t, store.Remove("summary"))
	require.NoError(t, store.Remove("summary"))
	_, ok, err = store.Get("summary")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStore(t, store)
	require.NoError(t, store.Set("a", "1"))
	assert.Equal(t, 1, store.Len())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("documentId", "doc-1"))
	require.NoError(t, first.Set("theme", "dark"))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	value, ok, err := second.Get("documentId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "doc-1", value)

	_, err = os.Stat(path + partialSuffix)
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok, err := store.Get("summary")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "etcd"})
	assert.ErrorContains(t, err, "etcd")
}

func TestOpenDefaultsToFile(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	fs, ok := store.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "session.json"), fs.Path())
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	store, err := NewRedisStore(url, "polysumm-test")
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestRedisStoreRequiresURL(t *testing.T) {
	_, err := NewRedisStore("", "")
	assert.Error(t, err)
}
