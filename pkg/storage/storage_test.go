package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNameSanitises(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	name := ObjectName(`..\..\My Poster (final).PNG`, now)

	assert.True(t, strings.HasPrefix(name, "1700000000000-"))
	assert.True(t, strings.HasSuffix(name, "-My-Poster-final.png"))
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")
	assert.NotEqual(t, name, ObjectName(`..\..\My Poster (final).PNG`, now))
}

func TestObjectNameFallsBackForEmptyStem(t *testing.T) {
	name := ObjectName("???.jpg", time.Now())
	assert.True(t, strings.HasSuffix(name, "-file.jpg"))
}

func TestLocalStorageCreatesDirectoryAndSaves(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	store, err := NewLocalStorage(dir, "uploads/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "a.txt", bytes.NewBufferString("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.txt", url)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageRefusesOverwriteAndCancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "dup.txt", bytes.NewBufferString("1"), 1, "")
	require.NoError(t, err)
	_, err = store.Save(context.Background(), "dup.txt", bytes.NewBufferString("2"), 1, "")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, "late.txt", bytes.NewBufferString("x"), 1, "")
	require.Error(t, err)
}

func TestLocalStorageDeleteRejectsForeignURL(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	assert.Error(t, store.Delete(context.Background(), "https://elsewhere/x.png"))
}
