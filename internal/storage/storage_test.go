package storage_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/nadzzz/ttsgen/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOutputPath_NotExisting(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out.wav", "hello world.wav", "noext"} {
		assert.Equal(t, filepath.Join(dir, name), storage.ResolveOutputPath(dir, name))
	}
}

func TestResolveOutputPath_Existing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.wav"), []byte("x"), 0o600))

	got := storage.ResolveOutputPath(dir, "out.wav")

	assert.NotEqual(t, filepath.Join(dir, "out.wav"), got)
	assert.Equal(t, dir, filepath.Dir(got))
	assert.Regexp(t, regexp.MustCompile(`^out_[0-9a-f]{8}\.wav$`), filepath.Base(got))
	assert.False(t, storage.FileExists(got))
}

func TestResolveOutputPath_ExistingWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "take"), []byte("x"), 0o600))

	got := storage.ResolveOutputPath(dir, "take")

	assert.Regexp(t, regexp.MustCompile(`^take_[0-9a-f]{8}$`), filepath.Base(got))
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "output")
	b := filepath.Join(root, "nested", "uploads")

	require.NoError(t, storage.EnsureDirs(a, "", b))

	for _, dir := range []string{a, b} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.wav")

	assert.False(t, storage.FileExists(""))
	assert.False(t, storage.FileExists(path))
	assert.False(t, storage.FileExists(dir))

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	assert.True(t, storage.FileExists(path))
}
