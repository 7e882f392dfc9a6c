package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/zoorunner/pkg/config"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := config.ReadFile(filepath.Join(dir, "missing.ini"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = config.ReadFile(dir)
	require.ErrorContains(t, err, "path is a directory")

	path := filepath.Join(dir, "a.ini")
	require.NoError(t, os.WriteFile(path, []byte("[include]\n"), 0o600))

	data, err := config.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[include]\n", string(data))
}

func TestFindAndResolve(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "app", "templates")
	require.NoError(t, os.MkdirAll(nested, 0o700))

	got, err := config.Find(nested, config.DefaultFileName)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = config.Resolve("", nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nested, config.DefaultFileName), got)

	want := filepath.Join(root, config.DefaultFileName)
	require.NoError(t, os.WriteFile(want, []byte("[include]\n/\n"), 0o600))

	got, err = config.Find(nested, config.DefaultFileName)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = config.Resolve("", nested)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = config.Resolve("custom.ini", nested)
	require.NoError(t, err)
	assert.Equal(t, "custom.ini", got)
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sub", config.DefaultFileName)

	require.NoError(t, config.WriteFile(path, []byte("one\n"), false))

	err := config.WriteFile(path, []byte("two\n"), false)
	require.ErrorIs(t, err, config.ErrFileExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(data))

	require.NoError(t, config.WriteFile(path, []byte("two\n"), true))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "existing file is kept as a backup")

	err = config.WriteFile(dir, []byte("x"), true)
	require.ErrorContains(t, err, "path is a directory")
}
