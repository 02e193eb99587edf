package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estate/estate/internal/config"
	"github.com/estate/estate/internal/people"
)

func loadWithRoot(t *testing.T, root string) {
	t.Helper()
	t.Setenv("SSD_MOUNT_PATH", root)
	t.Setenv("ESTATE_STORE", "filesystem")
	config.LoadDefault()
	config.ApplyEnvOverrides()
}

func TestNewStoreSweepsTempFiles(t *testing.T) {
	root := t.TempDir()
	shard := filepath.Join(root, "people", "ab", "cd")
	require.NoError(t, os.MkdirAll(shard, 0o755))
	leftover := filepath.Join(shard, "bio.yaml.123.tmp")
	require.NoError(t, os.WriteFile(leftover, []byte("partial"), 0o644))
	kept := filepath.Join(shard, "bio.yaml")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0o644))

	loadWithRoot(t, root)
	store, db, err := newStore(zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Nil(t, db)

	assert.NoFileExists(t, leftover)
	assert.FileExists(t, kept)
}

func TestNewStoreMissingRoot(t *testing.T) {
	loadWithRoot(t, filepath.Join(t.TempDir(), "unmounted"))

	_, _, err := newStore(zap.NewNop())
	assert.ErrorIs(t, err, people.ErrArchiveMissing)
}

func TestNewRecordingArchive(t *testing.T) {
	root := t.TempDir()
	loadWithRoot(t, root)
	store, err := people.NewFileStore(root, zap.NewNop())
	require.NoError(t, err)
	manager := people.NewService(store, zap.NewNop())

	assert.NotNil(t, newRecordingArchive(manager, zap.NewNop()))

	loadWithRoot(t, filepath.Join(root, "missing"))
	assert.Nil(t, newRecordingArchive(manager, zap.NewNop()))
}
