package storage_test

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fenstra-as/jobflow-api/internal/config"
	"github.com/fenstra-as/jobflow-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("sectional drawing, south elevation")
	path, size, err := local.Upload(ctx, "south.pdf", "application/pdf", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
	assert.Equal(t, ".pdf", filepath.Ext(path))

	reader, err := local.Download(ctx, path)
	require.NoError(t, err)
	defer reader.Close()
	round, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, round)

	require.NoError(t, local.Delete(ctx, path))

	_, err = local.Download(ctx, path)
	assert.Error(t, err)

	// Deleting a missing blob is not an error.
	assert.NoError(t, local.Delete(ctx, path))
}

func TestLocalStorageUniquePaths(t *testing.T) {
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, _, err := local.Upload(ctx, "frame.dwg", "application/acad", strings.NewReader("a"))
	require.NoError(t, err)
	second, _, err := local.Upload(ctx, "frame.dwg", "application/acad", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestNewStorageModes(t *testing.T) {
	log := zap.NewNop()

	s, err := storage.NewStorage(&config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, log)
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)

	_, err = storage.NewStorage(&config.StorageConfig{Mode: "azure"}, log)
	assert.Error(t, err, "cloud mode without a connection string must fail")

	_, err = storage.NewStorage(&config.StorageConfig{Mode: "ftp"}, log)
	assert.Error(t, err)
}
