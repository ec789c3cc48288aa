package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func TestLocalDiskPutDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	disk, err := storage.NewLocalDisk(root, "http://localhost:8080/storage/")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "products/1.png", strings.NewReader("png"), "image/png"))
	assert.True(t, disk.Exists(ctx, "products/1.png"))
	data, err := os.ReadFile(filepath.Join(root, "products", "1.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "http://localhost:8080/storage/products/1.png", disk.URL("products/1.png"))

	require.NoError(t, disk.Delete(ctx, "products/1.png"))
	assert.False(t, disk.Exists(ctx, "products/1.png"))
	assert.NoError(t, disk.Delete(ctx, "products/1.png"))
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	disk, err := storage.NewLocalDisk(root, "")
	require.NoError(t, err)

	require.NoError(t, disk.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), ""))
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)
}

func TestManager(t *testing.T) {
	m := storage.NewManager("local")
	_, err := m.Disk("local")
	assert.Error(t, err)

	disk, err := storage.NewLocalDisk(t.TempDir(), "")
	require.NoError(t, err)
	m.Register("local", disk)
	assert.Same(t, disk, m.Default())
}
