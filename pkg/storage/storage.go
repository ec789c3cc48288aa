// Package storage keeps uploaded files (product images) on a named disk:
// the local filesystem or an S3-compatible bucket.
//
//	disks, _ := storage.FromConfig(ctx)
//	disk := disks.Default()
//	_ = disk.Put(ctx, "products/7.png", file, "image/png")
//	url := disk.URL("products/7.png")
package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Disk is a storage driver.
type Disk interface {
	// Put writes r to path, replacing any previous file.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	// Delete removes path. A missing file is not an error.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) bool
	// URL returns the public URL for path.
	URL(path string) string
}

// Manager resolves disks by name.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

func NewManager(defaultDisk string) *Manager {
	return &Manager{disks: map[string]Disk{}, defaultDisk: defaultDisk}
}

// FromConfig boots the local disk and, when S3_BUCKET is set, the s3 disk.
// An S3 disk that fails to configure is logged and left out.
func FromConfig(ctx context.Context) (*Manager, error) {
	m := NewManager(config.StorageDefault())

	local, err := NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return nil, err
	}
	m.Register("local", local)

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.Register("s3", d)
		}
	}

	if _, err := m.Disk(m.defaultDisk); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disks[name] = d
}

func (m *Manager) Disk(name string) (Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the disk named by STORAGE_DISK. FromConfig guarantees it
// exists; a Manager built by hand must register it first.
func (m *Manager) Default() Disk {
	d, err := m.Disk(m.defaultDisk)
	if err != nil {
		panic(err)
	}
	return d
}
