package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage keeps file contents. Paths it returns are opaque to callers.
type Storage interface {
	Put(name string, r io.Reader) (storedName, path string, size int64, err error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// DiskStorage writes files under Root with a timestamp prefix so names never collide.
type DiskStorage struct {
	Root string
	Now  func() time.Time
}

func NewDiskStorage(root string) (*DiskStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{Root: root, Now: time.Now}, nil
}

func (d *DiskStorage) Put(name string, r io.Reader) (string, string, int64, error) {
	stored := fmt.Sprintf("%d_%s", d.Now().UnixNano(), strings.ReplaceAll(filepath.Base(name), " ", "_"))
	path := filepath.Join(d.Root, stored)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", "", 0, err
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", "", 0, err
	}
	return stored, path, size, nil
}

func (d *DiskStorage) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (d *DiskStorage) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
