// Package prefs persists a single serialized value on the device, the way
// a mobile client keeps its cart in local preferences. One blob, one key.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Blob stores one opaque serialized value.
type Blob interface {
	// Load returns the stored bytes. ok is false when nothing is stored.
	Load() (data []byte, ok bool, err error)
	Save(data []byte) error
	Delete() error
}

// FileBlob keeps the value in a single file, written atomically via a
// temp file and rename so a crash never leaves a half-written cart.
type FileBlob struct {
	path string
}

func NewFileBlob(path string) *FileBlob {
	return &FileBlob{path: path}
}

func (b *FileBlob) Load() ([]byte, bool, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", b.path, err)
	}
	return data, true, nil
}

func (b *FileBlob) Save(data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}

func (b *FileBlob) Delete() error {
	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", b.path, err)
	}
	return nil
}

// MemoryBlob is the in-process implementation used by tests.
type MemoryBlob struct {
	mu     sync.Mutex
	data   []byte
	stored bool
}

func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{}
}

func (b *MemoryBlob) Load() ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.stored {
		return nil, false, nil
	}
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp, true, nil
}

func (b *MemoryBlob) Save(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte(nil), data...)
	b.stored = true
	return nil
}

func (b *MemoryBlob) Delete() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
	b.stored = false
	return nil
}
