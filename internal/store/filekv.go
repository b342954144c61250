package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV is a KV backed by a single JSON file on disk, the daemon's
// default backend. Writes replace the whole file atomically (write to a
// temp file in the same directory, then rename), so a crash mid-write
// never leaves a half-written document behind.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV returns a FileKV persisting to path. The file and its parent
// directory are created lazily on the first Put; a missing file reads as
// an empty store.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return "", false, fmt.Errorf("store.FileKV.Get: %w", err)
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileKV) Put(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return fmt.Errorf("store.FileKV.Put: %w", err)
	}
	data[key] = value

	if err := f.save(data); err != nil {
		return fmt.Errorf("store.FileKV.Put: %w", err)
	}
	return nil
}

// load reads the whole file into a map. Missing file means empty store.
func (f *FileKV) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// save writes the map atomically via temp file + rename.
func (f *FileKV) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".fakeloc-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path)
}
