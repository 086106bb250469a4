package kv

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

const partialSuffix = ".part"

// FileStore keeps every key in a single JSON object on disk. Each write
// rewrites the file through a temporary sibling and a rename.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileStore loads path, treating a missing or empty file as an empty store.
func NewFileStore(path string) (*FileStore, error) {
	values, err := loadValues(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: path, values: values}, nil
}

// Path reports the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.values[key]; ok && current == value {
		return nil
	}
	next := cloneValues(s.values)
	next[key] = value
	if err := writeValues(s.path, next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	next := cloneValues(s.values)
	delete(next, key)
	if err := writeValues(s.path, next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func loadValues(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func writeValues(path string, values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	partial := path + partialSuffix
	if err := os.WriteFile(partial, data, 0o644); err != nil {
		return err
	}
	return os.Rename(partial, path)
}

func cloneValues(values map[string]string) map[string]string {
	next := make(map[string]string, len(values)+1)
	for k, v := range values {
		next[k] = v
	}
	return next
}
