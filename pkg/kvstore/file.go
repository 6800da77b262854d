package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists all slots as one JSON document on disk, the default
// backend for single-node deployments. Every mutation rewrites the file.
type FileStore struct {
	mu    sync.Mutex
	file  *os.File
	slots map[string]json.RawMessage
}

// OpenFileStore opens or creates the backing file and loads the snapshot.
func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open storage file: %w", err)
	}
	s := &FileStore{file: f}
	if err := s.load(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	info, err := s.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		s.slots = make(map[string]json.RawMessage)
		return s.flushLocked()
	}
	dec := json.NewDecoder(s.file)
	var slots map[string]json.RawMessage
	if err := dec.Decode(&slots); err != nil {
		return fmt.Errorf("decode storage file: %w", err)
	}
	if slots == nil {
		slots = make(map[string]json.RawMessage)
	}
	s.slots = slots
	return nil
}

func (s *FileStore) flushLocked() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	enc := json.NewEncoder(s.file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.slots); err != nil {
		return err
	}
	// truncate in case new content is shorter
	pos, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := s.file.Truncate(pos); err != nil {
		return err
	}
	return s.file.Sync()
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.slots[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %s is not valid JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	s.slots[key] = stored
	return s.flushLocked()
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[key]; !ok {
		return nil
	}
	delete(s.slots, key)
	return s.flushLocked()
}

func (s *FileStore) Close() error {
	return s.file.Close()
}
