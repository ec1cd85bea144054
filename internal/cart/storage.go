package cart

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// Storage is the serialize/deserialize boundary for the cart document.
type Storage interface {
	Load() (*State, error)
	Save(*State) error
}

// FileStorage keeps the cart as a single JSON document on disk, the
// local-storage equivalent for a non-browser client.
type FileStorage struct {
	Path string
}

func (f *FileStorage) Load() (*State, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (f *FileStorage) Save(st *State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, b, 0o600)
}

// MemStorage backs tests and throwaway sessions.
type MemStorage struct {
	mu    sync.Mutex
	st    *State
	Saves int
}

func (m *MemStorage) Load() (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st, nil
}

func (m *MemStorage) Save(st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	m.Saves++
	return nil
}
