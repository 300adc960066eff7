package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"sbwt/pkg/logging"
)

// Store loads and saves the whole record collection.
type Store interface {
	Load() ([]Record, error)
	Save(records []Record) error
}

// Locker is implemented by stores that can serialise read-modify-write
// cycles across processes.
type Locker interface {
	Lock() (unlock func() error, err error)
}

// FileStore keeps the registry as a JSON array in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store for path. Nothing is created until the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the registry file location.
func (s *FileStore) Path() string { return s.path }

// Load returns an empty collection when the file does not exist and a
// *CorruptError when it cannot be parsed.
func (s *FileStore) Load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read registry %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &CorruptError{Path: s.path, Err: errors.New("file is empty")}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Save writes the collection through a temporary file and a rename.
func (s *FileStore) Save(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary registry file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary registry file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary registry file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace registry %s: %w", s.path, err)
	}

	logging.Debug("Registry", "Saved %d records to %s", len(records), s.path)
	return nil
}

// Lock takes an exclusive advisory lock on "<path>.lock".
func (s *FileStore) Lock() (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	fl := flock.New(s.path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock registry: %w", err)
	}
	logging.Debug("Registry", "Acquired lock %s", fl.Path())
	return fl.Unlock, nil
}

// MemoryStore is an in-process Store, used by tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	// LoadErr, when set, is returned by Load.
	LoadErr error
}

// NewMemoryStore returns a store seeded with records.
func NewMemoryStore(records ...Record) *MemoryStore {
	return &MemoryStore{records: append([]Record(nil), records...)}
}

func (m *MemoryStore) Load() ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return append([]Record{}, m.records...), nil
}

func (m *MemoryStore) Save(records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]Record{}, records...)
	m.LoadErr = nil
	return nil
}
