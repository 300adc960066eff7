package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sbwt/pkg/logging"
)

// Registry is the shared collection of environment allocations. Every
// operation reads the store fresh; mutations write the whole collection back.
type Registry struct {
	store      Store
	pathExists func(string) bool

	mu        sync.Mutex
	lockDepth int
	unlock    func() error
}

// Option configures a Registry.
type Option func(*Registry)

// WithPathExists replaces the staleness check used by ReapStale.
func WithPathExists(fn func(string) bool) Option {
	return func(r *Registry) { r.pathExists = fn }
}

// New returns a Registry backed by store.
func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:      store,
		pathExists: pathExists,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// NormalizePath is the canonical form of an environment path used as key.
func NormalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

// WithLock runs fn while holding the store's cross-process lock, when the
// store provides one. Nested calls reuse the held lock.
func (r *Registry) WithLock(fn func() error) error {
	locker, ok := r.store.(Locker)
	if !ok {
		return fn()
	}

	r.mu.Lock()
	if r.lockDepth == 0 {
		unlock, err := locker.Lock()
		if err != nil {
			r.mu.Unlock()
			return err
		}
		r.unlock = unlock
	}
	r.lockDepth++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.lockDepth--
		if r.lockDepth == 0 && r.unlock != nil {
			if err := r.unlock(); err != nil {
				logging.Warn("Registry", "Failed to release registry lock: %v", err)
			}
			r.unlock = nil
		}
	}()
	return fn()
}

// Get returns the record for path, or false when none exists.
func (r *Registry) Get(path string) (Record, bool, error) {
	records, err := r.store.Load()
	if err != nil {
		return Record{}, false, err
	}
	key := NormalizePath(path)
	for _, rec := range records {
		if rec.EnvironmentPath == key {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}

// OccupiedBases returns the port base of every record.
func (r *Registry) OccupiedBases() ([]int, error) {
	records, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	bases := make([]int, 0, len(records))
	for _, rec := range records {
		bases = append(bases, rec.PortBase)
	}
	return bases, nil
}

// Identifiers returns the set of identifiers in use.
func (r *Registry) Identifiers() (map[string]struct{}, error) {
	records, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(records))
	for _, rec := range records {
		ids[rec.Identifier] = struct{}{}
	}
	return ids, nil
}

// List returns all records in stored order.
func (r *Registry) List() ([]Record, error) {
	return r.store.Load()
}

// Upsert replaces any record with the same EnvironmentPath and appends rec.
func (r *Registry) Upsert(rec Record) error {
	if rec.EnvironmentPath == "" {
		return errors.New("record has no environment path")
	}
	rec.EnvironmentPath = NormalizePath(rec.EnvironmentPath)

	return r.WithLock(func() error {
		records, err := r.store.Load()
		if err != nil {
			return err
		}
		kept := records[:0]
		for _, existing := range records {
			if existing.EnvironmentPath != rec.EnvironmentPath {
				kept = append(kept, existing)
			}
		}
		kept = append(kept, rec)
		if err := r.store.Save(kept); err != nil {
			return err
		}
		logging.Info("Registry", "Registered %s at base %d as %s", rec.EnvironmentPath, rec.PortBase, rec.Identifier)
		return nil
	})
}

// Remove deletes the record for path and reports whether one existed.
func (r *Registry) Remove(path string) (bool, error) {
	key := NormalizePath(path)
	removed := false

	err := r.WithLock(func() error {
		records, err := r.store.Load()
		if err != nil {
			return err
		}
		kept := records[:0]
		for _, rec := range records {
			if rec.EnvironmentPath == key {
				removed = true
				continue
			}
			kept = append(kept, rec)
		}
		if !removed {
			return nil
		}
		if err := r.store.Save(kept); err != nil {
			return err
		}
		logging.Info("Registry", "Unregistered %s", key)
		return nil
	})
	return removed, err
}

// ReapStale removes every record whose environment path no longer exists
// and returns exactly the removed records.
func (r *Registry) ReapStale() ([]Record, error) {
	var stale []Record

	err := r.WithLock(func() error {
		records, err := r.store.Load()
		if err != nil {
			return err
		}
		var live []Record
		for _, rec := range records {
			if r.pathExists(rec.EnvironmentPath) {
				live = append(live, rec)
			} else {
				stale = append(stale, rec)
			}
		}
		if len(stale) == 0 {
			return nil
		}
		if err := r.store.Save(live); err != nil {
			return fmt.Errorf("failed to save registry after reaping: %w", err)
		}
		logging.Info("Registry", "Removed %d stale records", len(stale))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stale, nil
}

// Clear empties the registry. It does not read the current content, so it
// also recovers from a corrupt file.
func (r *Registry) Clear() error {
	return r.WithLock(func() error {
		if err := r.store.Save([]Record{}); err != nil {
			return err
		}
		logging.Info("Registry", "Cleared registry")
		return nil
	})
}
