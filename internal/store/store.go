// Package store contains the in-memory key-value mapping and its file mirror.
// Every mutation is flushed to the backing file before it returns.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dylanjw/mdb/internal/persistence"
	"github.com/hashicorp/go-hclog"
)

// ErrPersist wraps any failure to read or write the backing file.
var ErrPersist = errors.New("store persistence failure")

// Mirror is the file the store is kept equal to.
type Mirror interface {
	Read() (map[string]string, error)
	Write(values map[string]string) error
}

// Observer receives store statistics after every successful mutation.
type Observer interface {
	ObserveFlush(d time.Duration)
	SetKeys(n int)
}

// Store is a mutex-guarded map mirrored synchronously to a Mirror.
type Store struct {
	mu       sync.RWMutex
	data     map[string]string
	mirror   Mirror
	observer Observer
	logger   hclog.Logger
}

// Open reads the backing file at path into memory. The file must already exist
// and hold a single JSON object.
func Open(path string, logger hclog.Logger) (*Store, error) {
	return New(persistence.NewFile(path), logger)
}

// New builds a store populated from the given mirror.
func New(mirror Mirror, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	data, err := mirror.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrPersist, err)
	}
	logger.Debug("store loaded", "keys", len(data))
	return &Store{
		data:   data,
		mirror: mirror,
		logger: logger,
	}, nil
}

// SetObserver attaches an observer for flush timings and key counts.
func (s *Store) SetObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
	if o != nil {
		o.SetKeys(len(s.data))
	}
}

// Get retrieves a single value.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok
}

// Lookup returns the subset of the requested keys that exist. Unknown keys are
// omitted from the result.
func (s *Store) Lookup(keys []string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := s.data[key]; ok {
			found[key] = value
		}
	}
	return found
}

// Mutate sets one key. When it returns nil the backing file holds the new value.
func (s *Store) Mutate(key, value string) error {
	return s.Update(map[string]string{key: value})
}

// Update merges values into the store and flushes the whole mapping once.
// The in-memory map is updated before the write, so a failed flush leaves memory
// ahead of the file; callers treat ErrPersist as fatal.
func (s *Store) Update(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		s.data[key] = value
	}
	return s.flushLocked()
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) flushLocked() error {
	start := time.Now()
	if err := s.mirror.Write(s.data); err != nil {
		s.logger.Error("store flush failed", "error", err)
		return fmt.Errorf("%w: flush: %v", ErrPersist, err)
	}
	elapsed := time.Since(start)
	s.logger.Trace("store flushed", "keys", len(s.data), "elapsed", elapsed)
	if s.observer != nil {
		s.observer.ObserveFlush(elapsed)
		s.observer.SetKeys(len(s.data))
	}
	return nil
}
