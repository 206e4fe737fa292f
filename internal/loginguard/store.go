package loginguard

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreUnavailable wraps failures of the backing record store. The
// tracker treats it as fail-closed: the login attempt is denied, because
// failing open would defeat the lockout entirely.
var ErrStoreUnavailable = errors.New("login attempt store unavailable")

// Store is the keyed record store behind the tracker. CompareAndSet with
// a nil newRecord deletes the key; a nil expected matches only an absent
// key. Implementations must apply the swap atomically.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	CompareAndSet(ctx context.Context, key string, expected, newRecord *Record) (bool, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps records in a mutex-guarded map. It is the right
// backend for single-instance deployments; multi-instance deployments
// should share a RedisStore instead.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[key].clone(), nil
}

func (s *MemoryStore) CompareAndSet(_ context.Context, key string, expected, newRecord *Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !recordsEqual(s.records[key], expected) {
		return false, nil
	}
	if newRecord == nil {
		delete(s.records, key)
	} else {
		s.records[key] = newRecord.clone()
	}
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Len reports the number of live records, for operational visibility.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
