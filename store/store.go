// Package store is the per-node keyspace: a mutex-guarded map from string
// to a versioned entry (value, write timestamp, replica role). Create
// fails if the key exists; update and delete fail if it doesn't.
package store

import (
	"errors"
	"sync"

	"github.com/pixperk/dynamokv/types"
)

// ErrExists is returned by Create when the key is already present.
var ErrExists = errors.New("store: key already exists")

// ErrNotFound is returned by Update/Delete/Read when the key is absent.
var ErrNotFound = errors.New("store: key not found")

// Entry is one stored value: the value itself, the write timestamp (a
// logical tick, not wall time), and the replica role this node held for
// the key at write time. The role tag is advisory — it may lag reality
// after churn.
type Entry struct {
	Value     string
	Timestamp int64
	Role      types.ReplicaRole
}

// WriteTime implements version.Stamped, so anti-entropy can compare entries
// for last-writer-wins resolution.
func (e Entry) WriteTime() int64 { return e.Timestamp }

// LocalStore is the per-node keyspace. All operations are O(1) expected.
type LocalStore struct {
	mu   sync.RWMutex
	data map[string]Entry
}

func New() *LocalStore {
	return &LocalStore{data: make(map[string]Entry)}
}

// Create inserts a new key. Fails with ErrExists if the key is present.
func (s *LocalStore) Create(key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return ErrExists
	}
	s.data[key] = entry
	return nil
}

// Read returns the entry for key, or ErrNotFound.
func (s *LocalStore) Read(key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, exists := s.data[key]
	if !exists {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Update overwrites an existing key. Fails with ErrNotFound if absent.
func (s *LocalStore) Update(key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; !exists {
		return ErrNotFound
	}
	s.data[key] = entry
	return nil
}

// Delete removes a key. Fails with ErrNotFound if absent.
func (s *LocalStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; !exists {
		return ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// Put is an unconditional upsert used only by anti-entropy to install a
// winning value after a last-writer-wins comparison; ordinary client
// mutations always go through Create/Update/Delete so their precondition
// semantics hold.
func (s *LocalStore) Put(key string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry
}

// Keys returns a snapshot of every key currently stored, in no particular
// order.
func (s *LocalStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns a defensive copy of the full keyspace.
func (s *LocalStore) Snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Len reports how many keys are stored, used to gate stabilization: it
// only runs when the ring's size changes and the local store is non-empty.
func (s *LocalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
