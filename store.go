package hookpoint

import "sync"

// Store is the key-value table backing the registry: hook-point name to
// ordered callback list. Get must be safe for any number of concurrent
// readers and must never block on writers; Put and Delete are called only
// from the registrar goroutine and must publish atomically per key, so a
// reader observes either the previous list or the new one, never a partial
// update.
//
// The default store is backed by sync.Map. Supply a replacement with
// WithStore when the registry should live in a table shared with other
// subsystems.
type Store interface {
	Get(key Key) ([]Entry, bool)
	Put(key Key, entries []Entry)
	Delete(key Key)

	// Range visits every hook point. Iteration stops when fn returns
	// false. Like Put and Delete it is called only from the registrar.
	Range(fn func(key Key, entries []Entry) bool)
}

// syncStore is the default Store. Entry slices are republished whole on
// every mutation, so values read from the map are immutable snapshots.
type syncStore struct {
	m sync.Map
}

func newSyncStore() *syncStore {
	return &syncStore{}
}

func (s *syncStore) Get(key Key) ([]Entry, bool) {
	v, ok := s.m.Load(key)
	if !ok {
		return nil, false
	}
	return v.([]Entry), true
}

func (s *syncStore) Put(key Key, entries []Entry) {
	s.m.Store(key, entries)
}

func (s *syncStore) Delete(key Key) {
	s.m.Delete(key)
}

func (s *syncStore) Range(fn func(key Key, entries []Entry) bool) {
	s.m.Range(func(k, v any) bool {
		return fn(k.(Key), v.([]Entry))
	})
}
