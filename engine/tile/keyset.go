package tile

import "sync"

// KeySet is a mutex-guarded set of tile keys. It is shared between the
// per-zoom pipelines and their background load tasks, so every operation is
// safe for concurrent use.
type KeySet struct {
	mu   sync.Mutex
	keys map[Key]struct{}
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[Key]struct{})}
}

// Add inserts a key into the set.
func (s *KeySet) Add(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[k] = struct{}{}
}

// Delete removes a key from the set. Removing an absent key is a no-op.
func (s *KeySet) Delete(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, k)
}

// Has reports whether the key is in the set.
func (s *KeySet) Has(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[k]
	return ok
}

// Len returns the number of keys in the set.
func (s *KeySet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Keys returns a snapshot of the set's contents.
func (s *KeySet) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Key, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	return out
}

// Clear removes all keys from the set.
func (s *KeySet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.keys)
}
