package pipeline

import (
	"sync"

	"github.com/tellus-gl/tellus-go/engine/tile"
)

// Sticky tracks which of a parent tile's four children have loaded. The
// parent stays on the globe until the full quad is in, so refining a zoom
// level never opens a gap in the sphere. Bookkeeping for a parent is
// dropped the moment its fourth child arrives.
type Sticky struct {
	mu       *sync.Mutex
	children map[tile.Key]map[tile.Key]struct{}
	parents  map[tile.Key]tile.Key
}

// NewSticky builds an empty sticky-parent tracker.
func NewSticky() *Sticky {
	return &Sticky{
		mu:       &sync.Mutex{},
		children: make(map[tile.Key]map[tile.Key]struct{}),
		parents:  make(map[tile.Key]tile.Key),
	}
}

// OnChildLoaded records a loaded child under its parent.
//
// Parameters:
//   - parent: the parent tile key
//   - child: the child tile key that finished loading
//
// Returns:
//   - bool: true when this child completed the quad and the parent should
//     be retired; the parent's bookkeeping is already cleared
func (s *Sticky) OnChildLoaded(parent, child tile.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.children[parent]
	if !ok {
		set = make(map[tile.Key]struct{}, 4)
		s.children[parent] = set
	}
	set[child] = struct{}{}
	s.parents[child] = parent

	if len(set) < 4 {
		return false
	}
	for c := range set {
		delete(s.parents, c)
	}
	delete(s.children, parent)
	return true
}

// LoadedChildren returns how many of a parent's children have loaded.
func (s *Sticky) LoadedChildren(parent tile.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.children[parent])
}

// Tracked returns the number of parents with a partial quad.
func (s *Sticky) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.children)
}

// Clear drops all bookkeeping.
func (s *Sticky) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = make(map[tile.Key]map[tile.Key]struct{})
	s.parents = make(map[tile.Key]tile.Key)
}
