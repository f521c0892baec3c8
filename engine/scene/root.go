package scene

import (
	"strconv"
	"sync"
)

// Root is the top of the tile scene graph: one group per zoom level plus a
// permanent fallback group that keeps coarse imagery under everything else.
// Renderers draw the fallback group first, then the zoom groups in ascending
// order.
type Root interface {
	// Group returns the group for a zoom level, or nil when the zoom is
	// outside the configured range.
	//
	// Parameters:
	//   - zoom: the zoom level
	//
	// Returns:
	//   - *Group: the zoom level's group
	Group(zoom int) *Group

	// FallbackGroup returns the permanent base layer group.
	FallbackGroup() *Group

	// ZoomRange returns the configured inclusive zoom range.
	ZoomRange() (int, int)

	// Clear detaches every mesh from every group, fallback included.
	Clear()
}

type root struct {
	mu       *sync.Mutex
	minZoom  int
	maxZoom  int
	groups   map[int]*Group
	fallback *Group
}

var _ Root = &root{}

// NewRoot builds the scene root with one group per zoom level in the
// configured range plus the fallback group.
//
// Parameters:
//   - options: optional configuration, see the With* builder functions
//
// Returns:
//   - Root: the assembled scene root
func NewRoot(options ...RootBuilderOption) Root {
	r := &root{
		mu:      &sync.Mutex{},
		minZoom: 3,
		maxZoom: 13,
	}
	for _, opt := range options {
		opt(r)
	}

	r.groups = make(map[int]*Group, r.maxZoom-r.minZoom+1)
	for z := r.minZoom; z <= r.maxZoom; z++ {
		r.groups[z] = NewGroup(groupName(z))
	}
	r.fallback = NewGroup("tiles-fallback")
	return r
}

func (r *root) Group(zoom int) *Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups[zoom]
}

func (r *root) FallbackGroup() *Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fallback
}

func (r *root) ZoomRange() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.minZoom, r.maxZoom
}

func (r *root) Clear() {
	r.mu.Lock()
	groups := make([]*Group, 0, len(r.groups)+1)
	for _, g := range r.groups {
		groups = append(groups, g)
	}
	groups = append(groups, r.fallback)
	r.mu.Unlock()

	for _, g := range groups {
		g.Clear()
	}
}

func groupName(zoom int) string {
	return "tiles-z" + strconv.Itoa(zoom)
}
