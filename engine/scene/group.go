package scene

import "sync"

// Group is an ordered, mutex-guarded collection of meshes. Tile pipelines
// attach loaded tiles to their zoom level's group and detach them on
// removal. Load tasks run on worker goroutines, so all operations are safe
// for concurrent use.
type Group struct {
	mu       *sync.Mutex
	name     string
	children []Mesh
}

// NewGroup creates an empty group with the given name. The name is only
// used for diagnostics.
//
// Parameters:
//   - name: diagnostic label for the group
//
// Returns:
//   - *Group: the new group
func NewGroup(name string) *Group {
	return &Group{
		mu:   &sync.Mutex{},
		name: name,
	}
}

// Name returns the group's diagnostic label.
func (g *Group) Name() string {
	return g.name
}

// Add attaches a mesh to the group. A mesh attached elsewhere is detached
// from its previous parent first; adding a mesh already in this group is a
// no-op.
//
// Parameters:
//   - m: the mesh to attach
func (g *Group) Add(m Mesh) {
	if prev := m.Parent(); prev == g {
		return
	} else if prev != nil {
		prev.Remove(m)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.children = append(g.children, m)
	m.SetParent(g)
}

// Remove detaches a mesh from the group. Removing an absent mesh is a no-op.
//
// Parameters:
//   - m: the mesh to detach
func (g *Group) Remove(m Mesh) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, c := range g.children {
		if c == m {
			g.children = append(g.children[:i], g.children[i+1:]...)
			m.SetParent(nil)
			return
		}
	}
}

// Clear detaches every mesh from the group.
func (g *Group) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.children {
		c.SetParent(nil)
	}
	g.children = g.children[:0]
}

// Contains reports whether the mesh is attached to this group.
func (g *Group) Contains(m Mesh) bool {
	return m.Parent() == g
}

// Len returns the number of attached meshes.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.children)
}

// Children returns a snapshot of the attached meshes in attach order.
func (g *Group) Children() []Mesh {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Mesh, len(g.children))
	copy(out, g.children)
	return out
}
