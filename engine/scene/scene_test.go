package scene

import (
	"sync"
	"testing"

	"github.com/tellus-gl/tellus-go/engine/tile"
)

type stubMesh struct {
	mu      sync.Mutex
	key     tile.Key
	visible bool
	parent  *Group
}

func (m *stubMesh) Key() tile.Key { m.mu.Lock(); defer m.mu.Unlock(); return m.key }
func (m *stubMesh) SetKey(k tile.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = k
}
func (m *stubMesh) Visible() bool { m.mu.Lock(); defer m.mu.Unlock(); return m.visible }
func (m *stubMesh) SetVisible(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = v
}
func (m *stubMesh) Parent() *Group { m.mu.Lock(); defer m.mu.Unlock(); return m.parent }
func (m *stubMesh) SetParent(g *Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parent = g
}

func TestGroupAddRemove(t *testing.T) {
	g := NewGroup("test")
	m := &stubMesh{}

	g.Add(m)
	if g.Len() != 1 || m.Parent() != g {
		t.Fatalf("Len = %d, parent = %v after Add", g.Len(), m.Parent())
	}

	// Adding twice must not duplicate.
	g.Add(m)
	if g.Len() != 1 {
		t.Errorf("Len = %d after double Add, want 1", g.Len())
	}

	g.Remove(m)
	if g.Len() != 0 || m.Parent() != nil {
		t.Errorf("Len = %d, parent = %v after Remove", g.Len(), m.Parent())
	}

	// Removing again is a no-op.
	g.Remove(m)
	if g.Len() != 0 {
		t.Errorf("Len = %d after second Remove", g.Len())
	}
}

func TestGroupAddReparents(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	m := &stubMesh{}

	a.Add(m)
	b.Add(m)
	if a.Len() != 0 {
		t.Errorf("mesh still in old group, len = %d", a.Len())
	}
	if b.Len() != 1 || m.Parent() != b {
		t.Errorf("mesh not moved: len = %d, parent = %v", b.Len(), m.Parent())
	}
}

func TestGroupClearDetachesAll(t *testing.T) {
	g := NewGroup("test")
	meshes := []*stubMesh{{}, {}, {}}
	for _, m := range meshes {
		g.Add(m)
	}

	g.Clear()
	if g.Len() != 0 {
		t.Fatalf("Len = %d after Clear", g.Len())
	}
	for i, m := range meshes {
		if m.Parent() != nil {
			t.Errorf("mesh %d still has parent after Clear", i)
		}
	}
}

func TestDetach(t *testing.T) {
	g := NewGroup("test")
	m := &stubMesh{}
	g.Add(m)

	Detach(m)
	if g.Len() != 0 || m.Parent() != nil {
		t.Errorf("Detach left mesh attached: len = %d", g.Len())
	}

	// Detaching an orphan is safe.
	Detach(m)
}

func TestRootGroups(t *testing.T) {
	r := NewRoot(WithZoomRange(3, 6))

	min, max := r.ZoomRange()
	if min != 3 || max != 6 {
		t.Fatalf("ZoomRange = %d,%d", min, max)
	}
	for z := 3; z <= 6; z++ {
		if r.Group(z) == nil {
			t.Errorf("Group(%d) = nil", z)
		}
	}
	if r.Group(7) != nil {
		t.Error("Group(7) should be nil outside range")
	}
	if r.FallbackGroup() == nil {
		t.Error("FallbackGroup = nil")
	}
}

func TestRootClear(t *testing.T) {
	r := NewRoot(WithZoomRange(3, 4))
	m1 := &stubMesh{}
	m2 := &stubMesh{}
	r.Group(3).Add(m1)
	r.FallbackGroup().Add(m2)

	r.Clear()
	if r.Group(3).Len() != 0 || r.FallbackGroup().Len() != 0 {
		t.Error("Clear left meshes attached")
	}
	if m1.Parent() != nil || m2.Parent() != nil {
		t.Error("Clear left parent pointers set")
	}
}
