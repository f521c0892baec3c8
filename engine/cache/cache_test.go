package cache

import (
	"sync"
	"testing"

	"github.com/tellus-gl/tellus-go/engine/scene"
	"github.com/tellus-gl/tellus-go/engine/tile"
)

type fakeMesh struct {
	mu      sync.Mutex
	key     tile.Key
	visible bool
	parent  *scene.Group
}

func (m *fakeMesh) Key() tile.Key         { m.mu.Lock(); defer m.mu.Unlock(); return m.key }
func (m *fakeMesh) SetKey(k tile.Key)     { m.mu.Lock(); defer m.mu.Unlock(); m.key = k }
func (m *fakeMesh) Visible() bool         { m.mu.Lock(); defer m.mu.Unlock(); return m.visible }
func (m *fakeMesh) SetVisible(v bool)     { m.mu.Lock(); defer m.mu.Unlock(); m.visible = v }
func (m *fakeMesh) Parent() *scene.Group  { m.mu.Lock(); defer m.mu.Unlock(); return m.parent }
func (m *fakeMesh) SetParent(g *scene.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parent = g
}

func newMesh(k tile.Key) *fakeMesh {
	return &fakeMesh{key: k, visible: true}
}

func TestSetGetRoundTrip(t *testing.T) {
	c := NewMeshCache(WithCapacity(4))
	k := tile.NewKey(6, 1, 1)
	m := newMesh(k)

	c.Set(k, m)
	if !c.Has(k) {
		t.Fatal("Has = false after Set")
	}
	got, ok := c.Get(k)
	if !ok || got != scene.Mesh(m) {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestGetRefreshesRecency(t *testing.T) {
	c := NewMeshCache(WithCapacity(2))
	a := tile.NewKey(6, 0, 0)
	b := tile.NewKey(6, 1, 0)
	cc := tile.NewKey(6, 2, 0)

	c.Set(a, newMesh(a))
	c.Set(b, newMesh(b))
	c.Get(a) // refresh a; b is now least recently used
	c.Set(cc, newMesh(cc))

	if !c.Has(a) {
		t.Error("a was evicted despite refresh")
	}
	if c.Has(b) {
		t.Error("b survived, want eviction")
	}
	if !c.Has(cc) {
		t.Error("c missing after insert")
	}
}

func TestHasDoesNotRefresh(t *testing.T) {
	c := NewMeshCache(WithCapacity(2))
	a := tile.NewKey(6, 0, 0)
	b := tile.NewKey(6, 1, 0)
	cc := tile.NewKey(6, 2, 0)

	c.Set(a, newMesh(a))
	c.Set(b, newMesh(b))
	c.Has(a) // must not refresh
	c.Set(cc, newMesh(cc))

	if c.Has(a) {
		t.Error("a survived, Has must not refresh recency")
	}
}

func TestEvictionDetachesMesh(t *testing.T) {
	g := scene.NewGroup("tiles")
	c := NewMeshCache(WithCapacity(1))
	a := tile.NewKey(6, 0, 0)
	b := tile.NewKey(6, 1, 0)
	ma := newMesh(a)
	g.Add(ma)

	c.Set(a, ma)
	c.Set(b, newMesh(b))

	if ma.Parent() != nil {
		t.Error("evicted mesh still attached to group")
	}
	if g.Len() != 0 {
		t.Errorf("group len = %d after eviction", g.Len())
	}
}

func TestEvictionHookFires(t *testing.T) {
	c := NewMeshCache(WithCapacity(1))
	a := tile.NewKey(6, 0, 0)
	b := tile.NewKey(6, 1, 0)
	ma := newMesh(a)

	var gotKey tile.Key
	var gotMesh scene.Mesh
	var calls int
	c.SetEvictionHook(func(key tile.Key, m scene.Mesh) {
		gotKey = key
		gotMesh = m
		calls++
	})

	c.Set(a, ma)
	c.Set(b, newMesh(b))

	if calls != 1 {
		t.Fatalf("hook fired %d times, want 1", calls)
	}
	if gotKey != a {
		t.Errorf("hook key = %s, want %s", gotKey, a)
	}
	if gotMesh != scene.Mesh(ma) {
		t.Error("hook received a different mesh than was evicted")
	}
}

func TestEvictionHookSkipsExplicitDelete(t *testing.T) {
	c := NewMeshCache(WithCapacity(4))
	k := tile.NewKey(6, 0, 0)
	var calls int
	c.SetEvictionHook(func(tile.Key, scene.Mesh) { calls++ })

	c.Set(k, newMesh(k))
	c.Delete(k)
	c.Set(k, newMesh(k))
	c.Clear()

	if calls != 0 {
		t.Errorf("hook fired %d times on Delete/Clear, want 0", calls)
	}
}

func TestDeleteDetachesMesh(t *testing.T) {
	g := scene.NewGroup("tiles")
	c := NewMeshCache(WithCapacity(4))
	k := tile.NewKey(6, 0, 0)
	m := newMesh(k)
	g.Add(m)

	c.Set(k, m)
	c.Delete(k)

	if c.Has(k) {
		t.Error("key still cached after Delete")
	}
	if m.Parent() != nil {
		t.Error("deleted mesh still attached")
	}

	// Deleting an absent key is a no-op.
	c.Delete(k)
}

func TestClearDetachesAll(t *testing.T) {
	g := scene.NewGroup("tiles")
	c := NewMeshCache(WithCapacity(8))
	meshes := make([]*fakeMesh, 3)
	for i := range meshes {
		k := tile.NewKey(6, i, 0)
		meshes[i] = newMesh(k)
		g.Add(meshes[i])
		c.Set(k, meshes[i])
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len = %d after Clear", c.Len())
	}
	for i, m := range meshes {
		if m.Parent() != nil {
			t.Errorf("mesh %d still attached after Clear", i)
		}
	}
}

func TestKeysOrderedByRecency(t *testing.T) {
	c := NewMeshCache(WithCapacity(4))
	a := tile.NewKey(6, 0, 0)
	b := tile.NewKey(6, 1, 0)
	c.Set(a, newMesh(a))
	c.Set(b, newMesh(b))
	c.Get(a)

	keys := c.Keys()
	if len(keys) != 2 || keys[0] != b || keys[1] != a {
		t.Errorf("Keys = %v, want [%s %s]", keys, b, a)
	}
}

func TestSetExistingReplacesWithoutEviction(t *testing.T) {
	c := NewMeshCache(WithCapacity(2))
	a := tile.NewKey(6, 0, 0)
	b := tile.NewKey(6, 1, 0)
	c.Set(a, newMesh(a))
	c.Set(b, newMesh(b))

	replacement := newMesh(a)
	c.Set(a, replacement)

	if c.Len() != 2 {
		t.Fatalf("Len = %d after replace, want 2", c.Len())
	}
	got, _ := c.Get(a)
	if got != scene.Mesh(replacement) {
		t.Error("Get returned stale mesh after replace")
	}
}
