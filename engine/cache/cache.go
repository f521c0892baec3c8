// package cache provides the LRU mesh cache shared by the tile pipelines.
// Evicting or deleting an entry detaches the mesh from its scene group, so
// dropping a tile from the cache also removes it from the globe.
package cache

import (
	"container/list"
	"sync"

	"github.com/tellus-gl/tellus-go/engine/scene"
	"github.com/tellus-gl/tellus-go/engine/tile"
)

// MeshCache is a capacity-bounded LRU cache of tile meshes keyed by tile
// key. Get refreshes recency; inserting beyond capacity evicts the least
// recently used entry and detaches its mesh. Safe for concurrent use.
type MeshCache interface {
	// Has reports whether a key is cached without refreshing its recency.
	//
	// Parameters:
	//   - key: tile key to probe
	//
	// Returns:
	//   - bool: true if the key is cached
	Has(key tile.Key) bool

	// Get returns the cached mesh for a key and marks it most recently used.
	//
	// Parameters:
	//   - key: tile key to look up
	//
	// Returns:
	//   - scene.Mesh: the cached mesh
	//   - bool: false when the key is not cached
	Get(key tile.Key) (scene.Mesh, bool)

	// Set inserts or replaces the mesh for a key and marks it most recently
	// used. When the insert pushes the cache past capacity, the least
	// recently used entry is evicted and its mesh detached from its group.
	//
	// Parameters:
	//   - key: tile key to store under
	//   - m: the mesh to cache
	Set(key tile.Key, m scene.Mesh)

	// Delete removes a key and detaches its mesh. Absent keys are a no-op.
	//
	// Parameters:
	//   - key: tile key to remove
	Delete(key tile.Key)

	// Clear removes every entry and detaches every cached mesh.
	Clear()

	// SetEvictionHook sets a function called with the key and mesh of every
	// entry evicted by capacity pressure, after the mesh is detached. Keeps
	// external bookkeeping keyed by tile in sync with the cache. Explicit
	// Delete and Clear do not fire the hook; their callers already own the
	// bookkeeping.
	//
	// Parameters:
	//   - hook: the eviction callback, or nil to disable
	SetEvictionHook(hook func(key tile.Key, m scene.Mesh))

	// Len returns the number of cached entries.
	Len() int

	// Capacity returns the configured maximum entry count.
	Capacity() int

	// Keys returns the cached keys ordered from least to most recently used.
	Keys() []tile.Key
}

type entry struct {
	key  tile.Key
	mesh scene.Mesh
}

type meshCache struct {
	mu       *sync.Mutex
	capacity int
	order    *list.List // front = least recently used
	items    map[tile.Key]*list.Element
	onEvict  func(key tile.Key, m scene.Mesh)
}

var _ MeshCache = &meshCache{}

// NewMeshCache builds a mesh cache. The default capacity is 512 entries.
//
// Parameters:
//   - options: optional configuration, see the With* builder functions
//
// Returns:
//   - MeshCache: the assembled cache
func NewMeshCache(options ...MeshCacheBuilderOption) MeshCache {
	c := &meshCache{
		mu:       &sync.Mutex{},
		capacity: 512,
		order:    list.New(),
		items:    make(map[tile.Key]*list.Element),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *meshCache) Has(key tile.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

func (c *meshCache) Get(key tile.Key) (scene.Mesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToBack(el)
	return el.Value.(*entry).mesh, true
}

func (c *meshCache) Set(key tile.Key, m scene.Mesh) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry).mesh = m
		c.order.MoveToBack(el)
		c.mu.Unlock()
		return
	}

	c.items[key] = c.order.PushBack(&entry{key: key, mesh: m})

	var evicted *entry
	if c.order.Len() > c.capacity {
		oldest := c.order.Front()
		evicted = oldest.Value.(*entry)
		c.order.Remove(oldest)
		delete(c.items, evicted.key)
	}
	hook := c.onEvict
	c.mu.Unlock()

	// Detach outside the lock; Group has its own mutex.
	if evicted != nil {
		if evicted.mesh != nil {
			scene.Detach(evicted.mesh)
		}
		if hook != nil {
			hook(evicted.key, evicted.mesh)
		}
	}
}

func (c *meshCache) SetEvictionHook(hook func(key tile.Key, m scene.Mesh)) {
	c.mu.Lock()
	c.onEvict = hook
	c.mu.Unlock()
}

func (c *meshCache) Delete(key tile.Key) {
	c.mu.Lock()
	el, ok := c.items[key]
	var removed scene.Mesh
	if ok {
		e := el.Value.(*entry)
		c.order.Remove(el)
		delete(c.items, key)
		removed = e.mesh
	}
	c.mu.Unlock()

	if removed != nil {
		scene.Detach(removed)
	}
}

func (c *meshCache) Clear() {
	c.mu.Lock()
	meshes := make([]scene.Mesh, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		meshes = append(meshes, el.Value.(*entry).mesh)
	}
	c.order.Init()
	clear(c.items)
	c.mu.Unlock()

	for _, m := range meshes {
		if m != nil {
			scene.Detach(m)
		}
	}
}

func (c *meshCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *meshCache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

func (c *meshCache) Keys() []tile.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]tile.Key, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*entry).key)
	}
	return out
}
