// package pipeline drives tile streaming for one zoom level: it generates
// spiral candidates around the camera, filters them for visibility,
// prioritizes and loads them through the shared task queue, and retires
// tiles that fall out of view.
package pipeline

import (
	"sync"

	"github.com/tellus-gl/tellus-go/engine/cache"
	"github.com/tellus-gl/tellus-go/engine/queue"
	"github.com/tellus-gl/tellus-go/engine/scene"
	"github.com/tellus-gl/tellus-go/engine/tile"
)

// Candidate is one tile produced by the spiral generator for a pass.
type Candidate struct {
	// X and Y are the tile coordinates.
	X, Y int
	// Zoom is the tile zoom level.
	Zoom int
	// Key is the tile key.
	Key tile.Key
	// ScreenDist is the screen-space distance from center, filled in by the
	// visibility pass.
	ScreenDist float64
}

// Registry is the load memo shared by every pipeline of an engine: it maps a
// tile key to its built mesh, with a nil entry marking a load in flight.
// Keys embed their zoom level, so one registry serves all zoom levels.
type Registry struct {
	mu *sync.Mutex
	m  map[tile.Key]scene.Mesh
}

// NewRegistry builds an empty load registry.
func NewRegistry() *Registry {
	return &Registry{
		mu: &sync.Mutex{},
		m:  make(map[tile.Key]scene.Mesh),
	}
}

// Begin marks a key as in flight.
//
// Parameters:
//   - key: the tile key about to load
//
// Returns:
//   - bool: true if the key was claimed, false if it is already in flight or loaded
func (r *Registry) Begin(key tile.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[key]; ok {
		return false
	}
	r.m[key] = nil
	return true
}

// Fail drops an in-flight entry so a later pass may retry the key.
func (r *Registry) Fail(key tile.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
}

// Complete records the built mesh for a key.
func (r *Registry) Complete(key tile.Key, m scene.Mesh) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = m
}

// Get returns the completed mesh for a key. In-flight entries report false.
//
// Parameters:
//   - key: the tile key
//
// Returns:
//   - scene.Mesh: the built mesh
//   - bool: true if the key has a completed mesh
func (r *Registry) Get(key tile.Key) (scene.Mesh, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.m[key]
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

// Has reports whether a key is in flight or loaded.
func (r *Registry) Has(key tile.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.m[key]
	return ok
}

// Delete drops a key's entry, loaded or in flight.
func (r *Registry) Delete(key tile.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
}

// ResetZoom drops every entry at the given zoom level.
func (r *Registry) ResetZoom(zoom int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.m {
		if key.Zoom() == zoom {
			delete(r.m, key)
		}
	}
}

// Clear drops every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = make(map[tile.Key]scene.Mesh)
}

// Len returns the number of tracked keys, in flight and loaded.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}

// Shared bundles the structures every pipeline of one engine mutates
// together: the task queue, the mesh cache, the visible-tile set, the load
// registry, and the fade registry.
type Shared struct {
	// Tasks is the load task queue.
	Tasks queue.TaskQueue
	// Cache is the LRU mesh cache.
	Cache cache.MeshCache
	// Visible is the set of tile keys currently attached and shown. A key's
	// presence implies its mesh is parented into some pipeline's group.
	Visible *tile.KeySet
	// Protected holds keys attached by a permanent pipeline. No pipeline may
	// retire a protected key; the fallback layer stays intact while the
	// active zoom streams over it.
	Protected *tile.KeySet
	// Loaded is the in-flight/completed load memo.
	Loaded *Registry
	// Fades steps opacity transitions.
	Fades *Fades
}

// NewShared builds the shared state for one engine instance.
//
// Parameters:
//   - tasks: the task queue pipelines drain their loads through
//   - meshCache: the mesh cache
//
// Returns:
//   - *Shared: the assembled shared state
func NewShared(tasks queue.TaskQueue, meshCache cache.MeshCache) *Shared {
	s := &Shared{
		Tasks:     tasks,
		Cache:     meshCache,
		Visible:   tile.NewKeySet(),
		Protected: tile.NewKeySet(),
		Loaded:    NewRegistry(),
		Fades:     NewFades(),
	}
	// A capacity eviction detaches the mesh behind the pipelines' backs;
	// drop its bookkeeping too so the key can load again.
	meshCache.SetEvictionHook(func(key tile.Key, _ scene.Mesh) {
		s.Visible.Delete(key)
		s.Protected.Delete(key)
		s.Loaded.Delete(key)
	})
	return s
}
