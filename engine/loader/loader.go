// package loader builds renderable tile meshes: it fetches raster tile
// imagery over HTTP, decodes it, and tessellates the tile's geographic
// bounds into a curved patch on the globe surface.
package loader

import (
	"context"
	"sync"

	"github.com/tellus-gl/tellus-go/engine/scene"
	"github.com/tellus-gl/tellus-go/engine/tile"
)

// TileRequest describes one tile mesh to build.
type TileRequest struct {
	// X and Y are the tile coordinates.
	X, Y int
	// Zoom is the tile zoom level.
	Zoom int
	// URLTemplate is the imagery URL with {z}, {x} and {y} placeholders.
	URLTemplate string
	// Radius is the globe radius the patch is projected onto.
	Radius float64
}

// CreateTileMeshFunc builds a tile mesh for a request. The tile pipelines
// call it from worker goroutines; implementations must be safe for
// concurrent use. An error means the tile stays unloaded and may be retried
// on a later pass.
type CreateTileMeshFunc func(ctx context.Context, req TileRequest) (scene.Mesh, error)

// TileMesh is the CPU-side tile mesh the raster loader produces: a
// subdivided spherical patch with interleaved-ready attribute slices and
// the decoded RGBA texture. It implements scene.Mesh and scene.Fader;
// renderers upload it through the renderer package.
type TileMesh struct {
	mu *sync.Mutex

	key     tile.Key
	visible bool
	opacity float64
	parent  *scene.Group

	positions []float32
	uvs       []float32
	indices   []uint32

	texture       []byte
	textureWidth  int
	textureHeight int
}

var (
	_ scene.Mesh  = &TileMesh{}
	_ scene.Fader = &TileMesh{}
)

// Key returns the tile key this mesh renders.
func (m *TileMesh) Key() tile.Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key
}

// SetKey assigns the tile key this mesh renders.
func (m *TileMesh) SetKey(key tile.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = key
}

// Visible reports whether the mesh should be drawn.
func (m *TileMesh) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// SetVisible toggles whether the mesh should be drawn.
func (m *TileMesh) SetVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = visible
}

// Parent returns the group the mesh is attached to, or nil when detached.
func (m *TileMesh) Parent() *scene.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parent
}

// SetParent records the group the mesh is attached to. Managed by
// scene.Group.
func (m *TileMesh) SetParent(g *scene.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parent = g
}

// Opacity returns the current opacity in [0, 1].
func (m *TileMesh) Opacity() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opacity
}

// SetOpacity sets the opacity in [0, 1].
func (m *TileMesh) SetOpacity(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.opacity = v
}

// Positions returns the xyz vertex positions, three floats per vertex.
func (m *TileMesh) Positions() []float32 {
	return m.positions
}

// UVs returns the texture coordinates, two floats per vertex.
func (m *TileMesh) UVs() []float32 {
	return m.uvs
}

// Indices returns the triangle indices.
func (m *TileMesh) Indices() []uint32 {
	return m.indices
}

// Texture returns the decoded RGBA pixel data, 4 bytes per pixel.
func (m *TileMesh) Texture() []byte {
	return m.texture
}

// TextureSize returns the texture dimensions in pixels.
func (m *TileMesh) TextureSize() (int, int) {
	return m.textureWidth, m.textureHeight
}
