// package scene holds the minimal scene graph the tile engine manages: tile
// meshes hanging off per-zoom groups. Rendering backends walk the groups;
// the engine only attaches, detaches, and toggles visibility.
package scene

import (
	"github.com/tellus-gl/tellus-go/engine/tile"
)

// Mesh is the engine's handle to a renderable tile. Implementations carry
// whatever geometry and texture data their renderer needs; the engine only
// relies on the key, visibility flag, and parent group bookkeeping.
type Mesh interface {
	// Key returns the tile key this mesh renders.
	Key() tile.Key

	// SetKey assigns the tile key this mesh renders.
	//
	// Parameters:
	//   - key: the tile key
	SetKey(key tile.Key)

	// Visible reports whether the mesh should be drawn.
	Visible() bool

	// SetVisible toggles whether the mesh should be drawn.
	//
	// Parameters:
	//   - visible: the new visibility state
	SetVisible(visible bool)

	// Parent returns the group the mesh is attached to, or nil when detached.
	Parent() *Group

	// SetParent records the group the mesh is attached to. It is managed by
	// Group.Add and Group.Remove and should not be called directly.
	//
	// Parameters:
	//   - g: the owning group, or nil when detached
	SetParent(g *Group)
}

// Fader is the optional capability for meshes whose opacity can be animated.
// Mesh constructors that enable cross-fades guarantee their meshes implement
// it; meshes without the capability complete fades immediately.
type Fader interface {
	// Opacity returns the current opacity in [0, 1].
	Opacity() float64

	// SetOpacity sets the opacity in [0, 1].
	//
	// Parameters:
	//   - v: the new opacity
	SetOpacity(v float64)
}

// Detach removes a mesh from its parent group, if it has one.
//
// Parameters:
//   - m: the mesh to detach
func Detach(m Mesh) {
	if p := m.Parent(); p != nil {
		p.Remove(m)
	}
}
