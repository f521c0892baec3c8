// package visibility decides which candidate tiles are actually worth
// loading for the current camera: it drops tiles on the far side of the
// globe, outside the view cone, outside a widened frustum, or too far from
// the screen center.
package visibility

import (
	"math"

	"github.com/tellus-gl/tellus-go/common"
	"github.com/tellus-gl/tellus-go/engine/camera"
	"github.com/tellus-gl/tellus-go/engine/tile"
)

// FrustumFovScale widens the culling frustum beyond the camera's exact
// field of view so edge tiles do not pop during small camera moves.
const FrustumFovScale = 1.3

// antipodalLonCutoff is the longitudinal angle in degrees beyond which a
// tile is on the far side of the globe regardless of other tests.
const antipodalLonCutoff = 100.0

// Config selects which visibility tests run. Disabled tests pass every
// tile; the antipodal rejection always runs.
type Config struct {
	// FrustumCulling tests tile bounding spheres against the widened view
	// frustum.
	FrustumCulling bool
	// DotFiltering rejects tiles outside the zoom-dependent view cone.
	DotFiltering bool
	// ScreenSpacePrioritization computes screen-space distances used for
	// load ordering and the per-zoom distance cap.
	ScreenSpacePrioritization bool
}

// Result is the outcome of a single tile visibility test.
type Result struct {
	// Key is the tested tile's key.
	Key tile.Key
	// Visible is true when the tile passed every enabled test.
	Visible bool
	// ScreenDist is the tile's screen-space distance from center, +Inf for
	// rejected tiles and 0 when prioritization is disabled.
	ScreenDist float64
}

// Filter runs visibility tests for one zoom level's candidates.
type Filter struct {
	cam    camera.Camera
	radius float64
	cfg    Config
}

// NewFilter builds a visibility filter.
//
// Parameters:
//   - cam: the camera tiles are tested against
//   - globeRadius: radius of the globe mesh
//   - cfg: which tests to enable
//
// Returns:
//   - *Filter: the filter
func NewFilter(cam camera.Camera, globeRadius float64, cfg Config) *Filter {
	return &Filter{cam: cam, radius: globeRadius, cfg: cfg}
}

// Pass snapshots the camera state once per pipeline update so every
// candidate in the pass is tested against the same pose.
type Pass struct {
	f              *Filter
	cameraLon      float64
	cameraDistance float64
	viewDir        common.Vec3
	frustum        common.Frustum
	hasFrustum     bool
}

// Begin snapshots the camera and returns a pass for testing candidates.
//
// Returns:
//   - *Pass: the visibility pass
func (f *Filter) Begin() *Pass {
	p := &Pass{
		f:              f,
		cameraLon:      f.cam.Longitude(),
		cameraDistance: f.cam.Distance(),
		viewDir:        f.cam.CenterDirection(),
	}
	if f.cfg.FrustumCulling {
		p.frustum = f.cam.Frustum(FrustumFovScale)
		p.hasFrustum = true
	}
	return p
}

// Test runs the visibility tests for one tile. Tiles already in the visible
// set are reported not visible so they are not reloaded.
//
// Parameters:
//   - x, y: tile coordinates
//   - zoom: tile zoom level
//   - visible: set of keys currently attached to the globe
//
// Returns:
//   - Result: the test outcome
func (p *Pass) Test(x, y, zoom int, visible *tile.KeySet) Result {
	key := tile.NewKey(zoom, x, y)
	rejected := Result{Key: key, Visible: false, ScreenDist: math.Inf(1)}

	if visible.Has(key) {
		return rejected
	}

	// Tiles on the far side of the globe can never be visible.
	bounds := tile.ToLatLonBounds(x, y, zoom)
	centerLat, centerLon := bounds.Center()
	lonDiff := math.Abs(centerLon - p.cameraLon)
	if math.Min(lonDiff, 360-lonDiff) > antipodalLonCutoff {
		return rejected
	}

	if p.f.cfg.DotFiltering {
		tileDir := tile.LatLonToUnitVector(centerLat, centerLon)
		if p.viewDir.Dot(tileDir) < tile.MinDotThreshold(zoom) {
			return rejected
		}
	}

	sphere := tile.BoundingSphere(x, y, zoom, p.f.radius, p.cameraDistance)

	if p.hasFrustum && !p.frustum.IntersectsSphere(sphere) {
		return rejected
	}

	screenDist := 0.0
	if p.f.cfg.ScreenSpacePrioritization {
		screenDist = p.f.cam.ScreenDistance(sphere.Center)
	}
	if screenDist > tile.ScreenDistanceCap(zoom) {
		rejected.ScreenDist = screenDist
		return rejected
	}

	return Result{Key: key, Visible: true, ScreenDist: screenDist}
}
