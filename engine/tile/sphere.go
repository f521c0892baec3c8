package tile

import (
	"math"

	"github.com/tellus-gl/tellus-go/common"
)

// BoundingSphere computes an inflated bounding sphere for a tile, used for
// frustum culling. The center sits slightly above the globe surface and the
// radius carries zoom- and distance-dependent inflation with a minimum floor
// so small high-zoom tiles never vanish from the culling test.
//
// Parameters:
//   - x: tile column
//   - y: tile row
//   - zoom: tile zoom level
//   - globeRadius: radius of the globe mesh
//   - cameraDistance: current distance of the camera from the globe center
//
// Returns:
//   - common.Sphere: the bounding sphere centered on the tile
func BoundingSphere(x, y, zoom int, globeRadius, cameraDistance float64) common.Sphere {
	bounds := ToLatLonBounds(x, y, zoom)
	centerLat, centerLon := bounds.Center()

	// Slight outward push keeps the sphere clear of the globe surface.
	center := LatLonToUnitVector(centerLat, centerLon).Scale(globeRadius * 1.02)

	angleDeg := math.Max(bounds.LatSpan(), bounds.LonSpan())
	angleRad := angleDeg * math.Pi / 180.0
	rawRadius := math.Sin(angleRad/2) * globeRadius

	baseMultiplier := BoundingSphereMultiplier(zoom)
	inflation := TileInflation(zoom, cameraDistance)
	minRadius := MinTileRadius(zoom)
	if zoom == 11 {
		minRadius *= 1.2
	}

	radius := math.Max(rawRadius*baseMultiplier*inflation, minRadius*inflation)

	return common.Sphere{Center: center, Radius: radius}
}
