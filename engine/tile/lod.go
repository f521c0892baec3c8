package tile

import (
	"math"

	"github.com/tellus-gl/tellus-go/common"
)

// zoomBand maps a camera distance range (globe radius 1) to a zoom level.
type zoomBand struct {
	min, max float64
	zoom     int
}

// zoomBands is ordered from farthest to closest camera distance.
var zoomBands = []zoomBand{
	{min: 1.8, max: math.Inf(1), zoom: 3},
	{min: 1.5, max: 1.8, zoom: 4},
	{min: 1.35, max: 1.5, zoom: 5},
	{min: 1.2, max: 1.35, zoom: 6},
	{min: 1.1, max: 1.2, zoom: 7},
	{min: 1.04, max: 1.1, zoom: 8},
	{min: 1.02, max: 1.04, zoom: 9},
	{min: 1.01, max: 1.02, zoom: 10},
	{min: 1.004, max: 1.01, zoom: 11},
	{min: 1.0015, max: 1.004, zoom: 12},
	{min: 1.00028, max: 1.0015, zoom: 13},
}

// EstimateZoom picks the zoom level for a camera distance from the globe
// center, with the globe radius normalized to 1.
//
// Parameters:
//   - dist: camera distance from the globe center
//
// Returns:
//   - int: the zoom level for that distance
func EstimateZoom(dist float64) int {
	for _, band := range zoomBands {
		if dist >= band.min && dist < band.max {
			return band.zoom
		}
	}
	return 4
}

// ZoomBand returns the camera distance range [min, max) that maps to the
// given zoom level.
//
// Parameters:
//   - zoom: zoom level to look up
//
// Returns:
//   - min, max: the distance range
//   - bool: false if the zoom level has no band
func ZoomBand(zoom int) (float64, float64, bool) {
	for _, band := range zoomBands {
		if band.zoom == zoom {
			return band.min, band.max, true
		}
	}
	return 0, 0, false
}

// MinDotThreshold returns the minimum dot product required between a tile's
// center direction and the camera direction for the tile to be considered
// visible. The visibility cone tightens progressively at high zoom levels.
//
// Parameters:
//   - zoom: tile zoom level
//
// Returns:
//   - float64: the dot product threshold, capped at 0.94
func MinDotThreshold(zoom int) float64 {
	zFactor := common.Clamp((float64(zoom)-3.0)/10.0, 0, 1)
	const minDot = 0.25 // visible from the side at low zoom
	const maxDot = 0.9  // strict forward cone at high zoom
	return common.Clamp(minDot+(maxDot-minDot)*math.Pow(zFactor, 1.6), 0, 0.94)
}

// BoundingSphereMultiplier returns a multiplier to inflate the bounding
// sphere used in frustum culling, preventing premature tile exclusion at
// high zoom levels.
func BoundingSphereMultiplier(zoom int) float64 {
	if zoom <= 8 {
		return 1.0
	}
	return 1.0 + 3.0*float64(zoom-8)
}

// MaxTilesToLoad caps the number of candidate tiles considered in one update
// pass for the given zoom level.
func MaxTilesToLoad(zoom int) int {
	switch {
	case zoom >= 12:
		return 112
	case zoom == 11:
		return 96
	case zoom == 10:
		return 80
	case zoom == 9:
		return 72
	case zoom >= 6:
		return 64
	case zoom == 5:
		return 48
	case zoom == 4:
		return 32
	default:
		return 16
	}
}

// LoadCap limits how many prioritized tiles may actually be queued for
// loading per pass. High zooms load in smaller bursts.
func LoadCap(zoom int) int {
	switch {
	case zoom >= 13:
		return 4
	case zoom == 12:
		return 8
	case zoom == 11:
		return 16
	default:
		return MaxTilesToLoad(zoom)
	}
}

// QueueCap is the task queue backlog threshold above which a pipeline stops
// enqueueing new loads for the given zoom level.
func QueueCap(zoom int) int {
	switch {
	case zoom >= 13:
		return 8
	case zoom >= 11:
		return 16
	default:
		return 32
	}
}

// MinTileRadius is the floor for a tile's bounding sphere radius, keeping
// tiny high-zoom tiles from vanishing due to subpixel bounding errors.
func MinTileRadius(zoom int) float64 {
	switch {
	case zoom <= 10:
		return 0.03
	case zoom == 11:
		return 0.06
	case zoom == 12:
		return 0.09
	default:
		return 0.12
	}
}

// TileInflation inflates a tile's bounding volume when the camera is very
// close at high zoom, keeping near-screen tiles stable during transitions.
//
// Parameters:
//   - zoom: tile zoom level
//   - dist: camera distance from the globe center (radius 1)
//
// Returns:
//   - float64: the inflation multiplier (1.0 when no inflation applies)
func TileInflation(zoom int, dist float64) float64 {
	if dist < 1.004 && zoom >= 11 {
		return 1.07 + (1.004-dist)*60
	}
	return 1.0
}

// ConcurrencyLimit bounds concurrent tile loads for the given zoom level.
// Higher zooms load fewer tiles at once to reduce strain.
func ConcurrencyLimit(zoom int) int {
	switch {
	case zoom >= 13:
		return 1
	case zoom == 12:
		return 2
	case zoom == 11:
		return 3
	case zoom >= 9:
		return 4
	case zoom == 8:
		return 6
	default:
		return 8
	}
}

// SearchRadius controls the spiral search radius for tile candidates per
// zoom level.
func SearchRadius(zoom int) int {
	switch {
	case zoom <= 4:
		return 2
	case zoom <= 6:
		return 4
	case zoom <= 8:
		return 6
	case zoom == 9:
		return 8
	case zoom == 10:
		return 6
	case zoom == 11:
		return 28
	case zoom == 12:
		return 36
	default:
		return 48
	}
}

// ScreenDistanceCap is the hard screen-space distance limit for tiles at
// each zoom level, used to discard far-off tiles.
func ScreenDistanceCap(zoom int) float64 {
	switch zoom {
	case 3:
		return 3.5
	case 4:
		return 2.4
	case 5:
		return 2.55
	case 6:
		return 3.1
	case 7:
		return 3.6
	case 8:
		return 4.5
	case 9:
		return 4.1
	case 10:
		return 3.95
	case 11:
		return 2.2
	case 12:
		return 2.04
	case 13:
		return 2.02
	default:
		return 1.0
	}
}
