// package tile provides the spherical tile index: slippy-map tile coordinates
// in Web Mercator projection, their mapping onto the unit globe, and the
// key/parent/child relations the streaming pipeline is built on.
package tile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tellus-gl/tellus-go/common"
)

// MaxMercatorLat is the latitude limit of the Web Mercator projection in
// degrees. Latitudes are clamped to this range before tiling.
const MaxMercatorLat = 85.0511

// BaseZoom is the coarsest zoom level with tile parents. Tiles at or below
// this zoom have no parent.
const BaseZoom = 3

// Key identifies a tile as "zoom/x/y".
type Key string

// NewKey builds a Key from tile coordinates.
//
// Parameters:
//   - zoom: tile zoom level
//   - x: tile column
//   - y: tile row
//
// Returns:
//   - Key: the "zoom/x/y" key
func NewKey(zoom, x, y int) Key {
	return Key(fmt.Sprintf("%d/%d/%d", zoom, x, y))
}

// Coords parses the key back into tile coordinates.
//
// Returns:
//   - zoom, x, y: the parsed coordinates
//   - bool: false if the key is malformed
func (k Key) Coords() (int, int, int, bool) {
	parts := strings.Split(string(k), "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	zoom, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, false
	}
	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, false
	}
	y, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, false
	}
	return zoom, x, y, true
}

// Zoom returns the zoom component of the key, or -1 if the key is malformed.
func (k Key) Zoom() int {
	zoom, _, _, ok := k.Coords()
	if !ok {
		return -1
	}
	return zoom
}

// LonToTileX converts a longitude in degrees to a tile column at the given
// zoom. The result is clamped to the valid range [0, 2^zoom).
func LonToTileX(lon float64, zoom int) int {
	n := float64(int(1) << zoom)
	x := int(math.Floor((lon + 180.0) / 360.0 * n))
	return clampTileIndex(x, zoom)
}

// LatToTileY converts a latitude in degrees to a tile row at the given zoom
// using the Web Mercator projection. The result is clamped to the valid
// range [0, 2^zoom).
func LatToTileY(lat float64, zoom int) int {
	lat = common.Clamp(lat, -MaxMercatorLat, MaxMercatorLat)
	n := float64(int(1) << zoom)
	latRad := lat * math.Pi / 180.0
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))
	return clampTileIndex(y, zoom)
}

// LonLatToTileXY converts geographic coordinates to tile coordinates.
//
// Parameters:
//   - lon: longitude in degrees
//   - lat: latitude in degrees
//   - zoom: tile zoom level
//
// Returns:
//   - x, y: tile column and row
func LonLatToTileXY(lon, lat float64, zoom int) (int, int) {
	return LonToTileX(lon, zoom), LatToTileY(lat, zoom)
}

// TileXToLon returns the longitude in degrees of the western edge of tile
// column x at the given zoom.
func TileXToLon(x, zoom int) float64 {
	n := float64(int(1) << zoom)
	return float64(x)/n*360.0 - 180.0
}

// TileYToLat returns the latitude in degrees of the northern edge of tile
// row y at the given zoom.
func TileYToLat(y, zoom int) float64 {
	n := float64(int(1) << zoom)
	latRad := math.Atan(math.Sinh(math.Pi * (1.0 - 2.0*float64(y)/n)))
	return latRad * 180.0 / math.Pi
}

// ToLatLonBounds returns the geographic extent of a tile. Latitudes are
// clamped to the Web Mercator limit.
//
// Parameters:
//   - x: tile column
//   - y: tile row
//   - zoom: tile zoom level
//
// Returns:
//   - common.LatLonBounds: the tile's extent in degrees
func ToLatLonBounds(x, y, zoom int) common.LatLonBounds {
	return common.LatLonBounds{
		LatMin: common.Clamp(TileYToLat(y+1, zoom), -MaxMercatorLat, MaxMercatorLat),
		LatMax: common.Clamp(TileYToLat(y, zoom), -MaxMercatorLat, MaxMercatorLat),
		LonMin: TileXToLon(x, zoom),
		LonMax: TileXToLon(x+1, zoom),
	}
}

// ParentKey returns the key of the tile one zoom level up that contains this
// tile. Tiles at or below BaseZoom have no parent.
//
// Parameters:
//   - zoom, x, y: tile coordinates
//
// Returns:
//   - Key: the parent key
//   - bool: false when the tile has no parent
func ParentKey(zoom, x, y int) (Key, bool) {
	if zoom <= BaseZoom {
		return "", false
	}
	return NewKey(zoom-1, x/2, y/2), true
}

// ChildKeys returns the four keys of the tiles one zoom level down that
// subdivide this tile.
//
// Parameters:
//   - zoom, x, y: tile coordinates
//
// Returns:
//   - [4]Key: the child keys in (0,0), (1,0), (0,1), (1,1) order
func ChildKeys(zoom, x, y int) [4]Key {
	cz := zoom + 1
	cx := x * 2
	cy := y * 2
	return [4]Key{
		NewKey(cz, cx, cy),
		NewKey(cz, cx+1, cy),
		NewKey(cz, cx, cy+1),
		NewKey(cz, cx+1, cy+1),
	}
}

// LatLonToUnitVector maps geographic coordinates onto the unit sphere using
// the spherical convention y-up, longitude 0 on the +Z axis.
//
// Parameters:
//   - lat: latitude in degrees
//   - lon: longitude in degrees
//
// Returns:
//   - common.Vec3: the unit direction for the coordinate
func LatLonToUnitVector(lat, lon float64) common.Vec3 {
	phi := (90.0 - lat) * math.Pi / 180.0
	theta := lon * math.Pi / 180.0
	sinPhi := math.Sin(phi)
	return common.Vec3{
		X: sinPhi * math.Sin(theta),
		Y: math.Cos(phi),
		Z: sinPhi * math.Cos(theta),
	}
}

// clampTileIndex constrains a tile index to [0, 2^zoom).
func clampTileIndex(v, zoom int) int {
	max := (int(1) << zoom) - 1
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
