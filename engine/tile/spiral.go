package tile

// Spiral walks an outward square spiral of tile coordinates centered on the
// tile containing (lon, lat), calling fn for each valid coordinate. The walk
// starts at the center tile and expands until the offset in either axis
// exceeds maxRadius, or fn returns false. Coordinates outside the tile grid
// at this zoom are skipped without consuming a step.
//
// Parameters:
//   - lon: center longitude in degrees
//   - lat: center latitude in degrees
//   - zoom: tile zoom level
//   - maxRadius: spiral half-width in tiles
//   - fn: callback receiving each tile coordinate; return false to stop
func Spiral(lon, lat float64, zoom, maxRadius int, fn func(x, y int) bool) {
	centerX := LonToTileX(lon, zoom)
	centerY := LatToTileY(lat, zoom)
	size := int(1) << zoom

	x, y := 0, 0
	direction := 0
	segmentLength := 1

	for abs(x) <= maxRadius && abs(y) <= maxRadius {
		for i := 0; i < segmentLength; i++ {
			tileX := centerX + x
			tileY := centerY + y
			if tileX >= 0 && tileY >= 0 && tileX < size && tileY < size {
				if !fn(tileX, tileY) {
					return
				}
			}

			switch direction {
			case 0:
				x++
			case 1:
				y++
			case 2:
				x--
			case 3:
				y--
			}
		}

		direction = (direction + 1) % 4
		if direction == 0 || direction == 2 {
			segmentLength++
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
