package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/tellus-gl/tellus-go/engine/tile"
)

// searchRadius returns the spiral radius for this pass. A configured
// override wins; otherwise the per-zoom table applies, clamped at high zoom
// where the tile grid is enormous and the view cone admits only tiles
// nearly dead-ahead.
func (p *pipelineImpl) searchRadius() int {
	if p.cfg.CandidateRadius >= 2 && p.cfg.CandidateRadius <= 32 {
		return p.cfg.CandidateRadius
	}
	r := tile.SearchRadius(p.zoom)
	if p.zoom >= 10 && r > 6 {
		r = 6
	}
	return r
}

// generateCandidates enumerates candidate tiles in an expanding square
// spiral around the camera's surface point, nearest first, capped at three
// times the per-zoom tile budget.
//
// Returns:
//   - []Candidate: the candidates in spiral order
//   - []tile.Key: keys on the spiral's outermost ring, exempt from removal
func (p *pipelineImpl) generateCandidates() ([]Candidate, []tile.Key) {
	lon := p.cam.Longitude()
	lat := p.cam.Latitude()
	radius := p.searchRadius()
	maxCandidates := tile.MaxTilesToLoad(p.zoom) * 3

	cx := tile.LonToTileX(lon, p.zoom)
	cy := tile.LatToTileY(lat, p.zoom)

	candidates := make([]Candidate, 0, maxCandidates)
	var fringe []tile.Key
	tile.Spiral(lon, lat, p.zoom, radius, func(x, y int) bool {
		key := tile.NewKey(p.zoom, x, y)
		dx, dy := x-cx, y-cy
		if dx == radius || dx == -radius || dy == radius || dy == -radius {
			fringe = append(fringe, key)
		}
		candidates = append(candidates, Candidate{X: x, Y: y, Zoom: p.zoom, Key: key})
		return len(candidates) < maxCandidates
	})

	if p.cfg.DebugSpiral {
		p.log.WithFields(logrus.Fields{
			"zoom":       p.zoom,
			"center":     tile.NewKey(p.zoom, cx, cy),
			"radius":     radius,
			"candidates": len(candidates),
			"fringe":     len(fringe),
		}).Debug("candidate spiral")
	}
	return candidates, fringe
}
