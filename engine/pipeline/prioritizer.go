package pipeline

import (
	"sort"

	"github.com/tellus-gl/tellus-go/engine/tile"
)

// prioritize sorts visibility-filtered candidates by screen-space distance,
// center first, and splits them at the per-zoom load cap. Higher zoom
// levels commit fewer tiles per pass since their loads are the most
// expensive and the most likely to be invalidated by camera motion.
//
// Parameters:
//   - candidates: visibility-accepted candidates with screen distances
//   - zoom: the pipeline's zoom level
//
// Returns:
//   - []Candidate: the tiles to load this pass
//   - []Candidate: overflow beyond the cap, in priority order
func prioritize(candidates []Candidate, zoom int) ([]Candidate, []Candidate) {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScreenDist < sorted[j].ScreenDist
	})

	limit := tile.LoadCap(zoom)
	if len(sorted) <= limit {
		return sorted, nil
	}
	return sorted[:limit], sorted[limit:]
}
