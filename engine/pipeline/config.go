package pipeline

import (
	"time"

	"github.com/tellus-gl/tellus-go/engine/visibility"
)

// Config selects the behavior branches of the tile pipelines. It is
// immutable once the engine is constructed.
type Config struct {
	// FrustumCulling tests candidate bounding spheres against the widened
	// view frustum.
	FrustumCulling bool
	// DotFiltering rejects candidates outside the zoom-dependent view cone.
	DotFiltering bool
	// ScreenSpacePrioritization scores candidates by screen-space distance
	// and applies the per-zoom distance cap.
	ScreenSpacePrioritization bool
	// TileFade transitions tile opacity on attach and retire instead of
	// switching instantly.
	TileFade bool
	// StickyTiles retires a parent tile only once all four of its children
	// have loaded.
	StickyTiles bool
	// TilePrewarm loads near-miss candidates into the cache without
	// attaching them.
	TilePrewarm bool
	// DebugSpiral logs candidate generation bounds at debug level.
	DebugSpiral bool

	// PrewarmCount is the number of near-miss candidates prewarmed per pass.
	PrewarmCount int
	// FadeDuration is the length of opacity transitions.
	FadeDuration time.Duration
	// CandidateRadius overrides the per-zoom spiral search radius when in
	// [2, 32]. Zero selects the per-zoom default.
	CandidateRadius int
}

// DefaultConfig returns the configuration with every optimization enabled.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	return Config{
		FrustumCulling:            true,
		DotFiltering:              true,
		ScreenSpacePrioritization: true,
		TileFade:                  true,
		StickyTiles:               true,
		TilePrewarm:               true,
		PrewarmCount:              8,
		FadeDuration:              250 * time.Millisecond,
	}
}

func (c Config) visibilityConfig() visibility.Config {
	return visibility.Config{
		FrustumCulling:            c.FrustumCulling,
		DotFiltering:              c.DotFiltering,
		ScreenSpacePrioritization: c.ScreenSpacePrioritization,
	}
}
