package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tellus-gl/tellus-go/engine/camera"
	"github.com/tellus-gl/tellus-go/engine/loader"
	"github.com/tellus-gl/tellus-go/engine/pipeline"
)

// EngineBuilderOption configures an engine during construction.
type EngineBuilderOption func(*engineImpl)

// WithCamera sets the camera the engine streams against. Required.
func WithCamera(cam camera.Camera) EngineBuilderOption {
	return func(e *engineImpl) {
		e.cam = cam
	}
}

// WithURLTemplate sets the tile imagery URL template. It must contain {z},
// {x} and {y} placeholders. Required.
func WithURLTemplate(template string) EngineBuilderOption {
	return func(e *engineImpl) {
		e.urlTemplate = template
	}
}

// WithCreateTileMesh sets the mesh-construction function. Required.
func WithCreateTileMesh(fn loader.CreateTileMeshFunc) EngineBuilderOption {
	return func(e *engineImpl) {
		e.createMesh = fn
	}
}

// WithZoomRange sets the streamed zoom levels, inclusive. Defaults to
// [3, 13].
func WithZoomRange(minZoom, maxZoom int) EngineBuilderOption {
	return func(e *engineImpl) {
		e.minZoom = minZoom
		e.maxZoom = maxZoom
	}
}

// WithFallbackZoom sets the permanent fallback layer's zoom level.
// Defaults to 3.
func WithFallbackZoom(zoom int) EngineBuilderOption {
	return func(e *engineImpl) {
		e.fallbackZoom = zoom
	}
}

// WithGlobeRadius sets the globe radius tile meshes are projected onto.
// Defaults to 1.
func WithGlobeRadius(radius float64) EngineBuilderOption {
	return func(e *engineImpl) {
		if radius > 0 {
			e.globeRadius = radius
		}
	}
}

// WithConfig sets the streaming behavior configuration. Defaults to
// pipeline.DefaultConfig.
func WithConfig(cfg pipeline.Config) EngineBuilderOption {
	return func(e *engineImpl) {
		e.cfg = cfg
	}
}

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(log *logrus.Logger) EngineBuilderOption {
	return func(e *engineImpl) {
		if log != nil {
			e.log = log
		}
	}
}

// WithDebounce sets the minimum interval between Update passes. Zero
// disables debouncing. Defaults to 100ms.
func WithDebounce(d time.Duration) EngineBuilderOption {
	return func(e *engineImpl) {
		if d >= 0 {
			e.debounce = d
		}
	}
}

// WithCacheCapacity sets the mesh cache capacity. Zero keeps the cache's
// default.
func WithCacheCapacity(capacity int) EngineBuilderOption {
	return func(e *engineImpl) {
		if capacity > 0 {
			e.cacheCapacity = capacity
		}
	}
}

// WithMaxParallelLoads bounds concurrent tile loads. Defaults to 6.
func WithMaxParallelLoads(n int) EngineBuilderOption {
	return func(e *engineImpl) {
		if n > 0 {
			e.maxParallel = n
		}
	}
}
