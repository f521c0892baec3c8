package pipeline

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tellus-gl/tellus-go/engine/camera"
	"github.com/tellus-gl/tellus-go/engine/loader"
	"github.com/tellus-gl/tellus-go/engine/scene"
)

// PipelineBuilderOption configures a pipeline during construction.
type PipelineBuilderOption func(*pipelineImpl)

// NewPipeline builds the streaming pipeline for one zoom level.
//
// Parameters:
//   - options: configuration, see the With* builder functions. Camera,
//     create-mesh function, group, shared state and URL template are
//     required.
//
// Returns:
//   - Pipeline: the assembled pipeline
//   - error: non-nil when a required collaborator is missing
func NewPipeline(options ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipelineImpl{
		mu:      &sync.Mutex{},
		zoom:    0,
		radius:  1,
		cfg:     DefaultConfig(),
		sticky:  NewSticky(),
		remover: NewRemover(),
	}
	for _, opt := range options {
		opt(p)
	}

	if p.cam == nil {
		return nil, fmt.Errorf("pipeline zoom %d: camera is required", p.zoom)
	}
	if p.createMesh == nil {
		return nil, fmt.Errorf("pipeline zoom %d: create tile mesh function is required", p.zoom)
	}
	if p.grp == nil {
		return nil, fmt.Errorf("pipeline zoom %d: scene group is required", p.zoom)
	}
	if p.shared == nil {
		return nil, fmt.Errorf("pipeline zoom %d: shared state is required", p.zoom)
	}
	if p.urlTemplate == "" {
		return nil, fmt.Errorf("pipeline zoom %d: url template is required", p.zoom)
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	return p, nil
}

// WithZoom sets the zoom level the pipeline streams.
func WithZoom(zoom int) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		if zoom >= 0 {
			p.zoom = zoom
		}
	}
}

// WithGlobeRadius sets the globe radius meshes are projected onto.
func WithGlobeRadius(radius float64) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		if radius > 0 {
			p.radius = radius
		}
	}
}

// WithPermanent marks the pipeline's tiles as protected: keys it attaches
// are recorded in the shared protected set and no pipeline will retire
// them. Used for the fallback base layer.
func WithPermanent(permanent bool) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.permanent = permanent
	}
}

// WithURLTemplate sets the tile imagery URL template.
func WithURLTemplate(template string) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.urlTemplate = template
	}
}

// WithCamera sets the camera candidates are generated and tested against.
func WithCamera(cam camera.Camera) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.cam = cam
	}
}

// WithCreateTileMesh sets the mesh-construction function.
func WithCreateTileMesh(fn loader.CreateTileMeshFunc) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.createMesh = fn
	}
}

// WithGroup sets the scene group loaded meshes attach to.
func WithGroup(g *scene.Group) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.grp = g
	}
}

// WithShared sets the engine-wide shared state.
func WithShared(s *Shared) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.shared = s
	}
}

// WithConfig sets the behavior configuration.
func WithConfig(cfg Config) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		if log != nil {
			p.log = log
		}
	}
}
