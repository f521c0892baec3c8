// package engine orchestrates tile streaming for a textured globe: it owns
// one streaming pipeline per zoom level, estimates the active zoom from the
// camera distance, invalidates in-flight work when the camera moves, and
// keeps a permanent low-zoom fallback layer underneath everything else.
package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tellus-gl/tellus-go/engine/cache"
	"github.com/tellus-gl/tellus-go/engine/camera"
	"github.com/tellus-gl/tellus-go/engine/loader"
	"github.com/tellus-gl/tellus-go/engine/pipeline"
	"github.com/tellus-gl/tellus-go/engine/queue"
	"github.com/tellus-gl/tellus-go/engine/scene"
	"github.com/tellus-gl/tellus-go/engine/tile"
)

// Pose deltas below these thresholds count as "camera unchanged" and do not
// bump the revision.
const (
	posePositionEpsilon  = 2e-4
	poseDirectionEpsilon = 2e-5
)

// Zoom-out removals run with a widened countdown and a smaller batch so a
// collapsing level fades away instead of vanishing in one frame.
const (
	gentleRemovalFrames = 36
	gentleRemovalBatch  = 2
)

// bandBufferFraction widens each zoom band's edges when deciding whether to
// leave the current zoom, damping oscillation while the camera distance
// hovers near a boundary.
const bandBufferFraction = 0.1

// engineImpl implements the Engine interface.
type engineImpl struct {
	mu *sync.Mutex

	cam         camera.Camera
	urlTemplate string
	createMesh  loader.CreateTileMeshFunc

	minZoom      int
	maxZoom      int
	fallbackZoom int
	globeRadius  float64
	cfg          pipeline.Config
	log          *logrus.Logger

	debounce      time.Duration
	cacheCapacity int
	maxParallel   int

	root      scene.Root
	shared    *pipeline.Shared
	pipelines map[int]pipeline.Pipeline
	fallback  pipeline.Pipeline

	currentZoom int
	lastPose    camera.Pose
	havePose    bool
	lastUpdate  time.Time
}

// Engine streams map tiles onto a globe. Construct it with NewEngine, call
// LoadInitialTiles once, then drive Update on camera changes and Tick
// between them.
type Engine interface {
	// LoadInitialTiles populates the permanent fallback layer and runs one
	// pass of the initially estimated zoom level's pipeline.
	//
	// Parameters:
	//   - ctx: cancels the initial loads
	//
	// Returns:
	//   - error: ctx's error if loading was cancelled, nil otherwise
	LoadInitialTiles(ctx context.Context) error

	// Update runs one camera-driven streaming pass: re-estimates the zoom
	// level, bumps the revision if the camera moved, collapses levels on
	// zoom-out, and drives the active pipeline plus the next finer level.
	// Calls arriving inside the debounce interval are skipped.
	//
	// Parameters:
	//   - ctx: cancels queue draining and in-flight loads
	//
	// Returns:
	//   - error: ctx's error if the pass was cancelled, nil otherwise
	Update(ctx context.Context) error

	// Tick advances fade transitions and drains pending removals. Call it
	// every frame between Updates.
	Tick()

	// UnloadHigherZoomLevels marks every tile above the given zoom for
	// gradual removal.
	//
	// Parameters:
	//   - zoom: levels strictly above this are collapsed
	UnloadHigherZoomLevels(zoom int)

	// Clear detaches every streamed tile and resets all pipelines. The
	// fallback layer is cleared too; call LoadInitialTiles to repopulate.
	Clear()

	// CurrentZoom returns the zoom level currently being streamed.
	CurrentZoom() int

	// Camera returns the camera the engine streams against.
	Camera() camera.Camera

	// Root returns the scene root holding the per-zoom tile groups.
	Root() scene.Root

	// Config returns the engine's behavior configuration.
	Config() pipeline.Config

	// Pipeline returns the streaming pipeline for a zoom level.
	//
	// Parameters:
	//   - zoom: the zoom level
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	//   - bool: false if the zoom is outside the engine's range
	Pipeline(zoom int) (pipeline.Pipeline, bool)

	// FallbackPipeline returns the permanent fallback layer's pipeline.
	FallbackPipeline() pipeline.Pipeline

	// VisibleTileKeys returns a snapshot of every tile key currently
	// attached and shown.
	VisibleTileKeys() []tile.Key

	// CachedMeshCount returns the number of meshes held by the shared cache.
	CachedMeshCount() int

	// QueuedLoadCount returns the number of tile loads waiting in the task
	// queue.
	QueuedLoadCount() int
}

var _ Engine = &engineImpl{}

// NewEngine builds a tile streaming engine.
//
// Parameters:
//   - options: configuration, see the With* builder functions. Camera, URL
//     template and mesh-construction function are required.
//
// Returns:
//   - Engine: the assembled engine
//   - error: non-nil when a required collaborator is missing or invalid
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engineImpl{
		mu:           &sync.Mutex{},
		minZoom:      tile.BaseZoom,
		maxZoom:      13,
		fallbackZoom: tile.BaseZoom,
		globeRadius:  1,
		cfg:          pipeline.DefaultConfig(),
		debounce:     100 * time.Millisecond,
		maxParallel:  6,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.cam == nil {
		return nil, fmt.Errorf("engine: camera is required")
	}
	if e.createMesh == nil {
		return nil, fmt.Errorf("engine: create tile mesh function is required")
	}
	for _, placeholder := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(e.urlTemplate, placeholder) {
			return nil, fmt.Errorf("engine: url template %q missing %s placeholder", e.urlTemplate, placeholder)
		}
	}
	if e.minZoom > e.maxZoom {
		return nil, fmt.Errorf("engine: zoom range [%d, %d] is inverted", e.minZoom, e.maxZoom)
	}
	if e.fallbackZoom < e.minZoom || e.fallbackZoom > e.maxZoom {
		return nil, fmt.Errorf("engine: fallback zoom %d outside range [%d, %d]", e.fallbackZoom, e.minZoom, e.maxZoom)
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}

	queueOptions := []queue.TaskQueueBuilderOption{queue.WithLogger(e.log), queue.WithMaxParallel(e.maxParallel)}
	cacheOptions := []cache.MeshCacheBuilderOption{}
	if e.cacheCapacity > 0 {
		cacheOptions = append(cacheOptions, cache.WithCapacity(e.cacheCapacity))
	}
	e.shared = pipeline.NewShared(queue.NewTaskQueue(queueOptions...), cache.NewMeshCache(cacheOptions...))
	e.root = scene.NewRoot(scene.WithZoomRange(e.minZoom, e.maxZoom))

	e.pipelines = make(map[int]pipeline.Pipeline, e.maxZoom-e.minZoom+1)
	for zoom := e.minZoom; zoom <= e.maxZoom; zoom++ {
		pl, err := e.newPipeline(zoom, e.root.Group(zoom), false)
		if err != nil {
			return nil, err
		}
		e.pipelines[zoom] = pl
	}
	fallback, err := e.newPipeline(e.fallbackZoom, e.root.FallbackGroup(), true)
	if err != nil {
		return nil, err
	}
	e.fallback = fallback

	e.currentZoom = e.clampZoom(tile.EstimateZoom(e.cam.Distance()))
	return e, nil
}

func (e *engineImpl) newPipeline(zoom int, grp *scene.Group, permanent bool) (pipeline.Pipeline, error) {
	return pipeline.NewPipeline(
		pipeline.WithZoom(zoom),
		pipeline.WithPermanent(permanent),
		pipeline.WithGlobeRadius(e.globeRadius),
		pipeline.WithURLTemplate(e.urlTemplate),
		pipeline.WithCamera(e.cam),
		pipeline.WithCreateTileMesh(e.createMesh),
		pipeline.WithGroup(grp),
		pipeline.WithShared(e.shared),
		pipeline.WithConfig(e.cfg),
		pipeline.WithLogger(e.log),
	)
}

func (e *engineImpl) LoadInitialTiles(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.fallback.LoadAllTiles(ctx); err != nil {
		return err
	}

	e.currentZoom = e.clampZoom(tile.EstimateZoom(e.cam.Distance()))
	e.lastPose = e.cam.Pose()
	e.havePose = true
	e.lastUpdate = time.Now()
	return e.pipelines[e.currentZoom].Update(ctx)
}

func (e *engineImpl) Update(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if e.debounce > 0 && !e.lastUpdate.IsZero() && now.Sub(e.lastUpdate) < e.debounce {
		return nil
	}
	e.lastUpdate = now

	pose := e.cam.Pose()
	changed := !e.havePose || !pose.ApproxEqual(e.lastPose, posePositionEpsilon, poseDirectionEpsilon)
	e.lastPose = pose
	e.havePose = true

	newZoom := e.estimateZoom()
	if newZoom != e.currentZoom {
		e.shared.Tasks.Clear()
		if newZoom < e.currentZoom {
			e.unloadAbove(newZoom)
		}
		for zoom, pl := range e.pipelines {
			if zoom == newZoom || zoom == e.fallbackZoom {
				continue
			}
			pl.ResetMemo()
		}
		e.log.WithFields(logrus.Fields{
			"from": e.currentZoom,
			"to":   newZoom,
		}).Debug("zoom level changed")
		e.currentZoom = newZoom
	}

	active := e.pipelines[e.currentZoom]
	if changed {
		active.BumpRevision()
	}

	for zoom, pl := range e.pipelines {
		if zoom != e.currentZoom && pl.PendingRemovals() > 0 {
			pl.ProcessRemovals()
		}
	}

	if err := active.Update(ctx); err != nil {
		return err
	}
	if next, ok := e.pipelines[e.currentZoom+1]; ok {
		return next.Update(ctx)
	}
	return nil
}

// estimateZoom maps the camera distance to a zoom level, holding the
// current level while the distance sits inside its buffered band.
func (e *engineImpl) estimateZoom() int {
	dist := e.cam.Distance()
	estimate := e.clampZoom(tile.EstimateZoom(dist))
	if estimate == e.currentZoom {
		return estimate
	}
	if min, max, ok := tile.ZoomBand(e.currentZoom); ok {
		buffer := 0.0
		if !math.IsInf(max, 1) {
			buffer = (max - min) * bandBufferFraction
		}
		if dist >= min-buffer && dist <= max+buffer {
			return e.currentZoom
		}
	}
	return estimate
}

func (e *engineImpl) clampZoom(zoom int) int {
	if zoom < e.minZoom {
		return e.minZoom
	}
	if zoom > e.maxZoom {
		return e.maxZoom
	}
	return zoom
}

func (e *engineImpl) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, pl := range e.pipelines {
		if pl.PendingRemovals() > 0 {
			pl.ProcessRemovals()
		}
	}
	e.pipelines[e.currentZoom].Step()
}

func (e *engineImpl) UnloadHigherZoomLevels(zoom int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unloadAbove(zoom)
}

func (e *engineImpl) unloadAbove(zoom int) {
	for z, pl := range e.pipelines {
		if z <= zoom {
			continue
		}
		pl.SetRemovalParams(gentleRemovalFrames, gentleRemovalBatch)
		pl.MarkAllForRemoval()
		pl.ResetMemo()
	}
}

func (e *engineImpl) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.shared.Tasks.Clear()
	for _, pl := range e.pipelines {
		pl.Clear()
	}
	e.fallback.Clear()
	e.shared.Cache.Clear()
	e.havePose = false
	e.lastUpdate = time.Time{}
}

func (e *engineImpl) CurrentZoom() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentZoom
}

func (e *engineImpl) Camera() camera.Camera {
	return e.cam
}

func (e *engineImpl) Root() scene.Root {
	return e.root
}

func (e *engineImpl) Config() pipeline.Config {
	return e.cfg
}

func (e *engineImpl) Pipeline(zoom int) (pipeline.Pipeline, bool) {
	pl, ok := e.pipelines[zoom]
	return pl, ok
}

func (e *engineImpl) FallbackPipeline() pipeline.Pipeline {
	return e.fallback
}

func (e *engineImpl) VisibleTileKeys() []tile.Key {
	return e.shared.Visible.Keys()
}

func (e *engineImpl) CachedMeshCount() int {
	return e.shared.Cache.Len()
}

func (e *engineImpl) QueuedLoadCount() int {
	return e.shared.Tasks.Len()
}
