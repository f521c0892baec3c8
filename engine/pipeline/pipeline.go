package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tellus-gl/tellus-go/engine/camera"
	"github.com/tellus-gl/tellus-go/engine/loader"
	"github.com/tellus-gl/tellus-go/engine/queue"
	"github.com/tellus-gl/tellus-go/engine/scene"
	"github.com/tellus-gl/tellus-go/engine/tile"
	"github.com/tellus-gl/tellus-go/engine/visibility"
)

// staleScreenDistance is the projected distance beyond which a high-zoom
// tile is detached eagerly instead of waiting out a removal countdown.
const staleScreenDistance = 2.5

// staleCleanupZoom is the lowest zoom level the eager stale cleanup applies
// to.
const staleCleanupZoom = 10

// Pipeline streams tiles for one zoom level. Update runs one full pass:
// stale-queue filtering, candidate generation, visibility filtering,
// prioritization, optional prewarming, removal bookkeeping, and loading.
type Pipeline interface {
	// Zoom returns the zoom level this pipeline streams.
	Zoom() int

	// Revision returns the pipeline's current revision.
	Revision() int

	// BumpRevision invalidates in-flight candidate work after a camera
	// change.
	BumpRevision()

	// Update runs one streaming pass against the current camera state.
	//
	// Parameters:
	//   - ctx: cancels queue draining and in-flight loads
	//
	// Returns:
	//   - error: ctx's error if the pass was cancelled, nil otherwise
	Update(ctx context.Context) error

	// LoadAllTiles loads the full tile grid at this zoom level, nearest the
	// camera direction first. Used for the permanent fallback layer.
	//
	// Parameters:
	//   - ctx: cancels queue draining and in-flight loads
	//
	// Returns:
	//   - error: ctx's error if the drain was cancelled, nil otherwise
	LoadAllTiles(ctx context.Context) error

	// Group returns the scene group this pipeline attaches meshes to.
	Group() *scene.Group

	// MarkAllForRemoval starts the removal countdown for every visible tile
	// at this zoom level. Used when collapsing the level on zoom-out.
	MarkAllForRemoval()

	// ProcessRemovals drives one removal step outside a full update pass.
	//
	// Returns:
	//   - int: the number of tiles removed
	ProcessRemovals() int

	// PendingRemovals returns the number of tiles counting down to removal.
	PendingRemovals() int

	// SetRemovalParams adjusts the removal countdown and batch size.
	//
	// Parameters:
	//   - frames: countdown length in removal steps
	//   - batch: max removals per step
	SetRemovalParams(frames, batch int)

	// ResetMemo drops this zoom level's load memo and sticky bookkeeping
	// without detaching anything. Attached tiles stay visible and are
	// re-adopted through the cache on the next pass.
	ResetMemo()

	// Clear detaches every mesh in this pipeline's group and drops this
	// zoom level's keys from the shared visible set, memo and sticky
	// bookkeeping. Other pipelines' keys are untouched.
	Clear()

	// Step advances fade transitions. Update does this itself; Step exists
	// for ticks between passes.
	Step()
}

type pipelineImpl struct {
	mu *sync.Mutex

	zoom        int
	radius      float64
	permanent   bool
	urlTemplate string
	cam         camera.Camera
	createMesh  loader.CreateTileMeshFunc
	grp         *scene.Group
	shared      *Shared
	cfg         Config
	log         *logrus.Logger

	sticky  *Sticky
	remover *Remover

	revision int
}

var _ Pipeline = &pipelineImpl{}

func (p *pipelineImpl) Zoom() int {
	return p.zoom
}

func (p *pipelineImpl) Revision() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revision
}

func (p *pipelineImpl) BumpRevision() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revision++
}

func (p *pipelineImpl) Group() *scene.Group {
	return p.grp
}

func (p *pipelineImpl) Update(ctx context.Context) error {
	p.shared.Tasks.FilterZoomRevision(p.zoom, p.Revision())

	candidates, fringe := p.generateCandidates()

	pass := visibility.NewFilter(p.cam, p.radius, p.cfg.visibilityConfig()).Begin()
	wanted := make(map[tile.Key]struct{}, len(candidates))
	visibleCandidates := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		wanted[c.Key] = struct{}{}
		res := pass.Test(c.X, c.Y, p.zoom, p.shared.Visible)
		if res.Visible {
			c.ScreenDist = res.ScreenDist
			visibleCandidates = append(visibleCandidates, c)
		}
	}

	queued, overflow := prioritize(visibleCandidates, p.zoom)
	if p.cfg.TilePrewarm {
		p.prewarm(overflow)
	}

	p.reconcileRemover(wanted, fringe)
	p.remover.Process(p.retire)

	if err := p.runLoader(ctx, queued); err != nil {
		return err
	}

	p.shared.Fades.Step()
	return nil
}

// reconcileRemover compares the shared visible set against this pass's
// candidates: tiles still wanted have any countdown cancelled, tiles no
// longer wanted start one. Visible entries whose mesh was evicted from the
// cache behind our back are dropped, and far-off-center high-zoom tiles are
// retired immediately.
func (p *pipelineImpl) reconcileRemover(wanted map[tile.Key]struct{}, fringe []tile.Key) {
	p.remover.SetFringe(fringe)

	camDistance := p.cam.Distance()
	for _, key := range p.shared.Visible.Keys() {
		if key.Zoom() != p.zoom {
			continue
		}

		// Keys the permanent fallback layer attached share this zoom's
		// namespace but are never ours to remove.
		if p.shared.Protected.Has(key) {
			p.remover.CancelPending(key)
			continue
		}

		if mesh, ok := p.shared.Loaded.Get(key); ok && mesh.Parent() == nil {
			p.shared.Visible.Delete(key)
			p.shared.Loaded.Delete(key)
			p.remover.CancelPending(key)
			continue
		}

		if p.zoom >= staleCleanupZoom && p.screenDistance(key, camDistance) > staleScreenDistance {
			p.remover.CancelPending(key)
			p.retire(key)
			continue
		}

		if _, ok := wanted[key]; ok {
			p.remover.CancelPending(key)
			continue
		}
		p.remover.MarkPending(key)
	}
}

func (p *pipelineImpl) screenDistance(key tile.Key, camDistance float64) float64 {
	zoom, x, y, ok := key.Coords()
	if !ok {
		return 0
	}
	sphere := tile.BoundingSphere(x, y, zoom, p.radius, camDistance)
	return p.cam.ScreenDistance(sphere.Center)
}

func (p *pipelineImpl) LoadAllTiles(ctx context.Context) error {
	n := 1 << p.zoom
	forward := p.cam.CenterDirection()

	type gridTile struct {
		c   Candidate
		dot float64
	}
	grid := make([]gridTile, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			bounds := tile.ToLatLonBounds(x, y, p.zoom)
			lat, lon := bounds.Center()
			dir := tile.LatLonToUnitVector(lat, lon)
			grid = append(grid, gridTile{
				c:   Candidate{X: x, Y: y, Zoom: p.zoom, Key: tile.NewKey(p.zoom, x, y)},
				dot: dir.Dot(forward),
			})
		}
	}
	sort.SliceStable(grid, func(i, j int) bool {
		return grid[i].dot > grid[j].dot
	})

	revision := p.Revision()
	for _, g := range grid {
		if p.shared.Visible.Has(g.c.Key) {
			continue
		}
		if mesh, ok := p.shared.Cache.Get(g.c.Key); ok {
			p.attach(mesh, g.c)
			continue
		}
		if !p.shared.Loaded.Begin(g.c.Key) {
			continue
		}
		p.shared.Tasks.Enqueue(queue.Item{
			Key:      g.c.Key,
			Zoom:     p.zoom,
			Revision: revision,
			Run:      p.loadTask(g.c, revision),
		})
	}

	if err := p.shared.Tasks.ProcessLimited(ctx, tile.ConcurrencyLimit(p.zoom)); err != nil {
		return err
	}
	p.shared.Fades.Step()
	return nil
}

func (p *pipelineImpl) MarkAllForRemoval() {
	// The last pass's fringe set is stale once the whole level collapses,
	// and no further pass will reconcile it.
	p.remover.SetFringe(nil)

	var keys []tile.Key
	for _, key := range p.shared.Visible.Keys() {
		if key.Zoom() == p.zoom && !p.shared.Protected.Has(key) {
			keys = append(keys, key)
		}
	}
	p.remover.MarkAll(keys)
}

func (p *pipelineImpl) ProcessRemovals() int {
	removed := p.remover.Process(p.retire)
	p.shared.Fades.Step()
	return removed
}

func (p *pipelineImpl) PendingRemovals() int {
	return p.remover.Pending()
}

func (p *pipelineImpl) SetRemovalParams(frames, batch int) {
	p.remover.SetParams(frames, batch)
}

func (p *pipelineImpl) ResetMemo() {
	p.shared.Loaded.ResetZoom(p.zoom)
	p.sticky.Clear()
}

func (p *pipelineImpl) Clear() {
	for _, m := range p.grp.Children() {
		p.shared.Fades.Cancel(m)
		p.shared.Visible.Delete(m.Key())
		p.shared.Protected.Delete(m.Key())
	}
	p.grp.Clear()
	p.shared.Loaded.ResetZoom(p.zoom)
	p.sticky.Clear()
	p.remover.Clear()
}

func (p *pipelineImpl) Step() {
	p.shared.Fades.Step()
}
