package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tellus-gl/tellus-go/engine/loader"
	"github.com/tellus-gl/tellus-go/engine/queue"
	"github.com/tellus-gl/tellus-go/engine/scene"
	"github.com/tellus-gl/tellus-go/engine/tile"
)

// runLoader enqueues loads for the prioritized candidates and drains the
// task queue at the zoom level's concurrency limit. Candidates whose mesh
// is already built, cached or in flight
// skip the fetch; new enqueues stop once the per-zoom queue ceiling is
// reached so backlog stays bounded during fast camera motion.
func (p *pipelineImpl) runLoader(ctx context.Context, queued []Candidate) error {
	revision := p.Revision()
	overloaded := p.shared.Tasks.Len() >= tile.QueueCap(p.zoom)
	if overloaded && len(queued) > 0 {
		p.log.WithFields(logrus.Fields{
			"zoom":    p.zoom,
			"backlog": p.shared.Tasks.Len(),
		}).Debug("task queue at capacity, skipping new loads")
	}

	for _, c := range queued {
		if p.shared.Visible.Has(c.Key) {
			continue
		}
		if mesh, ok := p.shared.Loaded.Get(c.Key); ok {
			// Built on an earlier pass but never attached.
			p.attach(mesh, c)
			continue
		}
		if mesh, ok := p.shared.Cache.Get(c.Key); ok {
			p.attach(mesh, c)
			continue
		}
		if overloaded {
			continue
		}
		if !p.shared.Loaded.Begin(c.Key) {
			continue
		}
		p.shared.Tasks.Enqueue(queue.Item{
			Key:      c.Key,
			Zoom:     p.zoom,
			Revision: revision,
			Run:      p.loadTask(c, revision),
		})
	}

	return p.shared.Tasks.ProcessLimited(ctx, tile.ConcurrencyLimit(p.zoom))
}

// loadTask builds the queue task for one candidate: fetch and build the
// mesh, then attach it unless the pipeline's revision moved on while the
// load was in flight, in which case the mesh is cached for a later pass.
func (p *pipelineImpl) loadTask(c Candidate, revision int) queue.Task {
	return func(ctx context.Context) error {
		mesh, err := p.createMesh(ctx, loader.TileRequest{
			X:           c.X,
			Y:           c.Y,
			Zoom:        c.Zoom,
			URLTemplate: p.urlTemplate,
			Radius:      p.radius,
		})
		if err != nil {
			p.shared.Loaded.Fail(c.Key)
			return fmt.Errorf("loading tile %s: %w", c.Key, err)
		}
		mesh.SetKey(c.Key)

		if p.Revision() != revision {
			mesh.SetVisible(false)
			p.shared.Cache.Set(c.Key, mesh)
			p.shared.Loaded.Delete(c.Key)
			return nil
		}

		p.attach(mesh, c)
		return nil
	}
}

// attach parents a built mesh into the pipeline's group and updates the
// shared bookkeeping, then retires the tile's parent.
func (p *pipelineImpl) attach(mesh scene.Mesh, c Candidate) {
	mesh.SetVisible(true)
	if p.cfg.TileFade {
		if fader, ok := mesh.(scene.Fader); ok {
			fader.SetOpacity(0)
		}
		p.grp.Add(mesh)
		p.shared.Fades.FadeIn(mesh, p.cfg.FadeDuration, nil)
	} else {
		if fader, ok := mesh.(scene.Fader); ok {
			fader.SetOpacity(1)
		}
		p.grp.Add(mesh)
	}

	p.shared.Visible.Add(c.Key)
	if p.permanent {
		p.shared.Protected.Add(c.Key)
	}
	p.shared.Loaded.Complete(c.Key, mesh)
	p.shared.Cache.Set(c.Key, mesh)

	p.retireParent(c)
}

// retireParent removes the tile covering this candidate one zoom level up.
// In sticky mode the parent survives until all four of its children are in;
// otherwise it goes as soon as any child lands.
func (p *pipelineImpl) retireParent(c Candidate) {
	parent, ok := tile.ParentKey(c.Zoom, c.X, c.Y)
	if !ok {
		return
	}
	if !p.shared.Visible.Has(parent) {
		return
	}
	if p.cfg.StickyTiles {
		if !p.sticky.OnChildLoaded(parent, c.Key) {
			return
		}
	}
	p.retire(parent)
}

// retire fades out, detaches and uncaches a visible tile. Keys owned by the
// permanent fallback layer are left alone.
func (p *pipelineImpl) retire(key tile.Key) {
	if p.shared.Protected.Has(key) {
		return
	}
	p.shared.Visible.Delete(key)
	mesh, ok := p.shared.Loaded.Get(key)
	p.shared.Loaded.Delete(key)
	if !ok {
		if mesh, ok = p.shared.Cache.Get(key); !ok {
			return
		}
	}

	if p.cfg.TileFade {
		p.shared.Fades.FadeOut(mesh, p.cfg.FadeDuration, func() {
			scene.Detach(mesh)
			p.shared.Cache.Delete(key)
		})
		return
	}
	scene.Detach(mesh)
	p.shared.Cache.Delete(key)
}
