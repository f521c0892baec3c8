package pipeline

import (
	"context"
	"fmt"

	"github.com/tellus-gl/tellus-go/engine/loader"
	"github.com/tellus-gl/tellus-go/engine/queue"
)

// prewarm enqueues cache-only loads for near-miss candidates: tiles that
// passed visibility but fell past the load cap. The built meshes land in
// the cache with visibility off and are never attached, so a later pass
// that wants them attaches instantly.
func (p *pipelineImpl) prewarm(overflow []Candidate) {
	count := p.cfg.PrewarmCount
	if count <= 0 || len(overflow) == 0 {
		return
	}
	if count > len(overflow) {
		count = len(overflow)
	}

	revision := p.Revision()
	for _, c := range overflow[:count] {
		if p.shared.Visible.Has(c.Key) || p.shared.Cache.Has(c.Key) {
			continue
		}
		if !p.shared.Loaded.Begin(c.Key) {
			continue
		}

		candidate := c
		p.shared.Tasks.Enqueue(queue.Item{
			Key:      candidate.Key,
			Zoom:     p.zoom,
			Revision: revision,
			Run: func(ctx context.Context) error {
				mesh, err := p.createMesh(ctx, loader.TileRequest{
					X:           candidate.X,
					Y:           candidate.Y,
					Zoom:        candidate.Zoom,
					URLTemplate: p.urlTemplate,
					Radius:      p.radius,
				})
				if err != nil {
					p.shared.Loaded.Fail(candidate.Key)
					return fmt.Errorf("prewarming tile %s: %w", candidate.Key, err)
				}
				mesh.SetKey(candidate.Key)
				mesh.SetVisible(false)
				p.shared.Cache.Set(candidate.Key, mesh)
				p.shared.Loaded.Delete(candidate.Key)
				return nil
			},
		})
	}
}
