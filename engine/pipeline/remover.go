package pipeline

import (
	"sync"

	"github.com/tellus-gl/tellus-go/engine/tile"
)

const (
	defaultFramesTillRemove = 24
	defaultRemovalsPerCall  = 4
)

// Remover schedules tile removal over time: a tile that falls out of view
// counts down for a number of frames before it is actually removed, and
// only a small batch of expired tiles is removed per call, so cache and
// scene churn never spikes in one frame. Tiles in the fringe set (the
// outermost candidate ring, prone to flicker under camera motion) are never
// marked.
type Remover struct {
	mu      *sync.Mutex
	pending map[tile.Key]int
	fringe  map[tile.Key]struct{}
	frames  int
	batch   int
}

// NewRemover builds a remover with the default countdown and batch size.
func NewRemover() *Remover {
	return &Remover{
		mu:      &sync.Mutex{},
		pending: make(map[tile.Key]int),
		fringe:  make(map[tile.Key]struct{}),
		frames:  defaultFramesTillRemove,
		batch:   defaultRemovalsPerCall,
	}
}

// SetParams adjusts the countdown length and per-call batch size. Zoom-out
// unloads widen the countdown and shrink the batch for a gentler collapse.
//
// Parameters:
//   - frames: countdown in Process calls before a marked tile expires, min 1
//   - batch: max removals per Process call, min 1
func (r *Remover) SetParams(frames, batch int) {
	if frames < 1 {
		frames = 1
	}
	if batch < 1 {
		batch = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = frames
	r.batch = batch
}

// SetFringe replaces the fringe exemption set.
func (r *Remover) SetFringe(keys []tile.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fringe = make(map[tile.Key]struct{}, len(keys))
	for _, k := range keys {
		r.fringe[k] = struct{}{}
	}
}

// MarkPending starts a key's removal countdown. Keys already pending keep
// their countdown; fringe keys are ignored.
func (r *Remover) MarkPending(key tile.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fringe[key]; ok {
		return
	}
	if _, ok := r.pending[key]; ok {
		return
	}
	r.pending[key] = r.frames
}

// CancelPending drops a key from the pending set. Called when a tile comes
// back into view before its countdown expires.
func (r *Remover) CancelPending(key tile.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, key)
}

// IsPending reports whether a key is counting down.
func (r *Remover) IsPending(key tile.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[key]
	return ok
}

// MarkAll starts the countdown for every given key except fringe-exempt
// ones. Used when collapsing a zoom level on zoom-out.
func (r *Remover) MarkAll(keys []tile.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		if _, ok := r.fringe[key]; ok {
			continue
		}
		if _, ok := r.pending[key]; ok {
			continue
		}
		r.pending[key] = r.frames
	}
}

// Pending returns the number of keys counting down.
func (r *Remover) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Process decrements every countdown and removes up to the batch limit of
// expired keys through the callback.
//
// Parameters:
//   - remove: performs the actual removal for one key
//
// Returns:
//   - int: the number of keys removed this call
func (r *Remover) Process(remove func(key tile.Key)) int {
	r.mu.Lock()
	var expired []tile.Key
	for key := range r.pending {
		r.pending[key]--
		if r.pending[key] <= 0 {
			expired = append(expired, key)
		}
	}
	if len(expired) > r.batch {
		expired = expired[:r.batch]
	}
	for _, key := range expired {
		delete(r.pending, key)
	}
	r.mu.Unlock()

	for _, key := range expired {
		remove(key)
	}
	return len(expired)
}

// Clear drops every pending countdown and the fringe set.
func (r *Remover) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[tile.Key]int)
	r.fringe = make(map[tile.Key]struct{})
}
