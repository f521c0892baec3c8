package pipeline

import (
	"sync"
	"time"

	"github.com/tellus-gl/tellus-go/engine/scene"
)

type fadeJob struct {
	fader    scene.Fader
	from     float64
	to       float64
	start    time.Time
	duration time.Duration
	done     func()
}

// Fades steps tile opacity transitions. Meshes that do not implement
// scene.Fader snap to the target immediately. One transition exists per
// mesh; starting a new one replaces the old without firing its completion.
type Fades struct {
	mu   *sync.Mutex
	jobs map[scene.Mesh]*fadeJob
	now  func() time.Time
}

// NewFades builds an empty fade registry.
func NewFades() *Fades {
	return &Fades{
		mu:   &sync.Mutex{},
		jobs: make(map[scene.Mesh]*fadeJob),
		now:  time.Now,
	}
}

// FadeIn transitions a mesh's opacity to 1.
//
// Parameters:
//   - m: the mesh to fade
//   - duration: transition length; <= 0 snaps immediately
//   - done: called once the transition completes, may be nil
func (f *Fades) FadeIn(m scene.Mesh, duration time.Duration, done func()) {
	f.start(m, 1, duration, done)
}

// FadeOut transitions a mesh's opacity to 0.
//
// Parameters:
//   - m: the mesh to fade
//   - duration: transition length; <= 0 snaps immediately
//   - done: called once the transition completes, may be nil
func (f *Fades) FadeOut(m scene.Mesh, duration time.Duration, done func()) {
	f.start(m, 0, duration, done)
}

func (f *Fades) start(m scene.Mesh, to float64, duration time.Duration, done func()) {
	fader, ok := m.(scene.Fader)
	if !ok || duration <= 0 {
		if ok {
			fader.SetOpacity(to)
		}
		if done != nil {
			done()
		}
		return
	}

	f.mu.Lock()
	f.jobs[m] = &fadeJob{
		fader:    fader,
		from:     fader.Opacity(),
		to:       to,
		start:    f.now(),
		duration: duration,
		done:     done,
	}
	f.mu.Unlock()
}

// Step advances every active transition to the current time, firing
// completion callbacks for those that finished.
//
// Returns:
//   - int: the number of transitions still active
func (f *Fades) Step() int {
	var finished []func()

	f.mu.Lock()
	now := f.now()
	for m, job := range f.jobs {
		t := float64(now.Sub(job.start)) / float64(job.duration)
		if t >= 1 {
			job.fader.SetOpacity(job.to)
			if job.done != nil {
				finished = append(finished, job.done)
			}
			delete(f.jobs, m)
			continue
		}
		if t < 0 {
			t = 0
		}
		job.fader.SetOpacity(job.from + (job.to-job.from)*t)
	}
	remaining := len(f.jobs)
	f.mu.Unlock()

	for _, done := range finished {
		done()
	}
	return remaining
}

// Active returns the number of transitions in progress.
func (f *Fades) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

// Cancel drops a mesh's transition without firing its completion.
func (f *Fades) Cancel(m scene.Mesh) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, m)
}

// Clear drops every transition without firing completions.
func (f *Fades) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = make(map[scene.Mesh]*fadeJob)
}
