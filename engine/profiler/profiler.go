// Package profiler tracks frame rate, memory, and tile-streaming
// statistics for the viewer, logging a summary line at a configurable
// interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// StreamStats is a snapshot of the streaming engine's load, sampled by
// the stats callback each time the profiler reports.
type StreamStats struct {
	// VisibleTiles is the number of tiles currently attached to the scene.
	VisibleTiles int

	// CachedMeshes is the number of meshes held by the shared cache.
	CachedMeshes int

	// QueuedLoads is the number of tile loads waiting in the task queue.
	QueuedLoads int

	// Zoom is the active zoom level.
	Zoom int
}

// Profiler tracks frame rate, memory, and streaming statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	stats func() StreamStats
	log   *logrus.Logger
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
	for _, opt := range options {
		opt(p)
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause
// times, and the streaming snapshot when a stats callback is set.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	// Calculate allocation rate (MB/sec)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// Calculate GC pause stats (last pause and max recent pause)
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		// Find max pause since last tick
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	fields := logrus.Fields{
		"fps":            fps,
		"heap_mb":        allocMB,
		"alloc_mb_per_s": allocRateMB,
		"gc_count":       gcCount,
		"gc_last_us":     lastPauseUs,
		"gc_max_us":      maxPauseUs,
		"sys_mb":         sysMB,
	}
	if p.stats != nil {
		s := p.stats()
		fields["zoom"] = s.Zoom
		fields["visible_tiles"] = s.VisibleTiles
		fields["cached_meshes"] = s.CachedMeshes
		fields["queued_loads"] = s.QueuedLoads
	}
	p.log.WithFields(fields).Info("frame stats")

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
