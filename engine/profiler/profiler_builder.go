package profiler

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
// Use the With* functions to create options.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often the profiler logs a stats line.
//
// Parameters:
//   - interval: the reporting interval (ignored when not positive)
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithStreamStats sets the callback sampled for streaming statistics each
// time the profiler reports.
//
// Parameters:
//   - stats: function returning the current streaming snapshot
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithStreamStats(stats func() StreamStats) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.stats = stats
	}
}

// WithLogger sets the logger stats lines are written to. Defaults to the
// logrus standard logger.
//
// Parameters:
//   - log: the logger to use
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(log *logrus.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if log != nil {
			p.log = log
		}
	}
}
