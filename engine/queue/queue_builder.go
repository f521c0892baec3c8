package queue

import "github.com/sirupsen/logrus"

// TaskQueueBuilderOption is a functional option for configuring a TaskQueue.
// Use the With* functions to create options.
type TaskQueueBuilderOption func(q *taskQueue)

// WithMaxParallel sets how many tasks a Process batch runs concurrently.
// Values below 1 are ignored. Defaults to 6.
//
// Parameters:
//   - n: the batch size
//
// Returns:
//   - TaskQueueBuilderOption: option function to apply
func WithMaxParallel(n int) TaskQueueBuilderOption {
	return func(q *taskQueue) {
		if n >= 1 {
			q.maxParallel = n
		}
	}
}

// WithYield sets the callback invoked between batches during a drain,
// letting the host hand control back to its frame loop. Defaults to no-op.
//
// Parameters:
//   - yield: the callback to invoke
//
// Returns:
//   - TaskQueueBuilderOption: option function to apply
func WithYield(yield func()) TaskQueueBuilderOption {
	return func(q *taskQueue) {
		q.yield = yield
	}
}

// WithLogger sets the logger used for task failures. Defaults to the
// logrus standard logger.
//
// Parameters:
//   - log: the logger to use
//
// Returns:
//   - TaskQueueBuilderOption: option function to apply
func WithLogger(log *logrus.Logger) TaskQueueBuilderOption {
	return func(q *taskQueue) {
		q.log = log
	}
}
