package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBuilderOption configures a renderer during construction.
type RendererBuilderOption func(*rendererImpl)

// WithDevice sets the wgpu device resources are created on. Required.
func WithDevice(device *wgpu.Device) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.device = device
	}
}

// WithQueue sets the wgpu queue uploads are submitted to. Defaults to the
// device's queue.
func WithQueue(queue *wgpu.Queue) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.queue = queue
	}
}
