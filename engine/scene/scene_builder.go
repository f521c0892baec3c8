package scene

// RootBuilderOption is a functional option for configuring a Root.
// Use the With* functions to create options.
type RootBuilderOption func(r *root)

// WithZoomRange sets the inclusive zoom range the root creates groups for.
// Defaults to [3, 13].
//
// Parameters:
//   - minZoom: coarsest zoom level
//   - maxZoom: finest zoom level
//
// Returns:
//   - RootBuilderOption: option function to apply
func WithZoomRange(minZoom, maxZoom int) RootBuilderOption {
	return func(r *root) {
		if minZoom > maxZoom {
			minZoom, maxZoom = maxZoom, minZoom
		}
		r.minZoom = minZoom
		r.maxZoom = maxZoom
	}
}
