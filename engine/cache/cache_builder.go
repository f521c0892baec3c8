package cache

// MeshCacheBuilderOption is a functional option for configuring a MeshCache.
// Use the With* functions to create options.
type MeshCacheBuilderOption func(c *meshCache)

// WithCapacity sets the maximum number of cached meshes. Values below 1 are
// ignored. Defaults to 512.
//
// Parameters:
//   - capacity: the maximum entry count
//
// Returns:
//   - MeshCacheBuilderOption: option function to apply
func WithCapacity(capacity int) MeshCacheBuilderOption {
	return func(c *meshCache) {
		if capacity >= 1 {
			c.capacity = capacity
		}
	}
}
