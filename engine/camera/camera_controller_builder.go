package camera

// OrbitControllerBuilderOption is a functional option for configuring an
// OrbitController. Use the With* functions to create options.
type OrbitControllerBuilderOption func(*orbitControllerImpl)

// WithLonLat sets the initial longitude and latitude in degrees.
//
// Parameters:
//   - lon: longitude in degrees
//   - lat: latitude in degrees
//
// Returns:
//   - OrbitControllerBuilderOption: option function to apply
func WithLonLat(lon, lat float64) OrbitControllerBuilderOption {
	return func(c *orbitControllerImpl) {
		c.lon = lon
		c.lat = lat
	}
}

// WithDistance sets the initial distance from the globe center.
//
// Parameters:
//   - d: initial distance
//
// Returns:
//   - OrbitControllerBuilderOption: option function to apply
func WithDistance(d float64) OrbitControllerBuilderOption {
	return func(c *orbitControllerImpl) {
		c.distance = d
	}
}

// WithDistanceRange sets the minimum and maximum orbit distance.
//
// Parameters:
//   - min: closest allowed distance from the globe center
//   - max: farthest allowed distance from the globe center
//
// Returns:
//   - OrbitControllerBuilderOption: option function to apply
func WithDistanceRange(min, max float64) OrbitControllerBuilderOption {
	return func(c *orbitControllerImpl) {
		if min > 0 && max > min {
			c.minDistance = min
			c.maxDistance = max
		}
	}
}
