package camera

import (
	"math"
	"sync"

	"github.com/tellus-gl/tellus-go/common"
)

// OrbitController drives a Camera around the globe using spherical
// coordinates: longitude, latitude, and distance from the globe center. It
// converts pointer drags and scroll input into orbital motion, scaling drag
// sensitivity down as the camera approaches the surface.
type OrbitController interface {
	// Rotate orbits the camera by the given deltas in degrees. Latitude is
	// clamped to the Web Mercator range.
	//
	// Parameters:
	//   - dLon: longitude delta in degrees
	//   - dLat: latitude delta in degrees
	Rotate(dLon, dLat float64)

	// Zoom scales the orbit distance. Factors below 1 move the camera
	// closer; the result is clamped to the configured range.
	//
	// Parameters:
	//   - factor: multiplier applied to the current distance
	Zoom(factor float64)

	// Longitude returns the current longitude in degrees.
	Longitude() float64

	// Latitude returns the current latitude in degrees.
	Latitude() float64

	// Distance returns the current distance from the globe center.
	Distance() float64

	// SetDistance sets the distance directly, clamped to the configured
	// range.
	//
	// Parameters:
	//   - d: new distance from the globe center
	SetDistance(d float64)

	// DragScale returns the degrees-per-pixel factor appropriate for the
	// current distance, so drags cover less ground when zoomed in.
	DragScale() float64

	// Apply writes the controller's pose to the camera: position on the
	// orbit sphere, target at the globe center.
	//
	// Parameters:
	//   - cam: the camera to update
	Apply(cam Camera)
}

type orbitControllerImpl struct {
	mu *sync.Mutex

	lon      float64
	lat      float64
	distance float64

	minDistance float64
	maxDistance float64
}

var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController builds an orbit controller. Defaults: longitude 0,
// latitude 0, distance 3, clamped to [1.0005, 6].
//
// Parameters:
//   - options: optional configuration, see the With* builder functions
//
// Returns:
//   - OrbitController: the assembled controller
func NewOrbitController(options ...OrbitControllerBuilderOption) OrbitController {
	c := &orbitControllerImpl{
		mu:          &sync.Mutex{},
		distance:    3,
		minDistance: 1.0005,
		maxDistance: 6,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *orbitControllerImpl) Rotate(dLon, dLat float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lon += dLon
	for c.lon > 180 {
		c.lon -= 360
	}
	for c.lon < -180 {
		c.lon += 360
	}
	c.lat = common.Clamp(c.lat+dLat, -85.0511, 85.0511)
}

func (c *orbitControllerImpl) Zoom(factor float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if factor <= 0 {
		return
	}
	c.distance = common.Clamp(c.distance*factor, c.minDistance, c.maxDistance)
}

func (c *orbitControllerImpl) Longitude() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lon
}

func (c *orbitControllerImpl) Latitude() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lat
}

func (c *orbitControllerImpl) Distance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.distance
}

func (c *orbitControllerImpl) SetDistance(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distance = common.Clamp(d, c.minDistance, c.maxDistance)
}

func (c *orbitControllerImpl) DragScale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Altitude above a unit globe, floored so control never fully locks up.
	altitude := math.Max(c.distance-1.0, 0.0005)
	return altitude * 0.25
}

func (c *orbitControllerImpl) Apply(cam Camera) {
	c.mu.Lock()
	phi := (90.0 - c.lat) * math.Pi / 180.0
	theta := c.lon * math.Pi / 180.0
	d := c.distance
	c.mu.Unlock()

	sinPhi := math.Sin(phi)
	cam.SetPosition(common.Vec3{
		X: d * sinPhi * math.Sin(theta),
		Y: d * math.Cos(phi),
		Z: d * sinPhi * math.Cos(theta),
	})
	cam.SetTarget(common.Vec3{})
}
