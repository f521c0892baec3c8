package camera

import (
	"math"
	"sync"

	"github.com/tellus-gl/tellus-go/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3
	up       common.Vec3

	fov    float64
	aspect float64
	near   float64
	far    float64

	viewMatrix           [16]float64
	projectionMatrix     [16]float64
	viewProjectionMatrix [16]float64
}

// Camera is the perspective camera the tile engine reads its pose from. It
// orbits the globe's origin by convention; position and target are world
// space, with the globe centered at the origin. All accessors are safe for
// concurrent use.
type Camera interface {
	// Position returns the camera position in world space.
	Position() common.Vec3

	// SetPosition moves the camera and recomputes the matrices.
	//
	// Parameters:
	//   - p: new world-space position
	SetPosition(p common.Vec3)

	// Target returns the point the camera looks at.
	Target() common.Vec3

	// SetTarget re-aims the camera and recomputes the matrices.
	//
	// Parameters:
	//   - t: new world-space look target
	SetTarget(t common.Vec3)

	// Up returns the camera's up vector.
	Up() common.Vec3

	// SetUp sets the camera's up vector and recomputes the matrices.
	//
	// Parameters:
	//   - u: new up vector
	SetUp(u common.Vec3)

	// Fov returns the vertical field of view in radians.
	Fov() float64

	// SetFov sets the vertical field of view in radians and recomputes the
	// matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float64)

	// Aspect returns the aspect ratio (width / height).
	Aspect() float64

	// SetAspect sets the aspect ratio and recomputes the matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float64)

	// Near returns the near clipping plane distance.
	Near() float64

	// Far returns the far clipping plane distance.
	Far() float64

	// ViewMatrix returns the current 4x4 view matrix (column-major).
	ViewMatrix() [16]float64

	// ProjectionMatrix returns the current 4x4 projection matrix
	// (column-major).
	ProjectionMatrix() [16]float64

	// ViewProjectionMatrix returns the combined projection * view matrix
	// (column-major).
	ViewProjectionMatrix() [16]float64

	// Distance returns the camera's distance from the world origin, which
	// is the globe center by convention.
	Distance() float64

	// Longitude returns the camera's longitude over the globe in degrees.
	Longitude() float64

	// Latitude returns the camera's latitude over the globe in degrees.
	Latitude() float64

	// CenterDirection returns the normalized direction from the globe
	// center to the camera.
	CenterDirection() common.Vec3

	// Pose captures the camera's position and forward direction for change
	// detection.
	Pose() Pose

	// Frustum extracts the view frustum with the field of view scaled by
	// the given factor. A factor above 1 widens the culling cone to keep
	// edge tiles from popping.
	//
	// Parameters:
	//   - fovScale: multiplier applied to the field of view
	//
	// Returns:
	//   - common.Frustum: the extracted frustum
	Frustum(fovScale float64) common.Frustum

	// ScreenDistance projects a world-space point and returns its distance
	// from the screen center in normalized device coordinates. The depth
	// convention places the near plane at z = -1, so points dead-center and
	// close to the camera score near zero.
	//
	// Parameters:
	//   - p: world-space point to project
	//
	// Returns:
	//   - float64: the screen-space distance
	ScreenDistance(p common.Vec3) float64
}

var _ Camera = &cameraImpl{}

// Pose is a snapshot of camera position and orientation used to detect
// movement between updates.
type Pose struct {
	// Position is the camera's world-space position.
	Position common.Vec3
	// Forward is the camera's normalized view direction.
	Forward common.Vec3
}

// ApproxEqual reports whether two poses are within the given tolerances.
//
// Parameters:
//   - o: pose to compare against
//   - posEps: maximum position distance considered unchanged
//   - dirEps: maximum forward-direction deviation (1 - dot) considered unchanged
//
// Returns:
//   - bool: true when the poses are effectively the same
func (p Pose) ApproxEqual(o Pose, posEps, dirEps float64) bool {
	if p.Position.Distance(o.Position) > posEps {
		return false
	}
	return 1.0-p.Forward.Dot(o.Forward) <= dirEps
}

// NewCamera builds a perspective camera. Defaults: position (0, 0, 3)
// looking at the origin, up +Y, 45 degree fov, square aspect, near 0.01,
// far 100.
//
// Parameters:
//   - options: optional configuration, see the With* builder functions
//
// Returns:
//   - Camera: the assembled camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: common.Vec3{Z: 3},
		up:       common.Vec3{Y: 1},
		fov:      45 * math.Pi / 180,
		aspect:   1,
		near:     0.01,
		far:      100,
	}
	for _, opt := range options {
		opt(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(p common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) Target() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) SetTarget(t common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
	c.updateMatrices()
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) SetUp(u common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = u
	c.updateMatrices()
}

func (c *cameraImpl) Fov() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Near() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Distance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position.Length()
}

func (c *cameraImpl) Longitude() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos := c.position.Normalize()
	return math.Atan2(pos.X, pos.Z) * 180 / math.Pi
}

func (c *cameraImpl) Latitude() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos := c.position.Normalize()
	return math.Asin(common.Clamp(pos.Y, -1, 1)) * 180 / math.Pi
}

func (c *cameraImpl) CenterDirection() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position.Normalize()
}

func (c *cameraImpl) Pose() Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Pose{
		Position: c.position,
		Forward:  c.target.Sub(c.position).Normalize(),
	}
}

func (c *cameraImpl) Frustum(fovScale float64) common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fovScale == 1.0 {
		return common.ExtractFrustumFromMatrix(c.viewProjectionMatrix[:])
	}

	var proj, vp [16]float64
	common.Perspective(proj[:], c.fov*fovScale, c.aspect, c.near, c.far)
	common.Mul4(vp[:], proj[:], c.viewMatrix[:])
	return common.ExtractFrustumFromMatrix(vp[:])
}

func (c *cameraImpl) ScreenDistance(p common.Vec3) float64 {
	c.mu.Lock()
	vp := c.viewProjectionMatrix
	c.mu.Unlock()

	ndc, ok := common.TransformPoint(vp[:], p)
	if !ok {
		return math.Inf(1)
	}
	// Remap depth from [0, 1] to [-1, 1] so the distance scale matches the
	// zoom tables, which assume the near plane sits at z = -1.
	ndc.Z = 2*ndc.Z - 1
	return ndc.Distance(common.Vec3{Z: -1})
}

// updateMatrices recomputes view, projection and combined matrices.
// Callers must hold c.mu.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:], c.position, c.target, c.up)
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
