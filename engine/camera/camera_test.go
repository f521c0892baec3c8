package camera

import (
	"math"
	"testing"

	"github.com/tellus-gl/tellus-go/common"
)

func TestLongitudeLatitude(t *testing.T) {
	tests := []struct {
		name     string
		pos      common.Vec3
		lon, lat float64
	}{
		{"prime meridian", common.Vec3{Z: 2}, 0, 0},
		{"east 90", common.Vec3{X: 2}, 90, 0},
		{"west 90", common.Vec3{X: -2}, -90, 0},
		{"north pole", common.Vec3{Y: 2}, 0, 90},
		{"45 north", common.Vec3{Y: math.Sqrt2, Z: math.Sqrt2}, 0, 45},
	}
	const eps = 1e-9
	for _, tt := range tests {
		cam := NewCamera(WithPosition(tt.pos))
		if got := cam.Longitude(); math.Abs(got-tt.lon) > eps {
			t.Errorf("%s: Longitude = %f, want %f", tt.name, got, tt.lon)
		}
		if got := cam.Latitude(); math.Abs(got-tt.lat) > eps {
			t.Errorf("%s: Latitude = %f, want %f", tt.name, got, tt.lat)
		}
	}
}

func TestDistance(t *testing.T) {
	cam := NewCamera(WithPosition(common.Vec3{X: 3, Y: 4}))
	if got := cam.Distance(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Distance = %f, want 5", got)
	}
}

func TestCenterDirection(t *testing.T) {
	cam := NewCamera(WithPosition(common.Vec3{Z: 2.5}))
	dir := cam.CenterDirection()
	if math.Abs(dir.Z-1) > 1e-12 || math.Abs(dir.X) > 1e-12 || math.Abs(dir.Y) > 1e-12 {
		t.Errorf("CenterDirection = %+v, want +Z", dir)
	}
}

func TestPoseApproxEqual(t *testing.T) {
	cam := NewCamera(WithPosition(common.Vec3{Z: 2}))
	a := cam.Pose()

	cam.SetPosition(common.Vec3{Z: 2.00005})
	b := cam.Pose()
	if !a.ApproxEqual(b, 2e-4, 2e-5) {
		t.Error("tiny move flagged as pose change")
	}

	cam.SetPosition(common.Vec3{Z: 2.01})
	c := cam.Pose()
	if a.ApproxEqual(c, 2e-4, 2e-5) {
		t.Error("large move not flagged as pose change")
	}

	cam.SetPosition(common.Vec3{Z: 2})
	cam.SetTarget(common.Vec3{X: 0.5})
	d := cam.Pose()
	if a.ApproxEqual(d, 2e-4, 2e-5) {
		t.Error("re-aim not flagged as pose change")
	}
}

func TestScreenDistanceCenterVsEdge(t *testing.T) {
	cam := NewCamera(WithPosition(common.Vec3{Z: 2}))

	center := cam.ScreenDistance(common.Vec3{Z: 1}) // nearest point of the globe
	side := cam.ScreenDistance(common.Vec3{X: 0.7, Z: 0.7})
	back := cam.ScreenDistance(common.Vec3{Z: -1})

	if center >= side {
		t.Errorf("center %f not closer than side %f", center, side)
	}
	if center >= back {
		t.Errorf("center %f not closer than far side %f", center, back)
	}
}

func TestFrustumContainsLookTarget(t *testing.T) {
	cam := NewCamera(WithPosition(common.Vec3{Z: 3}))
	f := cam.Frustum(1.0)

	visible := common.Sphere{Center: common.Vec3{Z: 1}, Radius: 0.1}
	if !f.IntersectsSphere(visible) {
		t.Error("sphere in front of camera culled")
	}

	behind := common.Sphere{Center: common.Vec3{Z: 10}, Radius: 0.1}
	if f.IntersectsSphere(behind) {
		t.Error("sphere behind camera not culled")
	}
}

func TestWidenedFrustumKeepsEdgeSphere(t *testing.T) {
	cam := NewCamera(WithPosition(common.Vec3{Z: 1.2}), WithFov(45*math.Pi/180))

	// A sphere far enough to the side to miss the exact frustum but catchable
	// by the widened one.
	var edge common.Sphere
	found := false
	for x := 0.3; x < 1.0; x += 0.02 {
		s := common.Sphere{Center: common.Vec3{X: x, Z: math.Sqrt(math.Max(0, 1-x*x))}, Radius: 0.02}
		exact := cam.Frustum(1.0)
		wide := cam.Frustum(1.3)
		if !exact.IntersectsSphere(s) && wide.IntersectsSphere(s) {
			edge = s
			found = true
			break
		}
	}
	if !found {
		t.Skip("no edge sphere found for this configuration")
	}
	widened := cam.Frustum(1.3)
	if !widened.IntersectsSphere(edge) {
		t.Error("widened frustum rejected edge sphere")
	}
}

func TestOrbitControllerRotateClamps(t *testing.T) {
	ctrl := NewOrbitController()
	ctrl.Rotate(0, 200)
	if got := ctrl.Latitude(); got > 85.0511 {
		t.Errorf("latitude %f exceeds mercator clamp", got)
	}
	ctrl.Rotate(200, 0)
	if got := ctrl.Longitude(); got > 180 || got < -180 {
		t.Errorf("longitude %f outside [-180, 180]", got)
	}
}

func TestOrbitControllerZoomClamps(t *testing.T) {
	ctrl := NewOrbitController(WithDistance(2), WithDistanceRange(1.001, 4))
	ctrl.Zoom(0.0001)
	if got := ctrl.Distance(); got != 1.001 {
		t.Errorf("Distance = %f after zoom in, want clamp 1.001", got)
	}
	ctrl.Zoom(1e9)
	if got := ctrl.Distance(); got != 4 {
		t.Errorf("Distance = %f after zoom out, want clamp 4", got)
	}
	ctrl.Zoom(-1) // invalid factor ignored
	if got := ctrl.Distance(); got != 4 {
		t.Errorf("Distance = %f after invalid zoom, want 4", got)
	}
}

func TestOrbitControllerApply(t *testing.T) {
	ctrl := NewOrbitController(WithLonLat(90, 0), WithDistance(2))
	cam := NewCamera()
	ctrl.Apply(cam)

	pos := cam.Position()
	if math.Abs(pos.X-2) > 1e-12 || math.Abs(pos.Y) > 1e-12 || math.Abs(pos.Z) > 1e-9 {
		t.Errorf("position = %+v, want (2, 0, 0)", pos)
	}
	if got := cam.Longitude(); math.Abs(got-90) > 1e-9 {
		t.Errorf("Longitude = %f, want 90", got)
	}
	if tgt := cam.Target(); tgt != (common.Vec3{}) {
		t.Errorf("target = %+v, want origin", tgt)
	}
}

func TestDragScaleShrinksWithDistance(t *testing.T) {
	far := NewOrbitController(WithDistance(3))
	near := NewOrbitController(WithDistance(1.01))
	if near.DragScale() >= far.DragScale() {
		t.Errorf("near drag scale %f not below far %f", near.DragScale(), far.DragScale())
	}
}

func TestGPUCameraUniform(t *testing.T) {
	cam := NewCamera(WithPosition(common.Vec3{X: 1, Y: 2, Z: 3}))
	u := NewGPUCameraUniform(cam)

	if u.Size() != 80 {
		t.Fatalf("Size = %d, want 80", u.Size())
	}
	if u.CameraPosition != [3]float32{1, 2, 3} {
		t.Errorf("CameraPosition = %v", u.CameraPosition)
	}
	buf := u.Marshal()
	if len(buf) != 80 {
		t.Errorf("Marshal len = %d, want 80", len(buf))
	}
}
