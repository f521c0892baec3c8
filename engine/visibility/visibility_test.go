package visibility

import (
	"math"
	"testing"

	"github.com/tellus-gl/tellus-go/common"
	"github.com/tellus-gl/tellus-go/engine/camera"
	"github.com/tellus-gl/tellus-go/engine/tile"
)

// camAt builds a camera hovering over (lon, lat) at the given distance,
// looking at the globe center.
func camAt(lon, lat, dist float64) camera.Camera {
	pos := tile.LatLonToUnitVector(lat, lon).Scale(dist)
	return camera.NewCamera(camera.WithPosition(pos))
}

func allOn() Config {
	return Config{FrustumCulling: true, DotFiltering: true, ScreenSpacePrioritization: true}
}

func TestCenterTileVisible(t *testing.T) {
	cam := camAt(0, 0, 1.25) // zoom 6 band
	f := NewFilter(cam, 1.0, allOn())
	pass := f.Begin()

	x, y := tile.LonLatToTileXY(0, 0, 6)
	res := pass.Test(x, y, 6, tile.NewKeySet())
	if !res.Visible {
		t.Fatalf("tile under camera rejected, key %s", res.Key)
	}
	if math.IsInf(res.ScreenDist, 1) {
		t.Error("visible tile has infinite screen distance")
	}
}

func TestAlreadyVisibleRejected(t *testing.T) {
	cam := camAt(0, 0, 1.25)
	f := NewFilter(cam, 1.0, allOn())
	pass := f.Begin()

	x, y := tile.LonLatToTileXY(0, 0, 6)
	visible := tile.NewKeySet()
	visible.Add(tile.NewKey(6, x, y))

	if res := pass.Test(x, y, 6, visible); res.Visible {
		t.Error("already-visible tile passed again")
	}
}

func TestAntipodalAlwaysRejected(t *testing.T) {
	cam := camAt(0, 0, 1.25)
	// All tests disabled: the far-side rejection must still fire.
	f := NewFilter(cam, 1.0, Config{})
	pass := f.Begin()

	x, y := tile.LonLatToTileXY(180, 0, 6)
	if res := pass.Test(x, y, 6, tile.NewKeySet()); res.Visible {
		t.Error("antipodal tile passed with all filters disabled")
	}
}

func TestDotFilterRejectsSideTile(t *testing.T) {
	cam := camAt(0, 0, 1.002) // very close, zoom 13: tight cone
	x, y := tile.LonLatToTileXY(90, 0, 13)

	strict := NewFilter(cam, 1.0, Config{DotFiltering: true})
	if res := strict.Begin().Test(x, y, 13, tile.NewKeySet()); res.Visible {
		t.Error("90-degree-away tile passed the zoom-13 view cone")
	}

	relaxed := NewFilter(cam, 1.0, Config{})
	if res := relaxed.Begin().Test(x, y, 13, tile.NewKeySet()); !res.Visible {
		t.Error("tile rejected with dot filtering disabled")
	}
}

func TestFrustumCullsTileBehindCamera(t *testing.T) {
	// Camera very close to the surface looking at the center: tiles ~60
	// degrees away are outside even the widened frustum.
	cam := camAt(0, 0, 1.01)
	f := NewFilter(cam, 1.0, Config{FrustumCulling: true})
	pass := f.Begin()

	x, y := tile.LonLatToTileXY(60, 0, 10)
	if res := pass.Test(x, y, 10, tile.NewKeySet()); res.Visible {
		t.Error("off-screen tile passed frustum culling")
	}

	cx, cy := tile.LonLatToTileXY(0, 0, 10)
	if res := pass.Test(cx, cy, 10, tile.NewKeySet()); !res.Visible {
		t.Error("tile under camera failed frustum culling")
	}
}

func TestScreenDistanceCap(t *testing.T) {
	cam := camAt(0, 0, 1.25)
	f := NewFilter(cam, 1.0, Config{ScreenSpacePrioritization: true})
	pass := f.Begin()

	// Walk tiles eastward until one trips the zoom-6 cap; everything past
	// 100 degrees is antipodal so stay inside that.
	tripped := false
	for lon := 0.0; lon <= 95.0; lon += 5.0 {
		x, y := tile.LonLatToTileXY(lon, 0, 6)
		res := pass.Test(x, y, 6, tile.NewKeySet())
		if !res.Visible && !math.IsInf(res.ScreenDist, 1) {
			if res.ScreenDist <= tile.ScreenDistanceCap(6) {
				t.Errorf("tile rejected below the cap: %f", res.ScreenDist)
			}
			tripped = true
		}
	}
	if !tripped {
		t.Skip("no tile exceeded the screen distance cap at this pose")
	}
}

func TestScreenDistOrdering(t *testing.T) {
	cam := camAt(0, 0, 1.25)
	f := NewFilter(cam, 1.0, allOn())
	pass := f.Begin()

	cx, cy := tile.LonLatToTileXY(0, 0, 6)
	center := pass.Test(cx, cy, 6, tile.NewKeySet())
	ox, oy := tile.LonLatToTileXY(8, 0, 6)
	off := pass.Test(ox, oy, 6, tile.NewKeySet())

	if !center.Visible || !off.Visible {
		t.Fatalf("expected both tiles visible: center %v, off %v", center.Visible, off.Visible)
	}
	if center.ScreenDist >= off.ScreenDist {
		t.Errorf("center dist %f not below off-center dist %f", center.ScreenDist, off.ScreenDist)
	}
}

func TestPassSnapshotsCamera(t *testing.T) {
	cam := camAt(0, 0, 1.25)
	f := NewFilter(cam, 1.0, allOn())
	pass := f.Begin()

	// Moving the camera after Begin must not affect the pass's longitude
	// snapshot.
	cam.SetPosition(common.Vec3{X: 1.25})

	x, y := tile.LonLatToTileXY(0, 0, 6)
	if res := pass.Test(x, y, 6, tile.NewKeySet()); !res.Visible {
		t.Error("pass re-read camera state after Begin")
	}
}
