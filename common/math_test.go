package common

import (
	"math"
	"testing"
)

func almostEq(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestIdentityMul4(t *testing.T) {
	var id, a, out [16]float64
	Identity(id[:])
	for i := range a {
		a[i] = float64(i + 1)
	}

	Mul4(out[:], id[:], a[:])
	if out != a {
		t.Errorf("I*A != A: %v", out)
	}
	Mul4(out[:], a[:], id[:])
	if out != a {
		t.Errorf("A*I != A: %v", out)
	}
}

func TestLookAtMapsEyeAndTarget(t *testing.T) {
	var view [16]float64
	eye := Vec3{Z: 3}
	LookAt(view[:], eye, Vec3{}, Vec3{Y: 1})

	// The eye maps to the view-space origin.
	p, ok := TransformPoint(view[:], eye)
	if !ok || p.Length() > 1e-12 {
		t.Errorf("eye mapped to %+v", p)
	}

	// The target sits straight ahead on the negative view z axis.
	tgt, ok := TransformPoint(view[:], Vec3{})
	if !ok || !almostEq(tgt.X, 0, 1e-12) || !almostEq(tgt.Y, 0, 1e-12) || !almostEq(tgt.Z, -3, 1e-12) {
		t.Errorf("target mapped to %+v, want (0,0,-3)", tgt)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	var proj [16]float64
	near, far := 0.1, 10.0
	Perspective(proj[:], math.Pi/2, 1, near, far)

	onNear, ok := TransformPoint(proj[:], Vec3{Z: -near})
	if !ok || !almostEq(onNear.Z, 0, 1e-12) {
		t.Errorf("near plane depth = %f, want 0", onNear.Z)
	}
	onFar, ok := TransformPoint(proj[:], Vec3{Z: -far})
	if !ok || !almostEq(onFar.Z, 1, 1e-12) {
		t.Errorf("far plane depth = %f, want 1", onFar.Z)
	}
}

func TestTransformPointAtInfinity(t *testing.T) {
	var m [16]float64 // all zeros gives w = 0
	if _, ok := TransformPoint(m[:], Vec3{X: 1}); ok {
		t.Error("w = 0 point reported as valid")
	}
}

func TestVec3Ops(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 5, Z: 6}

	if got := a.Add(b); got != (Vec3{X: 5, Y: 7, Z: 9}) {
		t.Errorf("Add = %+v", got)
	}
	if got := a.Sub(b); got != (Vec3{X: -3, Y: -3, Z: -3}) {
		t.Errorf("Sub = %+v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %f", got)
	}
	if got := a.Cross(b); got != (Vec3{X: -3, Y: 6, Z: -3}) {
		t.Errorf("Cross = %+v", got)
	}
	if got := (Vec3{X: 3, Y: 4}).Length(); got != 5 {
		t.Errorf("Length = %f", got)
	}
	n := (Vec3{X: 0, Y: 0, Z: 7}).Normalize()
	if n != (Vec3{Z: 1}) {
		t.Errorf("Normalize = %+v", n)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize(zero) = %+v", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%f, %f, %f) = %f, want %f", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestMat4ToFloat32(t *testing.T) {
	var m [16]float64
	for i := range m {
		m[i] = float64(i) * 0.5
	}
	out := Mat4ToFloat32(m[:])
	for i := range out {
		if out[i] != float32(m[i]) {
			t.Fatalf("element %d = %f", i, out[i])
		}
	}
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1, 2, 3}
	b := SliceToBytes(data)
	if len(b) != 12 {
		t.Errorf("len = %d, want 12", len(b))
	}
	if SliceToBytes([]float32(nil)) != nil {
		t.Error("nil slice should produce nil")
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 7, 9); got != 7 {
		t.Errorf("Coalesce = %d, want 7", got)
	}
	if got := Coalesce("", "a"); got != "a" {
		t.Errorf("Coalesce = %q, want \"a\"", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce = %d, want 0", got)
	}
}
