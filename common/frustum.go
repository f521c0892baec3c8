package common

import (
	"math"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   Vec3
	Distance float64
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: 16 float64 values representing the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj []float64) Frustum {
	var f Frustum

	// For column-major matrix M, element M[row][col] is at index col*4 + row
	// So M[i][j] = viewProj[j*4 + i]

	// Left plane: row3 + row0
	f.Planes[FrustumLeft].Normal.X = viewProj[3] + viewProj[0]
	f.Planes[FrustumLeft].Normal.Y = viewProj[7] + viewProj[4]
	f.Planes[FrustumLeft].Normal.Z = viewProj[11] + viewProj[8]
	f.Planes[FrustumLeft].Distance = viewProj[15] + viewProj[12]

	// Right plane: row3 - row0
	f.Planes[FrustumRight].Normal.X = viewProj[3] - viewProj[0]
	f.Planes[FrustumRight].Normal.Y = viewProj[7] - viewProj[4]
	f.Planes[FrustumRight].Normal.Z = viewProj[11] - viewProj[8]
	f.Planes[FrustumRight].Distance = viewProj[15] - viewProj[12]

	// Bottom plane: row3 + row1
	f.Planes[FrustumBottom].Normal.X = viewProj[3] + viewProj[1]
	f.Planes[FrustumBottom].Normal.Y = viewProj[7] + viewProj[5]
	f.Planes[FrustumBottom].Normal.Z = viewProj[11] + viewProj[9]
	f.Planes[FrustumBottom].Distance = viewProj[15] + viewProj[13]

	// Top plane: row3 - row1
	f.Planes[FrustumTop].Normal.X = viewProj[3] - viewProj[1]
	f.Planes[FrustumTop].Normal.Y = viewProj[7] - viewProj[5]
	f.Planes[FrustumTop].Normal.Z = viewProj[11] - viewProj[9]
	f.Planes[FrustumTop].Distance = viewProj[15] - viewProj[13]

	// Near plane: row3 + row2
	f.Planes[FrustumNear].Normal.X = viewProj[3] + viewProj[2]
	f.Planes[FrustumNear].Normal.Y = viewProj[7] + viewProj[6]
	f.Planes[FrustumNear].Normal.Z = viewProj[11] + viewProj[10]
	f.Planes[FrustumNear].Distance = viewProj[15] + viewProj[14]

	// Far plane: row3 - row2
	f.Planes[FrustumFar].Normal.X = viewProj[3] - viewProj[2]
	f.Planes[FrustumFar].Normal.Y = viewProj[7] - viewProj[6]
	f.Planes[FrustumFar].Normal.Z = viewProj[11] - viewProj[10]
	f.Planes[FrustumFar].Distance = viewProj[15] - viewProj[14]

	// Normalize all planes
	for i := range f.Planes {
		f.normalizePlane(i)
	}

	return f
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := math.Sqrt(p.Normal.LengthSq())

	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Scale(invLen)
		p.Distance *= invLen
	}
}

// IntersectsSphere reports whether a bounding sphere is at least partially
// inside the frustum. A sphere lying entirely behind any plane is rejected.
//
// Parameters:
//   - s: bounding sphere to test
//
// Returns:
//   - bool: true if the sphere intersects or is contained by the frustum
func (f *Frustum) IntersectsSphere(s Sphere) bool {
	for i := range f.Planes {
		p := &f.Planes[i]
		dist := p.Normal.Dot(s.Center) + p.Distance
		if dist < -s.Radius {
			return false
		}
	}
	return true
}
