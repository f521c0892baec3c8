// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Sphere is a bounding sphere in world space, used for visibility and
// screen-space tests against the camera.
type Sphere struct {
	// Center is the sphere's center point in world space.
	Center Vec3
	// Radius is the sphere's radius in world units.
	Radius float64
}

// LatLonBounds describes the geographic extent of a map tile in degrees.
type LatLonBounds struct {
	// LatMin and LatMax are the southern and northern edges in degrees.
	LatMin, LatMax float64
	// LonMin and LonMax are the western and eastern edges in degrees.
	LonMin, LonMax float64
}

// Center returns the midpoint of the bounds in degrees (lat, lon).
func (b LatLonBounds) Center() (float64, float64) {
	return (b.LatMin + b.LatMax) / 2, (b.LonMin + b.LonMax) / 2
}

// LatSpan returns the latitude extent of the bounds in degrees.
func (b LatLonBounds) LatSpan() float64 {
	return b.LatMax - b.LatMin
}

// LonSpan returns the longitude extent of the bounds in degrees.
func (b LatLonBounds) LonSpan() float64 {
	return b.LonMax - b.LonMin
}

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
// This is primarily used by the renderer to stage decoded tile imagery before
// creating the GPU texture.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
}
