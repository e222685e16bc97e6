// Package terrain builds heightfields from images, triangulates them into
// render-ready meshes and answers ground-height queries for the simulators.
package terrain

import "errors"

// NoGround is returned by height queries when no terrain is loaded.
// Nothing in the world sits this low, so simulators never collide with it.
const NoGround float32 = -99999

var (
	ErrInvalidSourceImage = errors.New("invalid source image")
	ErrInvalidGrid        = errors.New("invalid terrain grid")
)

// HeightFunc samples ground elevation at a world XZ position.
type HeightFunc func(worldX, worldZ float32) float32

// Image is a decoded RGBA pixel buffer (4 bytes per pixel, row-major).
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// Heightfield is a regular grid of elevations covering [-Size, Size) on X and Z.
type Heightfield struct {
	Width       int       // Samples along X
	Height      int       // Samples along Z
	Heights     []float32 // Row-major, index j*Width+i
	Size        float32   // World half extent
	HeightScale float32   // World units per unit of linear luminance
}

// Vertex is a terrain mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    [3]float32
}

// VertexStride is the size in bytes of one interleaved vertex.
const VertexStride = 9 * 4

// Mesh holds the terrain mesh data ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the terrain.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Interleaved flattens the vertices into pos(3) normal(3) color(3) floats.
func (m *Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Vertices)*9)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		out = append(out, v.Position[:]...)
		out = append(out, v.Normal[:]...)
		out = append(out, v.Color[:]...)
	}
	return out
}
