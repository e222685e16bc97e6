package terrain

import (
	"math"
)

// Elevation bands, as fractions of the height scale.
const (
	midBand  = 0.55
	highBand = 0.82
)

var (
	colorLow  = [3]float32{0.3, 0.55, 0.35} // grass
	colorMid  = [3]float32{0.5, 0.42, 0.32} // rock
	colorHigh = [3]float32{0.9, 0.9, 0.92}  // snow
)

// normalFloor keeps normalization finite for degenerate slopes.
const normalFloor = 1e-6

// BuildMesh triangulates a heightfield: one vertex per grid sample and two
// triangles per cell with a uniform winding across the grid.
func BuildMesh(hf *Heightfield) *Mesh {
	w, h := hf.Width, hf.Height
	vertices := make([]Vertex, 0, w*h)
	indices := make([]uint32, 0, (w-1)*(h-1)*6)

	bounds := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}

	stepX := hf.Size * 2 / float32(w-1)
	stepZ := hf.Size * 2 / float32(h-1)

	for j := range h {
		for i := range w {
			x, z := hf.GridToWorld(i, j)
			y := hf.Heights[j*w+i]
			pos := [3]float32{x, y, z}
			updateBounds(&bounds, pos)

			vertices = append(vertices, Vertex{
				Position: pos,
				Normal:   slopeNormal(hf, i, j, stepX, stepZ),
				Color:    bandColor(y, hf.HeightScale),
			})
		}
	}

	for j := 0; j < h-1; j++ {
		for i := 0; i < w-1; i++ {
			a := uint32(j*w + i)
			b := a + 1
			c := a + uint32(w)
			d := c + 1
			indices = append(indices,
				a, c, b,
				b, c, d,
			)
		}
	}

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
	}
}

// slopeNormal computes the vertex normal from central differences of the
// neighboring heights (edge clamped).
func slopeNormal(hf *Heightfield, i, j int, stepX, stepZ float32) [3]float32 {
	dx := (hf.At(i+1, j) - hf.At(i-1, j)) / (2 * stepX)
	dz := (hf.At(i, j+1) - hf.At(i, j-1)) / (2 * stepZ)

	tx := [3]float32{1, dx, 0}
	tz := [3]float32{0, dz, 1}
	n := cross(tz, tx)

	l := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
	l = max(l, normalFloor)
	return [3]float32{n[0] / l, n[1] / l, n[2] / l}
}

func bandColor(y, heightScale float32) [3]float32 {
	var elevN float32
	if heightScale != 0 {
		elevN = y / heightScale
	}
	switch {
	case elevN > highBand:
		return colorHigh
	case elevN > midBand:
		return colorMid
	default:
		return colorLow
	}
}

func updateBounds(b *Bounds, p [3]float32) {
	for k := range 3 {
		b.Min[k] = min(b.Min[k], p[k])
		b.Max[k] = max(b.Max[k], p[k])
	}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
