package terrain

import (
	"fmt"
	"math"
)

// Rec. 709 luma weights.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// BuildHeightfield converts an image into a grid x grid heightfield.
// Luminance is taken on the gamma-encoded channels and the scalar result is
// then decoded to linear space; heights are linear luminance * heightScale.
func BuildHeightfield(img *Image, grid int, size, heightScale float32) (*Heightfield, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	if grid < 2 {
		return nil, fmt.Errorf("%w: grid %d, need at least 2", ErrInvalidGrid, grid)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: half extent %v must be positive", ErrInvalidGrid, size)
	}

	heights := make([]float32, grid*grid)
	span := float32(grid - 1)
	for j := range grid {
		for i := range grid {
			u := float32(i) / span
			v := float32(j) / span
			sx := u * float32(img.Width-1)
			sy := v * float32(img.Height-1)
			heights[j*grid+i] = img.sampleLinearLuminance(sx, sy) * heightScale
		}
	}

	return &Heightfield{
		Width:       grid,
		Height:      grid,
		Heights:     heights,
		Size:        size,
		HeightScale: heightScale,
	}, nil
}

func validateImage(img *Image) error {
	if img == nil {
		return fmt.Errorf("%w: no image", ErrInvalidSourceImage)
	}
	if img.Width < 2 || img.Height < 2 {
		return fmt.Errorf("%w: %dx%d, need at least 2x2", ErrInvalidSourceImage, img.Width, img.Height)
	}
	if len(img.Pix) < img.Width*img.Height*4 {
		return fmt.Errorf("%w: %d bytes of pixel data for %dx%d", ErrInvalidSourceImage, len(img.Pix), img.Width, img.Height)
	}
	return nil
}

// sampleLinearLuminance bilinearly interpolates per-pixel linear luminance at
// fractional pixel coordinates, clamped to the image.
func (img *Image) sampleLinearLuminance(x, y float32) float32 {
	x = clampf(x, 0, float32(img.Width-1))
	y = clampf(y, 0, float32(img.Height-1))

	x0 := int(x)
	y0 := int(y)
	x1 := min(img.Width-1, x0+1)
	y1 := min(img.Height-1, y0+1)
	fx := x - float32(x0)
	fy := y - float32(y0)

	v00 := img.linearLuminance(x0, y0)
	v10 := img.linearLuminance(x1, y0)
	v01 := img.linearLuminance(x0, y1)
	v11 := img.linearLuminance(x1, y1)

	v0 := v00*(1-fx) + v10*fx
	v1 := v01*(1-fx) + v11*fx
	return v0*(1-fy) + v1*fy
}

func (img *Image) linearLuminance(x, y int) float32 {
	idx := (y*img.Width + x) * 4
	r := float32(img.Pix[idx]) / 255
	g := float32(img.Pix[idx+1]) / 255
	b := float32(img.Pix[idx+2]) / 255
	return srgbToLinear(lumaR*r + lumaG*g + lumaB*b)
}

// srgbToLinear applies the sRGB electro-optical transfer function.
func srgbToLinear(c float32) float32 {
	c = clampf(c, 0, 1)
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow(float64((c+0.055)/1.055), 2.4))
}

// Sample returns the bilinearly interpolated elevation at a world position.
// Positions outside the grid clamp to the nearest edge. A nil heightfield or
// a NaN coordinate returns NoGround.
func (hf *Heightfield) Sample(worldX, worldZ float32) float32 {
	if hf == nil || len(hf.Heights) == 0 {
		return NoGround
	}
	if math.IsNaN(float64(worldX)) || math.IsNaN(float64(worldZ)) {
		return NoGround
	}

	maxI := float32(hf.Width - 1)
	maxJ := float32(hf.Height - 1)
	u := clampf((worldX/(hf.Size*2)+0.5)*maxI, 0, maxI)
	v := clampf((worldZ/(hf.Size*2)+0.5)*maxJ, 0, maxJ)

	i0 := int(u)
	j0 := int(v)
	i1 := min(hf.Width-1, i0+1)
	j1 := min(hf.Height-1, j0+1)
	fu := u - float32(i0)
	fv := v - float32(j0)

	h00 := hf.Heights[j0*hf.Width+i0]
	h10 := hf.Heights[j0*hf.Width+i1]
	h01 := hf.Heights[j1*hf.Width+i0]
	h11 := hf.Heights[j1*hf.Width+i1]

	h0 := h00*(1-fu) + h10*fu
	h1 := h01*(1-fu) + h11*fu
	return h0*(1-fv) + h1*fv
}

// At returns the grid sample at (i, j) with indices clamped to the grid.
func (hf *Heightfield) At(i, j int) float32 {
	i = max(0, min(hf.Width-1, i))
	j = max(0, min(hf.Height-1, j))
	return hf.Heights[j*hf.Width+i]
}

// GridToWorld returns the world XZ position of grid sample (i, j).
func (hf *Heightfield) GridToWorld(i, j int) (x, z float32) {
	u := float32(i) / float32(hf.Width-1)
	v := float32(j) / float32(hf.Height-1)
	return (u - 0.5) * hf.Size * 2, (v - 0.5) * hf.Size * 2
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
