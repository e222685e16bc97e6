package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"path"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/Faultbox/skyraid/internal/engine/terrain"
)

// LoadImage reads and decodes an image asset into an 8-bit RGBA buffer for
// heightfield building. PNG, JPEG, BMP, WebP and TGA are supported.
func (m *Manager) LoadImage(p string) (*terrain.Image, error) {
	data, err := m.Load(p)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(p, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return img, nil
}

// DecodeImage decodes raw image bytes. name is only used to pick the TGA
// reader, which has no magic number; every other format is sniffed.
func DecodeImage(name string, data []byte) (*terrain.Image, error) {
	var img image.Image
	var err error

	if strings.EqualFold(path.Ext(name), ".tga") {
		img, err = decodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// FromImage copies img into an unpremultiplied RGBA buffer.
func FromImage(img image.Image) *terrain.Image {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &terrain.Image{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

var errTGATruncated = errors.New("tga: truncated data")

// decodeTGA reads uncompressed or RLE true-color TGA, 24 or 32 bits.
func decodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}

	idLen := int(data[0])
	if data[1] != 0 {
		return nil, errors.New("tga: color-mapped images not supported")
	}
	kind := data[2]
	if kind != tgaTrueColor && kind != tgaTrueColorRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", kind)
	}
	w := int(data[12]) | int(data[13])<<8
	h := int(data[14]) | int(data[15])<<8
	bpp := int(data[16]) / 8
	if bpp != 3 && bpp != 4 {
		return nil, fmt.Errorf("tga: unsupported depth %d", data[16])
	}
	topDown := data[17]&0x20 != 0

	src := data[min(len(data), 18+idLen):]
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	// put writes the n-th decoded pixel (BGR[A] at px) into img.
	put := func(n int, px []byte) {
		x, y := n%w, n/w
		if !topDown {
			y = h - 1 - y
		}
		i := img.PixOffset(x, y)
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = px[2], px[1], px[0], 255
		if bpp == 4 {
			img.Pix[i+3] = px[3]
		}
	}

	total := w * h
	if kind == tgaTrueColor {
		if len(src) < total*bpp {
			return nil, errTGATruncated
		}
		for n := range total {
			put(n, src[n*bpp:])
		}
		return img, nil
	}

	n, off := 0, 0
	for n < total {
		if off >= len(src) {
			return nil, errTGATruncated
		}
		hdr := src[off]
		off++
		run := int(hdr&0x7f) + 1

		if hdr&0x80 != 0 {
			if off+bpp > len(src) {
				return nil, errTGATruncated
			}
			for ; run > 0 && n < total; run-- {
				put(n, src[off:])
				n++
			}
			off += bpp
			continue
		}

		if off+run*bpp > len(src) {
			return nil, errTGATruncated
		}
		for ; run > 0 && n < total; run-- {
			put(n, src[off:])
			off += bpp
			n++
		}
	}
	return img, nil
}
