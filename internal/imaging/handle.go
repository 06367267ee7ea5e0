package imaging

import (
	"image"
)

// Image is the pixel-sampling capability the classifier depends on.
//
// Any concrete image representation (a decoded file, a rendered PDF page, a
// synthetic test fixture) can be classified once it implements Image. Pixel
// data must be available synchronously: any decode or render step has to
// complete before the handle is handed out.
type Image interface {
	// Width is the declared image width in pixels.
	Width() int

	// Height is the declared image height in pixels.
	Height() int

	// SamplePixel returns the color at (x, y), where (0,0) is the top-left
	// pixel. Callers keep coordinates within [0,Width) x [0,Height).
	SamplePixel(x, y int) Color
}

// Decoded adapts a standard library image.Image to the Image interface.
//
// Coordinates passed to SamplePixel are relative to the image's top-left
// corner, so images whose bounds do not start at (0,0) (sub-images, some
// decoders) are sampled correctly. Out-of-range coordinates are clamped to the
// nearest edge pixel. An empty image samples as black, matching what
// image.Image.At returns outside its bounds; the blank classifier does not
// sample empty images and treats them as blank placeholders.
type Decoded struct {
	img    image.Image
	bounds image.Rectangle
}

// Decode wraps img as an Image handle.
func Decode(img image.Image) *Decoded {
	return &Decoded{img: img, bounds: img.Bounds()}
}

// Width returns the image width in pixels.
func (d *Decoded) Width() int { return d.bounds.Dx() }

// Height returns the image height in pixels.
func (d *Decoded) Height() int { return d.bounds.Dy() }

// SamplePixel returns the 8-bit color at (x, y) relative to the top-left corner.
func (d *Decoded) SamplePixel(x, y int) Color {
	if d.bounds.Empty() {
		return Color{}
	}
	x = clamp(x, 0, d.bounds.Dx()-1)
	y = clamp(y, 0, d.bounds.Dy()-1)
	return FromStd(d.img.At(d.bounds.Min.X+x, d.bounds.Min.Y+y))
}

// Image returns the underlying decoded image.
func (d *Decoded) Image() image.Image { return d.img }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
