package source

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/ironsheep/image-delimit/internal/imaging"
)

// DefaultDPI is the render resolution used when none is given.
const DefaultDPI = 150

// LoadPDF renders every page of a scanned PDF and returns one item per page.
//
// Pages are rendered sequentially because a fitz document is not safe for
// concurrent use. Rendering stops at the first error or when ctx is done.
func LoadPDF(ctx context.Context, path string, dpi int, smoothRadius float64) ([]Item, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, path)
	}

	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d of %s: %w", i+1, path, err)
		}
		items = append(items, Item{
			Name:    fmt.Sprintf("page-%04d", i+1),
			Path:    path,
			Page:    i + 1,
			Decoded: imaging.Decode(imaging.Smooth(img, smoothRadius)),
		})
	}
	return items, nil
}
