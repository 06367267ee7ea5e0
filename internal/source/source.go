package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-delimit/internal/imaging"
)

// ErrNoImages is returned when a directory holds no supported image files.
var ErrNoImages = errors.New("no supported images found")

// Item is one page of a batch: a decoded image plus where it came from.
type Item struct {
	// Name is the file name for directory input, or "page-NNNN" for PDF pages.
	Name string `json:"name"`

	// Path is the source file. For PDF pages this is the PDF itself.
	Path string `json:"path"`

	// Page is the 1-based page number for PDF input, 0 otherwise.
	Page int `json:"page,omitempty"`

	*imaging.Decoded `json:"-"`
}

// ListImages returns the supported image files directly inside dir, sorted
// lexicographically by name. Subdirectories are not descended into and the
// extension match is case-insensitive.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if imaging.IsSupported(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadFiles decodes paths through cache using up to workers goroutines and
// returns the items in the order of paths. Decoding finishes before LoadFiles
// returns, so the items are ready for synchronous classification.
func LoadFiles(ctx context.Context, paths []string, cache *imaging.ImageCache, workers int) ([]Item, error) {
	if workers < 1 {
		workers = 1
	}

	items := make([]Item, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := cache.Load(path)
			if err != nil {
				return err
			}
			items[i] = Item{Name: filepath.Base(path), Path: path, Decoded: d}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// LoadDir lists dir and decodes every supported image in it.
func LoadDir(ctx context.Context, dir string, cache *imaging.ImageCache, workers int) ([]Item, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	return LoadFiles(ctx, paths, cache, workers)
}

// Options configures Load.
type Options struct {
	Workers      int     // Decode parallelism for directory input
	DPI          int     // Render resolution for PDF input
	SmoothRadius float64 // Gaussian blur applied to rendered PDF pages
}

// Load dispatches on the input path: a directory is listed and decoded, a
// ".pdf" file is rendered page by page, and any other supported image file is
// loaded as a single-item batch.
func Load(ctx context.Context, path string, cache *imaging.ImageCache, opts Options) ([]Item, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	switch {
	case fi.IsDir():
		return LoadDir(ctx, path, cache, opts.Workers)
	case strings.EqualFold(filepath.Ext(path), ".pdf"):
		return LoadPDF(ctx, path, opts.DPI, opts.SmoothRadius)
	case imaging.IsSupported(path):
		return LoadFiles(ctx, []string{path}, cache, 1)
	default:
		return nil, fmt.Errorf("unsupported input %s", path)
	}
}
