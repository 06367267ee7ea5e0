package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/ironsheep/image-delimit/internal/source"
)

// ErrDestinationExists is returned when an output file already exists.
var ErrDestinationExists = errors.New("destination already exists")

// Placement records where one grouped image was written.
type Placement struct {
	Group       int    `json:"group"` // 0-based group index
	Index       int    `json:"index"` // 0-based position inside the group
	Source      string `json:"source"`
	Page        int    `json:"page,omitempty"`
	Destination string `json:"destination"`
}

// Sink persists a list of groups.
//
// Save returns one Placement per image it wrote, in group order. On failure it
// returns the placements completed before the error together with the error.
type Sink interface {
	Save(ctx context.Context, groups [][]source.Item) ([]Placement, error)
}

// FileName builds the output name of an image: {scheme}{group+1}-image{index+1}{ext}.
func FileName(scheme string, group, index int, ext string) string {
	return fmt.Sprintf("%s%d-image%d%s", scheme, group+1, index+1, ext)
}

// FolderName builds the per-group folder name: {scheme}{group+1}.
func FolderName(scheme string, group int) string {
	return fmt.Sprintf("%s%d", scheme, group+1)
}

// Plan computes the placements for groups under root without touching the
// filesystem. PDF pages are planned as PNG files; image files keep their
// original extension.
func Plan(root, scheme string, createFolders bool, groups [][]source.Item) []Placement {
	var placements []Placement
	for g, group := range groups {
		dir := root
		if createFolders {
			dir = filepath.Join(root, FolderName(scheme, g))
		}
		for i, item := range group {
			ext := filepath.Ext(item.Path)
			if item.Page > 0 {
				ext = ".png"
			}
			placements = append(placements, Placement{
				Group:       g,
				Index:       i,
				Source:      item.Path,
				Page:        item.Page,
				Destination: filepath.Join(dir, FileName(scheme, g, i, ext)),
			})
		}
	}
	return placements
}

// FolderSink writes groups into a directory tree.
//
// With CreateFolders each group gets its own folder named after the scheme;
// otherwise all files land directly in Root. Image files are copied, or moved
// when Move is set. PDF pages have no file of their own and are encoded as PNG.
// Existing files are never overwritten.
type FolderSink struct {
	Root          string
	Scheme        string
	CreateFolders bool
	Move          bool
	Logger        *zap.Logger
}

// Save writes every image of groups. It checks ctx between files.
func (s *FolderSink) Save(ctx context.Context, groups [][]source.Item) ([]Placement, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	planned := Plan(s.Root, s.Scheme, s.CreateFolders, groups)
	done := make([]Placement, 0, len(planned))

	for _, p := range planned {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		item := groups[p.Group][p.Index]
		if err := s.write(item, p.Destination); err != nil {
			return done, err
		}
		logger.Debug("image placed",
			zap.Int("group", p.Group+1),
			zap.Int("index", p.Index+1),
			zap.String("source", p.Source),
			zap.String("destination", p.Destination))
		done = append(done, p)
	}
	return done, nil
}

// write places item at dst. Every path creates dst exclusively (O_EXCL or a
// hard link), so a file appearing at dst concurrently is never overwritten.
func (s *FolderSink) write(item source.Item, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	if item.Page > 0 {
		return encodePage(item, dst)
	}

	if s.Move {
		err := os.Link(item.Path, dst)
		if err == nil {
			if err := os.Remove(item.Path); err != nil {
				return fmt.Errorf("failed to remove moved file: %w", err)
			}
			return nil
		}
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		// Hard links fail across filesystems; fall back to copy and remove.
		if err := copyFile(item.Path, dst); err != nil {
			return err
		}
		if err := os.Remove(item.Path); err != nil {
			return fmt.Errorf("failed to remove moved file: %w", err)
		}
		return nil
	}
	return copyFile(item.Path, dst)
}

func encodePage(item source.Item, dst string) error {
	format, err := imaging.FormatFromFilename(dst)
	if err != nil {
		return fmt.Errorf("failed to encode page %d: %w", item.Page, err)
	}

	out, err := createExclusive(dst)
	if err != nil {
		return err
	}
	if err := imaging.Encode(out, item.Image(), format); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to encode page %d: %w", item.Page, err)
	}
	return out.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := createExclusive(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}

// createExclusive creates dst, failing with ErrDestinationExists if it exists.
func createExclusive(dst string) (*os.File, error) {
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}
	return out, nil
}

// DryRun is a Sink that only reports the placements it would make.
type DryRun struct {
	Root          string
	Scheme        string
	CreateFolders bool
}

// Save returns the planned placements without writing anything.
func (d DryRun) Save(_ context.Context, groups [][]source.Item) ([]Placement, error) {
	return Plan(d.Root, d.Scheme, d.CreateFolders, groups), nil
}
