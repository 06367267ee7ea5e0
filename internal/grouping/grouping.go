package grouping

import (
	"github.com/ironsheep/image-delimit/internal/classify"
	"github.com/ironsheep/image-delimit/internal/imaging"
)

// Decision records how one input image was classified.
type Decision struct {
	Index int     `json:"index"` // Position in the input sequence
	Blank bool    `json:"blank"` // True if the image was treated as a delimiter
	Score float64 `json:"score"` // Averaged mean absolute channel difference
}

// Grouper accumulates images one at a time and splits them into groups on
// blank delimiter pages.
//
// Each Add classifies its image exactly once. A blank image flushes the
// current group if it is non-empty and is otherwise ignored, so leading or
// consecutive delimiters never produce empty groups. Groups returned by
// Groups are complete and valid at any point, which lets a caller stop early
// and keep what has been flushed so far.
//
// A Grouper is not safe for concurrent use.
type Grouper[T imaging.Image] struct {
	classifier *classify.Classifier
	current    []T
	groups     [][]T
	seen       int
}

// NewGrouper creates a Grouper that classifies with c.
func NewGrouper[T imaging.Image](c *classify.Classifier) *Grouper[T] {
	return &Grouper[T]{classifier: c}
}

// Add classifies img and updates the current group.
func (g *Grouper[T]) Add(img T) Decision {
	blank, score := g.classifier.Classify(img)
	d := Decision{Index: g.seen, Blank: blank, Score: score}
	g.seen++

	if !blank {
		g.current = append(g.current, img)
		return d
	}
	g.flush()
	return d
}

// Groups returns the groups completed so far, excluding the one still
// accumulating.
func (g *Grouper[T]) Groups() [][]T {
	return g.groups
}

// Finish flushes the pending group, if any, and returns all groups.
func (g *Grouper[T]) Finish() [][]T {
	g.flush()
	return g.groups
}

func (g *Grouper[T]) flush() {
	if len(g.current) == 0 {
		return
	}
	g.groups = append(g.groups, g.current)
	g.current = nil
}

// Split partitions images into groups separated by blank delimiter pages.
//
// The result preserves input order. Delimiters appear in no group and no group
// is empty: an empty input, or one made only of delimiters, yields an empty
// (non-nil) slice. Input with no delimiters yields a single group.
func Split[T imaging.Image](images []T, c *classify.Classifier) [][]T {
	groups, _ := SplitWithDecisions(images, c)
	return groups
}

// SplitWithConfig is Split with a classifier built from cfg.
func SplitWithConfig[T imaging.Image](images []T, cfg classify.Config) [][]T {
	return Split(images, classify.New(cfg))
}

// SplitWithDecisions is Split that also returns the per-image decisions, in
// input order.
func SplitWithDecisions[T imaging.Image](images []T, c *classify.Classifier) ([][]T, []Decision) {
	g := NewGrouper[T](c)
	decisions := make([]Decision, 0, len(images))
	for _, img := range images {
		decisions = append(decisions, g.Add(img))
	}
	groups := g.Finish()
	if groups == nil {
		groups = [][]T{}
	}
	return groups, decisions
}
