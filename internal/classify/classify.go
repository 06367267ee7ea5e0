package classify

import (
	"github.com/ironsheep/image-delimit/internal/imaging"
)

// DefaultThreshold is the default bound on the averaged mean absolute channel
// difference for an image to count as blank.
const DefaultThreshold = 10.0

// SamplePoint is a pixel coordinate that is read to approximate an image's
// dominant color.
type SamplePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PointFunc computes the sample points for an image of the given dimensions.
// The returned points need not be clamped; the classifier clamps them.
type PointFunc func(width, height int) []SamplePoint

// Config holds the classification parameters. It is a value type: construct it
// once and pass it by value.
type Config struct {
	// BlankColor is the reference color of a delimiter page.
	BlankColor imaging.Color `json:"blank_color" yaml:"blank_color"`

	// Threshold is the largest averaged mean absolute channel difference
	// (0-255 scale) at which an image is still blank. It is not a Euclidean
	// distance. Negative values are treated as 0.
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// DefaultConfig returns white delimiter pages with DefaultThreshold.
func DefaultConfig() Config {
	return Config{BlankColor: imaging.White, Threshold: DefaultThreshold}
}

// NewConfig builds a Config from a hex color string and a threshold.
// A malformed color resolves to white.
func NewConfig(hex string, threshold float64) Config {
	return Config{BlankColor: imaging.HexToColor(hex), Threshold: threshold}
}

// Classifier decides whether an image is a blank delimiter page.
//
// A Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	config Config

	// Points overrides the sampling layout. Nil uses SamplePoints.
	Points PointFunc
}

// New creates a Classifier with the given defaults.
func New(cfg Config) *Classifier {
	return &Classifier{config: cfg}
}

// Config returns the classifier's default configuration.
func (c *Classifier) Config() Config {
	return c.config
}

// Option overrides a configuration value for a single classification call.
type Option func(*Config)

// WithColor overrides the blank color for one call.
func WithColor(blank imaging.Color) Option {
	return func(cfg *Config) { cfg.BlankColor = blank }
}

// WithThreshold overrides the threshold for one call.
func WithThreshold(threshold float64) Option {
	return func(cfg *Config) { cfg.Threshold = threshold }
}

// IsBlank reports whether img is a delimiter page.
//
// The image is sampled at the classifier's sample points (computed from the
// image's own width and height), the mean absolute channel difference to the
// blank color is computed per point, and the values are averaged. The image is
// blank iff that average is <= the threshold. An image with zero width or
// height has no pixels and is always blank.
//
// IsBlank has no side effects; the same image and options always give the same
// answer.
func (c *Classifier) IsBlank(img imaging.Image, opts ...Option) bool {
	cfg := c.resolve(opts)
	return c.score(img, cfg.BlankColor) <= threshold(cfg)
}

// Score returns the averaged mean absolute channel difference between the
// sampled pixels of img and the blank color (0 = exactly the blank color,
// 255 = maximally different). Only WithColor affects the result.
func (c *Classifier) Score(img imaging.Image, opts ...Option) float64 {
	return c.score(img, c.resolve(opts).BlankColor)
}

// Classify returns both the decision and the score from a single sampling pass.
func (c *Classifier) Classify(img imaging.Image, opts ...Option) (blank bool, score float64) {
	cfg := c.resolve(opts)
	score = c.score(img, cfg.BlankColor)
	return score <= threshold(cfg), score
}

func (c *Classifier) resolve(opts []Option) Config {
	cfg := c.config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c *Classifier) score(img imaging.Image, blank imaging.Color) float64 {
	w, h := img.Width(), img.Height()
	if w <= 0 || h <= 0 {
		// No pixels differ from the blank color.
		return 0
	}

	var points []SamplePoint
	if c.Points != nil {
		points = c.Points(w, h)
	} else {
		fixed := SamplePoints(w, h)
		points = fixed[:]
	}
	if len(points) == 0 {
		return 0
	}

	var total float64
	for _, p := range points {
		p = clampPoint(p, w, h)
		total += imaging.MeanAbsDiff(img.SamplePixel(p.X, p.Y), blank)
	}
	return total / float64(len(points))
}

func threshold(cfg Config) float64 {
	if cfg.Threshold < 0 {
		return 0
	}
	return cfg.Threshold
}

// SamplePoints returns the three fixed sample points for an image of the given
// size: the center (w/2, h/2), (w/4, h/4) and (3w/4, 3h/4). Divisions floor,
// and each coordinate is clamped to a valid pixel index (minimum 0), so 1x1 and
// zero-sized images yield (0,0).
func SamplePoints(width, height int) [3]SamplePoint {
	pts := [3]SamplePoint{
		{X: width / 2, Y: height / 2},
		{X: width / 4, Y: height / 4},
		{X: 3 * width / 4, Y: 3 * height / 4},
	}
	for i := range pts {
		pts[i] = clampPoint(pts[i], width, height)
	}
	return pts
}

func clampPoint(p SamplePoint, width, height int) SamplePoint {
	return SamplePoint{X: clampIndex(p.X, width), Y: clampIndex(p.Y, height)}
}

// clampIndex clamps v to [0, size-1], with 0 as the floor when size <= 0.
func clampIndex(v, size int) int {
	if v > size-1 {
		v = size - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}
