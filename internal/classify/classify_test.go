package classify

import (
	"image"
	"math"
	"testing"

	"github.com/ironsheep/image-delimit/internal/imaging"
)

// fakeImage is a synthetic image: a solid fill with optional per-pixel
// overrides. It records every coordinate sampled.
type fakeImage struct {
	w, h    int
	fill    imaging.Color
	pixels  map[SamplePoint]imaging.Color
	sampled []SamplePoint
}

func solid(w, h int, c imaging.Color) *fakeImage {
	return &fakeImage{w: w, h: h, fill: c, pixels: map[SamplePoint]imaging.Color{}}
}

func (f *fakeImage) Width() int  { return f.w }
func (f *fakeImage) Height() int { return f.h }

func (f *fakeImage) SamplePixel(x, y int) imaging.Color {
	p := SamplePoint{X: x, Y: y}
	f.sampled = append(f.sampled, p)
	if c, ok := f.pixels[p]; ok {
		return c
	}
	return f.fill
}

func gray(v uint8) imaging.Color { return imaging.Color{R: v, G: v, B: v} }

func TestSamplePoints(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want [3]SamplePoint
	}{
		{"even", 100, 200, [3]SamplePoint{{50, 100}, {25, 50}, {75, 150}}},
		{"odd floors", 7, 9, [3]SamplePoint{{3, 4}, {1, 2}, {5, 6}}},
		{"2x2", 2, 2, [3]SamplePoint{{1, 1}, {0, 0}, {1, 1}}},
		{"1x1", 1, 1, [3]SamplePoint{{0, 0}, {0, 0}, {0, 0}}},
		{"zero", 0, 0, [3]SamplePoint{{0, 0}, {0, 0}, {0, 0}}},
		{"1 wide", 1, 40, [3]SamplePoint{{0, 20}, {0, 10}, {0, 30}}},
		{"negative", -4, -4, [3]SamplePoint{{0, 0}, {0, 0}, {0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SamplePoints(tt.w, tt.h)
			if got != tt.want {
				t.Errorf("SamplePoints(%d,%d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
			for _, p := range got {
				if p.X < 0 || p.Y < 0 {
					t.Errorf("negative coordinate %v", p)
				}
				if tt.w > 0 && p.X >= tt.w || tt.h > 0 && p.Y >= tt.h {
					t.Errorf("coordinate %v outside %dx%d", p, tt.w, tt.h)
				}
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	c := New(DefaultConfig())

	tests := []struct {
		name string
		img  *fakeImage
		want bool
	}{
		{"pure white", solid(100, 100, imaging.White), true},
		{"near white", solid(100, 100, gray(250)), true},
		{"light gray beyond threshold", solid(100, 100, gray(230)), false},
		{"black", solid(100, 100, gray(0)), false},
		{"1x1 white", solid(1, 1, imaging.White), true},
		{"0x0 white", solid(0, 0, imaging.White), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsBlank(tt.img); got != tt.want {
				t.Errorf("IsBlank = %v, want %v (score %v)", got, tt.want, c.Score(tt.img))
			}
		})
	}
}

func TestIsBlank_ThresholdBoundary(t *testing.T) {
	// Every sample differs from white by 9 per channel, so the score is exactly 9.
	// A score equal to the threshold is blank; a strictly greater one is not.
	img := solid(50, 50, gray(246))

	tests := []struct {
		threshold float64
		want      bool
	}{
		{9, true},
		{9.5, true},
		{8.999, false},
		{0, false},
	}

	for _, tt := range tests {
		c := New(Config{BlankColor: imaging.White, Threshold: tt.threshold})
		if got := c.IsBlank(img); got != tt.want {
			t.Errorf("threshold %v: IsBlank = %v, want %v", tt.threshold, got, tt.want)
		}
	}

	exact := New(Config{BlankColor: imaging.White, Threshold: 0})
	if !exact.IsBlank(solid(5, 5, imaging.White)) {
		t.Error("threshold 0 should accept an exact match")
	}
}

func TestIsBlank_NegativeThresholdActsAsZero(t *testing.T) {
	c := New(Config{BlankColor: imaging.White, Threshold: -5})
	if !c.IsBlank(solid(10, 10, imaging.White)) {
		t.Error("exact match should be blank with a negative threshold")
	}
	if c.IsBlank(solid(10, 10, gray(254))) {
		t.Error("non-exact match should not be blank with a negative threshold")
	}
}

func TestScore_AveragesAcrossPoints(t *testing.T) {
	// 100x100: points are (50,50), (25,25), (75,75)
	img := solid(100, 100, imaging.White)
	img.pixels[SamplePoint{50, 50}] = gray(0) // center is black: diff 255

	c := New(DefaultConfig())
	score := c.Score(img)
	if math.Abs(score-85) > 1e-9 {
		t.Errorf("Score = %v, want 85 (255/3)", score)
	}
	if c.IsBlank(img) {
		t.Error("image with a black center should not be blank at threshold 10")
	}
	if !c.IsBlank(img, WithThreshold(85)) {
		t.Error("score 85 should be blank at threshold 85")
	}
}

func TestScore_MeanAbsoluteChannelDifference(t *testing.T) {
	// Per point (|0-255| + |255-255| + |255-255|)/3 = 85; Euclidean would be 255.
	img := solid(10, 10, imaging.Color{R: 0, G: 255, B: 255})
	if got := New(DefaultConfig()).Score(img); math.Abs(got-85) > 1e-9 {
		t.Errorf("Score = %v, want 85", got)
	}
}

func TestIsBlank_UsesDeclaredDimensions(t *testing.T) {
	tests := []struct {
		w, h int
	}{
		{640, 480},
		{17, 3000},
		{1, 1},
	}

	for _, tt := range tests {
		img := solid(tt.w, tt.h, imaging.White)
		New(DefaultConfig()).IsBlank(img)

		want := SamplePoints(tt.w, tt.h)
		if len(img.sampled) != len(want) {
			t.Fatalf("%dx%d: sampled %d points, want %d", tt.w, tt.h, len(img.sampled), len(want))
		}
		for i, p := range img.sampled {
			if p != want[i] {
				t.Errorf("%dx%d: point %d = %v, want %v", tt.w, tt.h, i, p, want[i])
			}
		}
	}
}

func TestIsBlank_Overrides(t *testing.T) {
	black := solid(20, 20, gray(0))
	c := New(DefaultConfig())

	if c.IsBlank(black) {
		t.Fatal("black page should not match white default")
	}
	if !c.IsBlank(black, WithColor(gray(0))) {
		t.Error("WithColor(black) should classify a black page as blank")
	}
	if !c.IsBlank(black, WithThreshold(255)) {
		t.Error("threshold 255 should accept any page")
	}

	// Overrides are per call and never stick
	if c.IsBlank(black) {
		t.Error("override leaked into classifier defaults")
	}
	if c.Config() != DefaultConfig() {
		t.Errorf("Config() = %+v, want defaults", c.Config())
	}
}

func TestIsBlank_Deterministic(t *testing.T) {
	img := solid(33, 47, gray(245))
	img.pixels[SamplePoint{8, 11}] = gray(200)
	c := New(NewConfig("#FFFFFF", 12))

	first, firstScore := c.Classify(img)
	for i := 0; i < 10; i++ {
		blank, score := c.Classify(img)
		if blank != first || score != firstScore {
			t.Fatalf("run %d: got (%v,%v), want (%v,%v)", i, blank, score, first, firstScore)
		}
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("#000000", 4)
	if cfg.BlankColor != gray(0) || cfg.Threshold != 4 {
		t.Errorf("NewConfig = %+v", cfg)
	}

	if cfg := NewConfig("not-a-color", 4); cfg.BlankColor != imaging.White {
		t.Errorf("malformed color should fall back to white, got %+v", cfg.BlankColor)
	}
}

func TestGridPoints(t *testing.T) {
	pts := GridPoints(2)(100, 100)
	want := []SamplePoint{{25, 25}, {75, 25}, {25, 75}, {75, 75}}
	if len(pts) != len(want) {
		t.Fatalf("got %d points, want %d", len(pts), len(want))
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, pts[i], want[i])
		}
	}

	if n := len(GridPoints(0)(10, 10)); n != 1 {
		t.Errorf("GridPoints(0) produced %d points, want 1", n)
	}
}

func TestClassifier_CustomPoints(t *testing.T) {
	img := solid(100, 100, imaging.White)
	img.pixels[SamplePoint{0, 0}] = gray(0)

	// The fixed layout never reads the corner
	c := New(DefaultConfig())
	if !c.IsBlank(img) {
		t.Error("fixed layout should not see the corner")
	}

	c.Points = func(w, h int) []SamplePoint {
		return []SamplePoint{{-10, -10}, {w * 2, h * 2}}
	}
	// (-10,-10) clamps to (0,0) which is black; (200,200) clamps to (99,99): score 127.5
	if got := c.Score(img); math.Abs(got-127.5) > 1e-9 {
		t.Errorf("Score = %v, want 127.5", got)
	}

	c.Points = func(int, int) []SamplePoint { return nil }
	if !c.IsBlank(solid(10, 10, gray(0))) {
		t.Error("no sample points should score 0")
	}
}

func TestIsBlank_ZeroAreaPlaceholder(t *testing.T) {
	c := New(DefaultConfig())

	for _, img := range []*fakeImage{solid(0, 0, gray(0)), solid(0, 30, gray(0)), solid(30, 0, gray(0))} {
		blank, score := c.Classify(img)
		if !blank || score != 0 {
			t.Errorf("%dx%d: Classify = (%v, %v), want (true, 0)", img.w, img.h, blank, score)
		}
		if len(img.sampled) != 0 {
			t.Errorf("%dx%d: sampled %v, want no samples", img.w, img.h, img.sampled)
		}
	}

	empty := imaging.Decode(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if !c.IsBlank(empty) {
		t.Error("an empty decoded image should classify as blank")
	}
}
