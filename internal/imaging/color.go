package imaging

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
//
// Color is a value type; once constructed it is never modified.
type Color struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// White is the fallback color used when a hex color string cannot be parsed.
var White = Color{R: 255, G: 255, B: 255}

// HexToColor converts a hex color specification to a Color.
//
// The accepted shape is an optional leading '#' followed by exactly six
// hexadecimal digits (case-insensitive), e.g. "#FFFFFF", "ffffff", "#1a2B3c".
// Any other input, including the 3-digit shorthand, returns White.
//
// Delimiter colors are user-supplied strings, so a malformed value degrades to
// the fallback instead of failing the batch. Use ParseHexColorOr to choose a
// different fallback.
func HexToColor(hex string) Color {
	return ParseHexColorOr(hex, White)
}

// ParseHexColorOr converts a hex color specification to a Color, returning
// fallback when hex is not '#'-optional six hexadecimal digits.
func ParseHexColorOr(hex string, fallback Color) Color {
	if !IsHexColor(hex) {
		return fallback
	}
	digits := strings.TrimPrefix(hex, "#")

	c, err := colorful.Hex("#" + digits)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}
}

// IsHexColor reports whether hex has the shape HexToColor accepts: an optional
// '#' followed by exactly six hexadecimal digits.
func IsHexColor(hex string) bool {
	return isHexDigits(strings.TrimPrefix(hex, "#"), 6)
}

// isHexDigits reports whether s consists of exactly n hexadecimal digits.
func isHexDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}

// Distance returns the Euclidean distance between two colors in RGB space,
// measured on the 0-255 channel scale:
//
//	sqrt((r1-r2)² + (g1-g2)² + (b1-b2)²)
//
// The result ranges from 0 (identical) to about 441.67 (black vs white).
// This is the general-purpose similarity metric. Blank classification uses
// the mean absolute channel difference instead (see MeanAbsDiff); the two are
// not interchangeable and thresholds for one do not carry over to the other.
func Distance(a, b Color) float64 {
	return a.colorful().DistanceRgb(b.colorful()) * 255
}

// MeanAbsDiff returns the mean absolute channel difference between two colors:
//
//	(|r1-r2| + |g1-g2| + |b1-b2|) / 3
//
// The result ranges from 0 to 255. It is the per-point metric of blank
// classification.
func MeanAbsDiff(a, b Color) float64 {
	return float64(absDiff(a.R, b.R)+absDiff(a.G, b.G)+absDiff(a.B, b.B)) / 3
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// Hex returns the color in "#RRGGBB" form.
func (c Color) Hex() string {
	return strings.ToUpper(c.colorful().Hex())
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// FromStd converts a standard library color to a Color.
//
// The color is read through its RGBA method and each 16-bit component is
// scaled down to 8 bits by right-shifting. Alpha is discarded.
func FromStd(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}
