// Package imaging provides the color model and image handles used to classify
// scanned pages.
//
// This package implements the color metric (hex parsing, Euclidean and mean
// absolute channel distances), the Image capability interface that the blank
// classifier samples from, and a cache that decodes image files into handles.
// Coordinates use a system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Color Representation
//
// Colors are 8-bit RGB triples. Hex strings use the form "#RRGGBB"; the leading
// '#' is optional and digits are case-insensitive. Malformed strings never
// produce an error: they resolve to a fallback color (white by default).
//
// # Distance Metrics
//
// Two metrics are provided and must not be mixed:
//   - Distance: Euclidean distance in RGB space (0 to ~441.67), for general
//     color similarity.
//   - MeanAbsDiff: mean absolute channel difference (0 to 255), the per-point
//     metric of blank classification.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Color functions are pure and
// Decoded handles are read-only once created.
//
// # Supported Formats
//
// PNG, JPEG and GIF from the standard library; BMP, TIFF and WebP from
// golang.org/x/image. JPEG EXIF orientation is applied on load.
package imaging
