// Package classify decides whether a scanned image is a blank delimiter page.
//
// A Classifier samples a small fixed set of pixels (the center plus the points
// at one and three quarters of each dimension), compares each to a reference
// blank color using the mean absolute channel difference, and averages the
// result. An image is blank when that average is less than or equal to the
// configured threshold.
//
// Classification is pure: it never logs, never performs I/O and never fails.
// Images one pixel wide or tall are sampled at clamped coordinates. Images
// with zero width or height have no pixels and classify as blank placeholders.
package classify
