package classify

// GridPoints returns a PointFunc that samples the centers of an n x n grid
// laid over the image. It is an alternative to the fixed three-point layout for
// delimiter pages with uneven margins. n < 1 is treated as 1.
func GridPoints(n int) PointFunc {
	if n < 1 {
		n = 1
	}
	return func(width, height int) []SamplePoint {
		pts := make([]SamplePoint, 0, n*n)
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				pts = append(pts, SamplePoint{
					X: (2*col + 1) * width / (2 * n),
					Y: (2*row + 1) * height / (2 * n),
				})
			}
		}
		return pts
	}
}
