package segment

import (
	"nanosizer/pkg/geometry"
	"nanosizer/pkg/grid"
)

// Centroids returns the pixel-space centroid of every segment, keyed by
// label. Useful for reporting where each particle sits in the micrograph.
func Centroids(labels *grid.Labels) map[int32]geometry.Point2D {
	points := make(map[int32][]geometry.Point2D)
	for y := 0; y < labels.H; y++ {
		for x := 0; x < labels.W; x++ {
			if l := labels.At(x, y); l > 0 {
				points[l] = append(points[l], geometry.PointInt{X: x, Y: y}.ToFloat())
			}
		}
	}

	centroids := make(map[int32]geometry.Point2D, len(points))
	for l, pts := range points {
		centroids[l] = geometry.Centroid(pts)
	}
	return centroids
}
