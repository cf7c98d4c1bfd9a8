// Package sizes converts labeled segments into physical particle sizes and
// fits a Normal distribution to them.
package sizes

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"nanosizer/pkg/grid"
)

// EmptySampleError reports that no segment survived the size window, so
// there is nothing to fit.
type EmptySampleError struct {
	Segments int // segments present before filtering
}

func (e *EmptySampleError) Error() string {
	return fmt.Sprintf("estimate sizes: no particles inside the size window (%d segments before filtering)", e.Segments)
}

// Fit is a maximum-likelihood Normal distribution over the surviving size
// samples: mean is the sample mean, sigma the population standard deviation.
type Fit struct {
	Mean  float64
	Sigma float64
	N     int
}

// PDF evaluates the fitted density at x. A degenerate fit (single sample,
// sigma 0) evaluates to 0 everywhere rather than a delta spike.
func (f Fit) PDF(x float64) float64 {
	if f.Sigma <= 0 {
		return 0
	}
	return distuv.Normal{Mu: f.Mean, Sigma: f.Sigma}.Prob(x)
}

// Estimate converts each surviving label's pixel count into an equivalent
// physical side length, sqrt(pixelCount) x scale, filters samples by the
// expected-size window (strictly inside (minSize, maxSize)), and fits a
// Normal distribution to what remains. Samples are ordered by ascending
// label, so identical inputs produce identical output slices.
func Estimate(labels *grid.Labels, scale, minSize, maxSize float64) ([]float64, Fit, error) {
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return nil, Fit{}, fmt.Errorf("estimate sizes: scale factor must be positive and finite, got %g", scale)
	}
	if minSize >= maxSize {
		return nil, Fit{}, fmt.Errorf("estimate sizes: empty size window [%g, %g]", minSize, maxSize)
	}

	counts := labels.Counts()
	samples := make([]float64, 0, len(counts))
	maxLabel := labels.MaxLabel()
	for label := int32(1); label <= maxLabel; label++ {
		count, ok := counts[label]
		if !ok {
			continue
		}
		size := math.Sqrt(float64(count)) * scale
		if size > minSize && size < maxSize {
			samples = append(samples, size)
		}
	}

	if len(samples) == 0 {
		return nil, Fit{}, &EmptySampleError{Segments: len(counts)}
	}

	fit := Fit{
		Mean:  stat.Mean(samples, nil),
		Sigma: stat.PopStdDev(samples, nil),
		N:     len(samples),
	}
	return samples, fit, nil
}
