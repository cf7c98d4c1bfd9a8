package segment

import (
	"math"
	"runtime"
	"sync"

	"nanosizer/pkg/grid"
)

// DistanceTransform computes the exact Euclidean distance transform of a
// mask: for every foreground pixel, the distance to the nearest background
// pixel; background pixels map to 0. Uses the Felzenszwalb-Huttenlocher
// two-pass algorithm on squared distances (lower-envelope of parabolas per
// column, then per row), which is exact and linear per scan line. Columns
// and rows are independent, so the passes run on parallel workers.
func DistanceTransform(mask *grid.Mask) *grid.Dense {
	w, h := mask.W, mask.H
	out := grid.NewDense(w, h)
	if w == 0 || h == 0 {
		return out
	}

	const inf = math.MaxFloat64

	// Squared distance seed: 0 at background, +inf at foreground.
	f := make([]float64, w*h)
	for i, fg := range mask.Data {
		if fg {
			f[i] = inf
		}
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > w {
		workers = w
	}
	if workers < 1 {
		workers = 1
	}

	// Pass 1: 1-D transform down each column.
	parallelFor(w, workers, func(x int) {
		col := make([]float64, h)
		for y := 0; y < h; y++ {
			col[y] = f[y*w+x]
		}
		dt1d(col)
		for y := 0; y < h; y++ {
			f[y*w+x] = col[y]
		}
	})

	// Pass 2: 1-D transform across each row, then take square roots.
	parallelFor(h, workers, func(y int) {
		row := f[y*w : (y+1)*w]
		dt1d(row)
		for x := 0; x < w; x++ {
			out.Data[y*w+x] = math.Sqrt(row[x])
		}
	})

	return out
}

// dt1d replaces f with the 1-D squared-distance transform
// d[q] = min_p (q-p)^2 + f[p], computed via the lower envelope of the
// parabolas rooted at each sample.
func dt1d(f []float64) {
	n := len(f)
	if n == 0 {
		return
	}

	// Only finite parabolas enter the envelope; a scan line that is entirely
	// foreground keeps its infinite seeds (no background to measure against).
	first := -1
	for i := range f {
		if f[i] < math.MaxFloat64 {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}

	v := make([]int, n)       // locations of parabolas in the envelope
	z := make([]float64, n+1) // boundaries between parabolas
	d := make([]float64, n)

	intersect := func(q, p int) float64 {
		return ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q-2*p)
	}

	k := 0
	v[0] = first
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	for q := first + 1; q < n; q++ {
		if f[q] == math.MaxFloat64 {
			continue
		}
		s := intersect(q, v[k])
		for s <= z[k] {
			k--
			s = intersect(q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		p := v[k]
		dq := float64(q - p)
		d[q] = dq*dq + f[p]
	}
	copy(f, d)
}

// parallelFor runs fn for every index in [0, n) across the given number of
// worker goroutines.
func parallelFor(n, workers int, fn func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
