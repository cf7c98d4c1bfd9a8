// Package segment implements the mask, distance-transform, marker and
// watershed stages that partition a micrograph into labeled particles.
package segment

import (
	"container/heap"
	"math"

	"nanosizer/pkg/grid"
)

// Binarize thresholds a normalized grayscale image into a foreground mask.
// A pixel is foreground iff its intensity is strictly below the threshold:
// nanocrystals image darker than the substrate, and pixels exactly at the
// threshold stay background.
func Binarize(img *grid.Dense, threshold float64) *grid.Mask {
	mask := grid.NewMask(img.W, img.H)
	for i, v := range img.Data {
		mask.Data[i] = v < threshold
	}
	return mask
}

// growItem is a frontier pixel awaiting assignment during region growing.
type growItem struct {
	delta float64 // |intensity - region mean| at push time
	seq   int     // insertion order, breaks delta ties deterministically
	idx   int
	label int32
}

type growQueue []growItem

func (q growQueue) Len() int { return len(q) }
func (q growQueue) Less(i, j int) bool {
	if q[i].delta != q[j].delta {
		return q[i].delta < q[j].delta
	}
	return q[i].seq < q[j].seq
}
func (q growQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *growQueue) Push(x interface{}) { *q = append(*q, x.(growItem)) }
func (q *growQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

const (
	regionInside  int32 = 1
	regionOutside int32 = 2
)

// Repair patches holes the threshold missed using seeded region growing over
// the full grayscale image. The first foreground pixel of the raw mask (raster
// order) seeds an "inside" region; every raw background pixel reachable from
// the image border through background seeds the "outside" region. Background
// enclosed by foreground has no path to the border, stays unseeded, and is
// contested like any unclaimed pixel: claims are assigned in order of
// increasing intensity distance to the adaptive mean of the claiming region,
// so the inside region flows through intensity-continuous interior holes while
// the dense outside seeding stops it at real particle boundaries. The repaired
// mask is the raw mask plus everything the inside region claimed; repair only
// ever adds pixels.
//
// The seed count is proportional to the background pixel count, which makes
// this the most expensive stage of the pipeline (O(n log n) with a large
// constant). Growth can also overshoot and merge particles that touch through
// similar-intensity bridges; that is an accepted trade-off of the repair, not
// something this function tries to correct.
func Repair(img *grid.Dense, raw *grid.Mask) (*grid.Mask, error) {
	if err := grid.CheckSameSize("repair", img.W, img.H, raw.W, raw.H); err != nil {
		return nil, err
	}

	w, h := img.W, img.H
	n := w * h
	labels := make([]int32, n)

	// Adaptive region statistics: running mean of claimed intensities.
	var sum [3]float64
	var count [3]int
	claim := func(idx int, label int32) {
		labels[idx] = label
		sum[label] += img.Data[idx]
		count[label]++
	}

	insideSeed := -1
	for i := 0; i < n; i++ {
		if raw.Data[i] && insideSeed < 0 {
			insideSeed = i
		}
	}
	if insideSeed < 0 {
		// Nothing to repair on an empty mask.
		return raw.Clone(), nil
	}

	// Outside seeds: BFS over raw background from the border. Enclosed
	// background never gets reached and so remains claimable by either
	// region; that is what lets interior holes fill.
	queue := make([]int, 0, 2*(w+h))
	enqueueBG := func(x, y int) {
		idx := y*w + x
		if !raw.Data[idx] && labels[idx] == 0 {
			claim(idx, regionOutside)
			queue = append(queue, idx)
		}
	}
	for x := 0; x < w; x++ {
		enqueueBG(x, 0)
		enqueueBG(x, h-1)
	}
	for y := 0; y < h; y++ {
		enqueueBG(0, y)
		enqueueBG(w-1, y)
	}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		x, y := idx%w, idx/w
		if x > 0 {
			enqueueBG(x-1, y)
		}
		if x < w-1 {
			enqueueBG(x+1, y)
		}
		if y > 0 {
			enqueueBG(x, y-1)
		}
		if y < h-1 {
			enqueueBG(x, y+1)
		}
	}

	claim(insideSeed, regionInside)

	pq := &growQueue{}
	seq := 0
	pushNeighbors := func(idx int) {
		x, y := idx%w, idx/w
		label := labels[idx]
		mean := sum[label] / float64(count[label])
		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			nidx := ny*w + nx
			if labels[nidx] != 0 {
				continue
			}
			heap.Push(pq, growItem{
				delta: math.Abs(img.Data[nidx] - mean),
				seq:   seq,
				idx:   nidx,
				label: label,
			})
			seq++
		}
	}

	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			pushNeighbors(i)
		}
	}

	for pq.Len() > 0 {
		item := heap.Pop(pq).(growItem)
		if labels[item.idx] != 0 {
			continue
		}
		claim(item.idx, item.label)
		pushNeighbors(item.idx)
	}

	// Repair only ever adds: raw foreground always survives, and unclaimed
	// enclosed background joins when the inside region won it.
	repaired := raw.Clone()
	for i := 0; i < n; i++ {
		if labels[i] == regionInside {
			repaired.Data[i] = true
		}
	}
	return repaired, nil
}
