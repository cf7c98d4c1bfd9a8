package segment

import (
	"container/heap"

	"nanosizer/pkg/grid"
)

// floodItem is a pixel queued for claiming during watershed flooding.
type floodItem struct {
	height float64 // distance value; higher floods first
	seq    int     // insertion order, breaks height ties deterministically
	idx    int
	label  int32 // label of the flood that queued this pixel
}

type floodQueue []floodItem

func (q floodQueue) Len() int { return len(q) }
func (q floodQueue) Less(i, j int) bool {
	if q[i].height != q[j].height {
		return q[i].height > q[j].height
	}
	return q[i].seq < q[j].seq
}
func (q floodQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *floodQueue) Push(x interface{}) { *q = append(*q, x.(floodItem)) }
func (q *floodQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Watershed floods the distance field from the marker seeds and returns a
// label map clipped to the foreground mask. The field is treated as inverted
// topography: water rises synchronously from every seed, claiming pixels in
// order of decreasing distance (deepest particle interiors first) so each
// flood fills its own basin before spilling. When a pixel is reached and its
// already-claimed 4-neighbors carry two or more distinct labels, the floods
// have met there: the pixel becomes a permanent boundary (label 0) and stops
// propagation. Height ties are broken by queue insertion order, so the result
// is fully deterministic for identical inputs.
//
// The flood is purely geometric and may claim basin pixels outside the
// visible particle; the final step zeroes every pixel the mask calls
// background, clipping labels to the real particle footprint.
func Watershed(dist *grid.Dense, markers *grid.Labels, mask *grid.Mask) (*grid.Labels, error) {
	if err := grid.CheckSameSize("watershed", dist.W, dist.H, markers.W, markers.H); err != nil {
		return nil, err
	}
	if err := grid.CheckSameSize("watershed", dist.W, dist.H, mask.W, mask.H); err != nil {
		return nil, err
	}

	w, h := dist.W, dist.H
	n := w * h
	out := markers.Clone()
	decided := make([]bool, n)

	pq := &floodQueue{}
	seq := 0
	dirs := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

	pushNeighbors := func(idx int, label int32) {
		x, y := idx%w, idx/w
		for _, d := range dirs {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			nidx := ny*w + nx
			if decided[nidx] {
				continue
			}
			heap.Push(pq, floodItem{height: dist.Data[nidx], seq: seq, idx: nidx, label: label})
			seq++
		}
	}

	for i := 0; i < n; i++ {
		if out.Data[i] != 0 {
			decided[i] = true
		}
	}
	for i := 0; i < n; i++ {
		if decided[i] {
			pushNeighbors(i, out.Data[i])
		}
	}

	for pq.Len() > 0 {
		item := heap.Pop(pq).(floodItem)
		if decided[item.idx] {
			continue
		}

		// Labels of already-claimed neighbors decide between a plain claim
		// and a watershed boundary.
		x, y := item.idx%w, item.idx/w
		claimed := item.label
		boundary := false
		for _, d := range dirs {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			l := out.Data[ny*w+nx]
			if l == 0 {
				continue
			}
			if claimed == 0 {
				claimed = l
			} else if l != claimed {
				boundary = true
				break
			}
		}

		decided[item.idx] = true
		if boundary {
			out.Data[item.idx] = 0
			continue
		}
		out.Data[item.idx] = claimed
		pushNeighbors(item.idx, claimed)
	}

	// Clip the geometric flood to the thresholded particle footprint.
	for i := 0; i < n; i++ {
		if !mask.Data[i] {
			out.Data[i] = 0
		}
	}

	return out, nil
}
