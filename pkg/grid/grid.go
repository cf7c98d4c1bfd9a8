// Package grid provides the flat-buffer pixel grids the analysis pipeline
// operates on: Dense for real-valued fields (grayscale intensity, distance),
// Mask for foreground/background, Labels for segment assignments. All grids
// store row-major buffers indexed y*w+x.
package grid

import (
	"fmt"
	"math"
)

// Dense is a rectangular grid of float64 values.
type Dense struct {
	W, H int
	Data []float64
}

// NewDense creates a zero-filled Dense grid.
func NewDense(w, h int) *Dense {
	return &Dense{W: w, H: h, Data: make([]float64, w*h)}
}

// At returns the value at (x, y).
func (d *Dense) At(x, y int) float64 {
	return d.Data[y*d.W+x]
}

// Set stores a value at (x, y).
func (d *Dense) Set(x, y int, v float64) {
	d.Data[y*d.W+x] = v
}

// Clone returns a deep copy.
func (d *Dense) Clone() *Dense {
	c := NewDense(d.W, d.H)
	copy(c.Data, d.Data)
	return c
}

// Max returns the maximum value, or -Inf for an empty grid.
func (d *Dense) Max() float64 {
	m := math.Inf(-1)
	for _, v := range d.Data {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the minimum value, or +Inf for an empty grid.
func (d *Dense) Min() float64 {
	m := math.Inf(1)
	for _, v := range d.Data {
		if v < m {
			m = v
		}
	}
	return m
}

// Mask is a rectangular grid of booleans, true = foreground.
type Mask struct {
	W, H int
	Data []bool
}

// NewMask creates an all-false Mask.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Data: make([]bool, w*h)}
}

// At returns the value at (x, y).
func (m *Mask) At(x, y int) bool {
	return m.Data[y*m.W+x]
}

// Set stores a value at (x, y).
func (m *Mask) Set(x, y int, v bool) {
	m.Data[y*m.W+x] = v
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	c := NewMask(m.W, m.H)
	copy(c.Data, m.Data)
	return c
}

// Count returns the number of true pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Labels is a rectangular grid of segment labels. 0 means background,
// unclaimed, or watershed boundary; positive values identify segments.
type Labels struct {
	W, H int
	Data []int32
}

// NewLabels creates an all-zero Labels grid.
func NewLabels(w, h int) *Labels {
	return &Labels{W: w, H: h, Data: make([]int32, w*h)}
}

// At returns the label at (x, y).
func (l *Labels) At(x, y int) int32 {
	return l.Data[y*l.W+x]
}

// Set stores a label at (x, y).
func (l *Labels) Set(x, y int, v int32) {
	l.Data[y*l.W+x] = v
}

// Clone returns a deep copy.
func (l *Labels) Clone() *Labels {
	c := NewLabels(l.W, l.H)
	copy(c.Data, l.Data)
	return c
}

// Counts returns the pixel count per positive label.
func (l *Labels) Counts() map[int32]int {
	counts := make(map[int32]int)
	for _, v := range l.Data {
		if v > 0 {
			counts[v]++
		}
	}
	return counts
}

// MaxLabel returns the largest label present, 0 if none.
func (l *Labels) MaxLabel() int32 {
	var m int32
	for _, v := range l.Data {
		if v > m {
			m = v
		}
	}
	return m
}

// DimensionMismatchError reports grids of inconsistent shape fed to a
// pipeline stage.
type DimensionMismatchError struct {
	Stage        string
	WantW, WantH int
	GotW, GotH   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: dimension mismatch: want %dx%d, got %dx%d",
		e.Stage, e.WantW, e.WantH, e.GotW, e.GotH)
}

// CheckSameSize returns a DimensionMismatchError unless both grids share
// the given dimensions.
func CheckSameSize(stage string, wantW, wantH, gotW, gotH int) error {
	if wantW != gotW || wantH != gotH {
		return &DimensionMismatchError{Stage: stage, WantW: wantW, WantH: wantH, GotW: gotW, GotH: gotH}
	}
	return nil
}
