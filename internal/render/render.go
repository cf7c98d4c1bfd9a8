// Package render turns pipeline artifacts into displayable images. It is
// presentation-only: every function here is a pure mapping from an artifact
// to pixels, so rendered output is deterministic for identical inputs.
package render

import (
	"image"
	"image/color"
	"math/rand"

	"nanosizer/pkg/grid"
)

// LabelColor returns a stable color for a segment label. The color comes
// from an RNG seeded with the label id, so a segment keeps its color across
// re-runs and across processes. Label 0 renders black.
func LabelColor(label int32) color.RGBA {
	if label == 0 {
		return color.RGBA{A: 255}
	}
	rng := rand.New(rand.NewSource(int64(label)))
	// Bias channels upward so segments stay visible on black.
	return color.RGBA{
		R: uint8(64 + rng.Intn(192)),
		G: uint8(64 + rng.Intn(192)),
		B: uint8(64 + rng.Intn(192)),
		A: 255,
	}
}

// GrayImage renders a [0,1] intensity grid as an 8-bit grayscale image.
func GrayImage(d *grid.Dense) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, d.W, d.H))
	for y := 0; y < d.H; y++ {
		for x := 0; x < d.W; x++ {
			v := d.At(x, y)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return img
}

// MaskImage renders a mask as white-on-black.
func MaskImage(m *grid.Mask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.W, m.H))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.At(x, y) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// DistanceImage renders a distance field for display, normalized to the
// field's maximum and inverted so particle cores show dark. The inversion is
// cosmetic only; the underlying field is untouched.
func DistanceImage(d *grid.Dense) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, d.W, d.H))
	max := d.Max()
	if max <= 0 {
		return img
	}
	for y := 0; y < d.H; y++ {
		for x := 0; x < d.W; x++ {
			v := 1 - d.At(x, y)/max
			img.SetGray(x, y, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return img
}

// LabelImage renders a label map with one stable color per segment.
func LabelImage(l *grid.Labels) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.W, l.H))
	cache := make(map[int32]color.RGBA)
	for y := 0; y < l.H; y++ {
		for x := 0; x < l.W; x++ {
			label := l.At(x, y)
			c, ok := cache[label]
			if !ok {
				c = LabelColor(label)
				cache[label] = c
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Overlay blends the label colors over the source micrograph so segment
// boundaries can be judged against the underlying particles.
func Overlay(src *grid.Dense, l *grid.Labels) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, src.W, src.H))
	cache := make(map[int32]color.RGBA)
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			v := src.At(x, y)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			g := uint8(v*255 + 0.5)
			label := l.At(x, y)
			if label == 0 {
				img.SetRGBA(x, y, color.RGBA{R: g, G: g, B: g, A: 255})
				continue
			}
			c, ok := cache[label]
			if !ok {
				c = LabelColor(label)
				cache[label] = c
			}
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((int(g) + int(c.R)) / 2),
				G: uint8((int(g) + int(c.G)) / 2),
				B: uint8((int(g) + int(c.B)) / 2),
				A: 255,
			})
		}
	}
	return img
}
