package render

import (
	"image/color"
	"testing"

	"nanosizer/internal/sizes"
	"nanosizer/pkg/grid"
)

func TestLabelColorStable(t *testing.T) {
	for _, label := range []int32{1, 2, 17, 4096} {
		a, b := LabelColor(label), LabelColor(label)
		if a != b {
			t.Errorf("label %d color changed between calls: %v vs %v", label, a, b)
		}
		if a.R < 64 || a.G < 64 || a.B < 64 {
			t.Errorf("label %d color %v too dark to see on black", label, a)
		}
		if a.A != 255 {
			t.Errorf("label %d color not opaque", label)
		}
	}
	if got := LabelColor(0); got != (color.RGBA{A: 255}) {
		t.Errorf("label 0 = %v, want black", got)
	}
}

func TestGrayImageClamps(t *testing.T) {
	d := grid.NewDense(3, 1)
	d.Set(0, 0, -0.5)
	d.Set(1, 0, 0.5)
	d.Set(2, 0, 1.5)

	img := GrayImage(d)
	if got := img.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("negative intensity rendered as %d, want 0", got)
	}
	if got := img.GrayAt(1, 0).Y; got != 128 {
		t.Errorf("mid intensity rendered as %d, want 128", got)
	}
	if got := img.GrayAt(2, 0).Y; got != 255 {
		t.Errorf("overbright intensity rendered as %d, want 255", got)
	}
}

func TestMaskImage(t *testing.T) {
	m := grid.NewMask(2, 2)
	m.Set(1, 0, true)

	img := MaskImage(m)
	if img.GrayAt(1, 0).Y != 255 || img.GrayAt(0, 0).Y != 0 {
		t.Error("mask rendering is not white-on-black")
	}
}

func TestDistanceImageInverted(t *testing.T) {
	d := grid.NewDense(2, 1)
	d.Set(0, 0, 0) // background
	d.Set(1, 0, 4) // deepest point

	img := DistanceImage(d)
	if bg, core := img.GrayAt(0, 0).Y, img.GrayAt(1, 0).Y; bg <= core {
		t.Errorf("background %d not brighter than core %d", bg, core)
	}
}

func TestDistanceImageFlatField(t *testing.T) {
	img := DistanceImage(grid.NewDense(3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if img.GrayAt(x, y).Y != 0 {
				t.Fatal("all-zero field should render black")
			}
		}
	}
}

func TestLabelImageDistinctSegments(t *testing.T) {
	l := grid.NewLabels(2, 1)
	l.Set(0, 0, 1)
	l.Set(1, 0, 2)

	img := LabelImage(l)
	if img.RGBAAt(0, 0) == img.RGBAAt(1, 0) {
		t.Error("adjacent segments rendered the same color")
	}
	if img.RGBAAt(0, 0) != LabelColor(1) {
		t.Error("segment color differs from LabelColor")
	}
}

func TestOverlayKeepsBackground(t *testing.T) {
	src := grid.NewDense(2, 1)
	src.Set(0, 0, 1.0)
	src.Set(1, 0, 1.0)
	l := grid.NewLabels(2, 1)
	l.Set(1, 0, 3)

	img := Overlay(src, l)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("unlabeled pixel = %v, want the source gray", got)
	}
	if img.RGBAAt(1, 0) == img.RGBAAt(0, 0) {
		t.Error("labeled pixel not tinted")
	}
}

func TestHistogramDimensions(t *testing.T) {
	samples := []float64{4, 5, 5, 6, 7, 5, 4, 6}
	fit := sizes.Fit{Mean: 5.25, Sigma: 1.0, N: len(samples)}

	img := Histogram(samples, fit, 400, 240)
	bounds := img.Bounds()
	if bounds.Dx() != 400 || bounds.Dy() != 240 {
		t.Fatalf("histogram is %dx%d, want 400x240", bounds.Dx(), bounds.Dy())
	}

	// Some bar pixels were drawn.
	found := false
	for y := bounds.Min.Y; y < bounds.Max.Y && !found; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.RGBAAt(x, y) == histBar {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no histogram bars drawn")
	}
}

func TestHistogramEmptySamples(t *testing.T) {
	img := Histogram(nil, sizes.Fit{}, 100, 100)
	if img.Bounds().Dx() != 100 {
		t.Fatal("empty histogram has wrong size")
	}
	if img.RGBAAt(50, 50) != histBackground {
		t.Error("empty histogram not blank")
	}
}
