package segment

import (
	"errors"
	"testing"

	"nanosizer/pkg/grid"
)

func TestBinarizeStrictThreshold(t *testing.T) {
	img := grid.NewDense(3, 1)
	img.Set(0, 0, 0.2) // below: foreground
	img.Set(1, 0, 0.5) // exactly at threshold: background
	img.Set(2, 0, 0.8) // above: background

	mask := Binarize(img, 0.5)
	if !mask.At(0, 0) {
		t.Error("pixel below threshold not foreground")
	}
	if mask.At(1, 0) {
		t.Error("pixel exactly at threshold became foreground")
	}
	if mask.At(2, 0) {
		t.Error("pixel above threshold became foreground")
	}
}

func TestBinarizeDeterministic(t *testing.T) {
	img, _ := donut(t)

	first := Binarize(img, 0.3)
	second := Binarize(img, 0.3)
	for i := range first.Data {
		if first.Data[i] != second.Data[i] {
			t.Fatalf("pixel %d differs between identical runs", i)
		}
	}
}

func TestBinarizeIdempotentOnUniform(t *testing.T) {
	img := grid.NewDense(10, 10)
	for i := range img.Data {
		img.Data[i] = 0.9
	}
	if got := Binarize(img, 0.5).Count(); got != 0 {
		t.Errorf("bright image produced %d foreground pixels", got)
	}
}

// donut builds an image of a dark ring with a mid-intensity hole in the
// middle, on a bright background. Threshold 0.3 catches only the ring.
func donut(t *testing.T) (*grid.Dense, *grid.Mask) {
	t.Helper()
	const (
		w, h       = 21, 21
		cx, cy     = 10, 10
		rOut, rIn  = 6, 3
		ring       = 0.2
		hole       = 0.4
		background = 0.9
	)
	img := grid.NewDense(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			r2 := dx*dx + dy*dy
			switch {
			case r2 <= rIn*rIn:
				img.Set(x, y, hole)
			case r2 <= rOut*rOut:
				img.Set(x, y, ring)
			default:
				img.Set(x, y, background)
			}
		}
	}
	return img, Binarize(img, 0.3)
}

func TestRepairFillsEnclosedHole(t *testing.T) {
	img, raw := donut(t)

	// The raw mask is only the ring; the hole thresholds as background.
	if raw.At(10, 10) {
		t.Fatal("hole center unexpectedly in the raw mask")
	}

	repaired, err := Repair(img, raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}

	// The hole pixels are intensity-closer to the ring region than to the
	// bright background, so the inside region claims them.
	if !repaired.At(10, 10) {
		t.Error("hole center not repaired")
	}
	if repaired.Count() <= raw.Count() {
		t.Errorf("repaired count %d not larger than raw count %d", repaired.Count(), raw.Count())
	}
	// Every raw foreground pixel survives the repair.
	for i, fg := range raw.Data {
		if fg && !repaired.Data[i] {
			t.Fatalf("raw foreground pixel %d lost during repair", i)
		}
	}
	// The bright background stays out.
	if repaired.At(0, 0) || repaired.At(20, 20) {
		t.Error("background claimed by the inside region")
	}
}

func TestRepairIgnoresOpenHole(t *testing.T) {
	// Cut a gap into the ring so the "hole" connects to the substrate. The
	// center is then border-reachable background and must not be filled.
	img, _ := donut(t)
	for y := 0; y <= 10; y++ {
		img.Set(10, y, 0.9)
	}
	raw := Binarize(img, 0.3)

	repaired, err := Repair(img, raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if repaired.At(10, 10) {
		t.Error("border-connected background was filled")
	}
}

func TestRepairKeepsDisconnectedParticles(t *testing.T) {
	// Two separate dark squares; the inside seed lands in the first one.
	// Repair must never drop the second particle's raw pixels.
	img := grid.NewDense(30, 10)
	for i := range img.Data {
		img.Data[i] = 0.9
	}
	for y := 3; y <= 6; y++ {
		for x := 3; x <= 6; x++ {
			img.Set(x, y, 0.2)
		}
		for x := 20; x <= 23; x++ {
			img.Set(x, y, 0.2)
		}
	}
	raw := Binarize(img, 0.5)

	repaired, err := Repair(img, raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	for i, fg := range raw.Data {
		if fg && !repaired.Data[i] {
			t.Fatalf("raw foreground pixel %d dropped", i)
		}
	}
	if !repaired.At(21, 4) {
		t.Error("second particle lost")
	}
}

func TestRepairEmptyMask(t *testing.T) {
	img := grid.NewDense(5, 5)
	raw := grid.NewMask(5, 5)

	repaired, err := Repair(img, raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if repaired.Count() != 0 {
		t.Errorf("empty mask grew %d pixels", repaired.Count())
	}
	// The result is a copy, not the input.
	repaired.Set(0, 0, true)
	if raw.At(0, 0) {
		t.Error("Repair returned the input mask instead of a copy")
	}
}

func TestRepairDimensionMismatch(t *testing.T) {
	img := grid.NewDense(5, 5)
	raw := grid.NewMask(4, 5)

	_, err := Repair(img, raw)
	var dim *grid.DimensionMismatchError
	if !errors.As(err, &dim) {
		t.Fatalf("error = %v, want *DimensionMismatchError", err)
	}
}
