package segment

import (
	"math"
	"testing"

	"nanosizer/pkg/grid"
)

// bruteForceDT computes the exact Euclidean distance transform by scanning
// all background pixels per foreground pixel. Quadratic, only for tiny grids.
func bruteForceDT(mask *grid.Mask) *grid.Dense {
	out := grid.NewDense(mask.W, mask.H)
	for y := 0; y < mask.H; y++ {
		for x := 0; x < mask.W; x++ {
			if !mask.At(x, y) {
				continue
			}
			best := math.MaxFloat64
			for by := 0; by < mask.H; by++ {
				for bx := 0; bx < mask.W; bx++ {
					if mask.At(bx, by) {
						continue
					}
					dx, dy := float64(x-bx), float64(y-by)
					if d2 := dx*dx + dy*dy; d2 < best {
						best = d2
					}
				}
			}
			out.Set(x, y, math.Sqrt(best))
		}
	}
	return out
}

func TestDistanceTransformBackgroundIsZero(t *testing.T) {
	mask := grid.NewMask(5, 5)
	mask.Set(2, 2, true)

	dist := DistanceTransform(mask)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if x == 2 && y == 2 {
				continue
			}
			if got := dist.At(x, y); got != 0 {
				t.Errorf("background (%d,%d) = %g, want 0", x, y, got)
			}
		}
	}
	if got := dist.At(2, 2); got != 1 {
		t.Errorf("isolated foreground pixel = %g, want 1", got)
	}
}

func TestDistanceTransformMatchesBruteForce(t *testing.T) {
	// Deterministic irregular mask: blob plus a protruding arm.
	mask := grid.NewMask(13, 9)
	for y := 2; y <= 6; y++ {
		for x := 3; x <= 7; x++ {
			mask.Set(x, y, true)
		}
	}
	for x := 8; x <= 11; x++ {
		mask.Set(x, 4, true)
	}
	mask.Set(1, 1, true) // isolated pixel

	got := DistanceTransform(mask)
	want := bruteForceDT(mask)
	for i := range want.Data {
		if math.Abs(got.Data[i]-want.Data[i]) > 1e-9 {
			t.Fatalf("pixel %d: got %g, want %g", i, got.Data[i], want.Data[i])
		}
	}
}

func TestDistanceTransformDisk(t *testing.T) {
	const cx, cy, r = 50, 50, 10
	mask := grid.NewMask(100, 100)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				mask.Set(x, y, true)
			}
		}
	}

	dist := DistanceTransform(mask)

	// The center is the deepest point, roughly one radius from background.
	center := dist.At(cx, cy)
	if center < r-1 || center > r+1 {
		t.Errorf("center distance = %g, want about %d", center, r)
	}
	if max := dist.Max(); max != center {
		t.Errorf("max %g not at the disk center (%g)", max, center)
	}
	// Distance decreases strictly toward the rim along a radius.
	if !(dist.At(cx+5, cy) < center) || !(dist.At(cx+9, cy) < dist.At(cx+5, cy)) {
		t.Error("distance does not decrease toward the rim")
	}
}

func TestDistanceTransformAllForeground(t *testing.T) {
	mask := grid.NewMask(8, 8)
	for i := range mask.Data {
		mask.Data[i] = true
	}

	dist := DistanceTransform(mask)
	// With no background anywhere, every pixel stays effectively infinite.
	if min := dist.Min(); min < 1e100 {
		t.Errorf("min distance %g, want an effectively infinite value", min)
	}
}

func TestDistanceTransformEmpty(t *testing.T) {
	dist := DistanceTransform(grid.NewMask(0, 0))
	if dist.W != 0 || dist.H != 0 {
		t.Errorf("empty mask produced %dx%d field", dist.W, dist.H)
	}
}
