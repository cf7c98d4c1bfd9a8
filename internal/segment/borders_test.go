package segment

import (
	"testing"

	"nanosizer/pkg/grid"
)

func TestFilterBorderZeroMarginKeepsAll(t *testing.T) {
	labels := grid.NewLabels(5, 5)
	labels.Set(0, 0, 1)
	labels.Set(2, 2, 2)

	out := FilterBorder(labels, 0)
	if out.At(0, 0) != 1 || out.At(2, 2) != 2 {
		t.Error("margin 0 removed a segment")
	}

	// The result is a copy even when nothing changes.
	out.Set(2, 2, 9)
	if labels.At(2, 2) != 2 {
		t.Error("FilterBorder returned the input instead of a copy")
	}
}

func TestFilterBorderRemovesWholeSegment(t *testing.T) {
	// Segment 1 touches row 0, segment 2 is interior.
	labels := grid.NewLabels(10, 10)
	for y := 0; y <= 3; y++ {
		labels.Set(4, y, 1)
	}
	labels.Set(5, 5, 2)
	labels.Set(5, 6, 2)

	out := FilterBorder(labels, 1)

	// Every pixel of segment 1 goes, including the interior ones.
	for y := 0; y <= 3; y++ {
		if out.At(4, y) != 0 {
			t.Errorf("segment 1 pixel at row %d survived", y)
		}
	}
	if out.At(5, 5) != 2 || out.At(5, 6) != 2 {
		t.Error("interior segment 2 was removed")
	}
}

func TestFilterBorderMarginConvention(t *testing.T) {
	// With margin 2 on a 10-wide grid, columns 0,1 and 8,9 are border zone;
	// column 2 and column 7 are the first safe columns.
	labels := grid.NewLabels(10, 10)
	labels.Set(1, 5, 1) // inside the zone
	labels.Set(2, 5, 2) // first safe column
	labels.Set(7, 5, 3) // last safe column
	labels.Set(8, 5, 4) // inside the zone

	out := FilterBorder(labels, 2)
	if out.At(1, 5) != 0 {
		t.Error("segment at column 1 survived margin 2")
	}
	if out.At(2, 5) != 2 {
		t.Error("segment at column 2 removed by margin 2")
	}
	if out.At(7, 5) != 3 {
		t.Error("segment at column 7 removed by margin 2")
	}
	if out.At(8, 5) != 0 {
		t.Error("segment at column 8 survived margin 2")
	}
}

func TestFilterBorderOversizedMargin(t *testing.T) {
	labels := grid.NewLabels(4, 4)
	labels.Set(2, 2, 1)

	out := FilterBorder(labels, 3)
	if got := out.MaxLabel(); got != 0 {
		t.Errorf("margin covering the whole grid kept label %d", got)
	}
}
