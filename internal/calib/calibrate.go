// Package calib derives the physical pixel scale from a user-selected
// scale-bar region.
package calib

import (
	"fmt"

	"nanosizer/pkg/geometry"
	"nanosizer/pkg/grid"
)

// EmptySelectionError reports a scale-bar selection with no qualifying
// bright pixel.
type EmptySelectionError struct {
	Rect geometry.RectInt
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("calibrate: selection %dx%d at (%d,%d) contains no scale-bar pixel",
		e.Rect.Width, e.Rect.Height, e.Rect.X, e.Rect.Y)
}

// DegenerateScaleError reports a scale bar with zero horizontal pixel span.
type DegenerateScaleError struct {
	Column int
}

func (e *DegenerateScaleError) Error() string {
	return fmt.Sprintf("calibrate: scale bar spans a single pixel column (%d)", e.Column)
}

// Calibrate computes the physical-units-per-pixel scale factor from a
// selection containing the image's scale bar. The brightest intensity in the
// selection is taken as the bar stroke; the scale is physicalLength divided
// by the column span of those brightest pixels. The returned mask marks the
// detected bar pixels (full image dimensions) so the caller can display what
// was selected.
func Calibrate(img *grid.Dense, sel geometry.RectInt, physicalLength float64) (float64, *grid.Mask, error) {
	if physicalLength <= 0 {
		return 0, nil, fmt.Errorf("calibrate: physical length must be positive, got %g", physicalLength)
	}
	sel = sel.Clamp(img.W, img.H)
	if sel.Empty() {
		return 0, nil, &EmptySelectionError{Rect: sel}
	}

	// Maximum intensity inside the selection.
	maxi := img.At(sel.X, sel.Y)
	for y := sel.Y; y < sel.Y+sel.Height; y++ {
		for x := sel.X; x < sel.X+sel.Width; x++ {
			if v := img.At(x, y); v > maxi {
				maxi = v
			}
		}
	}

	// Bar mask: pixels attaining the maximum. Track the column extremes.
	bar := grid.NewMask(img.W, img.H)
	minCol, maxCol := -1, -1
	for y := sel.Y; y < sel.Y+sel.Height; y++ {
		for x := sel.X; x < sel.X+sel.Width; x++ {
			if img.At(x, y) != maxi {
				continue
			}
			bar.Set(x, y, true)
			if minCol < 0 || x < minCol {
				minCol = x
			}
			if x > maxCol {
				maxCol = x
			}
		}
	}

	if minCol < 0 {
		return 0, nil, &EmptySelectionError{Rect: sel}
	}
	if minCol == maxCol {
		return 0, nil, &DegenerateScaleError{Column: minCol}
	}

	return physicalLength / float64(maxCol-minCol), bar, nil
}
