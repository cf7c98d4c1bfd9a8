package segment

import "nanosizer/pkg/grid"

// FilterBorder removes every segment that reaches within margin pixels of an
// image edge. A particle straddling the frame is only partially imaged and
// would bias the size statistics low, so the whole segment is zeroed, not
// just its edge pixels. The margin convention is first/last margin rows and
// columns: a pixel is in the border zone iff x < margin, x >= width-margin,
// y < margin, or y >= height-margin. Margin 0 keeps everything.
func FilterBorder(labels *grid.Labels, margin int) *grid.Labels {
	out := labels.Clone()
	if margin <= 0 {
		return out
	}

	w, h := labels.W, labels.H
	doomed := make(map[int32]bool)
	inBorder := func(x, y int) bool {
		return x < margin || x >= w-margin || y < margin || y >= h-margin
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if l := labels.At(x, y); l > 0 && inBorder(x, y) {
				doomed[l] = true
			}
		}
	}
	if len(doomed) == 0 {
		return out
	}

	for i, l := range out.Data {
		if doomed[l] {
			out.Data[i] = 0
		}
	}
	return out
}
