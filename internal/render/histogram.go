package render

import (
	"image"
	"image/color"
	"math"

	"nanosizer/internal/sizes"
)

// histogram colors
var (
	histBackground = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	histBar        = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	histCurve      = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	histAxis       = color.RGBA{R: 60, G: 60, B: 60, A: 255}
)

// Histogram draws a size histogram with the fitted Normal density overlaid.
// Bin count follows the square-root rule, clamped to [4, 32]. The curve is
// scaled to the bar heights so both share one vertical axis.
func Histogram(samples []float64, fit sizes.Fit, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, histBackground)
	if len(samples) == 0 || width < 20 || height < 20 {
		return img
	}

	lo, hi := samples[0], samples[0]
	for _, s := range samples {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	// Pad the range so edge bars aren't flush with the frame.
	span := hi - lo
	if span <= 0 {
		span = math.Max(lo*0.2, 1)
	}
	lo -= span * 0.15
	hi += span * 0.15
	span = hi - lo

	bins := int(math.Sqrt(float64(len(samples))) + 0.5)
	if bins < 4 {
		bins = 4
	}
	if bins > 32 {
		bins = 32
	}

	counts := make([]int, bins)
	maxCount := 0
	for _, s := range samples {
		b := int(float64(bins) * (s - lo) / span)
		if b < 0 {
			b = 0
		}
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
		if counts[b] > maxCount {
			maxCount = counts[b]
		}
	}

	const marginPx = 8
	plotW := width - 2*marginPx
	plotH := height - 2*marginPx

	// Bars.
	for b := 0; b < bins; b++ {
		if counts[b] == 0 {
			continue
		}
		barH := counts[b] * plotH / maxCount
		x0 := marginPx + b*plotW/bins
		x1 := marginPx + (b+1)*plotW/bins - 1
		for x := x0; x <= x1; x++ {
			for y := height - marginPx - barH; y < height-marginPx; y++ {
				img.SetRGBA(x, y, histBar)
			}
		}
	}

	// Fitted density, scaled to match the tallest bar.
	if fit.Sigma > 0 {
		binWidth := span / float64(bins)
		prevY := -1
		for px := 0; px < plotW; px++ {
			sz := lo + span*float64(px)/float64(plotW)
			// Expected count in a bin centered at sz, on the same axis as the bars.
			expected := fit.PDF(sz) * binWidth * float64(fit.N)
			y := height - marginPx - int(expected*float64(plotH)/float64(maxCount))
			if y < marginPx {
				y = marginPx
			}
			if y > height-marginPx {
				y = height - marginPx
			}
			drawVSegment(img, marginPx+px, prevY, y, histCurve)
			prevY = y
		}
	}

	// Frame.
	for x := marginPx; x < width-marginPx; x++ {
		img.SetRGBA(x, height-marginPx, histAxis)
	}
	for y := marginPx; y <= height-marginPx; y++ {
		img.SetRGBA(marginPx, y, histAxis)
	}

	return img
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawVSegment connects consecutive curve samples with a vertical run so the
// plotted line has no gaps on steep slopes.
func drawVSegment(img *image.RGBA, x, fromY, toY int, c color.RGBA) {
	if fromY < 0 {
		fromY = toY
	}
	if fromY > toY {
		fromY, toY = toY, fromY
	}
	for y := fromY; y <= toY; y++ {
		img.SetRGBA(x, y, c)
	}
}
