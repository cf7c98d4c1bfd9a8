package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"nanosizer/internal/render"
	"nanosizer/internal/sizes"
)

const (
	histWidth  = 420
	histHeight = 260
)

// ResultsPanel shows the size histogram and the fitted distribution.
type ResultsPanel struct {
	histogram  *canvas.Image
	statsLabel *widget.Label
	container  *fyne.Container
}

// NewResultsPanel builds an empty results panel.
func NewResultsPanel() *ResultsPanel {
	p := &ResultsPanel{
		histogram:  canvas.NewImageFromImage(nil),
		statsLabel: widget.NewLabel("No results yet"),
	}
	p.histogram.FillMode = canvas.ImageFillContain
	p.histogram.SetMinSize(fyne.NewSize(histWidth, histHeight))

	p.container = container.NewVBox(
		widget.NewLabelWithStyle("Size distribution", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.histogram,
		p.statsLabel,
	)
	return p
}

// Container returns the panel's root container.
func (p *ResultsPanel) Container() fyne.CanvasObject {
	return p.container
}

// Update redraws the histogram for a new set of size samples.
func (p *ResultsPanel) Update(samples []float64, fit sizes.Fit) {
	if len(samples) == 0 {
		p.Clear()
		return
	}
	p.histogram.Image = render.Histogram(samples, fit, histWidth, histHeight)
	p.histogram.Refresh()
	p.statsLabel.SetText(fmt.Sprintf("mean %.2f  sigma %.2f  n=%d", fit.Mean, fit.Sigma, fit.N))
	p.statsLabel.Refresh()
}

// Clear resets the panel to its empty state.
func (p *ResultsPanel) Clear() {
	p.histogram.Image = nil
	p.histogram.Refresh()
	p.statsLabel.SetText("No results yet")
	p.statsLabel.Refresh()
}
