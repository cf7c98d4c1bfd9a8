// Package panels provides the side-panel widgets of the main window.
package panels

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"nanosizer/internal/pipeline"
)

// ParamsPanel exposes the pipeline parameters as interactive controls.
// Every edit pushes the full parameter set into the session and notifies the
// window, which triggers an incremental recompute.
type ParamsPanel struct {
	session   *pipeline.Session
	onChanged func()

	threshold *widget.Slider
	threshLbl *widget.Label
	repair    *widget.Check
	quantile  *widget.Slider
	quantLbl  *widget.Label
	margin    *widget.Entry
	minSize   *widget.Entry
	maxSize   *widget.Entry
	container *fyne.Container
}

// NewParamsPanel builds the parameter controls from the session's current
// parameter values.
func NewParamsPanel(session *pipeline.Session, onChanged func()) *ParamsPanel {
	p := &ParamsPanel{session: session, onChanged: onChanged}
	params := session.Params()

	p.threshLbl = widget.NewLabel(fmt.Sprintf("Threshold: %.2f", params.Threshold))
	p.threshold = widget.NewSlider(0, 1)
	p.threshold.Step = 0.01
	p.threshold.Value = params.Threshold
	p.threshold.OnChangeEnded = func(v float64) {
		p.threshLbl.SetText(fmt.Sprintf("Threshold: %.2f", v))
		p.apply()
	}

	p.repair = widget.NewCheck("Repair mask holes (slow)", func(bool) { p.apply() })
	p.repair.Checked = params.Repair

	p.quantLbl = widget.NewLabel(fmt.Sprintf("Marker quantile: %.2f", params.Quantile))
	p.quantile = widget.NewSlider(0, 1)
	p.quantile.Step = 0.01
	p.quantile.Value = params.Quantile
	p.quantile.OnChangeEnded = func(v float64) {
		p.quantLbl.SetText(fmt.Sprintf("Marker quantile: %.2f", v))
		p.apply()
	}

	p.margin = widget.NewEntry()
	p.margin.SetText(strconv.Itoa(params.BorderMargin))
	p.margin.OnSubmitted = func(string) { p.apply() }

	p.minSize = widget.NewEntry()
	p.minSize.SetText(fmt.Sprintf("%g", params.MinSize))
	p.minSize.OnSubmitted = func(string) { p.apply() }

	p.maxSize = widget.NewEntry()
	p.maxSize.SetText(fmt.Sprintf("%g", params.MaxSize))
	p.maxSize.OnSubmitted = func(string) { p.apply() }

	p.container = container.NewVBox(
		widget.NewLabelWithStyle("Segmentation", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.threshLbl, p.threshold,
		p.repair,
		p.quantLbl, p.quantile,
		widget.NewForm(
			widget.NewFormItem("Border margin (px)", p.margin),
			widget.NewFormItem("Min size", p.minSize),
			widget.NewFormItem("Max size", p.maxSize),
		),
	)
	return p
}

// Container returns the panel's root container.
func (p *ParamsPanel) Container() fyne.CanvasObject {
	return p.container
}

// apply pushes the control values into the session and notifies the window.
func (p *ParamsPanel) apply() {
	params := p.session.Params()
	params.Threshold = p.threshold.Value
	params.Repair = p.repair.Checked
	params.Quantile = p.quantile.Value
	if v, err := strconv.Atoi(p.margin.Text); err == nil && v >= 0 {
		params.BorderMargin = v
	}
	if v, err := strconv.ParseFloat(p.minSize.Text, 64); err == nil {
		params.MinSize = v
	}
	if v, err := strconv.ParseFloat(p.maxSize.Text, 64); err == nil {
		params.MaxSize = v
	}
	p.session.SetParams(params)
	if p.onChanged != nil {
		p.onChanged()
	}
}
