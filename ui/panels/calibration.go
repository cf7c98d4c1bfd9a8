package panels

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"nanosizer/internal/pipeline"
	"nanosizer/pkg/geometry"
)

// CalibrationPanel derives the physical scale from a scale-bar selection.
// The selection rectangle is entered numerically; the pipeline receives the
// rectangle, not the gesture that produced it.
type CalibrationPanel struct {
	session      *pipeline.Session
	onCalibrated func(scale float64)

	rectX, rectY *widget.Entry
	rectW, rectH *widget.Entry
	barLength    *widget.Entry
	manualScale  *widget.Entry
	scaleLabel   *widget.Label
	container    *fyne.Container
}

// NewCalibrationPanel builds the calibration controls.
func NewCalibrationPanel(session *pipeline.Session, onCalibrated func(float64)) *CalibrationPanel {
	p := &CalibrationPanel{session: session, onCalibrated: onCalibrated}

	p.rectX = newIntEntry("0")
	p.rectY = newIntEntry("0")
	p.rectW = newIntEntry("100")
	p.rectH = newIntEntry("40")
	p.barLength = widget.NewEntry()
	p.barLength.SetText(fmt.Sprintf("%g", session.Params().BarLength))
	p.manualScale = widget.NewEntry()
	p.manualScale.SetPlaceHolder("units/px")
	p.scaleLabel = widget.NewLabel("Scale: not calibrated")

	calibrateBtn := widget.NewButton("Calibrate from bar", p.calibrate)
	manualBtn := widget.NewButton("Set scale", p.setManualScale)

	p.container = container.NewVBox(
		widget.NewLabelWithStyle("Calibration", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Bar rect x", p.rectX),
			widget.NewFormItem("y", p.rectY),
			widget.NewFormItem("w", p.rectW),
			widget.NewFormItem("h", p.rectH),
			widget.NewFormItem("Bar length", p.barLength),
		),
		calibrateBtn,
		container.NewBorder(nil, nil, nil, manualBtn, p.manualScale),
		p.scaleLabel,
	)
	return p
}

// Container returns the panel's root container.
func (p *CalibrationPanel) Container() fyne.CanvasObject {
	return p.container
}

func (p *CalibrationPanel) calibrate() {
	rect := geometry.RectInt{
		X:      atoiOr(p.rectX.Text, 0),
		Y:      atoiOr(p.rectY.Text, 0),
		Width:  atoiOr(p.rectW.Text, 0),
		Height: atoiOr(p.rectH.Text, 0),
	}

	if length, err := strconv.ParseFloat(p.barLength.Text, 64); err == nil && length > 0 {
		params := p.session.Params()
		params.BarLength = length
		p.session.SetParams(params)
	}

	scale, err := p.session.Calibrate(rect)
	if err != nil {
		p.scaleLabel.SetText("Scale: " + err.Error())
		return
	}
	p.scaleLabel.SetText(fmt.Sprintf("Scale: %.4f units/px", scale))
	if p.onCalibrated != nil {
		p.onCalibrated(scale)
	}
}

func (p *CalibrationPanel) setManualScale() {
	scale, err := strconv.ParseFloat(p.manualScale.Text, 64)
	if err != nil || scale <= 0 {
		p.scaleLabel.SetText("Scale: enter a positive number")
		return
	}
	if err := p.session.SetScale(scale); err != nil {
		p.scaleLabel.SetText("Scale: " + err.Error())
		return
	}
	p.scaleLabel.SetText(fmt.Sprintf("Scale: %.4f units/px", scale))
	if p.onCalibrated != nil {
		p.onCalibrated(scale)
	}
}

func newIntEntry(initial string) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(initial)
	return e
}

func atoiOr(s string, fallback int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return fallback
}
