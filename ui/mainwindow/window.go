// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"nanosizer/internal/imageio"
	"nanosizer/internal/pipeline"
	"nanosizer/internal/render"
	"nanosizer/internal/version"
	"nanosizer/ui/panels"
	"nanosizer/ui/prefs"
)

// Stage display names, in pipeline order.
var stageNames = []string{
	"Micrograph",
	"Mask",
	"Distance",
	"Markers",
	"Segments",
	"Filtered",
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *pipeline.Session
	prefs   *prefs.Prefs

	view        *canvas.Image
	stageSelect *widget.Select
	params      *panels.ParamsPanel
	calibration *panels.CalibrationPanel
	results     *panels.ResultsPanel
	statusBar   *widget.Label
}

// New creates the main window wired to an analysis session.
func New(fyneApp fyne.App, session *pipeline.Session, p *prefs.Prefs) *MainWindow {
	w := &MainWindow{
		Window:  fyneApp.NewWindow(version.AppName),
		app:     fyneApp,
		session: session,
		prefs:   p,
	}

	w.view = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	w.view.FillMode = canvas.ImageFillContain
	w.view.SetMinSize(fyne.NewSize(480, 480))

	w.stageSelect = widget.NewSelect(stageNames, func(string) { w.refreshView() })
	w.stageSelect.SetSelectedIndex(0)

	w.statusBar = widget.NewLabel("Open a micrograph to begin")

	w.params = panels.NewParamsPanel(session, w.onParamsChanged)
	w.calibration = panels.NewCalibrationPanel(session, w.onCalibrated)
	w.results = panels.NewResultsPanel()

	side := container.NewVBox(
		w.calibration.Container(),
		widget.NewSeparator(),
		w.params.Container(),
		widget.NewSeparator(),
		w.results.Container(),
	)

	center := container.NewBorder(
		container.NewHBox(widget.NewLabel("Stage:"), w.stageSelect), nil, nil, nil,
		w.view,
	)

	w.SetContent(container.NewBorder(nil, w.statusBar, nil, container.NewVScroll(side), center))
	w.SetMainMenu(w.buildMenu())

	width := float32(w.prefs.Float(prefs.KeyWindowWidth, 1100))
	height := float32(w.prefs.Float(prefs.KeyWindowHeight, 720))
	w.Resize(fyne.NewSize(width, height))

	w.SetOnClosed(func() {
		size := w.Canvas().Size()
		w.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		w.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
		_ = w.prefs.Save()
	})

	return w
}

func (w *MainWindow) buildMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Micrograph...", w.openImageDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { w.app.Quit() }),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			dialog.ShowInformation("About",
				fmt.Sprintf("%s %s\nParticle size distributions from electron micrographs",
					version.AppName, version.Version), w)
		}),
	)
	return fyne.NewMainMenu(fileMenu, helpMenu)
}

func (w *MainWindow) openImageDialog() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		w.OpenImage(path)
	}, w)
	fd.SetFilter(storage.NewExtensionFileFilter(imageio.SupportedFormats()))
	fd.Show()
}

// OpenImage loads a micrograph and runs the pipeline with current parameters.
func (w *MainWindow) OpenImage(path string) {
	if err := w.session.LoadImage(path); err != nil {
		dialog.ShowError(err, w)
		return
	}
	w.prefs.SetString(prefs.KeyLastDir, filepath.Dir(path))
	w.prefs.SetString(prefs.KeyLastImage, path)

	// Start from the last session's scale; micrographs from one instrument
	// batch usually share it. A new calibration replaces it.
	if sf := w.prefs.Float(prefs.KeyScaleFactor, 0); sf > 0 {
		_ = w.session.SetScale(sf)
	}

	meta := w.session.Meta()
	status := fmt.Sprintf("%s  %dx%d %s", filepath.Base(path), meta.Width, meta.Height, meta.Format)
	if meta.DPI > 0 {
		status += fmt.Sprintf("  %.0f dpi", meta.DPI)
	}
	w.statusBar.SetText(status)
	w.recompute()
}

// onParamsChanged is called by the params panel after any parameter edit.
func (w *MainWindow) onParamsChanged() {
	w.recompute()
}

// onCalibrated is called by the calibration panel after a successful
// calibration or manual scale entry.
func (w *MainWindow) onCalibrated(scale float64) {
	w.prefs.SetFloat(prefs.KeyScaleFactor, scale)
	w.recompute()
}

func (w *MainWindow) recompute() {
	if w.session.Image() == nil {
		return
	}
	err := w.session.Recompute()
	w.refreshView()
	if err != nil {
		// Geometric stages may be fine while sizing is not (no scale yet,
		// or no particle in the window); show the reason, keep the views.
		w.statusBar.SetText(err.Error())
		w.results.Clear()
		return
	}
	samples, fit := w.session.Results()
	w.results.Update(samples, fit)
	w.statusBar.SetText(fmt.Sprintf("%d particles, mean %.2f, sigma %.2f", len(samples), fit.Mean, fit.Sigma))
}

// refreshView redraws the center canvas for the selected stage.
func (w *MainWindow) refreshView() {
	img := w.session.Image()
	if img == nil {
		return
	}

	var out image.Image
	switch w.stageSelect.SelectedIndex() {
	case 1:
		if m := w.session.Mask(); m != nil {
			out = render.MaskImage(m)
		}
	case 2:
		if d := w.session.DistanceField(); d != nil {
			out = render.DistanceImage(d)
		}
	case 3:
		if m := w.session.Markers(); m != nil {
			out = render.LabelImage(m)
		}
	case 4:
		if l := w.session.Labels(); l != nil {
			out = render.LabelImage(l)
		}
	case 5:
		if f := w.session.Filtered(); f != nil {
			out = render.Overlay(img, f)
		}
	}
	if out == nil {
		out = render.GrayImage(img)
	}

	w.view.Image = out
	w.view.Refresh()
}
