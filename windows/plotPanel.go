package windows

import (
	"errors"
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dataviz/chart"
	"dataviz/session"
)

// PlotPanel holds the plot controls and the rendered figure.
type PlotPanel struct {
	w       fyne.Window
	session *session.Session
	status  func(string)

	xSelect    *widget.Select
	ySelect    *widget.Select
	kindSelect *widget.Select
	titleEntry *widget.Entry
	generate   *widget.Button
	download   *widget.Button
	image      *canvas.Image
	content    fyne.CanvasObject

	// titleEdited is set once the user types a title of their own.
	titleEdited  bool
	settingTitle bool
}

func NewPlotPanel(w fyne.Window, s *session.Session, status func(string)) *PlotPanel {
	p := &PlotPanel{w: w, session: s, status: status}

	p.xSelect = widget.NewSelect(nil, func(string) { p.selectionChanged() })
	p.xSelect.PlaceHolder = "(select x)"
	p.ySelect = widget.NewSelect(nil, func(string) { p.selectionChanged() })
	p.ySelect.PlaceHolder = "(select y)"
	p.kindSelect = widget.NewSelect(chart.Kinds(), func(string) { p.selectionChanged() })

	p.titleEntry = widget.NewEntry()
	p.titleEntry.SetPlaceHolder("Plot title")
	p.titleEntry.OnChanged = func(text string) {
		if !p.settingTitle {
			p.titleEdited = text != ""
		}
	}

	p.generate = widget.NewButtonWithIcon("Generate Plot", theme.MediaPlayIcon(), p.Generate)
	p.generate.Importance = widget.HighImportance
	p.download = widget.NewButtonWithIcon("Download Plot", theme.DownloadIcon(), p.Download)
	p.download.Disable()

	p.image = canvas.NewImageFromImage(nil)
	p.image.FillMode = canvas.ImageFillContain
	p.image.SetMinSize(fyne.NewSize(500, 300))

	form := widget.NewForm(
		widget.NewFormItem("X axis", p.xSelect),
		widget.NewFormItem("Y axis", p.ySelect),
		widget.NewFormItem("Plot type", p.kindSelect),
		widget.NewFormItem("Title", p.titleEntry),
	)
	buttons := container.NewHBox(p.generate, p.download)
	p.content = container.NewBorder(container.NewVBox(form, buttons), nil, nil, nil, p.image)

	p.kindSelect.SetSelectedIndex(0)
	return p
}

// Content returns the panel's canvas object.
func (p *PlotPanel) Content() fyne.CanvasObject {
	return p.content
}

// Reset fills the axis selects from the session's current columns and clears
// the figure.
func (p *PlotPanel) Reset() {
	options := p.session.AxisOptions()
	p.xSelect.ClearSelected()
	p.ySelect.ClearSelected()
	p.xSelect.SetOptions(options)
	p.ySelect.SetOptions(options)

	p.titleEdited = false
	p.setTitle("")
	p.image.Image = nil
	p.image.Refresh()
	p.download.Disable()
}

func (p *PlotPanel) kind() (chart.Kind, error) {
	return chart.ParseKind(p.kindSelect.Selected)
}

func (p *PlotPanel) selectionChanged() {
	kind, err := p.kind()
	if err != nil {
		return
	}
	if kind.NeedsY() {
		p.ySelect.Enable()
	} else {
		// only the x column is drawn
		if p.ySelect.Selected != chart.None {
			p.ySelect.SetSelected(chart.None)
		}
		p.ySelect.Disable()
	}

	if !p.titleEdited && p.xSelect.Selected != "" {
		y := p.ySelect.Selected
		if y == "" {
			y = chart.None
		}
		p.setTitle(session.DefaultTitle(kind, p.xSelect.Selected, y))
	}
}

func (p *PlotPanel) setTitle(title string) {
	p.settingTitle = true
	p.titleEntry.SetText(title)
	p.settingTitle = false
}

// Generate builds the figure for the current selection and shows it.
func (p *PlotPanel) Generate() {
	kind, err := p.kind()
	if err != nil {
		dialog.ShowError(err, p.w)
		return
	}
	if p.xSelect.Selected == "" || p.xSelect.Selected == chart.None {
		dialog.ShowError(fmt.Errorf("%w: choose a column for the x axis", chart.ErrMissingAxis), p.w)
		return
	}

	spec := chart.Spec{
		X:     p.xSelect.Selected,
		Y:     p.ySelect.Selected,
		Kind:  kind,
		Title: p.titleEntry.Text,
	}
	if spec.Y == "" {
		spec.Y = chart.None
	}

	var img image.Image
	p.status("Generating " + kind.String() + "...")
	runWithProgress(p.w, "Generating plot...", func() error {
		fig, err := p.session.Plot(spec)
		if err != nil {
			return err
		}
		img, err = fig.Image()
		return err
	}, func(err error) {
		if err != nil {
			p.status("Error generating plot")
			if errors.Is(err, session.ErrNoDataset) {
				dialog.ShowInformation("No data", "Upload a file before generating a plot.", p.w)
				return
			}
			dialog.ShowError(err, p.w)
			return
		}
		p.image.Image = img
		p.image.Refresh()
		p.download.Enable()
		p.status(kind.String() + " generated")
	})
}

// Download writes the current figure to the configured plot file.
func (p *PlotPanel) Download() {
	path, err := p.session.SavePlot()
	if err != nil {
		if errors.Is(err, session.ErrNoPlot) {
			dialog.ShowInformation("No plot", "Generate a plot before downloading it.", p.w)
			return
		}
		p.status("Error saving plot")
		dialog.ShowError(fmt.Errorf("failed to save plot: %w", err), p.w)
		return
	}
	p.status("Plot saved as " + path)
	dialog.ShowInformation("Plot saved", fmt.Sprintf("Plot saved as %s", path), p.w)
}
