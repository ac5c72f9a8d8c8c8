package windows

import (
	"fmt"
	"io"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dataviz/datatable"
	"dataviz/export"
	"dataviz/pivot"
	"dataviz/session"
)

// PivotPanel holds the pivot controls and the last pivot table.
type PivotPanel struct {
	w       fyne.Window
	session *session.Session
	status  func(string)

	indexSelect  *widget.Select
	valueSelect  *widget.Select
	aggSelect    *widget.Select
	formatSelect *widget.Select
	warning      *widget.Label
	generate     *widget.Button
	exportButton *widget.Button
	view         *datasetTable
	content      fyne.CanvasObject

	spec pivot.Spec
}

func NewPivotPanel(w fyne.Window, s *session.Session, status func(string)) *PivotPanel {
	p := &PivotPanel{w: w, session: s, status: status, view: newDatasetTable()}

	p.indexSelect = widget.NewSelect(nil, func(string) { p.validate() })
	p.indexSelect.PlaceHolder = "(select index)"
	p.valueSelect = widget.NewSelect(nil, func(string) { p.validate() })
	p.valueSelect.PlaceHolder = "(select value)"
	p.aggSelect = widget.NewSelect(pivot.Aggs(), func(string) { p.validate() })
	p.formatSelect = widget.NewSelect(export.Formats(), nil)
	p.formatSelect.SetSelectedIndex(0)

	p.warning = widget.NewLabel("")
	p.warning.Importance = widget.WarningImportance
	p.warning.Wrapping = fyne.TextWrapWord
	p.warning.Hide()

	p.generate = widget.NewButtonWithIcon("Generate Pivot Table", theme.MediaPlayIcon(), p.Generate)
	p.generate.Importance = widget.HighImportance
	p.exportButton = widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), p.Export)
	p.exportButton.Disable()

	form := widget.NewForm(
		widget.NewFormItem("Index", p.indexSelect),
		widget.NewFormItem("Values", p.valueSelect),
		widget.NewFormItem("Aggregation", p.aggSelect),
	)
	buttons := container.NewHBox(p.generate, widget.NewSeparator(), p.formatSelect, p.exportButton)
	p.content = container.NewBorder(container.NewVBox(form, p.warning, buttons), nil, nil, nil, p.view.table)

	p.aggSelect.SetSelectedIndex(0)
	return p
}

// Content returns the panel's canvas object.
func (p *PivotPanel) Content() fyne.CanvasObject {
	return p.content
}

// Reset fills the column selects from the session and clears the result.
func (p *PivotPanel) Reset() {
	columns := p.session.Columns()
	p.indexSelect.ClearSelected()
	p.valueSelect.ClearSelected()
	p.indexSelect.SetOptions(columns)
	p.valueSelect.SetOptions(columns)
	p.view.SetData(nil, nil)
	p.exportButton.Disable()
	p.validate()
}

// validate checks the current selection and shows the rejection warning
// inline. Generate is only enabled for a pivot the session accepts.
func (p *PivotPanel) validate() {
	if p.generate == nil {
		return
	}
	p.warning.Hide()
	p.generate.Disable()

	agg, err := pivot.ParseAgg(p.aggSelect.Selected)
	if err != nil || p.indexSelect.Selected == "" || p.valueSelect.Selected == "" {
		return
	}
	spec := pivot.Spec{Index: p.indexSelect.Selected, Value: p.valueSelect.Selected, Agg: agg}

	if err := p.session.CheckPivot(spec); err != nil {
		if pivot.IsRejected(err) {
			p.warning.SetText(fmt.Sprintf("Cannot use %s on non-numeric data. Please choose a numeric column or use count.", agg))
			p.warning.Show()
		}
		return
	}
	p.spec = spec
	p.generate.Enable()
}

// Generate computes the pivot table for the validated selection.
func (p *PivotPanel) Generate() {
	spec := p.spec
	var out *datatable.Dataset

	p.status("Generating pivot table...")
	runWithProgress(p.w, "Generating pivot table...", func() error {
		var err error
		out, err = p.session.Pivot(spec)
		return err
	}, func(err error) {
		if err != nil {
			p.status("Error generating pivot table")
			dialog.ShowError(err, p.w)
			return
		}
		p.view.SetData(out, nil)
		p.exportButton.Enable()
		p.status(fmt.Sprintf("Pivot table: %d groups of %s by %s", out.RowCount(), spec.Value, spec.Index))
	})
}

// Export asks for a destination and writes the last pivot table in the
// selected format.
func (p *PivotPanel) Export() {
	format, err := export.ParseFormat(p.formatSelect.Selected)
	if err != nil {
		dialog.ShowError(err, p.w)
		return
	}

	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, p.w)
			return
		}
		if writer == nil {
			// cancelled
			return
		}
		filePath := writer.URI().Path()
		closeWriter(writer)

		runWithProgress(p.w, "Exporting...", func() error {
			return p.session.ExportPivot(filePath, format)
		}, func(err error) {
			if err != nil {
				p.status("Export failed")
				dialog.ShowError(fmt.Errorf("export failed: %w", err), p.w)
				return
			}
			p.status("Exported pivot table to " + filePath)
			dialog.ShowInformation("Export Successful",
				fmt.Sprintf("Data exported successfully to:\n%s", filePath), p.w)
		})
	}, p.w)

	name := fmt.Sprintf("%s_%s_by_%s", p.spec.Agg, p.spec.Value, p.spec.Index)
	saveDialog.SetFileName(cleanFilename(name) + format.Extension())
	saveDialog.Show()
}

// closeWriter releases the dialog's handle; the exporter reopens the path.
func closeWriter(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("Failed to close save target: %v", err)
	}
}
