// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dataviz/datatable"
	"dataviz/ingest"
	"dataviz/session"
)

const prefLastDir = "lastUploadDir"

type MainWindow struct {
	a           fyne.App
	w           fyne.Window
	session     *session.Session
	dataBrowser *DataBrowser
	plotPanel   *PlotPanel
	pivotPanel  *PivotPanel
	tabs        *container.AppTabs
	statusBar   *widget.Label
}

func CreateMainWindow() *MainWindow {
	var v MainWindow
	v.NewMainWindow()
	return &v
}

// SetStatus updates the status bar message
func (t *MainWindow) SetStatus(message string) {
	if t.statusBar != nil {
		t.statusBar.SetText(message)
	}
}

func (t *MainWindow) NewMainWindow() {
	t.a = app.NewWithID("dataviz")
	t.a.Settings().SetTheme(&CustomTheme{})
	t.session = session.New(settingsFromPreferences(t.a.Preferences()))
	defer t.session.Close()

	t.w = t.a.NewWindow("Data Visualizer")
	t.w.Resize(fyne.NewSize(1200, 800))

	t.statusBar = widget.NewLabel("Ready")
	t.statusBar.TextStyle = fyne.TextStyle{Italic: true}

	t.dataBrowser = NewDataBrowser(t.session, t.SetStatus)
	t.plotPanel = NewPlotPanel(t.w, t.session, t.SetStatus)
	t.pivotPanel = NewPivotPanel(t.w, t.session, t.SetStatus)

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.UploadIcon(), t.Upload),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), t.plotPanel.Download),
		widget.NewToolbarSeparator(),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.InfoIcon(), t.showAbout),
	)

	t.tabs = container.NewAppTabs(
		container.NewTabItemWithIcon("Data", theme.ListIcon(), t.dataBrowser.Content()),
		container.NewTabItemWithIcon("Plot", theme.MediaPhotoIcon(), t.plotPanel.Content()),
		container.NewTabItemWithIcon("Pivot Table", theme.GridIcon(), t.pivotPanel.Content()),
	)
	t.tabs.SetTabLocation(container.TabLocationTop)

	c := container.NewBorder(toolbar, container.NewHBox(t.statusBar), nil, nil, t.tabs)
	t.w.SetContent(c)
	t.w.ShowAndRun()
}

// Upload opens the upload dialog and loads the chosen file.
func (t *MainWindow) Upload() {
	prefs := t.a.Preferences()
	var ud *UploadDialog
	ud = NewUploadDialog(t.w, prefs.String(prefLastDir), func(name string, data []byte, err error) {
		prefs.SetString(prefLastDir, ud.CurrentDir())
		if err != nil {
			t.SetStatus("Error reading file")
			dialog.ShowError(err, t.w)
			return
		}
		t.loadFile(name, data)
	})
	ud.Show()
}

func (t *MainWindow) loadFile(name string, data []byte) {
	t.SetStatus("Loading " + name + "...")

	var ds *datatable.Dataset
	runWithProgress(t.w, "Loading "+filepath.Base(name), func() error {
		var err error
		ds, err = t.session.Load(name, data)
		return err
	}, func(err error) {
		// the session is reset either way
		t.dataBrowser.Refresh()
		t.plotPanel.Reset()
		t.pivotPanel.Reset()

		if err != nil {
			t.SetStatus("Error loading " + name)
			var ingestErr *ingest.Error
			if errors.As(err, &ingestErr) {
				dialog.ShowError(fmt.Errorf("could not read %s: %w", ingestErr.File, ingestErr.Err), t.w)
				return
			}
			dialog.ShowError(err, t.w)
			return
		}

		log.Printf("Loaded %s: %d columns, %d rows", name, ds.ColumnCount(), ds.RowCount())
		t.tabs.SelectIndex(0)
		t.SetStatus(fmt.Sprintf("File loaded successfully: %s (%d rows)", name, ds.RowCount()))
	})
}

func (t *MainWindow) showAbout() {
	settings := t.session.Settings()
	dialog.ShowInformation("Data Visualizer",
		fmt.Sprintf("Upload a %v file, then plot or pivot its columns.\n\nPlots are saved to %s.",
			ingest.Extensions(), settings.PlotFile), t.w)
}
