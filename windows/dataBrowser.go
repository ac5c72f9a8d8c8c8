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
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dataviz/datatable"
	"dataviz/session"
)

const columnWidth = 140

// datasetTable shows a subset of the rows of a dataset in a widget.Table with
// a header row. A nil rows slice shows every row.
type datasetTable struct {
	table *widget.Table
	ds    *datatable.Dataset
	rows  []int
}

func newDatasetTable() *datasetTable {
	v := &datasetTable{}
	v.table = widget.NewTableWithHeaders(
		func() (int, int) {
			if v.ds == nil {
				return 0, 0
			}
			return v.rowCount(), v.ds.ColumnCount()
		},
		func() fyne.CanvasObject {
			l := widget.NewLabel("template")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if v.ds == nil || id.Row >= v.rowCount() {
				label.SetText("")
				return
			}
			label.SetText(v.ds.Text(v.rowAt(id.Row), id.Col))
		},
	)
	v.table.ShowHeaderColumn = false
	v.table.CreateHeader = func() fyne.CanvasObject {
		l := widget.NewLabel("header")
		l.TextStyle = fyne.TextStyle{Bold: true}
		l.Truncation = fyne.TextTruncateEllipsis
		return l
	}
	v.table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		label := obj.(*widget.Label)
		if v.ds == nil || id.Row != -1 {
			label.SetText("")
			return
		}
		name, err := v.ds.ColumnName(id.Col)
		if err != nil {
			label.SetText("")
			return
		}
		label.SetText(name)
	}
	return v
}

func (v *datasetTable) rowCount() int {
	if v.rows != nil {
		return len(v.rows)
	}
	return v.ds.RowCount()
}

func (v *datasetTable) rowAt(i int) int {
	if v.rows != nil {
		return v.rows[i]
	}
	return i
}

// SetData replaces the table contents. ds may be nil to clear it.
func (v *datasetTable) SetData(ds *datatable.Dataset, rows []int) {
	v.ds, v.rows = ds, rows
	if ds != nil {
		for c := 0; c < ds.ColumnCount(); c++ {
			v.table.SetColumnWidth(c, columnWidth)
		}
	}
	v.table.ScrollToTop()
	v.table.Refresh()
}

// DataBrowser is the preview pane: the loaded dataset in a table with a
// filter entry above it.
type DataBrowser struct {
	session        *session.Session
	view           *datasetTable
	filterEntry    *widget.Entry
	filterError    *widget.Label
	title          *widget.Label
	statusCallback func(string)
	content        fyne.CanvasObject
}

func NewDataBrowser(s *session.Session, statusCallback func(string)) *DataBrowser {
	t := &DataBrowser{
		session:        s,
		view:           newDatasetTable(),
		statusCallback: statusCallback,
	}

	t.title = widget.NewLabel("No file loaded")
	t.title.TextStyle = fyne.TextStyle{Bold: true}

	t.filterEntry = widget.NewEntry()
	t.filterEntry.SetPlaceHolder(`Filter rows, e.g. price > 3 and region = "north"`)
	t.filterEntry.OnSubmitted = func(string) { t.Refresh() }

	t.filterError = widget.NewLabel("")
	t.filterError.Importance = widget.DangerImportance
	t.filterError.Wrapping = fyne.TextWrapWord
	t.filterError.Hide()

	apply := widget.NewButtonWithIcon("", theme.SearchIcon(), t.Refresh)
	clearButton := widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
		t.filterEntry.SetText("")
		t.Refresh()
	})

	top := container.NewVBox(
		t.title,
		container.NewBorder(nil, nil, nil, container.NewHBox(apply, clearButton), t.filterEntry),
		t.filterError,
	)
	t.content = container.NewBorder(top, nil, nil, nil, t.view.table)
	return t
}

// Content returns the pane's canvas object.
func (t *DataBrowser) Content() fyne.CanvasObject {
	return t.content
}

// Refresh re-reads the session dataset and applies the current filter.
func (t *DataBrowser) Refresh() {
	ds := t.session.Dataset()
	if ds == nil {
		t.title.SetText("No file loaded")
		t.filterError.Hide()
		t.view.SetData(nil, nil)
		return
	}

	rows, err := t.session.Preview(t.filterEntry.Text)
	if err != nil {
		t.filterError.SetText(err.Error())
		t.filterError.Show()
		return
	}
	t.filterError.Hide()
	if rows == nil {
		rows = []int{}
	}
	t.view.SetData(ds, rows)

	name, _ := ds.Metadata()[datatable.MetaSourceName].(string)
	t.title.SetText(fmt.Sprintf("%s (%d columns x %d rows)", name, ds.ColumnCount(), ds.RowCount()))
	t.updateStatus(ds, len(rows))
}

func (t *DataBrowser) updateStatus(ds *datatable.Dataset, shown int) {
	if t.statusCallback == nil {
		return
	}
	if t.filterEntry.Text == "" && shown == ds.RowCount() {
		t.statusCallback(fmt.Sprintf("Showing all %d rows", shown))
		return
	}
	t.statusCallback(fmt.Sprintf("Showing %d of %d rows", shown, ds.RowCount()))
}
