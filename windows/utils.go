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
	"strings"
	"unicode/utf8"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"dataviz/session"
)

// Preference keys. Missing keys fall back to session.DefaultSettings.
const (
	prefPlotFile    = "plotFile"
	prefPreviewRows = "previewRows"
	prefChartWidth  = "chartWidth"
	prefChartHeight = "chartHeight"
	prefDelimiter   = "csvDelimiter"
)

// settingsFromPreferences builds the session settings from the app preferences.
func settingsFromPreferences(p fyne.Preferences) session.Settings {
	s := session.DefaultSettings()
	s.PlotFile = p.StringWithFallback(prefPlotFile, s.PlotFile)
	s.PreviewRows = p.IntWithFallback(prefPreviewRows, s.PreviewRows)
	s.Chart.Width = p.IntWithFallback(prefChartWidth, s.Chart.Width)
	s.Chart.Height = p.IntWithFallback(prefChartHeight, s.Chart.Height)

	// an empty or multi-character delimiter keeps detection on
	if d := p.String(prefDelimiter); utf8.RuneCountInString(d) == 1 {
		r, _ := utf8.DecodeRuneInString(d)
		s.Ingest.Delimiter = r
	}
	return s
}

// runWithProgress shows a blocking progress dialog while work runs in the
// background, then calls done on the UI goroutine.
func runWithProgress(w fyne.Window, title string, work func() error, done func(error)) {
	pbi := widget.NewProgressBarInfinite()
	di := dialog.NewCustomWithoutButtons(title, pbi, w)
	di.Resize(fyne.NewSize(300, 100))
	di.Show()
	pbi.Start()

	go func() {
		err := work()
		fyne.Do(func() {
			pbi.Stop()
			di.Hide()
			done(err)
		})
	}()
}

// cleanFilename removes spaces and special characters from a filename.
func cleanFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}
