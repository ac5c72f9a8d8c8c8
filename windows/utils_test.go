package windows

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"dataviz/session"
)

func TestSettingsFromPreferences(t *testing.T) {
	a := test.NewTempApp(t)
	prefs := a.Preferences()

	assert.Equal(t, session.DefaultSettings().PlotFile, settingsFromPreferences(prefs).PlotFile)

	prefs.SetString(prefPlotFile, "/tmp/out.png")
	prefs.SetInt(prefChartWidth, 640)
	prefs.SetString(prefDelimiter, ";")
	s := settingsFromPreferences(prefs)
	assert.Equal(t, "/tmp/out.png", s.PlotFile)
	assert.Equal(t, 640, s.Chart.Width)
	assert.Equal(t, 600, s.Chart.Height)
	assert.Equal(t, ';', s.Ingest.Delimiter)

	prefs.SetString(prefDelimiter, "ab")
	assert.Equal(t, rune(0), settingsFromPreferences(prefs).Ingest.Delimiter)
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "sum_sales_by_region", cleanFilename("sum_sales_by_region"))
	assert.Equal(t, "unit_price", cleanFilename("unit price?"))
	assert.Equal(t, "export", cleanFilename("%%%"))
}
