package session

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataviz/chart"
	"dataviz/datatable"
	"dataviz/export"
	"dataviz/ingest"
	"dataviz/pivot"
)

const salesCSV = "region,sales,rep\nA,10,ann\nA,20,bob\nB,5,ann\n"

func newSession(t *testing.T) *Session {
	t.Helper()
	settings := DefaultSettings()
	settings.PlotFile = filepath.Join(t.TempDir(), "plot.png")
	settings.Chart = chart.Config{Width: 320, Height: 240}
	s := New(settings)
	t.Cleanup(s.Close)
	return s
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()
	assert.Equal(t, "plot.png", settings.PlotFile)
	assert.Equal(t, chart.DefaultConfig(), settings.Chart)
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "Line Plot of sales vs region", DefaultTitle(chart.KindLine, "region", "sales"))
	assert.Equal(t, "Count Plot of None vs region", DefaultTitle(chart.KindCount, "region", chart.None))
}

func TestLoad(t *testing.T) {
	s := newSession(t)
	assert.Nil(t, s.Dataset())
	assert.Equal(t, []string{chart.None}, s.AxisOptions())

	ds, err := s.Load("sales.csv", []byte(salesCSV))
	require.NoError(t, err)
	assert.Same(t, ds, s.Dataset())
	assert.Equal(t, []string{"region", "sales", "rep"}, s.Columns())
	assert.Equal(t, []string{"region", "sales", "rep", chart.None}, s.AxisOptions())

	_, err = s.Load("notes.txt", []byte(salesCSV))
	assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
	assert.Nil(t, s.Dataset(), "a failed load clears the previous dataset")
	assert.Nil(t, s.Columns())
}

func TestNoDataset(t *testing.T) {
	s := newSession(t)

	_, err := s.Plot(chart.Spec{X: "a", Kind: chart.KindCount})
	assert.ErrorIs(t, err, ErrNoDataset)
	_, err = s.Pivot(pivot.Spec{Index: "a", Value: "b", Agg: pivot.AggCount})
	assert.ErrorIs(t, err, ErrNoDataset)
	assert.ErrorIs(t, s.CheckPivot(pivot.Spec{}), ErrNoDataset)
	_, err = s.Preview("")
	assert.ErrorIs(t, err, ErrNoDataset)
	_, err = s.SavePlot()
	assert.ErrorIs(t, err, ErrNoPlot)
	assert.ErrorIs(t, s.ExportPivot("x.csv", export.FormatCSV), ErrNoPivot)
}

func TestPlotAndSave(t *testing.T) {
	s := newSession(t)
	_, err := s.Load("sales.csv", []byte(salesCSV))
	require.NoError(t, err)

	title := DefaultTitle(chart.KindBar, "region", "sales")
	fig, err := s.Plot(chart.Spec{X: "region", Y: "sales", Kind: chart.KindBar, Title: title})
	require.NoError(t, err)
	assert.Equal(t, "Bar Chart of sales vs region", fig.Title)
	assert.Same(t, fig, s.Figure())

	_, err = s.Plot(chart.Spec{X: "region", Y: "rep", Kind: chart.KindLine})
	assert.ErrorIs(t, err, chart.ErrNotNumeric)
	assert.Same(t, fig, s.Figure(), "a failed plot keeps the last figure")

	path, err := s.SavePlot()
	require.NoError(t, err)
	assert.Equal(t, s.Settings().PlotFile, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
}

func TestPivotAndExport(t *testing.T) {
	s := newSession(t)
	_, err := s.Load("sales.csv", []byte(salesCSV))
	require.NoError(t, err)

	rejected := pivot.Spec{Index: "region", Value: "rep", Agg: pivot.AggMean}
	assert.True(t, pivot.IsRejected(s.CheckPivot(rejected)))

	spec := pivot.Spec{Index: "region", Value: "sales", Agg: pivot.AggSum}
	require.NoError(t, s.CheckPivot(spec))
	out, err := s.Pivot(spec)
	require.NoError(t, err)
	assert.Equal(t, 2, out.RowCount())
	assert.Equal(t, "30", out.Text(0, 1))
	assert.Equal(t, "5", out.Text(1, 1))

	path := filepath.Join(t.TempDir(), "pivot.csv")
	require.NoError(t, s.ExportPivot(path, export.FormatCSV))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "region,sales\nA,30\nB,5\n", string(data))
}

func TestPreview(t *testing.T) {
	settings := DefaultSettings()
	settings.PreviewRows = 2
	s := New(settings)
	defer s.Close()

	_, err := s.Load("sales.csv", []byte(salesCSV))
	require.NoError(t, err)

	rows, err := s.Preview("")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, rows)

	rows, err = s.Preview("rep = ann")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, rows)

	rows, err = s.Preview("sales > 5 and rep ~ b")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rows)

	_, err = s.Preview("price > 3")
	assert.ErrorIs(t, err, datatable.ErrInvalidFilter)
}

func TestReplacedDatasetsStayUsable(t *testing.T) {
	s := newSession(t)

	first, err := s.Load("sales.csv", []byte(salesCSV))
	require.NoError(t, err)
	spec := pivot.Spec{Index: "region", Value: "sales", Agg: pivot.AggSum}
	firstPivot, err := s.Pivot(spec)
	require.NoError(t, err)

	secondPivot, err := s.Pivot(pivot.Spec{Index: "rep", Value: "sales", Agg: pivot.AggCount})
	require.NoError(t, err)
	assert.NotSame(t, firstPivot, secondPivot)
	assert.Equal(t, 2, firstPivot.RowCount())
	assert.Equal(t, "30", firstPivot.Text(0, 1))

	_, err = s.Load("other.csv", []byte("a\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, first.RowCount())
	assert.Equal(t, "bob", first.Text(1, 2))
	assert.Equal(t, 2, secondPivot.RowCount())

	s.Close()
	assert.Equal(t, 3, first.RowCount())
}
