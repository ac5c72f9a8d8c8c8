package chart

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/integrate"

	"dataviz/datatable"
	"dataviz/ingest"
)

const flightsCSV = "month,passengers,carrier,delay,on_time\n" +
	"1,112,AA,3.5,true\n" +
	"2,118,UA,,false\n" +
	"3,132,AA,1.25,true\n" +
	"4,129,DL,7,true\n" +
	"5,121,UA,0.5,false\n" +
	"6,135,AA,2,true\n"

func loadFlights(t *testing.T) *datatable.Dataset {
	t.Helper()
	ds, err := ingest.Normalize([]byte(flightsCSV), "flights.csv")
	require.NoError(t, err)
	t.Cleanup(ds.Release)
	return ds
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []string{"Line Plot", "Bar Chart", "Scatter Plot", "Distribution Plot", "Count Plot"}, Kinds())
	for _, name := range Kinds() {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}
	_, err := ParseKind("Pie Chart")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.True(t, KindScatter.NeedsY())
	assert.False(t, KindCount.NeedsY())
}

func TestBuildLabels(t *testing.T) {
	ds := loadFlights(t)

	tests := []struct {
		spec   Spec
		xLabel string
		yLabel string
	}{
		{Spec{X: "month", Y: "passengers", Kind: KindLine, Title: "Passengers by month"}, "month", "passengers"},
		{Spec{X: "carrier", Y: "delay", Kind: KindBar, Title: "Mean delay"}, "carrier", "delay"},
		{Spec{X: "passengers", Y: "delay", Kind: KindScatter, Title: "  spaced  title "}, "passengers", "delay"},
		{Spec{X: "delay", Y: "passengers", Kind: KindDistribution, Title: "Delays"}, "delay", "Density"},
		{Spec{X: "delay", Y: None, Kind: KindDistribution}, "delay", "Density"},
		{Spec{X: "carrier", Y: "passengers", Kind: KindCount, Title: "Flights per carrier"}, "carrier", "Count"},
		{Spec{X: "on_time", Kind: KindCount}, "on_time", "Count"},
	}

	for _, tt := range tests {
		t.Run(tt.spec.Kind.String()+"/"+tt.spec.X, func(t *testing.T) {
			fig, err := Build(ds, tt.spec, DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.spec.Title, fig.Title)
			assert.Equal(t, tt.xLabel, fig.XLabel)
			assert.Equal(t, tt.yLabel, fig.YLabel)
			assert.Equal(t, tt.spec.Kind, fig.Kind)

			data, err := fig.PNG()
			require.NoError(t, err)
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 1000, cfg.Width)
			assert.Equal(t, 600, cfg.Height)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	ds := loadFlights(t)

	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"no x", Spec{X: None, Y: "delay", Kind: KindLine}, ErrMissingAxis},
		{"no y", Spec{X: "month", Y: None, Kind: KindScatter}, ErrMissingAxis},
		{"empty y", Spec{X: "month", Kind: KindBar}, ErrMissingAxis},
		{"unknown column", Spec{X: "year", Y: "delay", Kind: KindLine}, datatable.ErrColumnNotFound},
		{"text y", Spec{X: "month", Y: "carrier", Kind: KindLine}, ErrNotNumeric},
		{"bool y", Spec{X: "month", Y: "on_time", Kind: KindBar}, ErrNotNumeric},
		{"text distribution", Spec{X: "carrier", Kind: KindDistribution}, ErrNotNumeric},
		{"bad kind", Spec{X: "month", Y: "delay", Kind: Kind(42)}, ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fig, err := Build(ds, tt.spec, DefaultConfig())
			assert.Nil(t, fig)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Build(nil, Spec{X: "a", Kind: KindCount}, DefaultConfig())
	assert.ErrorIs(t, err, datatable.ErrNoDataSource)
}

func TestBuildNoData(t *testing.T) {
	ds, err := ingest.Normalize([]byte("a,b\n1,\n2,\n"), "gaps.csv")
	require.NoError(t, err)
	defer ds.Release()

	_, err = Build(ds, Spec{X: "a", Y: "b", Kind: KindLine}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoData)
	_, err = Build(ds, Spec{X: "b", Kind: KindDistribution}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestInfiniteValuesSkipped(t *testing.T) {
	ds, err := ingest.Normalize([]byte("x,y,z\n1,inf,inf\n2,3,-inf\n3,-inf,inf\n4,5,inf\n"), "inf.csv")
	require.NoError(t, err)
	defer ds.Release()

	for _, kind := range []Kind{KindLine, KindScatter} {
		fig, err := Build(ds, Spec{X: "x", Y: "y", Kind: kind}, DefaultConfig())
		require.NoError(t, err, kind.String())
		cs, ok := fig.chart.Series[0].(gochart.ContinuousSeries)
		require.True(t, ok)
		assert.Equal(t, []float64{2, 4}, cs.XValues)
		assert.Equal(t, []float64{3, 5}, cs.YValues)
		_, err = fig.PNG()
		assert.NoError(t, err, kind.String())
	}

	fig, err := Build(ds, Spec{X: "y", Kind: KindDistribution}, DefaultConfig())
	require.NoError(t, err)
	_, err = fig.PNG()
	assert.NoError(t, err)

	_, err = Build(ds, Spec{X: "z", Kind: KindDistribution}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoData)
	_, err = Build(ds, Spec{X: "x", Y: "z", Kind: KindBar}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoData)
}

func innerValues(t *testing.T, fig *Figure) (xs, ys []float64) {
	t.Helper()
	require.Len(t, fig.chart.Series, 1)
	hs, ok := fig.chart.Series[0].(gochart.HistogramSeries)
	require.True(t, ok)
	inner, ok := hs.InnerSeries.(gochart.ContinuousSeries)
	require.True(t, ok)
	return inner.XValues, inner.YValues
}

func tickLabels(fig *Figure) []string {
	var labels []string
	for _, tick := range fig.chart.XAxis.Ticks {
		if tick.Label != "" {
			labels = append(labels, tick.Label)
		}
	}
	return labels
}

func TestBarMeans(t *testing.T) {
	ds := loadFlights(t)
	fig, err := Build(ds, Spec{X: "carrier", Y: "passengers", Kind: KindBar}, DefaultConfig())
	require.NoError(t, err)

	xs, ys := innerValues(t, fig)
	assert.Equal(t, []float64{0, 1, 2}, xs)
	assert.InDeltaSlice(t, []float64{(112 + 132 + 135) / 3.0, (118 + 121) / 2.0, 129}, ys, 1e-9)
	assert.Equal(t, []string{"AA", "UA", "DL"}, tickLabels(fig))
}

func TestCountOrder(t *testing.T) {
	ds, err := ingest.Normalize([]byte("size,label\n3,c\n1,a\n3,c\n2,b\n,d\n"), "sizes.csv")
	require.NoError(t, err)
	defer ds.Release()

	fig, err := Build(ds, Spec{X: "size", Kind: KindCount}, DefaultConfig())
	require.NoError(t, err)
	_, ys := innerValues(t, fig)
	assert.Equal(t, []float64{1, 1, 2}, ys)
	assert.Equal(t, []string{"1", "2", "3"}, tickLabels(fig))

	fig, err = Build(ds, Spec{X: "label", Kind: KindCount}, DefaultConfig())
	require.NoError(t, err)
	_, ys = innerValues(t, fig)
	assert.Equal(t, []float64{2, 1, 1, 1}, ys)
	assert.Equal(t, []string{"c", "a", "b", "d"}, tickLabels(fig))
}

func TestLineKeepsRowOrder(t *testing.T) {
	ds, err := ingest.Normalize([]byte("x,y\n3,1\n1,2\n2,3\n"), "order.csv")
	require.NoError(t, err)
	defer ds.Release()

	fig, err := Build(ds, Spec{X: "x", Y: "y", Kind: KindLine}, DefaultConfig())
	require.NoError(t, err)
	cs, ok := fig.chart.Series[0].(gochart.ContinuousSeries)
	require.True(t, ok)
	assert.Equal(t, []float64{3, 1, 2}, cs.XValues)
	assert.Equal(t, []float64{1, 2, 3}, cs.YValues)
}

func TestDensityHistogram(t *testing.T) {
	values := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 9}
	h := densityHistogram(values)

	require.Len(t, h.densities, sturgesBins(len(values)))
	var area float64
	for i, d := range h.densities {
		area += d * (h.edges[i+1] - h.edges[i])
	}
	assert.InDelta(t, 1.0, area, 1e-9)
	assert.Equal(t, 1.0, h.edges[0])
	assert.Equal(t, 9.0, h.edges[len(h.edges)-1])

	single := densityHistogram([]float64{4, 4})
	assert.Equal(t, []float64{3.5, 4.5}, single.edges)
	assert.Equal(t, []float64{1}, single.densities)
}

func TestGaussianKDE(t *testing.T) {
	values := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 9}
	xs, ys := gaussianKDE(values)
	require.Len(t, xs, kdeGridSize)
	assert.InDelta(t, 1.0, integrate.Trapezoidal(xs, ys), 0.01)

	xs, ys = gaussianKDE([]float64{2, 2, 2})
	assert.Nil(t, xs)
	assert.Nil(t, ys)
	assert.Equal(t, 5, sturgesBins(10))
	assert.Equal(t, 1, sturgesBins(1))
}

func TestSave(t *testing.T) {
	ds := loadFlights(t)
	fig, err := Build(ds, Spec{X: "delay", Kind: KindDistribution, Title: "Delays"}, Config{Width: 400, Height: 300})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plot.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))
	require.NoError(t, fig.Save(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())

	img, err = fig.Image()
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dy())
}
