package chart

import (
	"math"
	"sort"

	gochart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"dataviz/datatable"
)

// plot is the kind-specific part of a figure.
type plot struct {
	xAxis  gochart.XAxis
	yRange *gochart.ContinuousRange
	series []gochart.Series
}

var (
	seriesColor = gochart.GetDefaultColor(0)
	barFill     = seriesColor.WithAlpha(200)
	histFill    = seriesColor.WithAlpha(90)
)

// finiteFloat reads a numeric cell. Nulls and infinities are skipped: they
// have no position on a continuous axis.
func finiteFloat(ds *datatable.Dataset, row, col int) (float64, bool) {
	f, ok := ds.Float(row, col)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// categories are the distinct non-null values of a column placed on x
// positions 0..n-1.
type categories struct {
	values []datatable.Value
	index  map[string]int
}

func newCategories() *categories {
	return &categories{index: make(map[string]int)}
}

// add records v and returns its position.
func (c *categories) add(v datatable.Value) int {
	if pos, ok := c.index[v.Formatted]; ok {
		return pos
	}
	c.index[v.Formatted] = len(c.values)
	c.values = append(c.values, v)
	return len(c.values) - 1
}

func (c *categories) len() int {
	return len(c.values)
}

// sortValues orders the categories by value instead of first appearance.
func (c *categories) sortValues() {
	sort.SliceStable(c.values, func(i, j int) bool {
		return datatable.Compare(c.values[i], c.values[j]) < 0
	})
	for i, v := range c.values {
		c.index[v.Formatted] = i
	}
}

func (c *categories) positions() []float64 {
	xs := make([]float64, len(c.values))
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// axis labels each position, with blank ticks half a slot outside the first
// and last category so edge bars are drawn whole.
func (c *categories) axis() gochart.XAxis {
	n := len(c.values)
	ticks := make([]gochart.Tick, 0, n+2)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	for i, v := range c.values {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: v.Formatted})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n) - 0.5})

	return gochart.XAxis{
		Ticks: ticks,
		Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
	}
}

// orderedCategories collects the categories of col over the given rows.
// Text keeps first-appearance order; numbers and booleans are sorted.
func orderedCategories(ds *datatable.Dataset, col int, rows []int) (*categories, error) {
	kind, err := ds.ColumnKind(col)
	if err != nil {
		return nil, err
	}
	cats := newCategories()
	for _, r := range rows {
		v, err := ds.Cell(r, col)
		if err != nil {
			return nil, err
		}
		cats.add(v)
	}
	if kind != datatable.KindText {
		cats.sortValues()
	}
	return cats, nil
}

// valueRange pads [lo, hi] by five percent. With baseline set the range
// always includes zero and is not padded past it.
func valueRange(lo, hi float64, baseline bool) *gochart.ContinuousRange {
	if baseline {
		lo, hi = min(lo, 0), max(hi, 0)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	r := &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	if baseline && lo == 0 {
		r.Min = 0
	}
	if baseline && hi == 0 {
		r.Max = 0
	}
	return r
}

// linePlot draws y against x in row order, as a line or as dots.
func linePlot(ds *datatable.Dataset, xcol, ycol int, dots bool) (plot, error) {
	xkind, err := ds.ColumnKind(xcol)
	if err != nil {
		return plot{}, err
	}

	var cats *categories
	if xkind != datatable.KindNumeric {
		cats = newCategories()
	}

	var xs, ys []float64
	for r := 0; r < ds.RowCount(); r++ {
		y, ok := finiteFloat(ds, r, ycol)
		if !ok {
			continue
		}
		var x float64
		if cats == nil {
			if x, ok = finiteFloat(ds, r, xcol); !ok {
				continue
			}
		} else {
			v, err := ds.Cell(r, xcol)
			if err != nil {
				return plot{}, err
			}
			if v.IsNull {
				continue
			}
			x = float64(cats.add(v))
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return plot{}, ErrNoData
	}

	style := gochart.Style{
		StrokeColor: seriesColor,
		StrokeWidth: 2,
	}
	if dots {
		style = gochart.Style{
			StrokeWidth: gochart.Disabled,
			DotColor:    seriesColor,
			DotWidth:    4,
		}
	}

	p := plot{
		yRange: valueRange(floats.Min(ys), floats.Max(ys), false),
		series: []gochart.Series{
			gochart.ContinuousSeries{Style: style, XValues: xs, YValues: ys},
		},
	}
	if cats != nil {
		p.xAxis = cats.axis()
	} else {
		xr := valueRange(floats.Min(xs), floats.Max(xs), false)
		p.xAxis = gochart.XAxis{Range: xr}
	}
	return p, nil
}

// barPlot draws one bar per x category with the mean of y in that category.
func barPlot(ds *datatable.Dataset, xcol, ycol int) (plot, error) {
	var rows []int
	for r := 0; r < ds.RowCount(); r++ {
		if _, ok := finiteFloat(ds, r, ycol); !ok {
			continue
		}
		if v, err := ds.Cell(r, xcol); err != nil || v.IsNull {
			continue
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		return plot{}, ErrNoData
	}

	cats, err := orderedCategories(ds, xcol, rows)
	if err != nil {
		return plot{}, err
	}
	groups := make([][]float64, cats.len())
	for _, r := range rows {
		v, _ := ds.Cell(r, xcol)
		y, _ := finiteFloat(ds, r, ycol)
		pos := cats.index[v.Formatted]
		groups[pos] = append(groups[pos], y)
	}
	means := make([]float64, len(groups))
	for i, g := range groups {
		means[i] = stat.Mean(g, nil)
	}

	return barsOf(cats, means), nil
}

// countPlot draws one bar per x category with the number of rows holding it.
func countPlot(ds *datatable.Dataset, xcol int) (plot, error) {
	var rows []int
	for r := 0; r < ds.RowCount(); r++ {
		if v, err := ds.Cell(r, xcol); err == nil && !v.IsNull {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return plot{}, ErrNoData
	}

	cats, err := orderedCategories(ds, xcol, rows)
	if err != nil {
		return plot{}, err
	}
	counts := make([]float64, cats.len())
	for _, r := range rows {
		v, _ := ds.Cell(r, xcol)
		counts[cats.index[v.Formatted]]++
	}

	return barsOf(cats, counts), nil
}

func barsOf(cats *categories, heights []float64) plot {
	return plot{
		xAxis:  cats.axis(),
		yRange: valueRange(floats.Min(heights), floats.Max(heights), true),
		series: []gochart.Series{
			gochart.HistogramSeries{
				Style: gochart.Style{
					FillColor:   barFill,
					StrokeColor: gochart.ColorWhite,
					StrokeWidth: 1,
				},
				InnerSeries: gochart.ContinuousSeries{
					XValues: cats.positions(),
					YValues: heights,
				},
			},
		},
	}
}

// distributionPlot draws a density histogram of x with a kernel density
// curve over it.
func distributionPlot(ds *datatable.Dataset, xcol int) (plot, error) {
	var values []float64
	for r := 0; r < ds.RowCount(); r++ {
		if x, ok := finiteFloat(ds, r, xcol); ok {
			values = append(values, x)
		}
	}
	if len(values) == 0 {
		return plot{}, ErrNoData
	}

	hist := densityHistogram(values)
	hx, hy := hist.outline()

	lo, hi := hist.edges[0], hist.edges[len(hist.edges)-1]
	top := hist.maxDensity()

	series := []gochart.Series{
		gochart.ContinuousSeries{
			Name: "histogram",
			Style: gochart.Style{
				StrokeColor: seriesColor,
				StrokeWidth: 1,
				FillColor:   histFill,
			},
			XValues: hx,
			YValues: hy,
		},
	}

	if kx, ky := gaussianKDE(values); kx != nil {
		lo, hi = min(lo, kx[0]), max(hi, kx[len(kx)-1])
		top = max(top, floats.Max(ky))
		series = append(series, gochart.ContinuousSeries{
			Name: "density",
			Style: gochart.Style{
				StrokeColor: seriesColor,
				StrokeWidth: 2,
			},
			XValues: kx,
			YValues: ky,
		})
	}

	return plot{
		xAxis:  gochart.XAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		yRange: valueRange(0, top, true),
		series: series,
	}, nil
}
