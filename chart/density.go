package chart

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// kdeGridSize is the number of points the density curve is evaluated at.
const kdeGridSize = 200

// kdeCut is how many bandwidths the curve extends past the data.
const kdeCut = 3.0

// histogram holds a density-normalized histogram: bin i covers
// [edges[i], edges[i+1]) and densities integrate to one.
type histogram struct {
	edges     []float64
	densities []float64
}

// sturgesBins returns the number of histogram bins for n observations.
func sturgesBins(n int) int {
	if n < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// densityHistogram bins values with Sturges' rule. values must not be empty.
func densityHistogram(values []float64) histogram {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	bins := sturgesBins(len(sorted))
	if lo == hi {
		lo, hi, bins = lo-0.5, hi+0.5, 1
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram treats the last edge as exclusive
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	n := float64(len(sorted))
	densities := make([]float64, bins)
	for i, c := range counts {
		densities[i] = c / (n * (edges[i+1] - edges[i]))
	}
	return histogram{edges: edges, densities: densities}
}

// outline returns the histogram as a closed step line along y = 0 so it can
// be drawn as a filled series.
func (h histogram) outline() (xs, ys []float64) {
	xs = append(xs, h.edges[0])
	ys = append(ys, 0)
	for i, d := range h.densities {
		xs = append(xs, h.edges[i], h.edges[i+1])
		ys = append(ys, d, d)
	}
	xs = append(xs, h.edges[len(h.edges)-1])
	ys = append(ys, 0)
	return xs, ys
}

func (h histogram) maxDensity() float64 {
	return floats.Max(h.densities)
}

// scottBandwidth is the Gaussian kernel width for values using Scott's
// rule. It is zero when the sample has no spread.
func scottBandwidth(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return sd * math.Pow(float64(len(values)), -0.2)
}

// gaussianKDE evaluates a Gaussian kernel density estimate of values on an
// even grid reaching kdeCut bandwidths past the data. It returns nil when
// the bandwidth is zero.
func gaussianKDE(values []float64) (xs, ys []float64) {
	bw := scottBandwidth(values)
	if bw == 0 {
		return nil, nil
	}

	lo := floats.Min(values) - kdeCut*bw
	hi := floats.Max(values) + kdeCut*bw
	xs = floats.Span(make([]float64, kdeGridSize), lo, hi)
	ys = make([]float64, kdeGridSize)

	kernels := make([]distuv.Normal, len(values))
	for i, v := range values {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bw}
	}

	n := float64(len(values))
	for i, x := range xs {
		var sum float64
		for _, k := range kernels {
			sum += k.Prob(x)
		}
		ys[i] = sum / n
	}
	return xs, ys
}
