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

// Package chart builds line, bar, scatter, distribution and count plots
// from a dataset and renders them with go-chart.
package chart

import (
	"errors"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"

	"dataviz/datatable"
)

// None is the column choice meaning "no column".
const None = "None"

var (
	// ErrMissingAxis is returned when a plot type needs a column that was not chosen.
	ErrMissingAxis = errors.New("plot needs an x and a y column")

	// ErrNotNumeric is returned when a column that is drawn on a value axis
	// holds no numbers.
	ErrNotNumeric = errors.New("column is not numeric")

	// ErrNoData is returned when every row has a missing value in a plotted column.
	ErrNoData = errors.New("no values to plot")

	// ErrUnknownKind is returned for an unrecognized plot type.
	ErrUnknownKind = errors.New("unknown plot type")
)

// Spec describes the plot to build. Y is ignored by distribution and
// count plots.
type Spec struct {
	X     string
	Y     string
	Kind  Kind
	Title string
}

// Config holds rendering options.
type Config struct {
	Width  int
	Height int
	DPI    float64
}

// DefaultConfig returns the rendering options used by the application.
func DefaultConfig() Config {
	return Config{
		Width:  1000,
		Height: 600,
		DPI:    96,
	}
}

// Build maps the chosen columns onto a figure. The title is used verbatim;
// axis labels are the column names except for distribution and count plots,
// whose y axis is labelled "Density" and "Count".
func Build(ds *datatable.Dataset, spec Spec, cfg Config) (out *Figure, err error) {
	// gonum panics on inputs it cannot bin; report those as build errors
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to build %s: %v", spec.Kind, r)
		}
	}()

	if ds == nil {
		return nil, datatable.ErrNoDataSource
	}
	if spec.Kind < KindLine || spec.Kind > KindCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(spec.Kind))
	}
	if !chosen(spec.X) || (spec.Kind.NeedsY() && !chosen(spec.Y)) {
		return nil, fmt.Errorf("%w: %s", ErrMissingAxis, spec.Kind)
	}

	xcol, err := ds.Column(spec.X)
	if err != nil {
		return nil, err
	}
	ycol := -1
	if spec.Kind.NeedsY() {
		if ycol, err = ds.Column(spec.Y); err != nil {
			return nil, err
		}
		if err := requireNumeric(ds, ycol, spec.Y); err != nil {
			return nil, err
		}
	}

	fig := &Figure{
		Kind:   spec.Kind,
		Title:  spec.Title,
		XLabel: spec.X,
		YLabel: spec.Y,
	}

	var p plot
	switch spec.Kind {
	case KindLine:
		p, err = linePlot(ds, xcol, ycol, false)
	case KindScatter:
		p, err = linePlot(ds, xcol, ycol, true)
	case KindBar:
		p, err = barPlot(ds, xcol, ycol)
	case KindDistribution:
		fig.YLabel = "Density"
		if err = requireNumeric(ds, xcol, spec.X); err == nil {
			p, err = distributionPlot(ds, xcol)
		}
	case KindCount:
		fig.YLabel = "Count"
		p, err = countPlot(ds, xcol)
	}
	if err != nil {
		return nil, err
	}

	p.xAxis.Name = fig.XLabel
	fig.chart = gochart.Chart{
		Title:  fig.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
		DPI:    cfg.DPI,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: p.xAxis,
		YAxis: gochart.YAxis{
			Name:  fig.YLabel,
			Range: p.yRange,
		},
		Series: p.series,
	}
	return fig, nil
}

func chosen(column string) bool {
	return column != "" && column != None
}

func requireNumeric(ds *datatable.Dataset, col int, name string) error {
	kind, err := ds.ColumnKind(col)
	if err != nil {
		return err
	}
	if kind != datatable.KindNumeric {
		return fmt.Errorf("%w: %s is %s", ErrNotNumeric, name, kind)
	}
	return nil
}
