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

// Package session holds the state of one interactive session: the loaded
// dataset, the last plot and the last pivot table.
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"dataviz/chart"
	"dataviz/datatable"
	"dataviz/datatable/filter"
	"dataviz/export"
	"dataviz/ingest"
	"dataviz/pivot"
)

var (
	// ErrNoDataset is returned by operations that need a loaded file.
	ErrNoDataset = errors.New("no file loaded")
	// ErrNoPlot is returned when saving before a plot was generated.
	ErrNoPlot = errors.New("no plot generated")
	// ErrNoPivot is returned when exporting before a pivot table was generated.
	ErrNoPivot = errors.New("no pivot table generated")
)

// Settings configures a session.
type Settings struct {
	// PlotFile is where SavePlot writes the current plot.
	PlotFile string

	// PreviewRows caps the rows returned by Preview. Zero means no cap.
	PreviewRows int

	Chart  chart.Config
	Ingest ingest.Config
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		PlotFile:    "plot.png",
		PreviewRows: 1000,
		Chart:       chart.DefaultConfig(),
		Ingest:      ingest.DefaultConfig(),
	}
}

// Session is safe for concurrent use. Datasets handed out by Load and Pivot
// stay valid after the session replaces them; they are never released by the
// session and are reclaimed by the garbage collector once unreferenced.
type Session struct {
	mu       sync.Mutex
	settings Settings

	dataset *datatable.Dataset
	figure  *chart.Figure
	pivot   *datatable.Dataset
}

// New creates an empty session.
func New(settings Settings) *Session {
	return &Session{settings: settings}
}

// Settings returns the session settings.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Load normalizes an uploaded file and makes it the current dataset. Any
// previous dataset, plot and pivot table are discarded, also when loading
// fails.
func (s *Session) Load(fileName string, data []byte) (*datatable.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	ds, err := ingest.NormalizeWithConfig(data, fileName, s.settings.Ingest)
	if err != nil {
		log.Printf("Failed to load %s: %v", fileName, err)
		return nil, err
	}
	s.dataset = ds
	return ds, nil
}

// reset drops the session's references without releasing the records, since
// views may still be drawing them.
func (s *Session) reset() {
	s.dataset, s.figure, s.pivot = nil, nil, nil
}

// Close drops everything the session holds.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Dataset returns the current dataset, or nil.
func (s *Session) Dataset() *datatable.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}

// Columns returns the column names of the current dataset.
func (s *Session) Columns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return nil
	}
	return s.dataset.Columns()
}

// AxisOptions returns the choices for a plot axis: every column followed by
// chart.None.
func (s *Session) AxisOptions() []string {
	return append(s.Columns(), chart.None)
}

// DefaultTitle is the title offered for a new plot.
func DefaultTitle(kind chart.Kind, x, y string) string {
	return fmt.Sprintf("%s of %s vs %s", kind, y, x)
}

// Plot builds a figure from the current dataset and keeps it for SavePlot.
func (s *Session) Plot(spec chart.Spec) (*chart.Figure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	fig, err := chart.Build(s.dataset, spec, s.settings.Chart)
	if err != nil {
		return nil, err
	}
	s.figure = fig
	return fig, nil
}

// Figure returns the last generated figure, or nil.
func (s *Session) Figure() *chart.Figure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.figure
}

// SavePlot writes the last figure to Settings.PlotFile and returns the path.
func (s *Session) SavePlot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.figure == nil {
		return "", ErrNoPlot
	}
	if err := s.figure.Save(s.settings.PlotFile); err != nil {
		return "", err
	}
	log.Printf("Plot saved as %s", s.settings.PlotFile)
	return s.settings.PlotFile, nil
}

// CheckPivot validates a pivot against the current dataset. A *pivot.Rejection
// means the pivot should not be offered.
func (s *Session) CheckPivot(spec pivot.Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset == nil {
		return ErrNoDataset
	}
	return pivot.Check(s.dataset, spec)
}

// Pivot computes a pivot table and keeps it for ExportPivot.
func (s *Session) Pivot(spec pivot.Spec) (*datatable.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	out, err := pivot.Build(s.dataset, spec)
	if err != nil {
		return nil, err
	}
	s.pivot = out
	return out, nil
}

// ExportPivot writes the last pivot table to path.
func (s *Session) ExportPivot(path string, format export.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pivot == nil {
		return ErrNoPivot
	}
	if err := export.ToFile(s.pivot, path, format); err != nil {
		return err
	}
	log.Printf("Exported pivot table to %s", path)
	return nil
}

// Preview returns the indices of the rows matching query, capped at
// Settings.PreviewRows. An empty query matches every row.
func (s *Session) Preview(query string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	f, err := filter.Parse(query, s.dataset.Columns())
	if err != nil {
		return nil, err
	}
	rows, err := datatable.FilterRows(s.dataset, f)
	if err != nil {
		return nil, err
	}
	if limit := s.settings.PreviewRows; limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
