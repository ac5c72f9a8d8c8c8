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

// Package ingest normalizes uploaded CSV, spreadsheet and ARFF files into a
// datatable.Dataset.
//
// Every format is first read into a grid of strings, the grid is written out
// as CSV text, and that text is parsed back by a single code path that infers
// column types and builds the Arrow record. A file therefore yields the same
// dataset whichever of the supported formats it was saved in.
package ingest

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"dataviz/datatable"
)

// FileType represents the type of an uploaded data file.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeSpreadsheet
	FileTypeARFF
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeSpreadsheet:
		return "xlsx"
	case FileTypeARFF:
		return "arff"
	default:
		return "unknown"
	}
}

// Extensions lists the file extensions the normalizer accepts.
func Extensions() []string {
	return []string{".csv", ".xlsx", ".arff"}
}

// DetectFileType determines the type of file based on its extension.
func DetectFileType(fileName string) FileType {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FileTypeCSV
	case ".xlsx":
		return FileTypeSpreadsheet
	case ".arff":
		return FileTypeARFF
	default:
		return FileTypeUnknown
	}
}

// Config controls how files are read.
type Config struct {
	// Delimiter is the CSV field separator. Zero detects it from the first line.
	Delimiter rune

	// LazyQuotes allows quotes to appear in unquoted CSV fields.
	LazyQuotes bool

	// NullValues are the cell values read as missing.
	NullValues []string

	// Allocator is used for the Arrow record. Defaults to a Go allocator.
	Allocator memory.Allocator
}

// DefaultConfig returns the configuration used by Normalize.
func DefaultConfig() Config {
	return Config{
		NullValues: []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null"},
		Allocator:  memory.NewGoAllocator(),
	}
}

// Normalize reads an uploaded file into a dataset using DefaultConfig.
func Normalize(data []byte, fileName string) (*datatable.Dataset, error) {
	return NormalizeWithConfig(data, fileName, DefaultConfig())
}

// NormalizeWithConfig reads an uploaded file into a dataset. The format is
// chosen by the file name's extension. On failure it returns an *Error and no
// dataset.
func NormalizeWithConfig(data []byte, fileName string, cfg Config) (ds *datatable.Dataset, err error) {
	if cfg.Allocator == nil {
		cfg.Allocator = memory.NewGoAllocator()
	}

	// third-party parsers are not trusted to never panic on hostile input
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered while loading %s: %v", fileName, r)
			ds = nil
			err = fail(fileName, "parse", ErrCorrupt, "%v", r)
		}
	}()

	fileType := DetectFileType(fileName)

	var grid [][]string
	switch fileType {
	case FileTypeCSV:
		if err := sniffText(data, fileName); err != nil {
			return nil, err
		}
		grid, err = readCSV(data, fileName, cfg)
	case FileTypeSpreadsheet:
		if err := sniffSpreadsheet(data, fileName); err != nil {
			return nil, err
		}
		grid, err = readSpreadsheet(data, fileName)
	case FileTypeARFF:
		if err := sniffText(data, fileName); err != nil {
			return nil, err
		}
		grid, err = readARFF(data, fileName)
	default:
		return nil, fail(fileName, "detect", ErrUnsupportedFormat,
			"%q (supported: %s)", filepath.Ext(fileName), strings.Join(Extensions(), ", "))
	}
	if err != nil {
		return nil, err
	}

	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fail(fileName, "read "+fileType.String(), ErrEmpty, "no header row")
	}
	grid[0] = normalizeHeader(grid[0])

	canonical, err := writeCanonical(grid)
	if err != nil {
		return nil, &Error{File: fileName, Op: "serialize", Err: err}
	}

	rec, err := materialize(canonical, cfg)
	if err != nil {
		return nil, &Error{File: fileName, Op: "materialize", Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	defer rec.Release()

	ds, err = datatable.New(rec, datatable.Metadata{
		datatable.MetaSourceName: filepath.Base(fileName),
		datatable.MetaFormat:     fileType.String(),
	})
	if err != nil {
		return nil, &Error{File: fileName, Op: "materialize", Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}

	log.Printf("Loaded %s file: %s (%d rows, %d columns)",
		fileType, filepath.Base(fileName), ds.RowCount(), ds.ColumnCount())
	return ds, nil
}
