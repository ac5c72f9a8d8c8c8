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

// Package export writes datasets and pivot tables to CSV, JSON and Parquet.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	arrowcsv "github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"dataviz/datatable"
)

// Format represents the supported export formats
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
	FormatParquet
)

var formatNames = []string{
	FormatCSV:     "CSV",
	FormatJSON:    "JSON",
	FormatParquet: "Parquet",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + strings.ToLower(f.String())
}

// Formats returns the format names in menu order.
func Formats() []string {
	names := make([]string, len(formatNames))
	copy(names, formatNames)
	return names
}

// ParseFormat looks up a format by name, ignoring case.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if strings.EqualFold(n, name) {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unsupported export format %q", name)
}

// Write encodes ds to w in the given format.
func Write(ds *datatable.Dataset, w io.Writer, format Format) error {
	if ds == nil {
		return datatable.ErrNoDataSource
	}
	switch format {
	case FormatCSV:
		return CSV(ds, w)
	case FormatJSON:
		return JSON(ds, w)
	case FormatParquet:
		return Parquet(ds, w)
	}
	return fmt.Errorf("unsupported export format %s", format)
}

// ToFile writes ds to filePath, replacing any existing file.
func ToFile(ds *datatable.Dataset, filePath string, format Format) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", format, err)
	}
	defer func() {
		// the parquet writer closes the file itself
		if cerr := file.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) && err == nil {
			err = fmt.Errorf("failed to close %s file: %w", format, cerr)
		}
	}()

	return Write(ds, file, format)
}

// CSV writes the dataset as comma separated text with a header row. Nulls
// are written as empty fields.
func CSV(ds *datatable.Dataset, w io.Writer) error {
	rec := ds.Record()
	writer := arrowcsv.NewWriter(w, rec.Schema(),
		arrowcsv.WithHeader(true),
		arrowcsv.WithNullWriter(""),
	)
	if err := writer.Write(rec); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// JSON writes the dataset as an indented array of objects keyed by column
// name. Types are preserved and nulls are written as null.
func JSON(ds *datatable.Dataset, w io.Writer) error {
	names := ds.Columns()
	records := make([]map[string]interface{}, 0, ds.RowCount())

	for r := 0; r < ds.RowCount(); r++ {
		row, err := ds.Row(r)
		if err != nil {
			return fmt.Errorf("error reading row %d: %w", r, err)
		}
		record := make(map[string]interface{}, len(names))
		for c, v := range row {
			record[names[c]] = v.Raw
		}
		records = append(records, record)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Parquet writes the dataset as a snappy compressed Parquet file with the
// Arrow schema stored in its metadata.
func Parquet(ds *datatable.Dataset, w io.Writer) error {
	table := ds.Table()
	defer table.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(table.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if err := writer.WriteTable(table, max(table.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
